package storage

import (
	"errors"
	"io"
	"io/fs"

	"github.com/princespaghetti/sdmc/internal/sdmmc"
)

// File and directory operations. Storage absence is an expected runtime
// condition (card removed, never inserted), so every operation degrades to a
// false/empty result instead of failing hard when the card is not mounted.

// FileExists reports whether a file or directory exists at path.
func (c *Card) FileExists(path string) bool {
	vol, ok := c.borrow()
	if !ok {
		return false
	}
	_, err := vol.Stat(c.resolvePath(path))
	return err == nil
}

// FileSize returns the size of the file at path in bytes, 0 if it does not
// exist or the card is not mounted.
func (c *Card) FileSize(path string) int64 {
	vol, ok := c.borrow()
	if !ok {
		return 0
	}
	info, err := vol.Stat(c.resolvePath(path))
	if err != nil {
		return 0
	}
	return info.Size
}

// Stat returns the directory entry for path.
func (c *Card) Stat(path string) (sdmmc.FileInfo, bool) {
	vol, ok := c.borrow()
	if !ok {
		return sdmmc.FileInfo{}, false
	}
	info, err := vol.Stat(c.resolvePath(path))
	if err != nil {
		return sdmmc.FileInfo{}, false
	}
	return info, true
}

// ReadFile reads the whole file at path. The length is measured with a
// seek-to-end and exactly that much is allocated. A short read is logged and
// the partial content is returned as-is, never padded; callers that need
// strict completeness compare against FileSize.
func (c *Card) ReadFile(path string) []byte {
	vol, ok := c.borrow()
	if !ok {
		c.log.Debug("read skipped, card not mounted", "path", path)
		return nil
	}
	full := c.resolvePath(path)

	f, err := vol.Open(full)
	if err != nil {
		c.log.Error("open file", "path", full, "error", err)
		return nil
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		c.log.Error("measure file", "path", full, "error", err)
		return nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		c.log.Error("rewind file", "path", full, "error", err)
		return nil
	}

	buf := make([]byte, size)
	n, err := io.ReadFull(f, buf)
	if err != nil && n < len(buf) {
		c.log.Error("short read", "path", full, "expected", size, "read", n, "error", err)
	}
	return buf[:n]
}

// ReadFileString reads the whole file at path as text. Empty string when the
// card is not mounted or the file cannot be read.
func (c *Card) ReadFileString(path string) string {
	return string(c.ReadFile(path))
}

// ReadFileChunked streams the file at path through a bounded buffer of
// chunkSize bytes, invoking visit once per chunk. Streaming stops early when
// visit returns false. Returns true only if the whole file was visited.
func (c *Card) ReadFileChunked(path string, chunkSize int, visit func([]byte) bool) bool {
	vol, ok := c.borrow()
	if !ok || chunkSize <= 0 {
		return false
	}
	full := c.resolvePath(path)

	f, err := vol.Open(full)
	if err != nil {
		c.log.Error("open file", "path", full, "error", err)
		return false
	}
	defer f.Close()

	buf := make([]byte, chunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			if !visit(buf[:n]) {
				return false
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return true
			}
			c.log.Error("read chunk", "path", full, "error", err)
			return false
		}
	}
}

// WriteFile creates or truncates the file at path with data. Success requires
// the write count to equal len(data); on a short write the partially written
// file is left as-is, there is no rollback.
func (c *Card) WriteFile(path string, data []byte) bool {
	return c.writeFile(path, data, false)
}

// AppendFile appends data to the file at path, creating it if absent.
func (c *Card) AppendFile(path string, data []byte) bool {
	return c.writeFile(path, data, true)
}

func (c *Card) writeFile(path string, data []byte, appendMode bool) bool {
	vol, ok := c.borrow()
	if !ok {
		c.log.Debug("write skipped, card not mounted", "path", path)
		return false
	}
	full := c.resolvePath(path)

	var (
		f   sdmmc.File
		err error
	)
	if appendMode {
		f, err = vol.Append(full)
	} else {
		f, err = vol.Create(full)
	}
	if err != nil {
		c.log.Error("create file", "path", full, "error", err)
		return false
	}

	n, err := f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		c.log.Error("write file", "path", full, "error", err)
		return false
	}
	if n != len(data) {
		c.log.Error("short write", "path", full, "expected", len(data), "written", n)
		return false
	}
	return true
}

// DeleteFile removes the file at path.
func (c *Card) DeleteFile(path string) bool {
	vol, ok := c.borrow()
	if !ok {
		return false
	}
	full := c.resolvePath(path)
	if err := vol.Remove(full); err != nil {
		c.log.Error("delete file", "path", full, "error", err)
		return false
	}
	c.log.Debug("deleted file", "path", full)
	return true
}

// RenameFile renames oldPath to newPath.
func (c *Card) RenameFile(oldPath, newPath string) bool {
	vol, ok := c.borrow()
	if !ok {
		return false
	}
	fullOld := c.resolvePath(oldPath)
	fullNew := c.resolvePath(newPath)
	if err := vol.Rename(fullOld, fullNew); err != nil {
		c.log.Error("rename file", "from", fullOld, "to", fullNew, "error", err)
		return false
	}
	c.log.Debug("renamed file", "from", fullOld, "to", fullNew)
	return true
}

// CreateDir creates the directory at path. Idempotent: an already existing
// directory counts as success.
func (c *Card) CreateDir(path string) bool {
	vol, ok := c.borrow()
	if !ok {
		return false
	}
	full := c.resolvePath(path)
	if err := vol.Mkdir(full); err != nil {
		if errors.Is(err, fs.ErrExist) {
			c.log.Debug("directory already exists", "path", full)
			return true
		}
		c.log.Error("create directory", "path", full, "error", err)
		return false
	}
	c.log.Debug("created directory", "path", full)
	return true
}

// RemoveDir removes the directory at path. Fails on non-empty directories,
// per the underlying driver semantics.
func (c *Card) RemoveDir(path string) bool {
	vol, ok := c.borrow()
	if !ok {
		return false
	}
	full := c.resolvePath(path)
	if err := vol.RemoveDir(full); err != nil {
		c.log.Error("remove directory", "path", full, "error", err)
		return false
	}
	return true
}

// ListDir enumerates the directory at path, skipping the "." and ".."
// pseudo-entries. Order is whatever the driver yields; callers requiring a
// specific order sort themselves.
func (c *Card) ListDir(path string) []sdmmc.FileInfo {
	vol, ok := c.borrow()
	if !ok {
		return nil
	}
	full := c.resolvePath(path)

	raw, err := vol.ReadDir(full)
	if err != nil {
		c.log.Error("list directory", "path", full, "error", err)
		return nil
	}
	entries := make([]sdmmc.FileInfo, 0, len(raw))
	for _, e := range raw {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		entries = append(entries, e)
	}
	c.log.Debug("listed directory", "path", full, "entries", len(entries))
	return entries
}

// ListDirNames enumerates the entry names of the directory at path.
func (c *Card) ListDirNames(path string) []string {
	entries := c.ListDir(path)
	if entries == nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}
