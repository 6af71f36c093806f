package sdmmc

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	sderrors "github.com/princespaghetti/sdmc/internal/errors"
)

// SimCard is an in-memory simulated card. It backs the test suite and lets
// the CLI run on machines with no card attached. Volume contents survive an
// unmount/remount cycle the way a physical card's do.
type SimCard struct {
	Info     CardInfo
	MountErr error // injected bring-up failure
	FreeErr  error // injected free-space query failure

	mu      sync.Mutex
	mounted bool
	vol     *simFS
}

// NewSimCard returns a simulated card with the given capacity. Geometry uses
// 512-byte sectors; cards over 2 GiB report the high-capacity OCR bit.
func NewSimCard(capacityMB int) *SimCard {
	info := CardInfo{
		Name:        "SIMCARD",
		SectorSize:  512,
		SectorCount: uint64(capacityMB) * 2048,
		MaxClockKHz: 40000,
	}
	if capacityMB > 2048 {
		info.OCR |= OCRHighCapacity
	}
	return &SimCard{Info: info}
}

// Mount implements CardDriver.
func (s *SimCard) Mount(mountPoint string, bus BusConfig, cfg MountConfig) (Filesystem, CardInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.MountErr != nil {
		return nil, CardInfo{}, s.MountErr
	}
	if s.mounted {
		return nil, CardInfo{}, sderrors.ErrAlreadyMounted
	}

	au := cfg.AllocationUnitSize
	if au <= 0 {
		au = DefaultMountConfig().AllocationUnitSize
	}
	if s.vol == nil {
		s.vol = newSimFS(mountPoint, au)
	}
	s.mounted = true
	return s.vol, s.Info, nil
}

// Unmount implements CardDriver.
func (s *SimCard) Unmount() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = false
	return nil
}

// FreeBytes implements CardDriver. Free space is the capacity minus every
// file rounded up to the allocation unit, mirroring a FAT free-cluster count.
func (s *SimCard) FreeBytes() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FreeErr != nil {
		return 0, s.FreeErr
	}
	if !s.mounted || s.vol == nil {
		return 0, sderrors.ErrNotMounted
	}

	used := s.vol.usedBytes()
	capacity := s.Info.CapacityBytes()
	if used >= capacity {
		return 0, nil
	}
	return capacity - used, nil
}

// simFS is the in-memory volume behind a SimCard.
type simFS struct {
	mu          sync.Mutex
	root        string
	clusterSize int
	nodes       map[string]*simNode
}

type simNode struct {
	data     []byte
	dir      bool
	modified time.Time
}

func newSimFS(root string, clusterSize int) *simFS {
	root = path.Clean(root)
	v := &simFS{
		root:        root,
		clusterSize: clusterSize,
		nodes:       make(map[string]*simNode),
	}
	v.nodes[root] = &simNode{dir: true, modified: time.Now()}
	return v
}

func (v *simFS) usedBytes() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	cluster := uint64(v.clusterSize)
	var used uint64
	for _, n := range v.nodes {
		if n.dir {
			continue
		}
		size := uint64(len(n.data))
		clusters := (size + cluster - 1) / cluster
		used += clusters * cluster
	}
	return used
}

// Stat implements Filesystem.
func (v *simFS) Stat(p string) (FileInfo, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p = path.Clean(p)
	n, ok := v.nodes[p]
	if !ok {
		return FileInfo{}, fmt.Errorf("stat %s: %w", p, fs.ErrNotExist)
	}
	return FileInfo{
		Name:     path.Base(p),
		Size:     int64(len(n.data)),
		IsDir:    n.dir,
		Modified: n.modified,
	}, nil
}

// Open implements Filesystem.
func (v *simFS) Open(p string) (File, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p = path.Clean(p)
	n, ok := v.nodes[p]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", p, fs.ErrNotExist)
	}
	if n.dir {
		return nil, fmt.Errorf("open %s: is a directory", p)
	}
	return &simFile{vol: v, node: n}, nil
}

// Create implements Filesystem.
func (v *simFS) Create(p string) (File, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p = path.Clean(p)
	if err := v.checkParent(p); err != nil {
		return nil, err
	}
	if n, ok := v.nodes[p]; ok {
		if n.dir {
			return nil, fmt.Errorf("create %s: is a directory", p)
		}
		n.data = n.data[:0]
		n.modified = time.Now()
		return &simFile{vol: v, node: n, writable: true}, nil
	}
	n := &simNode{modified: time.Now()}
	v.nodes[p] = n
	return &simFile{vol: v, node: n, writable: true}, nil
}

// Append implements Filesystem.
func (v *simFS) Append(p string) (File, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p = path.Clean(p)
	if err := v.checkParent(p); err != nil {
		return nil, err
	}
	n, ok := v.nodes[p]
	if !ok {
		n = &simNode{modified: time.Now()}
		v.nodes[p] = n
	}
	if n.dir {
		return nil, fmt.Errorf("append %s: is a directory", p)
	}
	return &simFile{vol: v, node: n, writable: true, off: int64(len(n.data))}, nil
}

// Remove implements Filesystem.
func (v *simFS) Remove(p string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	p = path.Clean(p)
	n, ok := v.nodes[p]
	if !ok {
		return fmt.Errorf("remove %s: %w", p, fs.ErrNotExist)
	}
	if n.dir {
		return fmt.Errorf("remove %s: is a directory", p)
	}
	delete(v.nodes, p)
	return nil
}

// Rename implements Filesystem.
func (v *simFS) Rename(oldPath, newPath string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	oldPath = path.Clean(oldPath)
	newPath = path.Clean(newPath)

	n, ok := v.nodes[oldPath]
	if !ok {
		return fmt.Errorf("rename %s: %w", oldPath, fs.ErrNotExist)
	}
	if err := v.checkParent(newPath); err != nil {
		return err
	}
	if dst, ok := v.nodes[newPath]; ok && dst.dir {
		return fmt.Errorf("rename %s: target is a directory", newPath)
	}

	delete(v.nodes, oldPath)
	v.nodes[newPath] = n
	if n.dir {
		prefix := oldPath + "/"
		for p, child := range v.nodes {
			if strings.HasPrefix(p, prefix) {
				delete(v.nodes, p)
				v.nodes[newPath+"/"+strings.TrimPrefix(p, prefix)] = child
			}
		}
	}
	return nil
}

// Mkdir implements Filesystem.
func (v *simFS) Mkdir(p string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	p = path.Clean(p)
	if _, ok := v.nodes[p]; ok {
		return fmt.Errorf("mkdir %s: %w", p, fs.ErrExist)
	}
	if err := v.checkParent(p); err != nil {
		return err
	}
	v.nodes[p] = &simNode{dir: true, modified: time.Now()}
	return nil
}

// RemoveDir implements Filesystem.
func (v *simFS) RemoveDir(p string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	p = path.Clean(p)
	n, ok := v.nodes[p]
	if !ok {
		return fmt.Errorf("rmdir %s: %w", p, fs.ErrNotExist)
	}
	if !n.dir {
		return fmt.Errorf("rmdir %s: not a directory", p)
	}
	if p == v.root {
		return fmt.Errorf("rmdir %s: cannot remove mount root", p)
	}
	prefix := p + "/"
	for child := range v.nodes {
		if strings.HasPrefix(child, prefix) {
			return fmt.Errorf("rmdir %s: directory not empty", p)
		}
	}
	delete(v.nodes, p)
	return nil
}

// ReadDir implements Filesystem. Subdirectories include the "." and ".."
// pseudo-entries the way a FAT directory cluster does; the root does not.
func (v *simFS) ReadDir(p string) ([]FileInfo, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p = path.Clean(p)
	n, ok := v.nodes[p]
	if !ok {
		return nil, fmt.Errorf("readdir %s: %w", p, fs.ErrNotExist)
	}
	if !n.dir {
		return nil, fmt.Errorf("readdir %s: not a directory", p)
	}

	var entries []FileInfo
	if p != v.root {
		entries = append(entries,
			FileInfo{Name: ".", IsDir: true, Modified: n.modified},
			FileInfo{Name: "..", IsDir: true, Modified: n.modified},
		)
	}
	for child, cn := range v.nodes {
		if path.Dir(child) != p || child == p {
			continue
		}
		entries = append(entries, FileInfo{
			Name:     path.Base(child),
			Size:     int64(len(cn.data)),
			IsDir:    cn.dir,
			Modified: cn.modified,
		})
	}
	return entries, nil
}

// checkParent verifies the parent of p exists and is a directory.
// Callers must hold v.mu.
func (v *simFS) checkParent(p string) error {
	parent := path.Dir(p)
	n, ok := v.nodes[parent]
	if !ok {
		return fmt.Errorf("%s: parent directory %w", p, fs.ErrNotExist)
	}
	if !n.dir {
		return fmt.Errorf("%s: parent %s is not a directory", p, parent)
	}
	return nil
}

// simFile is an open handle on a simFS node.
type simFile struct {
	vol      *simFS
	node     *simNode
	off      int64
	writable bool
	closed   bool
}

// Read implements io.Reader.
func (f *simFile) Read(b []byte) (int, error) {
	f.vol.mu.Lock()
	defer f.vol.mu.Unlock()

	if f.closed {
		return 0, fs.ErrClosed
	}
	if f.off >= int64(len(f.node.data)) {
		return 0, io.EOF
	}
	n := copy(b, f.node.data[f.off:])
	f.off += int64(n)
	return n, nil
}

// Write implements io.Writer.
func (f *simFile) Write(b []byte) (int, error) {
	f.vol.mu.Lock()
	defer f.vol.mu.Unlock()

	if f.closed {
		return 0, fs.ErrClosed
	}
	if !f.writable {
		return 0, fs.ErrPermission
	}
	end := f.off + int64(len(b))
	if end > int64(len(f.node.data)) {
		grown := make([]byte, end)
		copy(grown, f.node.data)
		f.node.data = grown
	}
	copy(f.node.data[f.off:end], b)
	f.off = end
	return len(b), nil
}

// Seek implements io.Seeker.
func (f *simFile) Seek(offset int64, whence int) (int64, error) {
	f.vol.mu.Lock()
	defer f.vol.mu.Unlock()

	if f.closed {
		return 0, fs.ErrClosed
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.off + offset
	case io.SeekEnd:
		abs = int64(len(f.node.data)) + offset
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("seek: negative position")
	}
	f.off = abs
	return abs, nil
}

// Close implements io.Closer.
func (f *simFile) Close() error {
	f.vol.mu.Lock()
	defer f.vol.mu.Unlock()

	if f.closed {
		return fs.ErrClosed
	}
	f.closed = true
	if f.writable {
		f.node.modified = time.Now()
	}
	return nil
}
