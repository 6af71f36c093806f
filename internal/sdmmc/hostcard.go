package sdmmc

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	sderrors "github.com/princespaghetti/sdmc/internal/errors"
)

// hostLockName is the lock file kept at the backing directory root so two
// processes cannot own the same card.
const hostLockName = ".sdmc.lock"

// Raw driver codes surfaced through HardwareError for offline diagnostics.
const (
	codeInvalidLine = 0x102
	codeBadMedia    = 0x105
	codeLockFailed  = 0x103
)

// HostCard maps the card onto a host directory. It is the development and CI
// backend: bring-up validates the configured lines against the GPIO registry,
// takes an exclusive flock on the backing directory, and serves file I/O
// straight from the host filesystem.
type HostCard struct {
	dir  string
	info CardInfo

	mu        sync.Mutex
	lock      *flock.Flock
	mounted   bool
	allocUnit int
}

// NewHostCard returns a card backed by dir with the given advertised capacity.
func NewHostCard(dir string, capacityMB int) *HostCard {
	info := CardInfo{
		Name:        "HOSTDIR",
		SectorSize:  512,
		SectorCount: uint64(capacityMB) * 2048,
		MaxClockKHz: 52000,
	}
	if capacityMB > 2048 {
		info.OCR |= OCRHighCapacity
	}
	return &HostCard{dir: dir, info: info}
}

// Mount implements CardDriver.
func (h *HostCard) Mount(mountPoint string, bus BusConfig, cfg MountConfig) (Filesystem, CardInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.mounted {
		return nil, CardInfo{}, sderrors.ErrAlreadyMounted
	}

	if err := ValidateLines(bus.CLK, bus.CMD, bus.D0, bus.D1, bus.D2, bus.D3); err != nil {
		return nil, CardInfo{}, &sderrors.HardwareError{Code: codeInvalidLine, Err: err}
	}

	st, err := os.Stat(h.dir)
	if err != nil {
		// Missing backing media presents as an unformatted card.
		if os.IsNotExist(err) {
			return nil, CardInfo{}, sderrors.ErrUnformatted
		}
		return nil, CardInfo{}, &sderrors.HardwareError{Code: codeBadMedia, Err: err}
	}
	if !st.IsDir() {
		return nil, CardInfo{}, &sderrors.HardwareError{Code: codeBadMedia,
			Err: fmt.Errorf("%s is not a directory", h.dir)}
	}

	lock := flock.New(filepath.Join(h.dir, hostLockName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, CardInfo{}, &sderrors.HardwareError{Code: codeLockFailed, Err: err}
	}
	if !locked {
		// Another process owns the card.
		return nil, CardInfo{}, sderrors.ErrAlreadyMounted
	}

	h.allocUnit = cfg.AllocationUnitSize
	if h.allocUnit <= 0 {
		h.allocUnit = DefaultMountConfig().AllocationUnitSize
	}
	h.lock = lock
	h.mounted = true
	return &hostFS{dir: h.dir, mountPoint: mountPoint}, h.info, nil
}

// Unmount implements CardDriver.
func (h *HostCard) Unmount() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.lock != nil {
		if err := h.lock.Unlock(); err != nil {
			return err
		}
		h.lock = nil
	}
	h.mounted = false
	return nil
}

// FreeBytes implements CardDriver. Usage is every regular file rounded up to
// the allocation unit, the same accounting a FAT free-cluster count yields.
func (h *HostCard) FreeBytes() (uint64, error) {
	h.mu.Lock()
	mounted, allocUnit := h.mounted, h.allocUnit
	h.mu.Unlock()

	if !mounted {
		return 0, sderrors.ErrNotMounted
	}

	cluster := uint64(allocUnit)
	var used uint64
	err := filepath.WalkDir(h.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() == hostLockName {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		clusters := (uint64(info.Size()) + cluster - 1) / cluster
		used += clusters * cluster
		return nil
	})
	if err != nil {
		return 0, err
	}

	capacity := h.info.CapacityBytes()
	if used >= capacity {
		return 0, nil
	}
	return capacity - used, nil
}

// hostFS serves Filesystem calls from a host directory, translating card
// paths under mountPoint to paths under dir.
type hostFS struct {
	dir        string
	mountPoint string
}

// hostPath maps an absolute card path to the backing host path.
func (v *hostFS) hostPath(p string) string {
	rel := strings.TrimPrefix(p, v.mountPoint)
	rel = strings.TrimPrefix(rel, "/")
	return filepath.Join(v.dir, filepath.FromSlash(rel))
}

// Stat implements Filesystem.
func (v *hostFS) Stat(p string) (FileInfo, error) {
	st, err := os.Stat(v.hostPath(p))
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Name:     st.Name(),
		Size:     st.Size(),
		IsDir:    st.IsDir(),
		Modified: st.ModTime(),
	}, nil
}

// Open implements Filesystem.
func (v *hostFS) Open(p string) (File, error) {
	return os.Open(v.hostPath(p))
}

// Create implements Filesystem.
func (v *hostFS) Create(p string) (File, error) {
	return os.Create(v.hostPath(p))
}

// Append implements Filesystem.
func (v *hostFS) Append(p string) (File, error) {
	return os.OpenFile(v.hostPath(p), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// Remove implements Filesystem.
func (v *hostFS) Remove(p string) error {
	hp := v.hostPath(p)
	st, err := os.Stat(hp)
	if err != nil {
		return err
	}
	if st.IsDir() {
		return fmt.Errorf("remove %s: is a directory", p)
	}
	return os.Remove(hp)
}

// Rename implements Filesystem.
func (v *hostFS) Rename(oldPath, newPath string) error {
	return os.Rename(v.hostPath(oldPath), v.hostPath(newPath))
}

// Mkdir implements Filesystem.
func (v *hostFS) Mkdir(p string) error {
	return os.Mkdir(v.hostPath(p), 0o755)
}

// RemoveDir implements Filesystem.
func (v *hostFS) RemoveDir(p string) error {
	hp := v.hostPath(p)
	st, err := os.Stat(hp)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("rmdir %s: not a directory", p)
	}
	return os.Remove(hp)
}

// ReadDir implements Filesystem. The lock file is an implementation artifact
// and never listed.
func (v *hostFS) ReadDir(p string) ([]FileInfo, error) {
	dirents, err := os.ReadDir(v.hostPath(p))
	if err != nil {
		return nil, err
	}
	entries := make([]FileInfo, 0, len(dirents))
	for _, d := range dirents {
		if d.Name() == hostLockName {
			continue
		}
		fi := FileInfo{Name: d.Name(), IsDir: d.IsDir()}
		if info, err := d.Info(); err == nil {
			fi.Size = info.Size()
			fi.Modified = info.ModTime()
		}
		entries = append(entries, fi)
	}
	return entries, nil
}
