// Package sdmmc defines the driver boundary between the storage core and the
// SD/MMC card hardware. The storage core talks to a CardDriver for bring-up
// and capacity queries, and to the Filesystem it yields for all file I/O.
package sdmmc

import (
	"io"
	"time"
)

// LineUnset marks an optional bus data line as not connected.
const LineUnset = -1

// OCRHighCapacity is the card capacity status bit of the operating conditions
// register. Set for SDHC/SDXC cards, clear for standard capacity.
const OCRHighCapacity = 1 << 30

// BusConfig carries the electrical configuration applied before the mount
// handshake. Line identifiers are already-resolved controller GPIO numbers.
type BusConfig struct {
	CLK int
	CMD int
	D0  int
	D1  int // LineUnset in 1-bit mode
	D2  int // LineUnset in 1-bit mode
	D3  int // LineUnset in 1-bit mode

	Width    int  // 1 or 4
	ClockKHz int  // target bus clock
	PullUp   bool // enable the controller's internal pull-ups
}

// MountConfig holds the fixed parameters of the filesystem mount handshake.
type MountConfig struct {
	FormatIfMountFailed bool // never auto-format user media
	MaxOpenFiles        int
	AllocationUnitSize  int
	DiskStatusCheck     bool // per-I/O write-protect/removal checking
}

// DefaultMountConfig returns the handshake parameters used for every mount:
// no auto-format, a bounded open-file count, a fixed 16 KiB allocation unit,
// and continuous disk status checking disabled.
func DefaultMountConfig() MountConfig {
	return MountConfig{
		FormatIfMountFailed: false,
		MaxOpenFiles:        10,
		AllocationUnitSize:  16 * 1024,
		DiskStatusCheck:     false,
	}
}

// CardInfo holds the metadata registers read once the card answers the
// bring-up handshake. Read-only afterward.
type CardInfo struct {
	Name        string // product name from the CID register
	SectorCount uint64
	SectorSize  uint32
	MaxClockKHz uint32
	OCR         uint32 // operating conditions register
	IsMMC       bool
	IsSDIO      bool
}

// CapacityBytes returns the card capacity derived from the CSD geometry.
func (i CardInfo) CapacityBytes() uint64 {
	return i.SectorCount * uint64(i.SectorSize)
}

// FileInfo describes a single directory entry.
type FileInfo struct {
	Name     string // leaf name, not full path
	Size     int64
	IsDir    bool
	Modified time.Time // zero if the driver cannot report one
}

// File is an open file on the mounted filesystem.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
}

// Filesystem is the mounted volume. All paths are absolute card paths
// including the mount point (e.g. "/sdcard/music/track.mp3"). Drivers are
// expected to serialize their own I/O; callers must not retain a Filesystem
// across an unmount.
type Filesystem interface {
	Stat(path string) (FileInfo, error)
	Open(path string) (File, error)
	Create(path string) (File, error)
	Append(path string) (File, error)
	Remove(path string) error
	Rename(oldPath, newPath string) error
	Mkdir(path string) error
	RemoveDir(path string) error
	ReadDir(path string) ([]FileInfo, error)
}

// CardDriver brings a card online and exposes its registers.
type CardDriver interface {
	// Mount configures the bus per cfg and performs the filesystem handshake,
	// mounting the volume at mountPoint. On failure it returns one of the
	// sentinel errors (ErrUnformatted, ErrMountTimeout, ErrAlreadyMounted) or
	// a HardwareError carrying the raw driver code. No state is retained on
	// failure.
	Mount(mountPoint string, bus BusConfig, cfg MountConfig) (Filesystem, CardInfo, error)

	// Unmount releases the card. Safe to call during shutdown.
	Unmount() error

	// FreeBytes reports the filesystem free space as free-cluster count ×
	// cluster size × sector size, all driver-reported quantities.
	FreeBytes() (uint64, error)
}
