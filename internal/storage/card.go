// Package storage implements the SD card storage core: bus/card bring-up,
// the mount lifecycle, file and directory operations, and capacity
// diagnostics. A Card owns the mounted state; every operation re-checks that
// state at entry so nothing proceeds against an unmounted card.
package storage

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	sderrors "github.com/princespaghetti/sdmc/internal/errors"
	"github.com/princespaghetti/sdmc/internal/sdmmc"
)

// MountState is the lifecycle state of the card.
type MountState int

const (
	// NotMounted is the initial state, and the state after an explicit unmount.
	NotMounted MountState = iota
	// Mounted means bring-up succeeded and file operations are live.
	Mounted
	// MountFailed means bring-up failed; terminal until an explicit retry.
	MountFailed
)

// String implements fmt.Stringer.
func (s MountState) String() string {
	switch s {
	case NotMounted:
		return "not-mounted"
	case Mounted:
		return "mounted"
	case MountFailed:
		return "mount-failed"
	default:
		return "unknown"
	}
}

// Card is the storage core. It exclusively owns the card handle and the mount
// state; other components borrow the mounted filesystem for at most the
// duration of one operation.
type Card struct {
	cfg    Config
	driver sdmmc.CardDriver
	log    *slog.Logger

	mu        sync.Mutex
	state     MountState
	fs        sdmmc.Filesystem
	info      sdmmc.CardInfo
	onMount   []func()
	onUnmount []func()
}

// New creates a Card from its configuration and driver. The card is not
// mounted; call Setup.
func New(cfg Config, driver sdmmc.CardDriver, log *slog.Logger) *Card {
	if log == nil {
		log = slog.Default()
	}
	return &Card{cfg: cfg, driver: driver, log: log, state: NotMounted}
}

// Config returns the card configuration.
func (c *Card) Config() Config {
	return c.cfg
}

// Setup is the idempotent bring-up entry point, called once at startup. On
// failure the card is marked failed and the rest of the firmware continues
// without storage.
func (c *Card) Setup() error {
	if c.State() == Mounted {
		return nil
	}
	c.log.Info("setting up SD card (SDMMC mode)", "mount_root", c.cfg.MountRoot)
	if err := c.Mount(); err != nil {
		c.mu.Lock()
		c.state = MountFailed
		c.mu.Unlock()
		c.log.Error("failed to mount SD card", "error", err)
		return err
	}
	c.log.Info("SD card mounted", "card", c.info.Name)
	return nil
}

// Poll is the periodic lifecycle hook. Currently an extension point for
// future health checks.
func (c *Card) Poll() {}

// Mount validates the configuration, brings the bus and card up, and on
// success installs the handle and fires on-mount callbacks in registration
// order. Mounting twice without an intervening unmount returns
// ErrAlreadyMounted and leaves the first mount untouched. A failed mount
// mutates no state.
func (c *Card) Mount() error {
	c.mu.Lock()
	if c.state == Mounted {
		c.mu.Unlock()
		return &sderrors.StorageError{Op: "mount", Path: c.cfg.MountRoot, Err: sderrors.ErrAlreadyMounted}
	}
	if err := c.cfg.Validate(); err != nil {
		c.mu.Unlock()
		return &sderrors.StorageError{Op: "mount", Err: err}
	}
	fs, info, err := c.driver.Mount(c.cfg.MountRoot, c.cfg.bus(), sdmmc.DefaultMountConfig())
	if err != nil {
		c.mu.Unlock()
		return &sderrors.StorageError{Op: "mount", Path: c.cfg.MountRoot, Err: err}
	}
	c.fs = fs
	c.info = info
	c.state = Mounted
	callbacks := slices.Clone(c.onMount)
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
	return nil
}

// Unmount releases the card handle and fires on-unmount callbacks in
// registration order. No-op if not mounted; safe during shutdown.
func (c *Card) Unmount() {
	c.mu.Lock()
	if c.state != Mounted {
		c.mu.Unlock()
		return
	}
	if err := c.driver.Unmount(); err != nil {
		c.log.Error("release card", "error", err)
	}
	c.fs = nil
	c.info = sdmmc.CardInfo{}
	c.state = NotMounted
	callbacks := slices.Clone(c.onUnmount)
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
	c.log.Info("SD card unmounted")
}

// State returns the current mount state.
func (c *Card) State() MountState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsMounted reports whether file operations are live.
func (c *Card) IsMounted() bool {
	return c.State() == Mounted
}

// OnMount registers a callback invoked synchronously after each successful
// mount, in registration order. Callbacks cannot be unregistered.
func (c *Card) OnMount(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMount = append(c.onMount, fn)
}

// OnUnmount registers a callback invoked synchronously after each unmount,
// in registration order.
func (c *Card) OnUnmount(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnmount = append(c.onUnmount, fn)
}

// resolvePath turns a caller-supplied path into an absolute path under the
// mount root. Plain concatenation: "." and ".." segments are not normalized,
// callers are trusted firmware code.
func (c *Card) resolvePath(p string) string {
	if strings.HasPrefix(p, "/") {
		return c.cfg.MountRoot + p
	}
	return c.cfg.MountRoot + "/" + p
}

// borrow returns the mounted filesystem for the duration of a single
// operation. The second return is false when the card is not mounted; the
// handle must not be retained past the call, an unmount invalidates it.
func (c *Card) borrow() (sdmmc.Filesystem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Mounted {
		return nil, false
	}
	return c.fs, true
}

// CardName returns the product name from the card's CID register, empty when
// not mounted.
func (c *Card) CardName() string {
	info, ok := c.cardInfo()
	if !ok {
		return ""
	}
	return info.Name
}

// cardInfo returns the cached metadata registers while mounted.
func (c *Card) cardInfo() (sdmmc.CardInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Mounted {
		return sdmmc.CardInfo{}, false
	}
	return c.info, true
}
