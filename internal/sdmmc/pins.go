package sdmmc

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var (
	hostOnce    sync.Once
	hostInitErr error
)

// initHost initializes the periph.io host drivers exactly once.
func initHost() error {
	hostOnce.Do(func() {
		_, hostInitErr = host.Init()
	})
	return hostInitErr
}

// ValidateLines checks that the given resolved line identifiers exist in the
// controller's GPIO registry. Lines set to LineUnset are skipped. On targets
// without a periph.io host driver the registry is empty and validation is a
// no-op, so simulated and directory-backed cards keep working in CI.
func ValidateLines(lines ...int) error {
	if err := initHost(); err != nil {
		return fmt.Errorf("gpio host init: %w", err)
	}
	if len(gpioreg.All()) == 0 {
		return nil
	}
	for _, n := range lines {
		if n == LineUnset {
			continue
		}
		name := fmt.Sprintf("GPIO%d", n)
		if p := gpioreg.ByName(name); p == nil {
			return fmt.Errorf("line %s not present on this controller", name)
		}
	}
	return nil
}
