package storage

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Describe returns a human-readable dump of the configuration and, when
// mounted, the card identity and usage. A diagnostics sink, not part of the
// core contract.
func (c *Card) Describe() string {
	cfg := c.cfg
	var b strings.Builder

	fmt.Fprintf(&b, "SD Card (SDMMC mode):\n")
	fmt.Fprintf(&b, "  CLK Line: GPIO%d\n", cfg.CLKLine)
	fmt.Fprintf(&b, "  CMD Line: GPIO%d\n", cfg.CMDLine)
	fmt.Fprintf(&b, "  DATA0 Line: GPIO%d\n", cfg.Data0Line)
	if cfg.BusWidth == 4 {
		fmt.Fprintf(&b, "  DATA1 Line: GPIO%d\n", cfg.Data1Line)
		fmt.Fprintf(&b, "  DATA2 Line: GPIO%d\n", cfg.Data2Line)
		fmt.Fprintf(&b, "  DATA3 Line: GPIO%d\n", cfg.Data3Line)
	}
	fmt.Fprintf(&b, "  Mount Root: %s\n", cfg.MountRoot)
	fmt.Fprintf(&b, "  Bus Width: %d-bit\n", cfg.BusWidth)
	fmt.Fprintf(&b, "  Max Clock: %d kHz\n", cfg.ClockKHz)
	fmt.Fprintf(&b, "  Status: %s\n", c.State())

	info, ok := c.cardInfo()
	if !ok {
		return b.String()
	}

	fmt.Fprintf(&b, "  Card: %s (%s)\n", info.Name, c.CardClass())
	fmt.Fprintf(&b, "  Capacity: %s\n", humanize.IBytes(c.CapacityBytes()))
	fmt.Fprintf(&b, "  Used: %s (%.1f%%)\n", humanize.IBytes(c.UsedBytes()), c.UsagePercent())
	fmt.Fprintf(&b, "  Free: %s\n", humanize.IBytes(c.FreeBytes()))
	return b.String()
}
