package storage

import (
	"time"

	"github.com/princespaghetti/sdmc/internal/sdmmc"
)

// CardClass is the derived card classification.
type CardClass int

const (
	ClassUnknown CardClass = iota
	ClassSDSC
	ClassSDHC
	ClassSDXC
	ClassMMC
	ClassSDIO
)

// String implements fmt.Stringer.
func (c CardClass) String() string {
	switch c {
	case ClassSDSC:
		return "SDSC"
	case ClassSDHC:
		return "SDHC"
	case ClassSDXC:
		return "SDXC"
	case ClassMMC:
		return "MMC"
	case ClassSDIO:
		return "SDIO"
	default:
		return "Unknown"
	}
}

// sdxcThreshold separates SDHC from SDXC among high-capacity cards.
const sdxcThreshold = 32 << 30

// benchFileName is the reserved temporary file used by ThroughputTest. It
// lives at the mount root and must not collide with user files.
const benchFileName = ".sdmc-bench.tmp"

// CapacityBytes returns sector count × sector size from the cached card
// metadata, 0 if not mounted.
func (c *Card) CapacityBytes() uint64 {
	info, ok := c.cardInfo()
	if !ok {
		return 0
	}
	return info.CapacityBytes()
}

// FreeBytes returns the filesystem free space from the driver's free-cluster
// query, 0 if not mounted or the query fails.
func (c *Card) FreeBytes() uint64 {
	if !c.IsMounted() {
		return 0
	}
	free, err := c.driver.FreeBytes()
	if err != nil {
		c.log.Error("query free space", "error", err)
		return 0
	}
	return free
}

// UsedBytes returns capacity minus free space, clamped at zero in case
// driver rounding reports more free space than capacity.
func (c *Card) UsedBytes() uint64 {
	capacity := c.CapacityBytes()
	free := c.FreeBytes()
	if capacity <= free {
		return 0
	}
	return capacity - free
}

// UsagePercent returns used space as a percentage of capacity, 0 when
// capacity is 0.
func (c *Card) UsagePercent() float64 {
	capacity := c.CapacityBytes()
	if capacity == 0 {
		return 0
	}
	return float64(c.UsedBytes()) / float64(capacity) * 100
}

// CardClass classifies the card from its capacity and the high-capacity bit
// of the operating conditions register.
func (c *Card) CardClass() CardClass {
	info, ok := c.cardInfo()
	if !ok {
		return ClassUnknown
	}
	switch {
	case info.IsSDIO:
		return ClassSDIO
	case info.IsMMC:
		return ClassMMC
	case info.OCR&sdmmc.OCRHighCapacity != 0:
		if info.CapacityBytes() > sdxcThreshold {
			return ClassSDXC
		}
		return ClassSDHC
	default:
		return ClassSDSC
	}
}

// ThroughputResult reports the timings of a throughput test.
type ThroughputResult struct {
	SizeBytes     int
	WriteDuration time.Duration
	ReadDuration  time.Duration
	WriteKBps     float64
	ReadKBps      float64
}

// ThroughputTest writes then reads a temporary file of sizeKB kibibytes,
// timing each phase with the monotonic clock. The temporary file is removed
// unconditionally, even on failure. Returns false if either phase's byte
// count mismatches the request.
func (c *Card) ThroughputTest(sizeKB int) (ThroughputResult, bool) {
	res := ThroughputResult{SizeBytes: sizeKB * 1024}
	if sizeKB <= 0 || !c.IsMounted() {
		return res, false
	}

	data := make([]byte, sizeKB*1024)
	for i := range data {
		data[i] = byte(i)
	}
	defer c.DeleteFile(benchFileName)

	start := time.Now()
	if !c.WriteFile(benchFileName, data) {
		return res, false
	}
	res.WriteDuration = time.Since(start)

	var got int
	start = time.Now()
	ok := c.ReadFileChunked(benchFileName, 32*1024, func(chunk []byte) bool {
		got += len(chunk)
		return true
	})
	res.ReadDuration = time.Since(start)
	if !ok || got != len(data) {
		return res, false
	}

	if s := res.WriteDuration.Seconds(); s > 0 {
		res.WriteKBps = float64(sizeKB) / s
	}
	if s := res.ReadDuration.Seconds(); s > 0 {
		res.ReadKBps = float64(sizeKB) / s
	}
	return res, true
}
