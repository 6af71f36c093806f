package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var benchSizeKB int

// benchCmd represents the bench command.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure card write/read throughput",
	Long: `Write then read a temporary file, timing each phase. The temporary
file uses a reserved name at the mount root and is always removed.

Examples:
  sdmc bench
  sdmc bench --size-kb 4096`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().IntVar(&benchSizeKB, "size-kb", 1024, "Test file size in KiB")
}

func runBench(cmd *cobra.Command, args []string) error {
	card, cleanup, err := openCard()
	if err != nil {
		return err
	}
	defer cleanup()

	res, ok := card.ThroughputTest(benchSizeKB)
	if !ok {
		return fmt.Errorf("throughput test failed (size %d KiB)", benchSizeKB)
	}

	fmt.Printf("Throughput (%d KiB):\n", benchSizeKB)
	fmt.Printf("  Write: %.1f KB/s (%s)\n", res.WriteKBps, res.WriteDuration)
	fmt.Printf("  Read:  %.1f KB/s (%s)\n", res.ReadKBps, res.ReadDuration)
	return nil
}
