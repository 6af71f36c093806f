package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cpCmd represents the cp command.
var cpCmd = &cobra.Command{
	Use:   "cp <host-src> <card-dst>",
	Short: "Copy a host file onto the card",
	Long: `Copy a file from the host filesystem onto the card. The destination
is a card path relative to the mount root.

Examples:
  sdmc cp ./track.mp3 music/track.mp3`,
	Args: cobra.ExactArgs(2),
	RunE: runCp,
}

func init() {
	rootCmd.AddCommand(cpCmd)
}

func runCp(cmd *cobra.Command, args []string) error {
	src, dst := args[0], args[1]

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}

	card, cleanup, err := openCard()
	if err != nil {
		return err
	}
	defer cleanup()

	if !card.WriteFile(dst, data) {
		return fmt.Errorf("write %s: card write failed", dst)
	}
	fmt.Printf("copied %s -> %s (%d bytes)\n", src, dst, len(data))
	return nil
}
