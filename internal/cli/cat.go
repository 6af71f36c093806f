package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// catChunkSize bounds the buffer used to stream card files to stdout, so
// large media files are never fully buffered.
const catChunkSize = 32 * 1024

// catCmd represents the cat command.
var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Stream a card file to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runCat,
}

func init() {
	rootCmd.AddCommand(catCmd)
}

func runCat(cmd *cobra.Command, args []string) error {
	card, cleanup, err := openCard()
	if err != nil {
		return err
	}
	defer cleanup()

	var writeErr error
	ok := card.ReadFileChunked(args[0], catChunkSize, func(chunk []byte) bool {
		_, writeErr = os.Stdout.Write(chunk)
		return writeErr == nil
	})
	if writeErr != nil {
		return fmt.Errorf("write stdout: %w", writeErr)
	}
	if !ok {
		return fmt.Errorf("read %s: no such file or read failed", args[0])
	}
	return nil
}
