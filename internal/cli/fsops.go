package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rmCmd represents the rm command.
var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Delete a card file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		card, cleanup, err := openCard()
		if err != nil {
			return err
		}
		defer cleanup()

		if !card.DeleteFile(args[0]) {
			return fmt.Errorf("delete %s: no such file or delete failed", args[0])
		}
		return nil
	},
}

// mvCmd represents the mv command.
var mvCmd = &cobra.Command{
	Use:   "mv <old> <new>",
	Short: "Rename a card file or directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		card, cleanup, err := openCard()
		if err != nil {
			return err
		}
		defer cleanup()

		if !card.RenameFile(args[0], args[1]) {
			return fmt.Errorf("rename %s -> %s failed", args[0], args[1])
		}
		return nil
	},
}

// mkdirCmd represents the mkdir command.
var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a card directory",
	Long:  `Create a directory on the card. Already existing directories count as success.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		card, cleanup, err := openCard()
		if err != nil {
			return err
		}
		defer cleanup()

		if !card.CreateDir(args[0]) {
			return fmt.Errorf("mkdir %s failed", args[0])
		}
		return nil
	},
}

// rmdirCmd represents the rmdir command.
var rmdirCmd = &cobra.Command{
	Use:   "rmdir <path>",
	Short: "Remove an empty card directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		card, cleanup, err := openCard()
		if err != nil {
			return err
		}
		defer cleanup()

		if !card.RemoveDir(args[0]) {
			return fmt.Errorf("rmdir %s: not empty or remove failed", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(rmdirCmd)
}
