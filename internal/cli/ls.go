package cli

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var lsLong bool

// lsCmd represents the ls command.
var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a directory on the card",
	Long: `List the entries of a card directory. Paths are relative to the
mount root; the default is the root itself.

Examples:
  sdmc ls
  sdmc ls music
  sdmc ls --long music`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false, "Show sizes and modification times")
}

func runLs(cmd *cobra.Command, args []string) error {
	path := "/"
	if len(args) == 1 {
		path = args[0]
	}

	card, cleanup, err := openCard()
	if err != nil {
		return err
	}
	defer cleanup()

	entries := card.ListDir(path)
	if entries == nil && !card.FileExists(path) {
		return fmt.Errorf("list %s: no such directory", path)
	}

	// Driver enumeration order is unspecified; sort for stable display.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	for _, e := range entries {
		if !lsLong {
			fmt.Println(e.Name)
			continue
		}
		kind := "-"
		if e.IsDir {
			kind = "d"
		}
		modified := "-"
		if !e.Modified.IsZero() {
			modified = e.Modified.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%s  %10s  %s  %s\n", kind, humanize.IBytes(uint64(e.Size)), modified, e.Name)
	}
	return nil
}
