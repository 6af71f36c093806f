package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusJSON bool

// statusCmd represents the status command.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display card configuration and usage",
	Long: `Display the bus configuration, mount state, and card diagnostics.

Shows:
  - Configured bus lines, width, and clock
  - Mount state
  - Card identity and class
  - Capacity, used and free space

Examples:
  sdmc status
  sdmc status --json`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
}

// StatusOutput represents the structured output of the status command.
type StatusOutput struct {
	MountRoot     string  `json:"mount_root"`
	BusWidth      int     `json:"bus_width"`
	ClockKHz      int     `json:"clock_khz"`
	State         string  `json:"state"`
	CardName      string  `json:"card_name,omitempty"`
	CardClass     string  `json:"card_class,omitempty"`
	CapacityBytes uint64  `json:"capacity_bytes"`
	UsedBytes     uint64  `json:"used_bytes"`
	FreeBytes     uint64  `json:"free_bytes"`
	UsagePercent  float64 `json:"usage_percent"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	card, cleanup, err := openCard()
	if err != nil {
		return err
	}
	defer cleanup()

	if statusJSON {
		cfg := card.Config()
		status := StatusOutput{
			MountRoot:     cfg.MountRoot,
			BusWidth:      cfg.BusWidth,
			ClockKHz:      cfg.ClockKHz,
			State:         card.State().String(),
			CapacityBytes: card.CapacityBytes(),
			UsedBytes:     card.UsedBytes(),
			FreeBytes:     card.FreeBytes(),
			UsagePercent:  card.UsagePercent(),
		}
		if card.IsMounted() {
			status.CardName = card.CardName()
			status.CardClass = card.CardClass().String()
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(status)
	}

	fmt.Print(card.Describe())
	return nil
}
