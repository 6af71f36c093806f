// Package cli provides the command-line interface for sdmc.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	sderrors "github.com/princespaghetti/sdmc/internal/errors"
)

// Version information (will be set by build flags in production).
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// cfgFile is the --config persistent flag value.
var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sdmc",
	Short: "SD card storage manager",
	Long: `sdmc manages a removable SD card attached to an embedded controller.

It brings the card online over the SDMMC bus, mounts its FAT filesystem,
and exposes file operations and capacity diagnostics. On machines without
card hardware it runs against a simulated or directory-backed card.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sdmc version %s\n", Version)
		fmt.Printf("  commit: %s\n", GitCommit)
		fmt.Printf("  built:  %s\n", BuildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default sdmc.yaml if present)")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and handles errors.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the CLI exit code taxonomy.
func exitCode(err error) int {
	var hw *sderrors.HardwareError
	switch {
	case errors.Is(err, sderrors.ErrInvalidConfig):
		return sderrors.ExitConfigError
	case errors.Is(err, sderrors.ErrUnformatted),
		errors.Is(err, sderrors.ErrMountTimeout),
		errors.Is(err, sderrors.ErrAlreadyMounted),
		errors.As(err, &hw):
		return sderrors.ExitMountError
	case errors.Is(err, sderrors.ErrNotMounted):
		return sderrors.ExitOperationError
	default:
		return sderrors.ExitGeneralError
	}
}
