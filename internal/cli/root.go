package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath  string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "slotscan",
	Short: "Slotscan - extract class hierarchies and slot tables from C++ sources",
	Long: `Slotscan scans a C++ source tree that follows the object/slot-table
conventions (BEGIN_SLOTTABLE, ON_SLOT, IMPLEMENT_SUBCLASS) and records every
class, its base class, its slots and the class types each slot accepts in a
SQLite database.

Configuration is read from .slotscan/config.yml in the scanned directory and
from SLOTSCAN_* environment variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default is <dir>/.slotscan/slotscan.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
