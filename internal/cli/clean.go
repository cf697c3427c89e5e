package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/slotscan/internal/storage"
)

var cleanQuietFlag bool

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clear the extracted tables",
	Long: `Clean deletes every class, slot and slot type from the database. The run
history and the configuration file (.slotscan/config.yml) are preserved.

Examples:
  slotscan clean
  slotscan clean --quiet
`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanQuietFlag, "quiet", "q", false, "Suppress output messages")
}

func runClean(cmd *cobra.Command, args []string) error {
	p, err := loadProject("")
	if err != nil {
		return err
	}
	return executeClean(context.Background(), p.databasePath(), cmd.OutOrStdout(), cleanQuietFlag)
}

// executeClean clears the tables of the database at path. A missing database
// is not an error.
func executeClean(ctx context.Context, path string, out io.Writer, quiet bool) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if !quiet {
			fmt.Fprintln(out, "No database found for this project")
		}
		return nil
	}

	db, err := storage.Open(path, false)
	if err != nil {
		return err
	}
	defer db.Close()
	store := storage.NewStore(db)

	counts, err := store.Counts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count rows: %w", err)
	}
	if err := store.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear tables: %w", err)
	}

	if !quiet {
		fmt.Fprintf(out, "✓ Cleared %s classes, %s slots and %s slot types\n",
			formatNumber(counts.Classes), formatNumber(counts.Slots), formatNumber(counts.SlotTypes))
		fmt.Fprintln(out, "Next 'slotscan parse' will rebuild the tables")
	}
	return nil
}
