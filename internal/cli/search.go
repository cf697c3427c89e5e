package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/slotscan/internal/search"
)

var (
	searchKindFlag  string
	searchLimitFlag int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Keyword search over classes and slots",
	Long: `Search runs a bleve query string query over the extracted classes and
slots. Fields: name, owner, form_name, file, kind.

Examples:
  slotscan search gauge
  slotscan search "owner:Gauge +kind:slot"
  slotscan search number --kind class --limit 5
`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchKindFlag, "kind", "k", "", "Restrict results to 'class' or 'slot'")
	searchCmd.Flags().IntVarP(&searchLimitFlag, "limit", "l", 15, "Maximum number of results (1-100)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if searchKindFlag != "" && searchKindFlag != search.KindClass && searchKindFlag != search.KindSlot {
		return fmt.Errorf("--kind must be %q or %q", search.KindClass, search.KindSlot)
	}

	p, err := loadProject("")
	if err != nil {
		return err
	}
	store, err := p.openStore(true)
	if err != nil {
		return err
	}
	defer store.DB().Close()

	index, err := search.Build(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to build search index: %w", err)
	}
	defer index.Close()

	hits, err := index.Search(ctx, args[0], &search.Options{Limit: searchLimitFlag, Kind: searchKindFlag})
	if err != nil {
		return err
	}
	printHits(cmd.OutOrStdout(), hits)
	return nil
}

func printHits(w io.Writer, hits []search.Hit) {
	if len(hits) == 0 {
		fmt.Fprintln(w, "No matches")
		return
	}
	for _, h := range hits {
		switch h.Kind {
		case search.KindSlot:
			fmt.Fprintf(w, "slot   %s.%s\n", h.Owner, h.Name)
		default:
			if h.FormName != "" {
				fmt.Fprintf(w, "class  %s (%s)\n", h.Name, h.FormName)
			} else {
				fmt.Fprintf(w, "class  %s\n", h.Name)
			}
		}
	}
}
