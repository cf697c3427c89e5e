package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/slotscan/internal/hierarchy"
)

// hierarchyCmd represents the hierarchy command
var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy [class]",
	Short: "Print the inheritance tree",
	Long: `Hierarchy prints every class without a resolved base as a root, with the
classes derived from it indented below. Given a class name, only that class
and its descendants are printed.

Examples:
  slotscan hierarchy
  slotscan hierarchy Eaagles::Basic::Object
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHierarchy,
}

func init() {
	rootCmd.AddCommand(hierarchyCmd)
}

func runHierarchy(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := loadProject("")
	if err != nil {
		return err
	}
	store, err := p.openStore(true)
	if err != nil {
		return err
	}
	defer store.DB().Close()

	g, err := hierarchy.Build(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to build hierarchy: %w", err)
	}
	return g.Render(cmd.OutOrStdout(), firstArg(args))
}
