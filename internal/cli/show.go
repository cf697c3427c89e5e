package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/slotscan/internal/extract"
	"github.com/mvp-joe/slotscan/internal/hierarchy"
	"github.com/mvp-joe/slotscan/internal/storage"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [class]",
	Short: "List every class with its slots and the types each slot accepts",
	Long: `Show prints the extracted tables of the current directory's database:
each class with its form name and header, every slot of the class and the
class types the slot accepts.

Examples:
  # All classes
  slotscan show

  # One class
  slotscan show Eaagles::Instruments::Gauge
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
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

	snap, err := store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to read tables: %w", err)
	}
	return renderSnapshot(cmd.OutOrStdout(), snap, firstArg(args))
}

// renderSnapshot writes classes in id order, each followed by its slots in
// slot id order and the accepted types of every slot. A non-empty className
// limits the output to that class.
func renderSnapshot(w io.Writer, snap *storage.Snapshot, className string) error {
	byID := make(map[int64]extract.ClassRecord, len(snap.Classes))
	for _, c := range snap.Classes {
		byID[c.ID] = c
	}
	slotsOf := make(map[int64][]extract.SlotRecord)
	for _, s := range snap.Slots {
		slotsOf[s.ParentClassID] = append(slotsOf[s.ParentClassID], s)
	}
	typesOf := make(map[int64][]int64)
	for _, st := range snap.SlotTypes {
		typesOf[st.SlotID] = append(typesOf[st.SlotID], st.ClassID)
	}

	found := false
	for _, c := range snap.Classes {
		if className != "" && c.QualifiedName != className {
			continue
		}
		if found && className != "" {
			// Duplicate names render the lowest id only.
			break
		}
		found = true

		line := fmt.Sprintf("%s [%s]", c.QualifiedName, c.SourceFile)
		if c.FormName != nil {
			line = fmt.Sprintf("%s (%s) [%s]", c.QualifiedName, *c.FormName, c.SourceFile)
		}
		if c.BaseClassID != nil {
			if base, ok := byID[*c.BaseClassID]; ok {
				line += " : " + base.QualifiedName
			}
		}
		fmt.Fprintln(w, line)

		for _, s := range slotsOf[c.ID] {
			fmt.Fprintf(w, "  %d %s\n", s.SlotID, s.SlotName)
			for _, typeID := range typesOf[s.SlotID] {
				if t, ok := byID[typeID]; ok {
					fmt.Fprintf(w, "      %s\n", t.QualifiedName)
				}
			}
		}
	}

	if className != "" && !found {
		return fmt.Errorf("%s: %w", className, hierarchy.ErrClassNotFound)
	}
	return nil
}
