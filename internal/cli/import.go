package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbvlyon/visitsync/internal/session"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <snapshot.json>",
		Short: "Merge an exported snapshot file into the stored planning",
		Long: `Merge a snapshot file exported from another device into the stored
planning. A backup of the current state is taken first.

Records are matched by identity, never duplicated: importing the same
file twice leaves the planning unchanged.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				if _, err := readInput(args[0]); err != nil {
					return err
				}
				rep, err := a.session.ImportFile(ctx, args[0])
				if err != nil {
					return err
				}
				return f.Render(rep, importText(rep))
			})
		},
	}
	return cmd
}

func importText(rep *session.ImportReport) func(w io.Writer) error {
	return func(w io.Writer) error {
		for _, warn := range rep.Warnings {
			fmt.Fprintf(w, "! %s\n", warn)
		}
		if rep.Backup != nil {
			fmt.Fprintf(w, "Backup #%d taken before import\n", rep.Backup.ID)
		}
		if rep.Stats.CrossPartition > 0 {
			fmt.Fprintf(w, "! %d visit(s) both scheduled and archived\n", rep.Stats.CrossPartition)
		}
		_, err := fmt.Fprintf(w, "✓ Imported: %s\n", rep.Stats.Summary())
		return err
	}
}
