package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbvlyon/visitsync/internal/report"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the planning as a snapshot file or an XLSX workbook",
		Long: `Export the stored planning.

A path ending in .xlsx produces a workbook with the scheduled and archived
visits; any other path produces a snapshot file that can be imported on
another device. Use - to write the snapshot to stdout.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				snap := a.session.Current()
				if path == "-" {
					return report.WriteJSON(cmd.OutOrStdout(), snap)
				}

				var buf bytes.Buffer
				var err error
				kind := "snapshot"
				if strings.EqualFold(filepath.Ext(path), ".xlsx") {
					kind = "workbook"
					err = report.WriteXLSX(&buf, snap)
				} else {
					err = report.WriteJSON(&buf, snap)
				}
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
					return withCode(ErrCodeWriteFailed, ExitCommandError, err)
				}
				return f.Render(map[string]any{"path": path, "kind": kind, "counts": snap.Counts()},
					okLine("Exported %s to %s", kind, path))
			})
		},
	}
	return cmd
}
