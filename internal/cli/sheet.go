package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbvlyon/visitsync/internal/logging"
	"github.com/kbvlyon/visitsync/internal/sheets"
)

// NewSheetCommand creates the sheet command group.
func NewSheetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Synchronize with the published planning spreadsheet",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Merge the visits of every configured sheet tab",
		Long: `Download every tab listed under sheets.tabs in the config as CSV and
merge its rows into the planning like an import.

Only rows with a speaker and a date are used. Fields the sheet does not
carry keep their stored value.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				sc := a.cfg.Sheets
				if sc.SheetID == "" || len(sc.Tabs) == 0 {
					return withCode(ErrCodeConfig, ExitCommandError, errors.New("sheets.sheet_id and sheets.tabs must be configured"))
				}
				client := sheets.NewClient(sc.BaseURL, sc.SheetID, logging.Component(a.log, "sheets"))
				f.VerboseLog("Fetching %d tab(s) from sheet %s", len(sc.Tabs), sc.SheetID)

				res, err := sheets.Sync(ctx, client, sc.Tabs, a.session)
				if err != nil {
					if res == nil {
						return withCode(ErrCodeSheetFetch, ExitCommandError, err)
					}
					return err
				}
				return f.Render(res, func(w io.Writer) error {
					if res.Skipped > 0 {
						fmt.Fprintf(w, "! %d row(s) without a readable date skipped\n", res.Skipped)
					}
					if res.Import != nil {
						return importText(res.Import)(w)
					}
					return nil
				})
			})
		},
	})

	return cmd
}
