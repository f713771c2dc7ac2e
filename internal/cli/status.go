package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbvlyon/visitsync/internal/dupes"
	"github.com/kbvlyon/visitsync/internal/report"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "status",
		Short:         "Show counts, upcoming visits and data issues",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				sum := report.Summarize(a.session.Current(), report.Today(rootOpts.now()), dupes.Finder{})
				return f.Render(sum, func(w io.Writer) error { return report.WriteText(w, sum) })
			})
		},
	}
	return cmd
}
