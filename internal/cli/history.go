package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List recent saves of the planning",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				st, err := a.requireStore()
				if err != nil {
					return err
				}
				revs, err := st.Revisions(ctx, limit)
				if err != nil {
					return err
				}
				return f.Render(revs, func(w io.Writer) error {
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "REV\tSAVED\tSPEAKERS\tHOSTS\tVISITS\tARCHIVED")
					for _, r := range revs {
						fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\n", r.Revision, r.SavedAt.Format(time.DateTime),
							r.Counts.Speakers, r.Counts.Hosts, r.Counts.Visits, r.Counts.Archived)
					}
					return tw.Flush()
				})
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of revisions to show")
	return cmd
}
