package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbvlyon/visitsync/internal/model"
	"github.com/kbvlyon/visitsync/internal/reconcile"
)

// NewVisitsCommand creates the visits command group.
func NewVisitsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visits",
		Short: "Complete visits, log messages and clean the archive",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "complete <visit-id>",
		Short:         "Archive a visit and add it to the speaker's talk history",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return apply(rootOpts, cmd, reconcile.CompleteVisit(args[0]), "Completed visit "+args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "log <visit-id> <message-type> <role>",
		Short: "Record that a message was sent for a visit",
		Long: `Record that a message was sent for a visit, with the current time.

Logging the "preparation" message for the "host" role confirms a pending
visit.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return apply(rootOpts, cmd, reconcile.LogCommunication(args[0], args[1], args[2], rootOpts.now()),
				fmt.Sprintf("Logged %s/%s for visit %s", args[1], args[2], args[0]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "dedupe-archive",
		Short:         "Remove archived visits sharing a visit id",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				removed := 0
				err := a.session.Apply(ctx, func(s *model.Snapshot) (*model.Snapshot, error) {
					out, n := reconcile.DedupeArchive(s)
					removed = n
					return out, nil
				})
				if err != nil {
					return err
				}
				return f.Render(map[string]int{"removed": removed},
					okLine("Removed %d duplicate archived visit(s)", removed))
			})
		},
	})

	return cmd
}
