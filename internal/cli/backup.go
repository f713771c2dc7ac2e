package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbvlyon/visitsync/internal/store"
)

// NewBackupCommand creates the backup command group.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "List, create and restore backups",
		Long: `Backups are full copies of the planning with a checksum. One is taken
automatically before every import; only the most recent ones are kept
(backups.max in the config).`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List backups, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				st, err := a.requireStore()
				if err != nil {
					return err
				}
				backups, err := st.ListBackups(ctx)
				if err != nil {
					return err
				}
				return f.Render(backups, func(w io.Writer) error { return writeBackups(w, backups) })
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "create",
		Short:         "Back up the current planning",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				st, err := a.requireStore()
				if err != nil {
					return err
				}
				b, err := st.CreateBackup(ctx, a.session.Current(), true)
				if err != nil {
					return err
				}
				return f.Render(b, okLine("Backup #%d created", b.ID))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "restore <id>",
		Short: "Replace the planning with a backup",
		Long: `Replace the planning with the content of a backup after checking its
checksum. The state being replaced is backed up first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return rootOpts.formatter(cmd).Fail(withCode(ErrCodeGeneric, ExitCommandError, fmt.Errorf("backup id must be a number: %q", args[0])))
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				st, err := a.requireStore()
				if err != nil {
					return err
				}
				snap, err := st.RestoreBackup(ctx, id)
				if err != nil {
					return err
				}
				if _, err := st.CreateBackup(ctx, a.session.Current(), false); err != nil {
					a.log.Warn().Err(err).Msg("backup before restore failed")
				}
				if err := a.session.Replace(ctx, snap); err != nil {
					return err
				}
				return f.Render(map[string]any{"restored": id, "counts": snap.Counts()},
					okLine("Restored backup #%d", id))
			})
		},
	})

	return cmd
}

func writeBackups(w io.Writer, backups []store.Backup) error {
	if len(backups) == 0 {
		_, err := fmt.Fprintln(w, "No backups")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tKIND\tSPEAKERS\tVISITS\tARCHIVED")
	for _, b := range backups {
		kind := "auto"
		if b.Manual {
			kind = "manual"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\n",
			b.ID, b.CreatedAt.Format(time.DateTime), kind, b.Counts.Speakers, b.Counts.Visits, b.Counts.Archived)
	}
	return tw.Flush()
}
