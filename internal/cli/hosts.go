package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbvlyon/visitsync/internal/reconcile"
)

// NewHostsCommand creates the hosts command group.
func NewHostsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hosts",
		Short: "Rename, merge or delete hosts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "rename <old-name> <new-name>",
		Short:         "Rename a host and update their visits",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return apply(rootOpts, cmd, reconcile.RenameHost(args[0], args[1]),
				fmt.Sprintf("Renamed %s to %s", args[0], args[1]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "merge <primary-name> <duplicate-name>...",
		Short:         "Fold duplicate hosts into one",
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return apply(rootOpts, cmd, reconcile.MergeHosts(args[0], args[1:]),
				fmt.Sprintf("Merged %s into %s", strings.Join(args[1:], ", "), args[0]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "delete <name>",
		Short:         "Delete a host; their scheduled visits become unassigned",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return apply(rootOpts, cmd, reconcile.DeleteHost(args[0]), "Deleted host "+args[0])
		},
	})

	return cmd
}
