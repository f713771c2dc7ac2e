package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbvlyon/visitsync/internal/reconcile"
)

// NewSpeakersCommand creates the speakers command group.
func NewSpeakersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speakers",
		Short: "Merge or delete speakers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "merge <primary-id> <duplicate-id>...",
		Short: "Fold duplicate speakers into one",
		Long: `Fold duplicate speakers into the primary one.

Tags and talk history are combined and every visit, scheduled or archived,
is moved to the primary speaker.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return apply(rootOpts, cmd, reconcile.MergeSpeakers(args[0], args[1:]),
				fmt.Sprintf("Merged %s into %s", strings.Join(args[1:], ", "), args[0]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a speaker and their scheduled visits",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return apply(rootOpts, cmd, reconcile.DeleteSpeaker(args[0]), "Deleted speaker "+args[0])
		},
	})

	return cmd
}
