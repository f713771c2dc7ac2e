package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kbvlyon/visitsync/internal/model"
	"github.com/kbvlyon/visitsync/internal/reconcile"
)

// NewTalksCommand creates the talks command group.
func NewTalksCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "talks",
		Short: "Maintain the public talk catalogue",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "add <number> <theme>",
		Short:         "Add a talk; non-numeric numbers are special talk codes",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			talk := model.Talk{Number: parseTalkNumber(args[0]), Theme: args[1]}
			return apply(rootOpts, cmd, reconcile.AddTalk(talk), "Added talk "+args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "delete <number>",
		Short:         "Delete a talk no visit refers to",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return apply(rootOpts, cmd, reconcile.DeleteTalk(args[0]), "Deleted talk "+args[0])
		},
	})

	return cmd
}

func parseTalkNumber(s string) model.TalkNumber {
	if n, err := strconv.Atoi(s); err == nil {
		return model.NumberedTalk(n)
	}
	return model.CodedTalk(s)
}
