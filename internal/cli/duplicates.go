package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbvlyon/visitsync/internal/dupes"
)

// DuplicatesResult is the JSON payload of the duplicates command.
type DuplicatesResult struct {
	Report      dupes.Report `json:"report"`
	Suggestions []string     `json:"suggestions"`
}

// NewDuplicatesCommand creates the duplicates command.
func NewDuplicatesCommand(rootOpts *RootOptions) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "List probable duplicate speakers, hosts and visits",
		Long: `List records that probably describe the same person or visit.

Names are compared after removing accents, case and punctuation; phone
numbers, photos and addresses are compared exactly. Nothing is changed:
use "speakers merge" or "hosts merge" to fold a group.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
				rep := dupes.Finder{Threshold: threshold}.Analyze(a.session.Current())
				res := DuplicatesResult{Report: rep, Suggestions: rep.Suggestions()}
				return f.Render(res, func(w io.Writer) error { return writeDuplicates(w, res) })
			})
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", dupes.DefaultThreshold, "minimum name similarity (0-100)")
	return cmd
}

func writeDuplicates(w io.Writer, res DuplicatesResult) error {
	if len(res.Suggestions) == 0 {
		_, err := fmt.Fprintln(w, "✓ No duplicates found")
		return err
	}
	for _, g := range res.Report.Speakers {
		names := make([]string, len(g.Items))
		for i, sp := range g.Items {
			names[i] = fmt.Sprintf("%s [%s]", sp.Nom, sp.ID)
		}
		fmt.Fprintf(w, "speakers %3.0f%%  %s  (%s)\n", g.Similarity, strings.Join(names, ", "), strings.Join(g.Reasons, ", "))
	}
	for _, g := range res.Report.Hosts {
		names := make([]string, len(g.Items))
		for i, h := range g.Items {
			names[i] = h.Nom
		}
		fmt.Fprintf(w, "hosts    %3.0f%%  %s  (%s)\n", g.Similarity, strings.Join(names, ", "), strings.Join(g.Reasons, ", "))
	}
	for _, g := range res.Report.Visits {
		ids := make([]string, len(g.Items))
		for i, v := range g.Items {
			ids[i] = v.VisitID
		}
		fmt.Fprintf(w, "visits   %s %s  %s\n", g.Items[0].Nom, g.Items[0].VisitDate, strings.Join(ids, ", "))
	}
	for _, s := range res.Suggestions {
		fmt.Fprintf(w, "! %s\n", s)
	}
	return nil
}
