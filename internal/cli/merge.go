package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbvlyon/visitsync/internal/ids"
	"github.com/kbvlyon/visitsync/internal/model"
	"github.com/kbvlyon/visitsync/internal/notify"
	"github.com/kbvlyon/visitsync/internal/reconcile"
	"github.com/kbvlyon/visitsync/internal/report"
	"github.com/kbvlyon/visitsync/internal/schema"
)

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	*RootOptions
	Output         string
	CrossPartition string
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MergeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "merge <current.json> <incoming.json>",
		Short: "Merge two snapshot files without touching the database",
		Long: `Merge incoming into current and write the result as a snapshot file.

Speakers and hosts are matched by normalized name, visits by speaker name
and date. Neither input file is modified.

Example:
  visitsync merge phone.json laptop.json -o merged.json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the merged snapshot to this file (default stdout)")
	cmd.Flags().StringVar(&opts.CrossPartition, "cross-partition", "", "keep-both|archived-wins (default from config)")

	return cmd
}

func runMerge(opts *MergeOptions, currentPath, incomingPath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return formatter.Fail(err)
	}
	policy := cfg.Import.CrossPartition
	if opts.CrossPartition != "" {
		policy = reconcile.CrossPartitionPolicy(opts.CrossPartition)
		if !reconcile.ValidCrossPartitionPolicies[policy] {
			return formatter.Fail(withCode(ErrCodeConfig, ExitCommandError, fmt.Errorf("unknown cross-partition policy %q", opts.CrossPartition)))
		}
	}

	v, err := schema.NewValidator()
	if err != nil {
		return formatter.Fail(err)
	}
	gen := opts.IDs
	if gen == nil {
		gen = ids.UUIDv7{}
	}
	repair := schema.RepairOptions{IDs: gen}

	var warnings []schema.Warning
	decode := func(path string) (*model.Snapshot, error) {
		data, err := readInput(path)
		if err != nil {
			return nil, err
		}
		snap, w, err := schema.Resolve(v.Decode(data, repair))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		warnings = append(warnings, w...)
		return snap, nil
	}
	current, err := decode(currentPath)
	if err != nil {
		return formatter.Fail(err)
	}
	incoming, err := decode(incomingPath)
	if err != nil {
		return formatter.Fail(err)
	}

	rec := &notify.Recorder{}
	asm := &reconcile.Assembler{
		IDs:            gen,
		Notifier:       rec,
		CrossPartition: policy,
		DefaultTime:    cfg.Import.DefaultTime,
	}
	res, err := asm.Assemble(current, incoming)
	if err != nil {
		return formatter.Fail(err)
	}

	var out bytes.Buffer
	if err := report.WriteJSON(&out, res.Snapshot); err != nil {
		return formatter.Fail(err)
	}
	if opts.Output == "" {
		// The merged file is the output; the summary goes to stderr.
		if _, err := cmd.OutOrStdout().Write(out.Bytes()); err != nil {
			return WrapExitError(ExitCommandError, "write output", err)
		}
		for _, m := range rec.Messages() {
			fmt.Fprintln(formatter.GetErrWriter(), m.Text)
		}
		return nil
	}
	if err := os.WriteFile(opts.Output, out.Bytes(), 0o600); err != nil {
		return formatter.Fail(withCode(ErrCodeWriteFailed, ExitCommandError, err))
	}

	return formatter.Render(map[string]any{
		"output":   opts.Output,
		"stats":    res.Stats,
		"warnings": warnings,
	}, func(w io.Writer) error {
		for _, warn := range warnings {
			fmt.Fprintf(w, "! %s\n", warn)
		}
		for _, m := range rec.Messages() {
			fmt.Fprintf(w, "%s\n", m.Text)
		}
		_, err := fmt.Fprintf(w, "✓ Merged snapshot written to %s\n", opts.Output)
		return err
	})
}
