package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbvlyon/visitsync/internal/ids"
	"github.com/kbvlyon/visitsync/internal/model"
	"github.com/kbvlyon/visitsync/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                     `json:"valid"`
	Counts   model.Counts             `json:"counts"`
	Errors   []schema.ValidationError `json:"errors,omitempty"`
	Warnings []schema.Warning         `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <snapshot.json>",
		Short: "Check an exported snapshot file without importing it",
		Long: `Check that a snapshot file can be imported.

Reports schema errors that would reject the import and the repairs
(dropped records, duplicate names) an import would apply.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	data, err := readInput(path)
	if err != nil {
		return formatter.Fail(err)
	}
	formatter.VerboseLog("Read %d bytes from %s", len(data), path)

	v, err := schema.NewValidator()
	if err != nil {
		return formatter.Fail(err)
	}

	switch r := v.Decode(data, schema.RepairOptions{IDs: ids.NewSequence("new")}).(type) {
	case schema.Valid:
		result := ValidationResult{Valid: true, Counts: r.Snapshot.Counts(), Warnings: r.Warnings}
		return formatter.Render(result, func(w io.Writer) error {
			for _, warn := range r.Warnings {
				fmt.Fprintf(w, "! %s\n", warn)
			}
			c := result.Counts
			_, err := fmt.Fprintf(w, "✓ Snapshot valid: %d speakers, %d hosts, %d visits, %d archived\n",
				c.Speakers, c.Hosts, c.Visits, c.Archived)
			return err
		})
	case schema.Invalid:
		return formatter.Fail(r.Err())
	default:
		return formatter.Fail(fmt.Errorf("unexpected schema result %T", r))
	}
}

// readInput reads a file, mapping a missing file to ErrCodeNotFound.
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, withCode(ErrCodeNotFound, ExitCommandError, fmt.Errorf("file not found: %s", path))
	}
	if err != nil {
		return nil, withCode(ErrCodeNotFound, ExitCommandError, err)
	}
	return data, nil
}
