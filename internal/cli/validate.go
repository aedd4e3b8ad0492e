package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/unidir/internal/harness"
)

// FileValidation is the validation outcome of one scenario file.
type FileValidation struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Check scenario files against the schema",
		Long: `Check scenario files against the embedded CUE schema without running them.

Faster than test for editing feedback. Unknown apps and action names are
only detected by test.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(paths))}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("cannot read %s", path), err)
		}

		formatter.VerboseLog("validating %s", path)
		fv := FileValidation{Path: path, Valid: true}
		if err := harness.ValidateSchema(data); err != nil {
			fv.Valid = false
			var schemaErr *harness.SchemaError
			if errors.As(err, &schemaErr) {
				fv.Error = schemaErr.Message
			} else {
				fv.Error = err.Error()
			}
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if formatter.JSON() {
		if !result.Valid {
			if err := formatter.Failure(result, ErrCodeInvalidSchema, "schema validation failed"); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "schema validation failed")
		}
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	for _, fv := range result.Files {
		if fv.Valid {
			fmt.Fprintf(w, "✓ %s\n", fv.Path)
		} else {
			fmt.Fprintf(w, "✗ %s\n  %s\n", fv.Path, fv.Error)
		}
	}
	if !result.Valid {
		return NewExitError(ExitFailure, "schema validation failed")
	}
	return nil
}
