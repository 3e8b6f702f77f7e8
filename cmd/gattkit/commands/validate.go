package commands

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/gattkit/gattkit-go/pkg/spec"
	"github.com/gattkit/gattkit-go/pkg/specparse"
)

// ValidateOptions configures the validate command.
type ValidateOptions struct {
	Strict  bool
	JSON    bool
	Verbose bool
	Files   []string
}

// ValidationOutput represents the validation result for a file.
type ValidationOutput struct {
	Valid          bool          `json:"valid"`
	Characteristic string        `json:"characteristic,omitempty"`
	UUID           string        `json:"uuid,omitempty"`
	Flags          []string      `json:"flags,omitempty"`
	OpCodes        []string      `json:"op_codes,omitempty"`
	Errors         []IssueOutput `json:"errors,omitempty"`
	Warnings       []IssueOutput `json:"warnings,omitempty"`
}

// IssueOutput represents a validation issue.
type IssueOutput struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// RunValidate runs the validate command over files and directories of
// characteristic specifications.
func RunValidate(args []string, stdout, stderr io.Writer) int {
	opts, err := parseValidateArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if len(opts.Files) == 0 {
		fmt.Fprintln(stderr, "Error: no files specified")
		printValidateUsage(stderr)
		return exitCommandError
	}

	files, err := expandDocuments(opts.Files)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	hasErrors := false
	results := make(map[string]*ValidationOutput)

	for _, file := range files {
		result := validateFile(file, opts)
		results[file] = result

		if !result.Valid {
			hasErrors = true
		}

		if !opts.JSON {
			printValidationResult(stdout, file, result, opts.Verbose)
		}
	}

	if opts.JSON {
		if err := writeJSON(stdout, results); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
	}

	if hasErrors {
		return exitValidation
	}
	return exitSuccess
}

// expandDocuments replaces directories by the specification files they
// contain.
func expandDocuments(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		var docs []string
		for _, e := range entries {
			if !e.IsDir() && specparse.IsDocument(e.Name()) {
				docs = append(docs, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(docs)
		out = append(out, docs...)
	}
	return out, nil
}

func validateFile(path string, opts ValidateOptions) *ValidationOutput {
	output := &ValidationOutput{Valid: true}

	ch, err := specparse.LoadCharacteristic(path)
	if err != nil {
		output.Valid = false
		output.Errors = append(output.Errors, IssueOutput{
			Code:    "PARSE",
			Message: err.Error(),
		})
		return output
	}

	output.Characteristic = ch.Name()
	output.UUID = ch.UUID()
	output.Flags = spec.AllFlags(ch.FlagsField()).Sorted()
	output.OpCodes = spec.AllOpCodes(ch.OpCodesField()).Sorted()

	for _, issue := range spec.Validate(ch) {
		out := IssueOutput{Code: issue.Code, Field: issue.Field, Message: issue.Message}
		if issue.Severity == spec.SeverityError {
			output.Errors = append(output.Errors, out)
		} else {
			output.Warnings = append(output.Warnings, out)
		}
	}

	output.Valid = len(output.Errors) == 0 && (!opts.Strict || len(output.Warnings) == 0)
	return output
}

func printValidationResult(w io.Writer, file string, result *ValidationOutput, verbose bool) {
	if result.Valid && len(result.Errors) == 0 && len(result.Warnings) == 0 {
		fmt.Fprintf(w, "%s: OK\n", file)
	} else if result.Valid {
		fmt.Fprintf(w, "%s: OK (with %d warnings)\n", file, len(result.Warnings))
	} else {
		fmt.Fprintf(w, "%s: FAILED (%d errors, %d warnings)\n", file, len(result.Errors), len(result.Warnings))
	}

	if verbose || !result.Valid {
		for _, e := range result.Errors {
			printIssue(w, "ERROR", e)
		}
	}

	if verbose {
		for _, warn := range result.Warnings {
			printIssue(w, "WARNING", warn)
		}
		if len(result.Flags) > 0 {
			fmt.Fprintf(w, "  flags:    %v\n", result.Flags)
		}
		if len(result.OpCodes) > 0 {
			fmt.Fprintf(w, "  op codes: %v\n", result.OpCodes)
		}
	}
}

func printIssue(w io.Writer, severity string, issue IssueOutput) {
	if issue.Field != "" {
		fmt.Fprintf(w, "  %s [%s] %s: %s\n", severity, issue.Field, issue.Code, issue.Message)
		return
	}
	fmt.Fprintf(w, "  %s %s: %s\n", severity, issue.Code, issue.Message)
}

func parseValidateArgs(args []string) (ValidateOptions, error) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	opts := ValidateOptions{}

	fs.BoolVar(&opts.Strict, "strict", false, "Treat warnings as errors")
	fs.BoolVar(&opts.JSON, "json", false, "Output results as JSON")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Show all warnings")
	fs.BoolVar(&opts.Verbose, "v", false, "Show all warnings (shorthand)")
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Files = fs.Args()
	return opts, nil
}

func printValidateUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: gattkit validate [options] <file|dir>...

Checks characteristic specifications for fields the resolver cannot walk.

Options:
  -strict        Treat warnings as errors
  -json          Output results as JSON
  -v, -verbose   Show all warnings and the signalled tags`)
}
