package commands

import (
	"flag"
	"fmt"
	"io"

	"github.com/gattkit/gattkit-go/pkg/flags"
	"github.com/gattkit/gattkit-go/pkg/spec"
)

// ResolveOptions configures the resolve command.
type ResolveOptions struct {
	globalOptions
	Verbose        bool
	Characteristic string
	Payload        string
}

// RunResolve runs the resolve command.
func RunResolve(args []string, stdout, stderr io.Writer) int {
	opts, err := parseResolveArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printResolveUsage(stderr)
		return exitCommandError
	}

	e, err := newEnv(opts.globalOptions, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer e.Close()

	ch, err := e.characteristic(opts.Characteristic, opts.SpecFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	payload, err := ParsePayload(opts.Payload)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	report, err := e.resolver().Resolve(ch, payload)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitValidation
	}

	if e.jsonOutput(opts.globalOptions) {
		if err := writeJSON(stdout, report); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		return exitSuccess
	}
	printReport(stdout, ch, report, opts.Verbose)
	return exitSuccess
}

func printReport(w io.Writer, ch *spec.Characteristic, report flags.Report, verbose bool) {
	fmt.Fprintf(w, "%s (%s)\n", ch.Name(), ch.UUID())
	fmt.Fprintf(w, "  flags:   %s\n", describe(report.Flags))
	if verbose {
		for _, b := range report.Flags.Bits {
			req := b.Requires
			if req == "" {
				req = "-"
			}
			fmt.Fprintf(w, "    bit %-3d %-40s = %s  %s\n", b.Offset, b.Name, b.Value, req)
		}
	}
	fmt.Fprintf(w, "  op code: %s\n", describe(report.OpCode))
	if report.OpCode.Value != nil {
		fmt.Fprintf(w, "    value = 0x%02X\n", report.OpCode.Value)
	}
	fmt.Fprintf(w, "  tags:    %s\n", tagList(report.Tags()))
}

func parseResolveArgs(args []string) (ResolveOptions, error) {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	opts := ResolveOptions{}

	opts.register(fs)
	fs.BoolVar(&opts.Verbose, "verbose", false, "Show every decoded bit range")
	fs.BoolVar(&opts.Verbose, "v", false, "Show every decoded bit range (shorthand)")
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, positional(fs.Args(), &opts.globalOptions, &opts.Characteristic, &opts.Payload)
}

// positional assigns <characteristic> <payload>. The characteristic is
// omitted when -spec names a file.
func positional(rest []string, g *globalOptions, id, payload *string) error {
	switch {
	case g.SpecFile != "" && len(rest) == 1:
		*payload = rest[0]
	case g.SpecFile == "" && len(rest) == 2:
		*id, *payload = rest[0], rest[1]
	case g.SpecFile != "":
		return fmt.Errorf("expected <payload>, got %d arguments", len(rest))
	default:
		return fmt.Errorf("expected <characteristic> <payload>, got %d arguments", len(rest))
	}
	return nil
}

func printResolveUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: gattkit resolve [options] <characteristic> <payload>
       gattkit resolve -spec <file> [options] <payload>

Resolves the capability tags signalled by the flags and op code fields.
The characteristic is a name, type or UUID. The payload is hex.

Options:
  -config <file>  Config file
  -spec <file>    Characteristic specification file
  -json           Output as JSON
  -v, -verbose    Show every decoded bit range`)
}
