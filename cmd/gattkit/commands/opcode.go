package commands

import (
	"flag"
	"fmt"
	"io"
)

// OpCodeOptions configures the opcode command.
type OpCodeOptions struct {
	globalOptions
	Characteristic string
	Payload        string
}

// OpCodeOutput is the JSON form of an op code lookup.
type OpCodeOutput struct {
	Characteristic string   `json:"characteristic"`
	Outcome        string   `json:"outcome"`
	Value          string   `json:"value,omitempty"`
	Requires       *string  `json:"requires"`
	Tags           []string `json:"tags"`
	Reason         string   `json:"reason,omitempty"`
}

// RunOpCode runs the opcode command. It exits with exitValidation when the
// payload matches no row that requires anything.
func RunOpCode(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOpCodeArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printOpCodeUsage(stderr)
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

	r := e.resolver()
	res, err := r.ResolveOpCodeDetailed(ch.Fields(), payload)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s: %v\n", ch.Name(), err)
		return exitValidation
	}
	requires, ok := res.Requires()

	if e.jsonOutput(opts.globalOptions) {
		out := OpCodeOutput{
			Characteristic: ch.Name(),
			Outcome:        res.Outcome.String(),
			Tags:           res.SortedTags(),
			Reason:         res.Reason,
		}
		if res.Value != nil {
			out.Value = res.Value.String()
		}
		if ok {
			out.Requires = &requires
		}
		if err := writeJSON(stdout, out); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
	} else {
		if ok {
			fmt.Fprintln(stdout, requires)
		} else {
			fmt.Fprintf(stdout, "%s: no requirement, %s\n", ch.Name(), describe(res))
		}
	}

	if !ok {
		return exitValidation
	}
	return exitSuccess
}

func parseOpCodeArgs(args []string) (OpCodeOptions, error) {
	fs := flag.NewFlagSet("opcode", flag.ContinueOnError)
	opts := OpCodeOptions{}

	opts.register(fs)
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, positional(fs.Args(), &opts.globalOptions, &opts.Characteristic, &opts.Payload)
}

func printOpCodeUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: gattkit opcode [options] <characteristic> <payload>
       gattkit opcode -spec <file> [options] <payload>

Prints the requires attribute of the op code row matching the payload.

Options:
  -config <file>  Config file
  -spec <file>    Characteristic specification file
  -json           Output as JSON`)
}
