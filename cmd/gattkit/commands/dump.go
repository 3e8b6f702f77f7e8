package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/gattkit/gattkit-go/pkg/spec"
	"github.com/gattkit/gattkit-go/pkg/specparse"
)

// DumpOptions configures the dump command.
type DumpOptions struct {
	globalOptions
	Raw            bool
	Characteristic string
}

// DumpOutput is the JSON form of a characteristic layout.
type DumpOutput struct {
	Name    string        `json:"name"`
	Type    string        `json:"type,omitempty"`
	UUID    string        `json:"uuid,omitempty"`
	Fields  []FieldOutput `json:"fields"`
	Flags   []string      `json:"flags"`
	OpCodes []string      `json:"op_codes"`
}

// FieldOutput describes one field of a characteristic.
type FieldOutput struct {
	Name         string   `json:"name"`
	Offset       *int     `json:"offset,omitempty"`
	Format       string   `json:"format,omitempty"`
	Reference    string   `json:"reference,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
	Rows         int      `json:"rows,omitempty"`
	Bits         int      `json:"bits,omitempty"`
}

var rawDumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// RunDump runs the dump command.
func RunDump(args []string, stdout, stderr io.Writer) int {
	opts, err := parseDumpArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printDumpUsage(stderr)
		return exitCommandError
	}

	if opts.Raw {
		raw, err := specparse.LoadRaw(opts.SpecFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		rawDumper.Fdump(stdout, raw)
		return exitSuccess
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

	out := dumpCharacteristic(ch)
	if e.jsonOutput(opts.globalOptions) {
		if err := writeJSON(stdout, out); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		return exitSuccess
	}
	printDump(stdout, ch, out)
	return exitSuccess
}

func dumpCharacteristic(ch *spec.Characteristic) DumpOutput {
	out := DumpOutput{
		Name:    ch.Name(),
		Type:    ch.Type(),
		UUID:    ch.UUID(),
		Flags:   spec.AllFlags(ch.FlagsField()).Sorted(),
		OpCodes: spec.AllOpCodes(ch.OpCodesField()).Sorted(),
	}

	// offsets are known until the first reference or variable-size field
	offset, known := 0, true
	for _, f := range ch.Fields() {
		fo := FieldOutput{
			Name:         f.Name(),
			Requirements: f.Requirements(),
			Rows:         f.Enumerations().Len(),
		}
		if known {
			at := offset
			fo.Offset = &at
		}
		if bf := f.BitField(); bf != nil {
			fo.Bits = bf.Len()
		}
		if ref, ok := f.Reference(); ok {
			fo.Reference = ref
			known = false
		}
		if format, ok := f.Format(); ok {
			fo.Format = format.String()
			size, fixed := format.Size()
			offset += size
			known = known && fixed
		} else {
			known = false
		}
		out.Fields = append(out.Fields, fo)
	}
	return out
}

func printDump(w io.Writer, ch *spec.Characteristic, out DumpOutput) {
	fmt.Fprintf(w, "%s", out.Name)
	if out.UUID != "" {
		fmt.Fprintf(w, " (%s)", out.UUID)
	}
	fmt.Fprintln(w)
	if out.Type != "" {
		fmt.Fprintf(w, "  type: %s\n", out.Type)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %-5s %-40s %-12s %s\n", "BIT", "FIELD", "FORMAT", "REQUIREMENTS")
	for _, f := range out.Fields {
		at := "?"
		if f.Offset != nil {
			at = fmt.Sprintf("%d", *f.Offset)
		}
		format := f.Format
		if f.Reference != "" {
			format = "-> " + f.Reference
		}
		fmt.Fprintf(w, "  %-5s %-40s %-12s %s\n", at, f.Name, format, strings.Join(f.Requirements, " "))
	}

	if ff := ch.FlagsField(); ff != nil && ff.BitField() != nil {
		fmt.Fprintf(w, "\n%s:\n", ff.Name())
		for _, b := range ff.BitField().Bits() {
			fmt.Fprintf(w, "  [%d:%d] %s\n", b.Index(), b.Index()+b.Size(), b.Name())
			for _, row := range b.Enumerations().Rows() {
				printRow(w, "    ", row)
			}
		}
	}
	if oc := ch.OpCodesField(); oc != nil {
		fmt.Fprintf(w, "\n%s:\n", oc.Name())
		for _, row := range oc.Enumerations().Rows() {
			printRow(w, "  ", row)
		}
	}

	fmt.Fprintf(w, "\nflags tags:   %s\n", tagList(spec.NewTags(out.Flags...)))
	fmt.Fprintf(w, "op code tags: %s\n", tagList(spec.NewTags(out.OpCodes...)))
}

func printRow(w io.Writer, indent string, row spec.Enumeration) {
	key := "-"
	if row.HasKey() {
		key = fmt.Sprintf("0x%02X", row.Key())
	}
	fmt.Fprintf(w, "%s%s %s", indent, key, row.Value())
	if req, ok := row.Requires(); ok {
		fmt.Fprintf(w, "  requires %s", req)
	}
	fmt.Fprintln(w)
}

func parseDumpArgs(args []string) (DumpOptions, error) {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	opts := DumpOptions{}

	opts.register(fs)
	fs.BoolVar(&opts.Raw, "raw", false, "Dump the decoded document of -spec without building it")
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	rest := fs.Args()
	switch {
	case opts.Raw && opts.SpecFile == "":
		return opts, errors.New("-raw requires -spec")
	case opts.SpecFile != "" && len(rest) == 0:
	case opts.SpecFile == "" && len(rest) == 1:
		opts.Characteristic = rest[0]
	default:
		return opts, fmt.Errorf("expected one characteristic, got %d arguments", len(rest))
	}
	return opts, nil
}

func printDumpUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: gattkit dump [options] <characteristic>
       gattkit dump -spec <file> [-raw]

Shows the field layout with bit offsets and the tags each table can signal.

Options:
  -config <file>  Config file
  -spec <file>    Characteristic specification file
  -raw            Dump the decoded document without building it
  -json           Output as JSON`)
}
