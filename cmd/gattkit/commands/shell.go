package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"

	"github.com/gattkit/gattkit-go/pkg/flags"
	"github.com/gattkit/gattkit-go/pkg/registry"
	"github.com/gattkit/gattkit-go/pkg/spec"
)

// Shell is an interactive session over a registry. Commands operate on the
// characteristic selected with "use".
type Shell struct {
	reg      *registry.Registry
	resolver *flags.Resolver
	dirs     []string
	current  *spec.Characteristic
}

// NewShell creates a shell. dirs are reloaded by the "reload" command.
func NewShell(reg *registry.Registry, resolver *flags.Resolver, dirs []string) *Shell {
	return &Shell{reg: reg, resolver: resolver, dirs: dirs}
}

// Prompt returns the prompt for the current selection.
func (s *Shell) Prompt() string {
	if s.current == nil {
		return "gattkit> "
	}
	return s.current.Name() + "> "
}

// Exec runs one command line, writing output to w. It returns false when the
// session should end.
func (s *Shell) Exec(line string, w io.Writer) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		printShellHelp(w)

	case "list", "ls":
		s.cmdList(w)

	case "use", "u":
		s.cmdUse(w, args)

	case "fields", "f":
		s.cmdFields(w)

	case "tags", "t":
		s.cmdTags(w)

	case "resolve", "r":
		s.cmdResolve(w, args)

	case "opcode", "o":
		s.cmdOpCode(w, args)

	case "reload":
		s.cmdReload(w)

	case "exit", "quit", "q":
		return false

	default:
		fmt.Fprintf(w, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

// Run reads commands from rl until EOF, "exit" or ctx is done.
func (s *Shell) Run(ctx context.Context, rl *readline.Instance) {
	printShellHelp(rl.Stdout())

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		rl.SetPrompt(s.Prompt())
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return
		}

		if !s.Exec(line, rl.Stdout()) {
			return
		}
	}
}

func (s *Shell) cmdList(w io.Writer) {
	all := s.reg.All()
	if len(all) == 0 {
		fmt.Fprintln(w, "No characteristics loaded")
		return
	}
	for _, c := range all {
		fmt.Fprintf(w, "  %-6s %s\n", c.UUID(), c.Name())
	}
}

func (s *Shell) cmdUse(w io.Writer, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(w, "Usage: use <name|type|uuid>")
		return
	}
	c, err := s.reg.Characteristic(strings.Join(args, " "))
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	s.current = c
	fmt.Fprintf(w, "Using %s\n", c.Name())
}

func (s *Shell) selected(w io.Writer) bool {
	if s.current == nil {
		fmt.Fprintln(w, "No characteristic selected (use 'use <name>')")
		return false
	}
	return true
}

func (s *Shell) cmdFields(w io.Writer) {
	if !s.selected(w) {
		return
	}
	printDump(w, s.current, dumpCharacteristic(s.current))
}

func (s *Shell) cmdTags(w io.Writer) {
	if !s.selected(w) {
		return
	}
	fmt.Fprintf(w, "flags:   %s\n", tagList(spec.AllFlags(s.current.FlagsField())))
	fmt.Fprintf(w, "op code: %s\n", tagList(spec.AllOpCodes(s.current.OpCodesField())))
}

func (s *Shell) cmdResolve(w io.Writer, args []string) {
	if !s.selected(w) {
		return
	}
	payload, err := ParsePayload(strings.Join(args, ""))
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	report, err := s.resolver.Resolve(s.current, payload)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	printReport(w, s.current, report, true)
}

func (s *Shell) cmdOpCode(w io.Writer, args []string) {
	if !s.selected(w) {
		return
	}
	payload, err := ParsePayload(strings.Join(args, ""))
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	requires, ok, err := s.resolver.ResolveOpCode(s.current.Fields(), payload)
	switch {
	case err != nil:
		fmt.Fprintf(w, "Error: %v\n", err)
	case ok:
		fmt.Fprintln(w, requires)
	default:
		fmt.Fprintln(w, "(none)")
	}
}

func (s *Shell) cmdReload(w io.Writer) {
	if err := s.reg.Reload(s.dirs...); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	if s.current != nil {
		c, err := s.reg.Characteristic(s.current.Name())
		if err != nil {
			s.current = nil
		} else {
			s.current = c
		}
	}
	fmt.Fprintf(w, "Loaded %d characteristics\n", s.reg.Len())
}

func printShellHelp(w io.Writer) {
	fmt.Fprintln(w, `Commands:
  list, ls               List loaded characteristics
  use, u <id>            Select a characteristic by name, type or UUID
  fields, f              Show the field layout
  tags, t                Show every tag the flags and op codes can signal
  resolve, r <hex>       Resolve a payload
  opcode, o <hex>        Print the requires attribute of the op code row
  reload                 Reload the specification directories
  help, ?                Show this help
  exit, quit, q          Leave the shell`)
}

// RunShell runs the shell command.
func RunShell(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)
	opts := globalOptions{}
	fs.StringVar(&opts.ConfigPath, "config", "", "Config file (default: ./gattkit.toml if present)")
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return exitCommandError
	}

	e, err := newEnv(opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer e.Close()

	reg, err := e.registry()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "gattkit> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          stdout,
		Stderr:          stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create readline: %v\n", err)
		return exitCommandError
	}
	defer rl.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	NewShell(reg, e.resolver(), e.cfg.SpecDirs).Run(ctx, rl)
	return exitSuccess
}
