// gattkit resolves the capability tags signalled by Bluetooth GATT
// characteristic payloads.
package main

import (
	"fmt"
	"os"

	"github.com/gattkit/gattkit-go/cmd/gattkit/commands"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitCommandError)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "resolve":
		exitCode = commands.RunResolve(args, os.Stdout, os.Stderr)
	case "opcode":
		exitCode = commands.RunOpCode(args, os.Stdout, os.Stderr)
	case "validate":
		exitCode = commands.RunValidate(args, os.Stdout, os.Stderr)
	case "dump":
		exitCode = commands.RunDump(args, os.Stdout, os.Stderr)
	case "events":
		exitCode = commands.RunEvents(args, os.Stdout, os.Stderr)
	case "shell":
		exitCode = commands.RunShell(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	case "version", "-v", "--version":
		fmt.Println("gattkit version 0.1.0")
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`gattkit - GATT capability tag resolver

Usage:
  gattkit <command> [options] [args...]

Commands:
  resolve    Resolve the flags and op code tags of a payload
  opcode     Print the requires attribute of the matching op code row
  validate   Check characteristic specifications
  dump       Show a characteristic's field layout
  events     View, summarise or export the resolution event log
  shell      Start an interactive session

Options:
  -h, --help     Show this help message
  -v, --version  Show version information

Examples:
  gattkit resolve "Heart Rate Measurement" 1e3c0001
  gattkit opcode 2A66 0c
  gattkit validate specs/
  gattkit dump -spec specs/heart_rate_measurement.xml
  gattkit events stats -outcome indeterminate

Configuration is read from ./gattkit.toml when present, or from -config.
GATTKIT_* environment variables override it.

For command-specific help, run:
  gattkit <command> --help`)
}
