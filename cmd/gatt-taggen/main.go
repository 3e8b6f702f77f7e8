// gatt-taggen generates Go constants for the capability tags that
// characteristic flags and op code fields can signal.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"

	"github.com/gattkit/gattkit-go/pkg/specparse"
)

func main() {
	specsDir := flag.String("specs", "", "Directory of characteristic specifications")
	pkg := flag.String("package", "gatttags", "Package name of the generated file")
	output := flag.String("output", "", "Output path for the generated Go file")
	flag.Parse()

	if *specsDir == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "Usage: gatt-taggen -specs <dir> -output <file> [-package <name>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(*specsDir, *pkg, *output); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(specsDir, pkg, output string) error {
	chars, err := specparse.LoadDir(specsDir)
	if err != nil {
		return fmt.Errorf("loading specifications: %w", err)
	}

	code, err := Generate(pkg, chars)
	if err != nil {
		return fmt.Errorf("generating tags: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := writeFormatted(output, code); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(output), err)
	}
	fmt.Printf("  generated %s (%d characteristics)\n", output, len(chars))
	return nil
}

// writeFormatted formats Go source code with goimports and writes it to a file.
func writeFormatted(path string, code string) error {
	formatted, err := imports.Process(path, []byte(code), nil)
	if err != nil {
		// Write unformatted so you can debug the generator output
		_ = os.WriteFile(path+".broken", []byte(code), 0o644)
		return fmt.Errorf("goimports %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, formatted, 0o644)
}
