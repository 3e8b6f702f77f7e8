package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/gattkit/gattkit-go/pkg/flags"
	"github.com/gattkit/gattkit-go/pkg/registry"
)

// specsDir returns the absolute path to testdata/specs/ relative to this test file.
func specsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "specs")
}

// writeConfig writes a config pointing at the test specs. A non-empty
// eventsPath enables the event log.
func writeConfig(t *testing.T, eventsPath string) string {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "spec_dirs = [%q]\n\n[log]\nlevel = \"off\"\n", specsDir(t))
	if eventsPath != "" {
		fmt.Fprintf(&b, "\n[events]\nenabled = true\npath = %q\n", eventsPath)
	}
	path := filepath.Join(t.TempDir(), "gattkit.toml")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParsePayload(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"1e3c", []byte{0x1e, 0x3c}},
		{"0x1E3C", []byte{0x1e, 0x3c}},
		{"1e 3c", []byte{0x1e, 0x3c}},
		{"1e:3c", []byte{0x1e, 0x3c}},
		{"1e-3c_00", []byte{0x1e, 0x3c, 0x00}},
		{"", []byte{}},
	}
	for _, tt := range tests {
		got, err := ParsePayload(tt.in)
		if err != nil {
			t.Errorf("ParsePayload(%q) error: %v", tt.in, err)
			continue
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("ParsePayload(%q) = %x, want %x", tt.in, got, tt.want)
		}
	}

	for _, in := range []string{"zz", "1e3", "0x1g"} {
		if _, err := ParsePayload(in); !errors.Is(err, ErrBadPayload) {
			t.Errorf("ParsePayload(%q) err = %v, want ErrBadPayload", in, err)
		}
	}
}

func TestRunResolve_HeartRate(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cfg := writeConfig(t, "")
	exitCode := RunResolve([]string{"-config", cfg, "-v", "2A37", "1e3c0001"}, stdout, stderr)

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d (stderr: %s)", exitSuccess, exitCode, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{"Heart Rate Measurement (2A37)", "tags:    C1, C3, C4", "RR-Interval bit", "op code: absent"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestRunResolve_JSON(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	spec := filepath.Join(specsDir(t), "heart_rate_measurement.xml")
	exitCode := RunResolve([]string{"-config", writeConfig(t, ""), "-spec", spec, "-json", "01"}, stdout, stderr)
	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d (stderr: %s)", exitSuccess, exitCode, stderr.String())
	}

	var report struct {
		Characteristic string `json:"characteristic"`
		Flags          struct {
			Outcome string   `json:"outcome"`
			Tags    []string `json:"tags"`
			Field   string   `json:"field"`
		} `json:"flags"`
		OpCode struct {
			Outcome string `json:"outcome"`
		} `json:"op_code"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout.String())
	}
	if report.Characteristic != "Heart Rate Measurement" {
		t.Errorf("characteristic = %q", report.Characteristic)
	}
	if report.Flags.Outcome != "resolved" || report.Flags.Field != "Flags" {
		t.Errorf("flags = %+v", report.Flags)
	}
	if strings.Join(report.Flags.Tags, ",") != "C2" {
		t.Errorf("tags = %v, want [C2]", report.Flags.Tags)
	}
	if report.OpCode.Outcome != "absent" {
		t.Errorf("op code outcome = %q, want absent", report.OpCode.Outcome)
	}
}

func TestRunResolve_ShortPayload(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunResolve([]string{"-config", writeConfig(t, ""), "Heart Rate Measurement", ""}, stdout, stderr)
	if exitCode != exitValidation {
		t.Fatalf("expected exit code %d, got %d (stderr: %s)", exitValidation, exitCode, stderr.String())
	}
	if !strings.Contains(stderr.String(), "range exceeds payload") {
		t.Errorf("expected out of range error, got: %s", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no report, got:\n%s", stdout.String())
	}
}

func TestRunResolve_Errors(t *testing.T) {
	cfg := writeConfig(t, "")
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", []string{"-config", cfg}, "expected <characteristic> <payload>"},
		{"spec and id", []string{"-config", cfg, "-spec", "x.xml", "2A37", "00"}, "expected <payload>"},
		{"unknown characteristic", []string{"-config", cfg, "2AFF", "00"}, "not found"},
		{"bad payload", []string{"-config", cfg, "2A37", "zz"}, "payload must be hex"},
		{"missing config", []string{"-config", filepath.Join(t.TempDir(), "none.toml"), "2A37", "00"}, "load config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}
			if code := RunResolve(tt.args, stdout, stderr); code != exitCommandError {
				t.Errorf("expected exit code %d, got %d", exitCommandError, code)
			}
			if !strings.Contains(stderr.String(), tt.want) {
				t.Errorf("expected %q in stderr, got: %s", tt.want, stderr.String())
			}
		})
	}
}

func TestRunOpCode_ShortPayload(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := RunOpCode([]string{"-config", writeConfig(t, ""), "2A66", ""}, stdout, stderr)
	if code != exitValidation {
		t.Fatalf("expected exit code %d, got %d", exitValidation, code)
	}
	if !strings.Contains(stderr.String(), "Cycling Power Control Point: bits: range exceeds payload") {
		t.Errorf("unexpected stderr: %s", stderr.String())
	}
}

func TestRunOpCode(t *testing.T) {
	cfg := writeConfig(t, "")
	tests := []struct {
		payload  string
		wantCode int
		wantOut  string
	}{
		{"0c", exitSuccess, "C4,C5\n"},
		{"01", exitSuccess, "C1\n"},
		{"20", exitSuccess, "C6\n"},
		{"03", exitValidation, "no requirement, resolved"},
		{"0d", exitValidation, "no row for key 13"},
	}
	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}
			code := RunOpCode([]string{"-config", cfg, "2A66", tt.payload}, stdout, stderr)
			if code != tt.wantCode {
				t.Errorf("expected exit code %d, got %d (stderr: %s)", tt.wantCode, code, stderr.String())
			}
			if !strings.Contains(stdout.String(), tt.wantOut) {
				t.Errorf("expected %q in output, got: %s", tt.wantOut, stdout.String())
			}
		})
	}
}

func TestRunOpCode_JSON(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := RunOpCode([]string{"-config", writeConfig(t, ""), "-json", "Cycling Power Control Point", "0c"}, stdout, stderr)
	if code != exitSuccess {
		t.Fatalf("expected exit code %d, got %d (stderr: %s)", exitSuccess, code, stderr.String())
	}

	var out OpCodeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if out.Requires == nil || *out.Requires != "C4,C5" {
		t.Errorf("requires = %v, want C4,C5", out.Requires)
	}
	if out.Value != "12" || out.Outcome != "resolved" {
		t.Errorf("out = %+v", out)
	}
	if strings.Join(out.Tags, ",") != "C4,C5" {
		t.Errorf("tags = %v", out.Tags)
	}
}

func TestRunValidate_Directory(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunValidate([]string{specsDir(t)}, stdout, stderr)
	if exitCode != exitSuccess {
		t.Errorf("expected exit code %d, got %d", exitSuccess, exitCode)
		t.Logf("stdout: %s", stdout.String())
	}
	if n := strings.Count(stdout.String(), ": OK"); n != 3 {
		t.Errorf("expected 3 OK lines, got %d:\n%s", n, stdout.String())
	}
}

func TestRunValidate_JSONOutput(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	file := filepath.Join(specsDir(t), "heart_rate_measurement.xml")
	exitCode := RunValidate([]string{"--json", file}, stdout, stderr)
	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d", exitSuccess, exitCode)
	}

	var results map[string]ValidationOutput
	if err := json.Unmarshal(stdout.Bytes(), &results); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	result, ok := results[file]
	if !ok {
		t.Fatalf("missing result for %s", file)
	}
	if !result.Valid || result.UUID != "2A37" {
		t.Errorf("result = %+v", result)
	}
	if strings.Join(result.Flags, ",") != "C1,C2,C3,C4" {
		t.Errorf("flags = %v", result.Flags)
	}
}

func TestRunValidate_Failures(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	content := `name: Broken
fields:
  - name: Flags
    bits:
      - { index: 0, size: 1, name: A, enumerations: [{ key: 1, value: a, requires: C1 }] }
  - name: Value
    requirements: [C1]
    format: uint8
`
	if err := os.WriteFile(broken, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	exitCode := RunValidate([]string{broken, filepath.Join(dir, "missing.xml")}, stdout, stderr)
	if exitCode != exitValidation {
		t.Errorf("expected exit code %d, got %d", exitValidation, exitCode)
	}
	out := stdout.String()
	if !strings.Contains(out, "MISSING_FORMAT") {
		t.Errorf("expected MISSING_FORMAT in output, got:\n%s", out)
	}
	if !strings.Contains(out, "PARSE") {
		t.Errorf("expected PARSE error for missing file, got:\n%s", out)
	}
}

func TestRunValidate_NoFile(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	if code := RunValidate([]string{}, stdout, stderr); code != exitCommandError {
		t.Errorf("expected exit code %d, got %d", exitCommandError, code)
	}
	if !strings.Contains(stderr.String(), "no files specified") {
		t.Errorf("expected 'no files specified' in stderr, got: %s", stderr.String())
	}
}

func TestRunDump(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunDump([]string{"-config", writeConfig(t, ""), "heart_rate_measurement"}, stdout, stderr)
	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d (stderr: %s)", exitSuccess, exitCode, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{"Energy Expended", "[1:3] Sensor Contact Status bits", "flags tags:   C1, C2, C3, C4", "op code tags: (none)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestRunDump_JSONOffsets(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	file := filepath.Join(specsDir(t), "cycling_power_control_point.yaml")
	exitCode := RunDump([]string{"-config", writeConfig(t, ""), "-spec", file, "-json"}, stdout, stderr)
	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d (stderr: %s)", exitSuccess, exitCode, stderr.String())
	}

	var out DumpOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(out.Fields) != 7 {
		t.Fatalf("fields = %d, want 7", len(out.Fields))
	}
	wantOffsets := []int{0, 8, 40, 48, 64, 72, 88}
	for i, want := range wantOffsets {
		if out.Fields[i].Offset == nil || *out.Fields[i].Offset != want {
			t.Errorf("field %d offset = %v, want %d", i, out.Fields[i].Offset, want)
		}
	}
	if out.Fields[6].Reference == "" {
		t.Error("expected reference on Response Value")
	}
	if strings.Join(out.OpCodes, ",") != "C1,C2,C3,C4,C5,C6" {
		t.Errorf("op codes = %v", out.OpCodes)
	}
}

func TestRunDump_Raw(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	file := filepath.Join(specsDir(t), "battery_level.xml")
	if code := RunDump([]string{"-spec", file, "-raw"}, stdout, stderr); code != exitSuccess {
		t.Fatalf("expected exit code %d, got %d (stderr: %s)", exitSuccess, code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "specparse.RawCharacteristic") {
		t.Errorf("expected raw dump, got:\n%s", stdout.String())
	}

	stderr.Reset()
	if code := RunDump([]string{"-raw", "2A19"}, stdout, stderr); code != exitCommandError {
		t.Errorf("expected exit code %d, got %d", exitCommandError, code)
	}
	if !strings.Contains(stderr.String(), "-raw requires -spec") {
		t.Errorf("unexpected stderr: %s", stderr.String())
	}
}

func TestRunEvents(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "events", "gattkit.glog")
	cfg := writeConfig(t, logPath)

	for _, args := range [][]string{
		{"-config", cfg, "2A37", "1e3c0001"},
		{"-config", cfg, "2A66", "0c"},
	} {
		if code := RunResolve(args, io.Discard, io.Discard); code != exitSuccess {
			t.Fatalf("resolve %v: exit code %d", args, code)
		}
	}

	t.Run("view", func(t *testing.T) {
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		if code := RunEvents([]string{"view", "-kind", "flags", logPath}, stdout, stderr); code != exitSuccess {
			t.Fatalf("expected exit code %d, got %d (stderr: %s)", exitSuccess, code, stderr.String())
		}
		out := stdout.String()
		if strings.Count(out, "FLAGS") != 2 {
			t.Errorf("expected 2 flags events, got:\n%s", out)
		}
		if !strings.Contains(out, "Source: Heart Rate Measurement") || !strings.Contains(out, "Payload: 1e3c0001") {
			t.Errorf("missing event details:\n%s", out)
		}
	})

	t.Run("stats", func(t *testing.T) {
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		if code := RunEvents([]string{"stats", logPath}, stdout, stderr); code != exitSuccess {
			t.Fatalf("expected exit code %d, got %d (stderr: %s)", exitSuccess, code, stderr.String())
		}
		out := stdout.String()
		if !strings.Contains(out, "Total Events: 4") {
			t.Errorf("expected 4 events, got:\n%s", out)
		}
		if !strings.Contains(out, "Cycling Power Control Point: 2") {
			t.Errorf("expected source counts, got:\n%s", out)
		}
	})

	t.Run("export with config path", func(t *testing.T) {
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		if code := RunEvents([]string{"export", "-config", cfg, "-tag", "C5"}, stdout, stderr); code != exitSuccess {
			t.Fatalf("expected exit code %d, got %d (stderr: %s)", exitSuccess, code, stderr.String())
		}
		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		if len(lines) != 1 {
			t.Fatalf("expected 1 line, got %d:\n%s", len(lines), stdout.String())
		}
		var ev EventOutput
		if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
			t.Fatalf("invalid JSON line: %v", err)
		}
		if ev.Kind != "OPCODE" || ev.Value != "12" || ev.Payload != "0c" {
			t.Errorf("event = %+v", ev)
		}
	})
}

func TestRunEvents_Errors(t *testing.T) {
	tests := [][]string{
		{},
		{"tail"},
		{"view", "-kind", "bogus", "x.glog"},
		{"view", "-outcome", "bogus", "x.glog"},
		{"view", "-time-start", "yesterday", "x.glog"},
		{"view", filepath.Join(t.TempDir(), "missing.glog")},
	}
	for _, args := range tests {
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		if code := RunEvents(args, stdout, stderr); code != exitCommandError {
			t.Errorf("RunEvents(%v) exit code %d, want %d", args, code, exitCommandError)
		}
	}
}

func newTestShell(t *testing.T) *Shell {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg, err := registry.Load(logger, specsDir(t))
	if err != nil {
		t.Fatalf("registry.Load failed: %v", err)
	}
	return NewShell(reg, flags.NewResolver(flags.Config{Logger: logger}), []string{specsDir(t)})
}

func TestShell(t *testing.T) {
	s := newTestShell(t)

	run := func(line string) string {
		t.Helper()
		var out bytes.Buffer
		if !s.Exec(line, &out) {
			t.Fatalf("Exec(%q) ended the session", line)
		}
		return out.String()
	}

	if out := run("resolve 00"); !strings.Contains(out, "No characteristic selected") {
		t.Errorf("expected selection error, got: %s", out)
	}
	if s.Prompt() != "gattkit> " {
		t.Errorf("prompt = %q", s.Prompt())
	}

	if out := run("list"); !strings.Contains(out, "2A37") || !strings.Contains(out, "Battery Level") {
		t.Errorf("list output: %s", out)
	}

	if out := run("use Heart Rate Measurement"); !strings.Contains(out, "Using Heart Rate Measurement") {
		t.Errorf("use output: %s", out)
	}
	if s.Prompt() != "Heart Rate Measurement> " {
		t.Errorf("prompt = %q", s.Prompt())
	}
	if out := run("r 1e 3c 00 01"); !strings.Contains(out, "C1, C3, C4") {
		t.Errorf("resolve output: %s", out)
	}
	if out := run("opcode 00"); !strings.Contains(out, "(none)") {
		t.Errorf("opcode output: %s", out)
	}
	if out := run("tags"); !strings.Contains(out, "flags:   C1, C2, C3, C4") {
		t.Errorf("tags output: %s", out)
	}

	run("use 2A66")
	if out := run("o 0c"); out != "C4,C5\n" {
		t.Errorf("opcode output = %q", out)
	}
	if out := run("fields"); !strings.Contains(out, "Offset Compensation Timeout") {
		t.Errorf("fields output: %s", out)
	}
	if out := run("reload"); !strings.Contains(out, "Loaded 3 characteristics") {
		t.Errorf("reload output: %s", out)
	}
	if s.Prompt() != "Cycling Power Control Point> " {
		t.Errorf("selection lost after reload: %q", s.Prompt())
	}

	if out := run("use 2AFF"); !strings.Contains(out, "Error:") {
		t.Errorf("expected lookup error, got: %s", out)
	}
	if out := run("frobnicate"); !strings.Contains(out, "Unknown command: frobnicate") {
		t.Errorf("unknown output: %s", out)
	}
	if out := run("   "); out != "" {
		t.Errorf("blank line output = %q", out)
	}

	if s.Exec("exit", io.Discard) {
		t.Error("exit should end the session")
	}
}
