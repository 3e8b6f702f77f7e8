package commands

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/gattkit/gattkit-go/pkg/log"
)

// EventsOptions configures the events command.
type EventsOptions struct {
	ConfigPath string
	Action     string
	Path       string
	Filter     log.Filter
}

// EventOutput is the JSON lines form of an event.
type EventOutput struct {
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
	Source    string    `json:"source,omitempty"`
	Kind      string    `json:"kind"`
	Outcome   string    `json:"outcome"`
	Payload   string    `json:"payload,omitempty"`
	Truncated bool      `json:"truncated,omitempty"`
	Field     string    `json:"field,omitempty"`
	Offset    int       `json:"offset"`
	Tags      []string  `json:"tags,omitempty"`
	Value     string    `json:"value,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// EventStats holds aggregate statistics about an event log.
type EventStats struct {
	TotalEvents     int
	EventsByKind    map[log.Kind]int
	EventsByOutcome map[log.Outcome]int
	EventsBySource  map[string]int
	TagCounts       map[string]int
	TimeRange       struct {
		Start time.Time
		End   time.Time
	}
}

// RunEvents runs the events command.
func RunEvents(args []string, stdout, stderr io.Writer) int {
	opts, err := parseEventsArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printEventsUsage(stderr)
		return exitCommandError
	}

	if opts.Path == "" {
		e, err := newEnv(globalOptions{ConfigPath: opts.ConfigPath}, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		opts.Path = e.cfg.Events.Path
		e.Close()
	}

	reader, err := log.NewFilteredReader(opts.Path, opts.Filter)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to open event log: %v\n", err)
		return exitCommandError
	}
	defer reader.Close()

	switch opts.Action {
	case "view":
		err = viewEvents(reader, stdout)
	case "stats":
		err = statsEvents(reader, stdout)
	case "export":
		err = exportEvents(reader, stdout)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	return exitSuccess
}

func viewEvents(reader *log.Reader, w io.Writer) error {
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	source := event.Source
	if source == "" {
		source = "-"
	}
	fmt.Fprintf(w, "%s [%s] %s %s\n", ts, shortenID(event.ID), event.Kind, event.Outcome)
	fmt.Fprintf(w, "  Source: %s\n", source)
	if len(event.Payload) > 0 {
		fmt.Fprintf(w, "  Payload: %s", hex.EncodeToString(event.Payload))
		if event.Truncated {
			fmt.Fprint(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
	if event.Field != "" {
		fmt.Fprintf(w, "  Field: %s (bit %d)\n", event.Field, event.Offset)
	}
	if event.Value != "" {
		fmt.Fprintf(w, "  Value: %s\n", event.Value)
	}
	if len(event.Tags) > 0 {
		fmt.Fprintf(w, "  Tags: %v\n", event.Tags)
	}
	if event.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", event.Reason)
	}
	if event.Error != nil {
		fmt.Fprintf(w, "  Error: %s\n", event.Error.Message)
		if event.Error.Context != "" {
			fmt.Fprintf(w, "  Context: %s\n", event.Error.Context)
		}
	}
	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of the event ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func exportEvents(reader *log.Reader, w io.Writer) error {
	enc := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		out := EventOutput{
			Timestamp: event.Timestamp,
			ID:        event.ID,
			Source:    event.Source,
			Kind:      event.Kind.String(),
			Outcome:   event.Outcome.String(),
			Truncated: event.Truncated,
			Field:     event.Field,
			Offset:    event.Offset,
			Tags:      event.Tags,
			Value:     event.Value,
			Reason:    event.Reason,
		}
		if len(event.Payload) > 0 {
			out.Payload = hex.EncodeToString(event.Payload)
		}
		if event.Error != nil {
			out.Error = event.Error.Message
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
}

func statsEvents(reader *log.Reader, w io.Writer) error {
	stats := &EventStats{
		EventsByKind:    make(map[log.Kind]int),
		EventsByOutcome: make(map[log.Outcome]int),
		EventsBySource:  make(map[string]int),
		TagCounts:       make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByKind[event.Kind]++
		stats.EventsByOutcome[event.Outcome]++
		if event.Source != "" {
			stats.EventsBySource[event.Source]++
		}
		for _, tag := range event.Tags {
			stats.TagCounts[tag]++
		}

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *EventStats) {
	fmt.Fprintln(w, "=== Resolution Event Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Kind:")
	for _, k := range []log.Kind{log.KindFlags, log.KindOpCode} {
		if count := stats.EventsByKind[k]; count > 0 {
			fmt.Fprintf(w, "  %-15s %d\n", k.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Outcome:")
	for _, o := range []log.Outcome{log.OutcomeResolved, log.OutcomeAbsent, log.OutcomeIndeterminate, log.OutcomeError} {
		if count := stats.EventsByOutcome[o]; count > 0 {
			fmt.Fprintf(w, "  %-15s %d\n", o.String()+":", count)
		}
	}

	if len(stats.EventsBySource) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Events by Source:")
		for _, name := range sortedKeys(stats.EventsBySource) {
			fmt.Fprintf(w, "  %s: %d\n", name, stats.EventsBySource[name])
		}
	}

	if len(stats.TagCounts) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tags:")
		for _, tag := range sortedKeys(stats.TagCounts) {
			fmt.Fprintf(w, "  %-15s %d\n", tag+":", stats.TagCounts[tag])
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseEventsArgs(args []string) (EventsOptions, error) {
	opts := EventsOptions{}
	if len(args) == 0 {
		return opts, fmt.Errorf("missing action")
	}
	opts.Action = args[0]
	switch opts.Action {
	case "view", "stats", "export":
	default:
		return opts, fmt.Errorf("unknown action %q", opts.Action)
	}

	fs := flag.NewFlagSet("events "+opts.Action, flag.ContinueOnError)
	fs.StringVar(&opts.ConfigPath, "config", "", "Config file (default: ./gattkit.toml if present)")
	kind := fs.String("kind", "", "Filter by kind (flags, opcode)")
	outcome := fs.String("outcome", "", "Filter by outcome (resolved, absent, indeterminate, error)")
	fs.StringVar(&opts.Filter.Source, "source", "", "Filter by characteristic name")
	fs.StringVar(&opts.Filter.Tag, "tag", "", "Filter by resolved tag")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	fs.Usage = func() {}

	if err := fs.Parse(args[1:]); err != nil {
		return opts, err
	}

	if *kind != "" {
		k, ok := log.ParseKind(*kind)
		if !ok {
			return opts, fmt.Errorf("invalid kind %q", *kind)
		}
		opts.Filter.Kind = &k
	}
	if *outcome != "" {
		o, ok := log.ParseOutcome(*outcome)
		if !ok {
			return opts, fmt.Errorf("invalid outcome %q", *outcome)
		}
		opts.Filter.Outcome = &o
	}
	for _, tf := range []struct {
		raw string
		dst **time.Time
	}{{*timeStart, &opts.Filter.TimeStart}, {*timeEnd, &opts.Filter.TimeEnd}} {
		if tf.raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, tf.raw)
		if err != nil {
			return opts, fmt.Errorf("invalid time %q: %w", tf.raw, err)
		}
		*tf.dst = &t
	}

	switch fs.NArg() {
	case 0:
	case 1:
		opts.Path = fs.Arg(0)
	default:
		return opts, fmt.Errorf("expected at most one log file, got %d", fs.NArg())
	}
	return opts, nil
}

func printEventsUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: gattkit events <view|stats|export> [flags] [file.glog]

Reads the resolution event log. Without a file the configured path is used.

Actions:
  view     Print events in human-readable form
  stats    Show counts by kind, outcome, source and tag
  export   Write events as JSON lines

Flags:
  -config <file>      Config file
  -kind <kind>        flags or opcode
  -outcome <outcome>  resolved, absent, indeterminate or error
  -source <name>      Characteristic name
  -tag <tag>          Resolved tag
  -time-start <t>     RFC3339 lower bound
  -time-end <t>       RFC3339 upper bound`)
}
