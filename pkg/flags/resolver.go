package flags

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gattkit/gattkit-go/pkg/bits"
	"github.com/gattkit/gattkit-go/pkg/log"
	"github.com/gattkit/gattkit-go/pkg/spec"
)

// ErrSpecIntegrity is returned when the field layout cannot be walked, for
// example when a field preceding the target has no format.
var ErrSpecIntegrity = errors.New("flags: specification integrity violation")

// Config configures a Resolver. The zero value is usable.
type Config struct {
	// Decoder turns extracted bits into integers.
	// Default: bits.TwosComplement{}.
	Decoder bits.IntegerDecoder

	// Events receives one event per resolution.
	// Default: log.NoopLogger{}.
	Events log.Logger

	// Logger is used for operational logging.
	// Default: slog.Default().
	Logger *slog.Logger
}

// Resolver resolves flags and op code tags from payloads.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	decoder bits.IntegerDecoder
	events  log.Logger
	logger  *slog.Logger
	now     func() time.Time
}

// NewResolver creates a Resolver from cfg.
func NewResolver(cfg Config) *Resolver {
	r := &Resolver{
		decoder: cfg.Decoder,
		events:  cfg.Events,
		logger:  cfg.Logger,
		now:     time.Now,
	}
	if r.decoder == nil {
		r.decoder = bits.TwosComplement{}
	}
	if r.events == nil {
		r.events = log.NoopLogger{}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// ResolveFlags returns the tags signalled by the flags field of payload.
// The set is empty when there is no flags field or it cannot be located.
// A payload that ends before the flags field does is an error wrapping
// bits.ErrOutOfRange.
func (r *Resolver) ResolveFlags(fields []*spec.Field, payload []byte) (spec.Tags, error) {
	res, err := r.ResolveFlagsDetailed(fields, payload)
	if err != nil {
		return spec.NewTags(), err
	}
	return res.Tags, nil
}

// ResolveFlagsDetailed is like ResolveFlags but also reports how the result
// was reached.
func (r *Resolver) ResolveFlagsDetailed(fields []*spec.Field, payload []byte) (Resolution, error) {
	return r.resolveFlags("", fields, payload)
}

// ResolveOpCode returns the requires attribute of the op code row matching
// payload. ok is false when there is no op code field, no matching row, or
// the row requires nothing. A payload too short for the op code is an error
// wrapping bits.ErrOutOfRange.
func (r *Resolver) ResolveOpCode(fields []*spec.Field, payload []byte) (requires string, ok bool, err error) {
	res, err := r.ResolveOpCodeDetailed(fields, payload)
	if err != nil {
		return "", false, err
	}
	requires, ok = res.Requires()
	return requires, ok, nil
}

// ResolveOpCodeTags returns the tags of the op code row matching payload.
func (r *Resolver) ResolveOpCodeTags(fields []*spec.Field, payload []byte) (spec.Tags, error) {
	res, err := r.ResolveOpCodeDetailed(fields, payload)
	if err != nil {
		return spec.NewTags(), err
	}
	return res.Tags, nil
}

// ResolveOpCodeDetailed is like ResolveOpCode but also reports how the
// result was reached.
func (r *Resolver) ResolveOpCodeDetailed(fields []*spec.Field, payload []byte) (Resolution, error) {
	return r.resolveOpCode("", fields, payload)
}

// Resolve resolves both the flags and op code fields of a characteristic.
// Events carry the characteristic name as their source.
func (r *Resolver) Resolve(ch *spec.Characteristic, payload []byte) (Report, error) {
	report := Report{Characteristic: ch.Name()}

	var err error
	report.Flags, err = r.resolveFlags(ch.Name(), ch.Fields(), payload)
	if err != nil {
		return report, fmt.Errorf("%s: %w", ch.Name(), err)
	}
	report.OpCode, err = r.resolveOpCode(ch.Name(), ch.Fields(), payload)
	if err != nil {
		return report, fmt.Errorf("%s: %w", ch.Name(), err)
	}
	return report, nil
}

func (r *Resolver) resolveFlags(source string, fields []*spec.Field, payload []byte) (Resolution, error) {
	res, err := r.flags(fields, payload)
	r.emit(source, payload, res, err)
	return res, err
}

func (r *Resolver) resolveOpCode(source string, fields []*spec.Field, payload []byte) (Resolution, error) {
	res, err := r.opCode(fields, payload)
	r.emit(source, payload, res, err)
	return res, err
}

func (r *Resolver) flags(fields []*spec.Field, payload []byte) (Resolution, error) {
	res := Resolution{Target: TargetFlags, Tags: spec.NewTags()}

	w, err := locate(fields, spec.IsFlagsField)
	res.Offset = w.offset
	if err != nil {
		return res, err
	}
	if w.field == nil {
		res.Outcome = w.outcome
		res.Reason = w.reason
		if res.Reason == "" {
			res.Reason = "no flags field"
		}
		return res, nil
	}
	res.Field = w.field.Name()

	bitList := w.field.BitField().Bits()
	total := 0
	for _, b := range bitList {
		if b.Size() < 1 {
			return res, fmt.Errorf("%w: bit %q of field %q has size %d",
				ErrSpecIntegrity, b.Name(), res.Field, b.Size())
		}
		total += b.Size()
	}
	if have := len(payload) * 8; w.offset+total > have {
		return res, fmt.Errorf("%w: payload has %d bits, flags field %q needs bits [%d,%d)",
			bits.ErrOutOfRange, have, res.Field, w.offset, w.offset+total)
	}

	index := w.offset
	res.Bits = make([]BitValue, 0, len(bitList))
	for _, b := range bitList {
		seq, err := bits.Extract(payload, index, b.Size())
		if err != nil {
			return res, fmt.Errorf("%w: bit %q: %w", ErrSpecIntegrity, b.Name(), err)
		}
		value, err := r.decoder.DecodeInteger(seq, b.Size(), false)
		if err != nil {
			return res, fmt.Errorf("decoding bit %q of field %q: %w", b.Name(), res.Field, err)
		}

		bv := BitValue{Name: b.Name(), Index: b.Index(), Offset: index, Size: b.Size(), Value: value}
		if requires, ok := b.Flag(value); ok {
			bv.Requires = requires
			res.Tags.AddRequires(requires)
		}
		res.Bits = append(res.Bits, bv)
		index += b.Size()
	}

	res.Outcome = OutcomeResolved
	return res, nil
}

func (r *Resolver) opCode(fields []*spec.Field, payload []byte) (Resolution, error) {
	res := Resolution{Target: TargetOpCode, Tags: spec.NewTags()}

	w, err := locate(fields, spec.IsOpCodesField)
	res.Offset = w.offset
	if err != nil {
		return res, err
	}
	if w.field == nil {
		res.Outcome = w.outcome
		res.Reason = w.reason
		if res.Reason == "" {
			res.Reason = "no op code field"
		}
		return res, nil
	}
	res.Field = w.field.Name()

	format, ok := w.field.Format()
	if !ok {
		return res, fmt.Errorf("%w: %w: op code field %q", ErrSpecIntegrity, spec.ErrMissingFormat, res.Field)
	}
	width, fixed := format.Size()
	if !fixed {
		return res, fmt.Errorf("%w: op code field %q has variable format %s", ErrSpecIntegrity, res.Field, format)
	}
	if have := len(payload) * 8; w.offset+width > have {
		return res, fmt.Errorf("%w: payload has %d bits, op code field %q needs bits [%d,%d)",
			bits.ErrOutOfRange, have, res.Field, w.offset, w.offset+width)
	}

	seq, err := bits.Extract(payload, w.offset, width)
	if err != nil {
		return res, fmt.Errorf("%w: op code field %q: %w", ErrSpecIntegrity, res.Field, err)
	}
	value, err := r.decoder.DecodeInteger(seq, width, false)
	if err != nil {
		return res, fmt.Errorf("decoding op code field %q: %w", res.Field, err)
	}
	res.Value = value

	row, found := w.field.Enumeration(value)
	if !found {
		res.Outcome = OutcomeAbsent
		res.Reason = fmt.Sprintf("no row for key %s", value)
		return res, nil
	}
	res.requires, res.hasRequires = row.Requires()
	res.Tags = spec.RequiresOf(row, found)
	res.Outcome = OutcomeResolved
	return res, nil
}

// walk is where locate stopped.
type walk struct {
	field   *spec.Field
	offset  int
	outcome Outcome
	reason  string
}

// locate advances through fields until match succeeds. When it cannot, the
// returned walk has a nil field and an outcome explaining why.
func locate(fields []*spec.Field, match func(*spec.Field) bool) (walk, error) {
	index := 0
	for _, f := range fields {
		if f == nil {
			continue
		}
		if match(f) {
			return walk{field: f, offset: index, outcome: OutcomeResolved}, nil
		}
		if ref, ok := f.Reference(); ok {
			return walk{
				offset:  index,
				outcome: OutcomeIndeterminate,
				reason:  fmt.Sprintf("field %q references %s", f.Name(), ref),
			}, nil
		}
		format, ok := f.Format()
		if !ok {
			return walk{offset: index}, fmt.Errorf("%w: %w: field %q",
				ErrSpecIntegrity, spec.ErrMissingFormat, f.Name())
		}
		size, fixed := format.Size()
		if !fixed {
			return walk{
				offset:  index,
				outcome: OutcomeIndeterminate,
				reason:  fmt.Sprintf("field %q has variable format %s", f.Name(), format),
			}, nil
		}
		index += size
	}
	return walk{offset: index, outcome: OutcomeAbsent}, nil
}

func (r *Resolver) emit(source string, payload []byte, res Resolution, err error) {
	event := log.Event{
		Timestamp: r.now(),
		ID:        uuid.NewString(),
		Source:    source,
		Kind:      res.Target.event(),
		Outcome:   res.Outcome.event(),
		Field:     res.Field,
		Offset:    res.Offset,
		Tags:      res.Tags.Sorted(),
		Reason:    res.Reason,
	}
	event.TruncatePayload(payload)
	if res.Value != nil {
		event.Value = res.Value.String()
	}
	if err != nil {
		event.Outcome = log.OutcomeError
		event.Tags = nil
		event.Error = &log.ErrorEventData{
			Message: err.Error(),
			Context: "resolve " + res.Target.String(),
		}
	}
	r.events.Log(event)

	if err != nil {
		r.logger.Warn("resolution failed",
			"target", res.Target.String(),
			"source", source,
			"error", err)
		return
	}
	r.logger.Debug("resolution",
		"target", res.Target.String(),
		"source", source,
		"outcome", res.Outcome.String(),
		"offset", res.Offset,
		"tags", res.Tags.String())
}
