package spec

import (
	"fmt"
	"strings"
)

// Severity classifies a validation issue.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	default:
		return "UNKNOWN"
	}
}

// Issue codes reported by Validate.
const (
	IssueMissingFormat          = "MISSING_FORMAT"
	IssueBitZeroSize            = "BIT_ZERO_SIZE"
	IssueBitFieldOverflow       = "BITFIELD_OVERFLOW"
	IssueReferenceBeforeFlags   = "REFERENCE_BEFORE_FLAGS"
	IssueVariableBeforeFlags    = "VARIABLE_BEFORE_FLAGS"
	IssueUnsignalledRequirement = "UNSIGNALLED_REQUIREMENT"
	IssueUnusedTag              = "UNUSED_TAG"
	IssueReservedKey            = "RESERVED_KEY"
)

// Issue is a single validation finding.
type Issue struct {
	Code     string
	Severity Severity
	Field    string
	Message  string
}

// String formats the issue for display.
func (i Issue) String() string {
	if i.Field == "" {
		return fmt.Sprintf("%s %s: %s", i.Severity, i.Code, i.Message)
	}
	return fmt.Sprintf("%s %s [%s]: %s", i.Severity, i.Code, i.Field, i.Message)
}

// HasErrors returns true if any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// requirement literals that are not capability tags
var plainRequirements = map[string]bool{
	"mandatory": true,
	"optional":  true,
	"excluded":  true,
}

// Validate checks a characteristic independently of any payload.
func Validate(c *Characteristic) []Issue {
	var issues []Issue
	fields := c.Fields()

	for _, f := range fields {
		issues = append(issues, validateField(f)...)
	}

	issues = append(issues, validateReachability(fields, FlagsField(fields), "flags")...)
	issues = append(issues, validateReachability(fields, OpCodesField(fields), "op code")...)

	signalled := AllFlags(FlagsField(fields))
	signalled.Union(AllOpCodes(OpCodesField(fields)))

	required := NewTags()
	for _, f := range fields {
		for _, req := range f.Requirements() {
			for _, tag := range ParseTags(req).Sorted() {
				if plainRequirements[strings.ToLower(tag)] {
					continue
				}
				required.Add(tag)
				if !signalled.Has(tag) {
					issues = append(issues, Issue{
						Code:     IssueUnsignalledRequirement,
						Severity: SeverityWarning,
						Field:    f.Name(),
						Message:  fmt.Sprintf("requirement %q is never signalled by flags or op codes", tag),
					})
				}
			}
		}
	}

	for _, tag := range signalled.Sorted() {
		if !required.Has(tag) {
			issues = append(issues, Issue{
				Code:     IssueUnusedTag,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("tag %q is signalled but no field requires it", tag),
			})
		}
	}

	return issues
}

func validateField(f *Field) []Issue {
	var issues []Issue

	format, hasFormat := f.Format()
	if _, hasRef := f.Reference(); !hasFormat && !hasRef {
		issues = append(issues, Issue{
			Code:     IssueMissingFormat,
			Severity: SeverityError,
			Field:    f.Name(),
			Message:  "field has neither a format nor a reference",
		})
	}

	if bf := f.BitField(); bf != nil {
		for _, b := range bf.Bits() {
			if b.Size() < 1 {
				issues = append(issues, Issue{
					Code:     IssueBitZeroSize,
					Severity: SeverityError,
					Field:    f.Name(),
					Message:  fmt.Sprintf("bit %q has size %d", b.Name(), b.Size()),
				})
			}
			issues = append(issues, validateTable(f.Name(), b.Enumerations())...)
		}
		if width, fixed := format.Size(); hasFormat && fixed && bf.Size() > width {
			issues = append(issues, Issue{
				Code:     IssueBitFieldOverflow,
				Severity: SeverityError,
				Field:    f.Name(),
				Message:  fmt.Sprintf("bits span %d bits but format %s has %d", bf.Size(), format, width),
			})
		}
	}

	return append(issues, validateTable(f.Name(), f.Enumerations())...)
}

func validateTable(field string, t *Enumerations) []Issue {
	var issues []Issue
	for _, e := range t.Rows() {
		if e.HasKey() && t.IsReserved(e.Key()) {
			issues = append(issues, Issue{
				Code:     IssueReservedKey,
				Severity: SeverityWarning,
				Field:    field,
				Message:  fmt.Sprintf("key %s lies in a reserved range", e.Key()),
			})
		}
	}
	return issues
}

// validateReachability reports fields whose width cannot be known ahead of
// target.
func validateReachability(fields []*Field, target *Field, what string) []Issue {
	if target == nil {
		return nil
	}
	for _, f := range fields {
		if f == target {
			return nil
		}
		if ref, ok := f.Reference(); ok {
			return []Issue{{
				Code:     IssueReferenceBeforeFlags,
				Severity: SeverityWarning,
				Field:    f.Name(),
				Message:  fmt.Sprintf("reference to %s precedes the %s field; it can never be resolved", ref, what),
			}}
		}
		if format, ok := f.Format(); ok {
			if _, fixed := format.Size(); !fixed {
				return []Issue{{
					Code:     IssueVariableBeforeFlags,
					Severity: SeverityWarning,
					Field:    f.Name(),
					Message:  fmt.Sprintf("variable-size format %s precedes the %s field; it can never be resolved", format, what),
				}}
			}
		}
	}
	return nil
}
