package search

import (
	"errors"
	"fmt"
)

// SkipReason classifies why a scanned file produced no result.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipUnreadable
	SkipCorruptDocument
	SkipFeatureDisabled
	SkipTooLarge
	SkipPatternTimeout
	SkipBinaryContent
)

// AllSkipReasons lists the reasons in display order.
var AllSkipReasons = []SkipReason{
	SkipUnreadable, SkipCorruptDocument, SkipFeatureDisabled, SkipTooLarge, SkipPatternTimeout, SkipBinaryContent,
}

func (r SkipReason) String() string {
	switch r {
	case SkipUnreadable:
		return "unreadable"
	case SkipCorruptDocument:
		return "corrupt document"
	case SkipFeatureDisabled:
		return "feature disabled"
	case SkipTooLarge:
		return "too large"
	case SkipPatternTimeout:
		return "pattern timeout"
	case SkipBinaryContent:
		return "binary content"
	default:
		return "none"
	}
}

var (
	ErrUnreadable      = errors.New("file unreadable")
	ErrCorruptDocument = errors.New("corrupt document")
	ErrFeatureDisabled = errors.New("feature disabled")
	ErrTooLarge        = errors.New("file too large")
	ErrPatternTimeout  = errors.New("pattern matching timed out")
	ErrBinaryContent   = errors.New("binary content")
)

// ExtractError is returned by extractors; Kind is one of the sentinel errors above.
type ExtractError struct {
	Kind error
	Err  error
}

func (e *ExtractError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *ExtractError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func corrupt(format string, args ...any) error {
	return &ExtractError{Kind: ErrCorruptDocument, Err: fmt.Errorf(format, args...)}
}

// ReasonFor maps a per-file pipeline error onto its skip reason.
func ReasonFor(err error) SkipReason {
	switch {
	case err == nil:
		return SkipNone
	case errors.Is(err, ErrTooLarge):
		return SkipTooLarge
	case errors.Is(err, ErrFeatureDisabled):
		return SkipFeatureDisabled
	case errors.Is(err, ErrPatternTimeout):
		return SkipPatternTimeout
	case errors.Is(err, ErrCorruptDocument):
		return SkipCorruptDocument
	case errors.Is(err, ErrBinaryContent):
		return SkipBinaryContent
	default:
		return SkipUnreadable
	}
}

// PatternError is the fatal error for a pattern that cannot be compiled.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern syntax %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }
