package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies engine errors. All of them are caller programming
// errors and are never retried.
type ErrorKind uint8

const (
	// KindInvalidParameter is an unknown dimension value, grouping unit or option
	KindInvalidParameter ErrorKind = iota + 1

	// KindInvalidSummaryMode is a summary mode undefined for the inferred datatype
	KindInvalidSummaryMode

	// KindTypeMismatch is a reducer returning inconsistent element types
	KindTypeMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidParameter:
		return "InvalidParameter"
	case KindInvalidSummaryMode:
		return "InvalidSummaryMode"
	case KindTypeMismatch:
		return "TypeMismatch"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is
var (
	ErrInvalidParameter   = &Error{Kind: KindInvalidParameter, Msg: "invalid parameter"}
	ErrInvalidSummaryMode = &Error{Kind: KindInvalidSummaryMode, Msg: "invalid summary mode"}
	ErrTypeMismatch       = &Error{Kind: KindTypeMismatch, Msg: "type mismatch"}

	// ErrDuplicatePath is returned when a result tree path is written twice
	ErrDuplicatePath = errors.New("duplicate result path")
)

// Error is a structured engine error
type Error struct {
	Kind     ErrorKind
	Msg      string
	Value    string   // Offending value, if any
	Accepted []string // Accepted values, if the set is closed
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(e.Msg)
	if len(e.Accepted) > 0 {
		b.WriteString(" (accepted: ")
		b.WriteString(strings.Join(e.Accepted, ", "))
		b.WriteString(")")
	}
	return b.String()
}

// Is matches errors of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf extracts the ErrorKind from any error, 0 when err is not an engine error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func invalidParameter(dimension, value string, accepted []string) error {
	return &Error{
		Kind:     KindInvalidParameter,
		Msg:      fmt.Sprintf("%q is not a valid value for %s", value, dimension),
		Value:    value,
		Accepted: accepted,
	}
}

func invalidSummaryMode(mode SummaryMode, datatype Datatype) error {
	return &Error{
		Kind:  KindInvalidSummaryMode,
		Msg:   fmt.Sprintf("%q is not a valid summary type for %s", string(mode), datatype),
		Value: string(mode),
	}
}

func typeMismatch(index int, value any, want Datatype) error {
	return &Error{
		Kind:  KindTypeMismatch,
		Msg:   fmt.Sprintf("element %d (%v) does not match %s", index, value, want),
		Value: fmt.Sprintf("%v", value),
	}
}
