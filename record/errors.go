package record

import "errors"

// ErrKind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
// Error() strings are human-readable and may evolve.
type ErrKind string

const (
	KindValidation ErrKind = "Validation"
	KindIntegrity  ErrKind = "Integrity"
	KindEncode     ErrKind = "Encode"
	KindInternal   ErrKind = "Internal"
)

// Error is the package's structured error type.
//
// RuleID is a stable identifier (e.g. NT-VAL-001) naming the violated
// invariant or validation rule.
type Error struct {
	Kind    ErrKind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind ErrKind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind ErrKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
