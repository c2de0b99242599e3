package arm

import (
	"errors"
	"fmt"
)

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
// Use errors.As to extract *Error for structured handling.
type Kind string

const (
	// KindDecode marks a malformed or mistyped boundary value.
	KindDecode Kind = "Decode"
	// KindPrecondition marks a call made with input the operation refuses
	// (wrong nonce length, already-finalized transaction, wiped witness).
	KindPrecondition Kind = "Precondition"
	// KindBackend marks a failure of the external proving/verification backend.
	KindBackend Kind = "Backend"
	// KindRandomness marks a failure of the randomness source. Fatal for the
	// key or proof generation that hit it.
	KindRandomness Kind = "Randomness"
	// KindInternal marks a failure in the library's own computation, such as
	// a degenerate point sum or a failed key derivation.
	KindInternal Kind = "Internal"
)

// Error is the library's structured error type.
//
// RuleID is a stable identifier (e.g. ARM-DEC-001, ARM-PRE-010) naming the
// violated rule. Field is the path of the offending field for decode errors
// (e.g. "transaction.actions[0].compliance_units[1].instance").
//
// Message is intended for humans; do not match on it. It never carries key,
// witness or plaintext material.
type Error struct {
	Kind    Kind
	RuleID  string
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError returns a structured error without a field path.
func NewError(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

// WrapError returns a structured error carrying cause.
func WrapError(kind Kind, ruleID, msg string, cause error) error {
	if cause == nil {
		return NewError(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// DecodeError reports a malformed field. field is the full path of the
// offending value; msg describes the expected shape.
func DecodeError(ruleID, field, msg string) error {
	return &Error{Kind: KindDecode, RuleID: ruleID, Field: field, Message: msg}
}

// Precondition reports a call the operation refuses to perform.
func Precondition(ruleID, msg string) error {
	return &Error{Kind: KindPrecondition, RuleID: ruleID, Message: msg}
}

// BackendFailure wraps an error returned by (or a malformed result from) the
// proving backend.
func BackendFailure(ruleID, msg string, cause error) error {
	return &Error{Kind: KindBackend, RuleID: ruleID, Message: msg, Cause: cause}
}

// RandomnessFailure wraps a failed read from the randomness source.
func RandomnessFailure(ruleID string, cause error) error {
	return &Error{Kind: KindRandomness, RuleID: ruleID, Message: "randomness source failed", Cause: cause}
}

// WithField returns a copy of err with its field path prefixed by prefix.
// Errors that are not *Error are returned unchanged.
func WithField(err error, prefix string) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	out := *e
	switch {
	case out.Field == "":
		out.Field = prefix
	case prefix != "":
		out.Field = prefix + "." + out.Field
	}
	return &out
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
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

// FieldOf returns the field path of a structured error, or "".
func FieldOf(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Field
}
