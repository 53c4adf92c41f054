// Package solvererr defines the error taxonomy a solve can fail with.
// NoMatch, RoundingFailure and FeeUnreachable are all non-fatal: the
// coordinator and viability loop degrade to the trivial (empty)
// solution on any of them. ConstraintViolation and InstanceParseError
// are fatal -- they indicate either malformed input or a violated
// invariant that should never happen given correct code, and are
// surfaced to the caller instead of swallowed.
package solvererr

import "errors"

// Kind classifies a solver error for callers that need to branch on it
// (e.g. the CLI's exit code, the viability loop's degrade-vs-abort
// decision) without string-matching error messages.
type Kind int

const (
	// KindNoMatch means no pair of orders could be matched profitably
	// at any exchange rate.
	KindNoMatch Kind = iota
	// KindRoundingFailure means a rational solution could not be
	// rounded to integers without violating a constraint.
	KindRoundingFailure
	// KindFeeUnreachable means no combination of fee-token sell orders
	// could cover the pair's fee-token imbalance.
	KindFeeUnreachable
	// KindConstraintViolation means a computed solution failed its own
	// post-condition checks -- a programmer error, never expected from
	// well-formed input.
	KindConstraintViolation
	// KindInstanceParseError means the input instance itself was
	// malformed (bad JSON, a non-integer price where one is required,
	// etc).
	KindInstanceParseError
)

func (k Kind) String() string {
	switch k {
	case KindNoMatch:
		return "no_match"
	case KindRoundingFailure:
		return "rounding_failure"
	case KindFeeUnreachable:
		return "fee_unreachable"
	case KindConstraintViolation:
		return "constraint_violation"
	case KindInstanceParseError:
		return "instance_parse_error"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Kind, so errors.As callers can
// recover the classification even after wrapping with fmt.Errorf("%w").
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a classified error with no underlying cause.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs a classified error wrapping an underlying cause.
func Wrap(kind Kind, msg string, cause error) error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Is reports whether err is, or wraps, a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// IsDegradable reports whether err's kind should cause the caller to
// fall back to the trivial solution rather than abort the whole solve.
func IsDegradable(err error) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Kind {
	case KindNoMatch, KindRoundingFailure, KindFeeUnreachable:
		return true
	default:
		return false
	}
}
