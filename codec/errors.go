package codec

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
type Kind string

const (
	// KindFormat reports text that is not a valid encoding: a symbol outside
	// the alphabet, a malformed Base64 payload, or a truncated CID layout.
	KindFormat Kind = "Format"

	// KindType reports an argument of the wrong shape (e.g. a CID hash that is
	// not a byte buffer).
	KindType Kind = "Type"

	// KindValue reports a missing or unsupported argument value.
	KindValue Kind = "Value"

	// KindInternal reports a failure that is not the caller's fault.
	KindInternal Kind = "Internal"
)

// Stable rule identifiers.
const (
	RuleBadSymbol      = "BT-FMT-001"
	RuleBadBase64      = "BT-FMT-002"
	RuleShortCID       = "BT-FMT-003"
	RuleHashNotBytes   = "BT-TYPE-001"
	RuleSizeMissing    = "BT-VAL-001"
	RuleHashUnmappable = "BT-VAL-002"
	RuleUnknownCodec   = "BT-VAL-003"
	RuleBadRequest     = "BT-VAL-004"
)

// Error is the structured error returned by every codec in this module.
//
// Codec names the codec (or "cid") that failed. Message is intended for
// humans; do not match on it.
type Error struct {
	Kind    Kind
	RuleID  string
	Codec   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Codec == "" {
		return e.Message
	}
	return e.Codec + ": " + e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Errorf builds a *Error with a formatted message.
func Errorf(kind Kind, ruleID, codecName, format string, args ...any) error {
	return &Error{Kind: kind, RuleID: ruleID, Codec: codecName, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a *Error around cause.
func Wrap(kind Kind, ruleID, codecName, msg string, cause error) error {
	return &Error{Kind: kind, RuleID: ruleID, Codec: codecName, Message: msg, Cause: cause}
}

// SymbolError reports the first character of s at byte offset pos that is
// not part of the codec's alphabet.
func SymbolError(codecName, s string, pos int) error {
	r, _ := utf8.DecodeRuneInString(s[pos:])
	return Errorf(KindFormat, RuleBadSymbol, codecName, "invalid character %q at offset %d", r, pos)
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
