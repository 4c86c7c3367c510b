package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an engine error event.
type ErrorKind string

const (
	ErrPermissionDenied  ErrorKind = "not-allowed"
	ErrDeviceUnavailable ErrorKind = "audio-capture"
	ErrNoSpeech          ErrorKind = "no-speech"
	ErrAborted           ErrorKind = "aborted"
	ErrNetwork           ErrorKind = "network"
	ErrServiceNotAllowed ErrorKind = "service-not-allowed"
	ErrKindUnsupported   ErrorKind = "unsupported"
	ErrUnknown           ErrorKind = "unknown"
)

var kinds = map[string]ErrorKind{
	string(ErrPermissionDenied):  ErrPermissionDenied,
	string(ErrDeviceUnavailable): ErrDeviceUnavailable,
	string(ErrNoSpeech):          ErrNoSpeech,
	string(ErrAborted):           ErrAborted,
	string(ErrNetwork):           ErrNetwork,
	string(ErrServiceNotAllowed): ErrServiceNotAllowed,
	string(ErrKindUnsupported):   ErrKindUnsupported,
}

// ParseErrorKind maps a recogniser error code to its kind. Unrecognised codes
// map to ErrUnknown.
func ParseErrorKind(code string) ErrorKind {
	if k, ok := kinds[code]; ok {
		return k
	}
	return ErrUnknown
}

// Fatal reports whether the kind ends the session instead of letting the
// restart policy recover.
func (k ErrorKind) Fatal() bool {
	switch k {
	case ErrPermissionDenied, ErrDeviceUnavailable, ErrServiceNotAllowed, ErrKindUnsupported:
		return true
	default:
		return false
	}
}

// Message is the user-facing text for a fatal kind.
func (k ErrorKind) Message() string {
	switch k {
	case ErrPermissionDenied:
		return "microphone access denied"
	case ErrDeviceUnavailable:
		return "microphone unavailable"
	case ErrServiceNotAllowed:
		return "speech service not allowed"
	case ErrKindUnsupported:
		return "speech engine unsupported"
	default:
		return "speech recognition error"
	}
}

// Error carries a kind out of an engine adapter.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "speech engine error"
	}
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError wraps err with kind. A nil err still yields an error.
func NewError(kind ErrorKind, err error) error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the kind of err, or ErrUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrUnsupported) {
		return ErrKindUnsupported
	}
	return ErrUnknown
}
