package bibfetch

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	ECONFLICT = "conflict"
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
)

// Translation pipeline error codes.
const (
	// ENOTRANSLATOR means no candidate translator produced items and none
	// reported a substantive error.
	ENOTRANSLATOR = "no_translator"

	// EREJECTED means a translator's detect step declined the page.
	// It is absorbed by the orchestrator and drives fallback.
	EREJECTED = "detection_rejected"

	EMALFORMED = "malformed_markup"
	EEXTRACT   = "extraction_failed"
	EMISSING   = "missing_capability"
	ENETWORK   = "network"
	ETIMEOUT   = "timeout"
	ESERIALIZE = "serialization"
)

// Error represents an application-specific error. Translator is set when
// the failure originates in a specific translator; Err holds the
// underlying cause, if any.
type Error struct {
	Code       string
	Message    string
	Translator string
	Err        error
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	msg := e.Message
	if e.Translator != "" {
		msg = e.Translator + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return fmt.Sprintf("bibfetch error: code=%s message=%s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// ErrorTranslator returns the identifier of the translator an error is
// attributed to, or an empty string.
func ErrorTranslator(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Translator
	}
	return ""
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrapf returns an Error with a given code that wraps err.
func Wrapf(code string, err error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
