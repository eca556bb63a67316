package audio

import (
	"errors"
	"strings"
)

// Common error codes
const (
	ErrCodeDecoding      = "DECODING_FAILED"
	ErrCodeInvalidFormat = "INVALID_FORMAT"
	ErrCodeEmptyInput    = "EMPTY_INPUT"
	ErrCodeRead          = "READ_FAILED"
	ErrCodeResample      = "RESAMPLE_FAILED"
)

// DecodeError is returned when no decoding strategy could turn the input into PCM.
// Individual strategy failures are not reported; Attempts lists the strategies tried.
type DecodeError struct {
	Source   string   `json:"source"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Attempts []string `json:"attempts,omitempty"`
	Cause    error    `json:"-"`
}

func (e *DecodeError) Error() string {
	msg := e.Message
	if e.Source != "" {
		msg = e.Source + ": " + msg
	}
	if len(e.Attempts) > 0 {
		msg += " (tried " + strings.Join(e.Attempts, ", ") + ")"
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// NewDecodeError creates a new decode error
func NewDecodeError(source, code, message string, cause error) *DecodeError {
	return &DecodeError{
		Source:  source,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsDecodeError reports whether err is or wraps a *DecodeError
func IsDecodeError(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr)
}
