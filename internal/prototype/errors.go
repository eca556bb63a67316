package prototype

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeCorpusMissing = "CORPUS_MISSING"
	ErrCodeCorpusInvalid = "CORPUS_INVALID"
	ErrCodeNoLabels      = "NO_LABELS"
	ErrCodeNoUsableClips = "NO_USABLE_CLIPS"
	ErrCodeModelMissing  = "MODEL_MISSING"
	ErrCodeModelCorrupt  = "MODEL_CORRUPT"
	ErrCodeModelEmpty    = "MODEL_EMPTY"

	ErrCodeModelIncompatible = "MODEL_INCOMPATIBLE"
)

// CorpusError reports a training corpus that cannot produce a prototype table
type CorpusError struct {
	Root    string `json:"root"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *CorpusError) Error() string {
	msg := fmt.Sprintf("corpus %s: %s", e.Root, e.Message)
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *CorpusError) Unwrap() error {
	return e.Cause
}

// NewCorpusError creates a new corpus error
func NewCorpusError(root, code, message string, cause error) *CorpusError {
	return &CorpusError{Root: root, Code: code, Message: message, Cause: cause}
}

// IsCorpusError reports whether err is or wraps a *CorpusError
func IsCorpusError(err error) bool {
	var corpusErr *CorpusError
	return errors.As(err, &corpusErr)
}

// MissingModelError is returned when scoring is attempted without a usable
// prototype table: the file is absent, unreadable, corrupt or empty.
type MissingModelError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *MissingModelError) Error() string {
	msg := "prototype model unavailable"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *MissingModelError) Unwrap() error {
	return e.Cause
}

// NewMissingModelError creates a new missing model error
func NewMissingModelError(path, code, message string, cause error) *MissingModelError {
	return &MissingModelError{Path: path, Code: code, Message: message, Cause: cause}
}

// IsMissingModel reports whether err is or wraps a *MissingModelError
func IsMissingModel(err error) bool {
	var missing *MissingModelError
	return errors.As(err, &missing)
}
