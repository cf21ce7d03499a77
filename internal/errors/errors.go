// Package errors defines the error taxonomy shared by the stores, the
// translation adapters and the conversation coordinator.
package errors

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	CodeUnknown      = "UNKNOWN"
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnknownUser  = "UNKNOWN_USER"
	CodeDetection    = "DETECTION"
	CodeTranslation  = "TRANSLATION"
	CodeCorruptState = "CORRUPT_STATE"
	CodeStorage      = "STORAGE"
	CodeConfig       = "CONFIG"
)

// ApplicationError is implemented by every error of this package.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

type base struct {
	code    string
	message string
	err     error
}

func (e *base) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *base) Code() string  { return e.code }
func (e *base) Unwrap() error { return e.err }

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if there is none.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return CodeUnknown
}

// InvalidInputError reports an empty or malformed caller-supplied field.
type InvalidInputError struct {
	base
	Field string
}

func NewInvalidInputError(field, message string) error {
	return &InvalidInputError{
		base:  base{code: CodeInvalidInput, message: message},
		Field: field,
	}
}

// UnknownUserError reports a profile lookup miss.
type UnknownUserError struct {
	base
	UserID string
}

func NewUnknownUserError(userID string) error {
	return &UnknownUserError{
		base:   base{code: CodeUnknownUser, message: fmt.Sprintf("unknown user %q", userID)},
		UserID: userID,
	}
}

// DetectionError reports that the detection capability could not determine
// a language.
type DetectionError struct {
	base
}

func NewDetectionError(message string, cause error) error {
	return &DetectionError{base: base{code: CodeDetection, message: message, err: cause}}
}

// TranslationError reports a failure of the translation capability.
type TranslationError struct {
	base
	SourceLang string
	TargetLang string
}

func NewTranslationError(sourceLang, targetLang string, cause error) error {
	return &TranslationError{
		base: base{
			code:    CodeTranslation,
			message: fmt.Sprintf("translate %s->%s", sourceLang, targetLang),
			err:     cause,
		},
		SourceLang: sourceLang,
		TargetLang: targetLang,
	}
}

// CorruptStateError reports a persisted document that cannot be parsed.
type CorruptStateError struct {
	base
	Key string
}

func NewCorruptStateError(key string, cause error) error {
	return &CorruptStateError{
		base: base{code: CodeCorruptState, message: fmt.Sprintf("corrupt document %q", key), err: cause},
		Key:  key,
	}
}

// StorageError reports an I/O failure of the document store.
type StorageError struct {
	base
}

func NewStorageError(message string, cause error) error {
	return &StorageError{base: base{code: CodeStorage, message: message, err: cause}}
}

type ConfigError struct {
	base
}

func NewConfigError(message string, cause error) error {
	return &ConfigError{base: base{code: CodeConfig, message: message, err: cause}}
}
