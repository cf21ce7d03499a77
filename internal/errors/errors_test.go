package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid input", NewInvalidInputError("user_id", "user id is required"), CodeInvalidInput},
		{"unknown user", NewUnknownUserError("ghost"), CodeUnknownUser},
		{"detection", NewDetectionError("no language", nil), CodeDetection},
		{"translation", NewTranslationError("en", "es", io.EOF), CodeTranslation},
		{"corrupt", NewCorruptStateError("profiles", io.ErrUnexpectedEOF), CodeCorruptState},
		{"storage", NewStorageError("write", io.ErrShortWrite), CodeStorage},
		{"wrapped", fmt.Errorf("turn: %w", NewUnknownUserError("x")), CodeUnknownUser},
		{"plain", io.EOF, CodeUnknown},
		{"nil", nil, CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Fatalf("Code() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnwrapAndAs(t *testing.T) {
	err := fmt.Errorf("append: %w", NewCorruptStateError("history", io.ErrUnexpectedEOF))

	var corrupt *CorruptStateError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptStateError in chain: %v", err)
	}
	if corrupt.Key != "history" {
		t.Fatalf("unexpected key: %q", corrupt.Key)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("cause lost: %v", err)
	}

	var unknown *UnknownUserError
	if errors.As(err, &unknown) {
		t.Fatalf("unexpected UnknownUserError match")
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewTranslationError("en", "es", io.EOF)
	if got := err.Error(); got != "translate en->es: EOF" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := NewInvalidInputError("text", "text is required").Error(); got != "text is required" {
		t.Fatalf("unexpected message: %q", got)
	}
}
