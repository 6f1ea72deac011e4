package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidTheme, "unknown theme: %s", "neon")

	if err.Code != ErrCodeInvalidTheme {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidTheme)
	}

	if err.Message != "unknown theme: neon" {
		t.Errorf("Message = %v, want %v", err.Message, "unknown theme: neon")
	}

	expected := "INVALID_THEME: unknown theme: neon"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "range read failed")

	if err.Code != ErrCodeNetwork {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNetwork)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeTimeout, "probe timed out"), ErrCodeTimeout, true},
		{"different code", New(ErrCodeTimeout, "probe timed out"), ErrCodeNetwork, false},
		{"wrapped structured error", fmt.Errorf("outer: %w", New(ErrCodeTileNotFound, "missing")), ErrCodeTileNotFound, true},
		{"plain error", errors.New("plain"), ErrCodeInternal, false},
		{"nil error", nil, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeRangeRefused, "no ranges")); got != ErrCodeRangeRefused {
		t.Errorf("GetCode = %v, want %v", got, ErrCodeRangeRefused)
	}
	if got := GetCode(errors.New("plain")); got != Code("") {
		t.Errorf("GetCode = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeArchiveNotFound, "no archive registered for key %q", "planet")
	if got := UserMessage(err); got != `no archive registered for key "planet"` {
		t.Errorf("UserMessage = %q", got)
	}
	plain := errors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage = %q", got)
	}
}
