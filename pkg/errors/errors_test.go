package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidVersion, "invalid version: %s", "1.x")

	if err.Code != ErrCodeInvalidVersion {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidVersion)
	}
	if err.Message != "invalid version: 1.x" {
		t.Errorf("Message = %q, want %q", err.Message, "invalid version: 1.x")
	}
	want := "INVALID_VERSION: invalid version: 1.x"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("read failed")
	err := Wrap(ErrCodeManifest, cause, "failed to read %s", "Cargo.toml")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	want := "MANIFEST_ERROR: failed to read Cargo.toml: read failed"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeUnsupportedRequirement, "range operators not supported")

	if !Is(err, ErrCodeUnsupportedRequirement) {
		t.Error("Is() = false, want true for matching code")
	}
	if Is(err, ErrCodeNetwork) {
		t.Error("Is() = true, want false for different code")
	}
	if Is(fmt.Errorf("plain"), ErrCodeNetwork) {
		t.Error("Is() = true, want false for non-structured error")
	}
}

func TestIs_Wrapped(t *testing.T) {
	inner := New(ErrCodeInvalidLevel, "cannot go back to alpha")
	outer := fmt.Errorf("planning: %w", inner)

	if !Is(outer, ErrCodeInvalidLevel) {
		t.Error("Is() should unwrap to find the structured error")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeTimeout, "publish timed out")); got != ErrCodeTimeout {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeTimeout)
	}
	if got := GetCode(fmt.Errorf("plain")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeFileNotFound, "CHANGELOG.md does not exist")
	if got := UserMessage(err); got != "CHANGELOG.md does not exist" {
		t.Errorf("UserMessage() = %q, want message without code prefix", got)
	}
	if got := UserMessage(fmt.Errorf("plain")); got != "plain" {
		t.Errorf("UserMessage() = %q, want %q", got, "plain")
	}
}
