package errs

import (
	"errors"
	"testing"
)

func TestFatalWrapsAndUnwraps(t *testing.T) {
	base := errors.New("disk full")
	err := Fatal("control.Write", base)
	if !IsFatal(err) {
		t.Fatal("expected IsFatal to be true")
	}
	if !errors.Is(err, base) {
		t.Fatal("expected errors.Is to find the wrapped base error")
	}
}

func TestFatalNilIsNil(t *testing.T) {
	if Fatal("op", nil) != nil {
		t.Fatal("Fatal(op, nil) should return nil")
	}
}

func TestIsFatalFalseForPlainError(t *testing.T) {
	if IsFatal(errors.New("plain")) {
		t.Fatal("plain error should not be fatal")
	}
}
