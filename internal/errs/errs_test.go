//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package errs

import (
	"errors"
	"strings"
	"testing"
)

func TestConstructorsClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"validation", Validation("table %q", "x"), ErrValidation},
		{"not found", NotFound("user %s", "42"), ErrNotFound},
		{"configuration", Configuration("bad doc"), ErrConfiguration},
		{"storage", Storage("insert", errors.New("boom")), ErrStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("Expected %v to wrap %v", tt.err, tt.sentinel)
			}
		})
	}
}

func TestStorageKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage("insert chunk", cause)

	if !errors.Is(err, cause) {
		t.Error("Storage should keep the original cause in the chain")
	}
	if !strings.Contains(err.Error(), "insert chunk") {
		t.Errorf("Expected operation in message, got: %s", err)
	}
}

func TestStorageNil(t *testing.T) {
	if Storage("noop", nil) != nil {
		t.Error("Storage(nil) should return nil")
	}
}

func TestStorageNotDoubleWrapped(t *testing.T) {
	inner := Storage("exec", errors.New("boom"))
	outer := Storage("commit", inner)
	if outer != inner {
		t.Errorf("Expected already classified error to pass through, got: %v", outer)
	}
}
