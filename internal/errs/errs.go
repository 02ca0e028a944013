//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package errs defines the error taxonomy shared by the synthesizers, the
// persistence layer and the scheduler. Callers classify failures with
// errors.Is against the sentinel values.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input rejected before any store access
	// (blank identifiers, invalid table or column names, bad parameters).
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a referenced row that does not exist in the store.
	ErrNotFound = errors.New("not found")

	// ErrStorage marks any failure reported by the store while querying,
	// inserting or controlling a transaction.
	ErrStorage = errors.New("storage error")

	// ErrConfiguration marks fatal setup problems such as malformed
	// reference documents or a destination table missing its columns.
	ErrConfiguration = errors.New("configuration error")
)

// Validation returns an ErrValidation with a formatted message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound with a formatted message.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Configuration returns an ErrConfiguration with a formatted message.
func Configuration(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// Storage wraps a store failure for the named operation. A nil err yields nil.
// Errors that are already classified as storage errors are returned unchanged.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
