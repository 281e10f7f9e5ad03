// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"testing"
)

// TestOpen tests surface identifier resolution.
func TestOpen(t *testing.T) {
	s, err := Open("image:32x16")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	w, h := s.Size()
	if w != 32 || h != 16 {
		t.Errorf("size = %dx%d, want 32x16", w, h)
	}
}

// TestOpenDefaultArg tests that a bare backend name uses defaults.
func TestOpenDefaultArg(t *testing.T) {
	s, err := Open("image")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	w, h := s.Size()
	if w != 800 || h != 600 {
		t.Errorf("size = %dx%d, want default 800x600", w, h)
	}
}

// TestOpenInvalidID tests malformed surface identifiers.
func TestOpenInvalidID(t *testing.T) {
	tests := []string{"", ":800x600", ":"}

	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			_, err := Open(id)
			if err == nil {
				t.Fatalf("Open(%q) succeeded, want error", id)
			}

			var invalid *InvalidIDError
			if !errors.As(err, &invalid) {
				t.Errorf("expected InvalidIDError, got %T", err)
			}
		})
	}
}

// TestOpenUnknownBackend tests resolution of unregistered names.
func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("holodeck:800x600")
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}

	var notFound *BackendNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected BackendNotFoundError, got %T", err)
	}
	if notFound.Name != "holodeck" {
		t.Errorf("error name = %s, want holodeck", notFound.Name)
	}
}

// TestOpenBadArg tests that backend argument errors propagate.
func TestOpenBadArg(t *testing.T) {
	_, err := Open("image:banana")
	if err == nil {
		t.Fatal("expected error for malformed size argument")
	}
}

// TestFrameSizeErrorMessage tests error message formatting.
func TestFrameSizeErrorMessage(t *testing.T) {
	err := &FrameSizeError{
		Width:     800,
		Height:    600,
		GotWidth:  400,
		GotHeight: 300,
		GotLen:    480000,
	}

	msg := err.Error()
	if msg == "" {
		t.Error("FrameSizeError message should not be empty")
	}
}

// TestInvalidIDErrorMessage tests error message formatting.
func TestInvalidIDErrorMessage(t *testing.T) {
	err := &InvalidIDError{ID: ":800x600"}

	msg := err.Error()
	if msg != "surface: invalid surface id: \":800x600\"" {
		t.Errorf("error message = %q, unexpected format", msg)
	}
}
