// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"testing"
)

// testFrame builds a frame filled with a repeating RGBA pattern.
func testFrame(width, height uint32, r, g, b, a uint8) []uint8 {
	frame := make([]uint8, int(width)*int(height)*4)
	for i := 0; i < len(frame); i += 4 {
		frame[i+0] = r
		frame[i+1] = g
		frame[i+2] = b
		frame[i+3] = a
	}
	return frame
}

// TestNewImageSurface tests surface creation.
func TestNewImageSurface(t *testing.T) {
	s, err := NewImageSurface(100, 100)
	if err != nil {
		t.Fatalf("NewImageSurface failed: %v", err)
	}
	defer s.Close()

	w, h := s.Size()
	if w != 100 || h != 100 {
		t.Errorf("Size() = %dx%d, want 100x100", w, h)
	}
	if s.Name() != "image" {
		t.Errorf("Name() = %s, want image", s.Name())
	}
}

// TestNewImageSurfaceInvalidSize tests handling of invalid dimensions.
func TestNewImageSurfaceInvalidSize(t *testing.T) {
	if _, err := NewImageSurface(0, 100); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := NewImageSurface(100, 0); err == nil {
		t.Error("expected error for zero height")
	}
}

// TestImageSurfacePresent tests presenting a complete frame.
func TestImageSurfacePresent(t *testing.T) {
	s, err := NewImageSurface(10, 10)
	if err != nil {
		t.Fatalf("NewImageSurface failed: %v", err)
	}
	defer s.Close()

	frame := testFrame(10, 10, 255, 0, 0, 255)
	if err := s.Present(frame, 10, 10); err != nil {
		t.Fatalf("Present failed: %v", err)
	}

	img := s.Snapshot()
	c := img.RGBAAt(5, 5)
	if c.R != 255 || c.G != 0 || c.B != 0 || c.A != 255 {
		t.Errorf("pixel = %v, want (255, 0, 0, 255)", c)
	}

	if s.PresentCount() != 1 {
		t.Errorf("PresentCount = %d, want 1", s.PresentCount())
	}
}

// TestImageSurfacePresentCopies tests that Present copies the buffer.
func TestImageSurfacePresentCopies(t *testing.T) {
	s, err := NewImageSurface(4, 4)
	if err != nil {
		t.Fatalf("NewImageSurface failed: %v", err)
	}
	defer s.Close()

	frame := testFrame(4, 4, 10, 20, 30, 255)
	if err := s.Present(frame, 4, 4); err != nil {
		t.Fatalf("Present failed: %v", err)
	}

	// Mutating the caller's buffer must not affect the surface
	frame[0] = 200

	img := s.Snapshot()
	if img.Pix[0] != 10 {
		t.Errorf("surface pixel = %d, want 10 (buffer should be copied)", img.Pix[0])
	}
}

// TestImageSurfacePresentWrongSize tests the frame size contract.
func TestImageSurfacePresentWrongSize(t *testing.T) {
	s, err := NewImageSurface(10, 10)
	if err != nil {
		t.Fatalf("NewImageSurface failed: %v", err)
	}
	defer s.Close()

	tests := []struct {
		name   string
		frame  []uint8
		width  uint32
		height uint32
	}{
		{"wrong dimensions", testFrame(5, 5, 0, 0, 0, 255), 5, 5},
		{"short buffer", make([]uint8, 10), 10, 10},
		{"long buffer", make([]uint8, 10*10*4+4), 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Present(tt.frame, tt.width, tt.height)
			if err == nil {
				t.Fatal("expected error")
			}

			var sizeErr *FrameSizeError
			if !errors.As(err, &sizeErr) {
				t.Errorf("expected FrameSizeError, got %T", err)
			}
		})
	}

	// Failed presents must not count
	if s.PresentCount() != 0 {
		t.Errorf("PresentCount = %d, want 0", s.PresentCount())
	}
}

// TestImageSurfaceSnapshotIsolation tests that Snapshot returns a copy.
func TestImageSurfaceSnapshotIsolation(t *testing.T) {
	s, err := NewImageSurface(4, 4)
	if err != nil {
		t.Fatalf("NewImageSurface failed: %v", err)
	}
	defer s.Close()

	if err := s.Present(testFrame(4, 4, 50, 50, 50, 255), 4, 4); err != nil {
		t.Fatalf("Present failed: %v", err)
	}

	snap := s.Snapshot()
	snap.Pix[0] = 0

	again := s.Snapshot()
	if again.Pix[0] != 50 {
		t.Errorf("pixel = %d, want 50 (snapshot should not alias surface)", again.Pix[0])
	}
}

// TestImageSurfaceClose tests closing and double-close safety.
func TestImageSurfaceClose(t *testing.T) {
	s, err := NewImageSurface(10, 10)
	if err != nil {
		t.Fatalf("NewImageSurface failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}

	// Double close should not error
	if err := s.Close(); err != nil {
		t.Errorf("double Close() returned error: %v", err)
	}

	// Present after close must fail with ErrSurfaceClosed
	err = s.Present(testFrame(10, 10, 0, 0, 0, 255), 10, 10)
	if !errors.Is(err, ErrSurfaceClosed) {
		t.Errorf("Present after Close = %v, want ErrSurfaceClosed", err)
	}
}

// TestParseSize tests dimension string parsing.
func TestParseSize(t *testing.T) {
	tests := []struct {
		arg     string
		w, h    uint32
		wantErr bool
	}{
		{"800x600", 800, 600, false},
		{"1x1", 1, 1, false},
		{"1920x1080", 1920, 1080, false},
		{"800", 0, 0, true},
		{"x600", 0, 0, true},
		{"800x", 0, 0, true},
		{"0x600", 0, 0, true},
		{"800x0", 0, 0, true},
		{"WxH", 0, 0, true},
		{"-800x600", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			w, h, err := parseSize(tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseSize(%q) succeeded, want error", tt.arg)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSize(%q) failed: %v", tt.arg, err)
			}
			if w != tt.w || h != tt.h {
				t.Errorf("parseSize(%q) = %dx%d, want %dx%d", tt.arg, w, h, tt.w, tt.h)
			}
		})
	}
}

// BenchmarkImageSurfacePresent benchmarks frame presentation.
func BenchmarkImageSurfacePresent(b *testing.B) {
	s, err := NewImageSurface(800, 600)
	if err != nil {
		b.Fatalf("NewImageSurface failed: %v", err)
	}
	defer s.Close()

	frame := testFrame(800, 600, 128, 128, 128, 255)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Present(frame, 800, 600); err != nil {
			b.Fatal(err)
		}
	}
}
