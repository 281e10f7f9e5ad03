// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	"strings"
)

// Surface is a presentation target for completed frames.
//
// A Surface supplies the pixel dimensions a frame must match and accepts
// complete row-major RGBA buffers, one per render pass. Implementations may
// be in-memory images, framebuffer devices, or windows.
//
// Present and Close must not be called concurrently with each other.
//
// Example usage:
//
//	s, err := surface.Open("image:800x600")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	w, h := s.Size()
//	frame := make([]uint8, w*h*4)
//	err = s.Present(frame, w, h)
type Surface interface {
	// Name returns the backend name this surface was opened from.
	Name() string

	// Size returns the surface dimensions in pixels.
	Size() (width, height uint32)

	// Present hands a completed row-major RGBA frame to the surface.
	// The dimensions must match Size and the frame length must equal
	// width*height*4. The surface must not retain the slice after
	// Present returns.
	Present(frame []uint8, width, height uint32) error

	// Close releases the surface. Close is idempotent; after Close,
	// Present fails with ErrSurfaceClosed.
	Close() error
}

// Options carries backend-specific parameters from Open to a factory.
type Options struct {
	// Arg is the text after the first colon of the surface ID:
	// "800x600" in "image:800x600", "/dev/fb1" in "fbdev:/dev/fb1".
	// Empty when the ID is a bare backend name.
	Arg string
}

// Open resolves a surface ID of the form "name" or "name:arg" against the
// global registry and opens the surface.
func Open(id string) (Surface, error) {
	name, arg := id, ""
	if i := strings.IndexByte(id, ':'); i >= 0 {
		name, arg = id[:i], id[i+1:]
	}
	if name == "" {
		return nil, &InvalidIDError{ID: id}
	}
	return NewSurfaceByName(name, Options{Arg: arg})
}

// ErrSurfaceClosed is returned by Present after the surface was closed.
var ErrSurfaceClosed = errors.New("surface: closed")

// InvalidIDError indicates a surface ID that cannot be parsed.
type InvalidIDError struct {
	ID string
}

func (e *InvalidIDError) Error() string {
	return "surface: invalid surface id: \"" + e.ID + "\""
}

// FrameSizeError indicates a presented frame that does not match the
// surface dimensions.
type FrameSizeError struct {
	Width, Height uint32 // dimensions the surface expects
	GotWidth      uint32 // dimensions the caller presented
	GotHeight     uint32
	GotLen        int // length of the presented slice
}

func (e *FrameSizeError) Error() string {
	return fmt.Sprintf("surface: frame %dx%d (%d bytes) does not match surface %dx%d",
		e.GotWidth, e.GotHeight, e.GotLen, e.Width, e.Height)
}
