// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
	"strconv"
	"strings"
	"sync"
)

// ImageSurface is an in-memory presentation target backed by an
// *image.RGBA. It is the default backend and the one tests use: frames
// presented to it can be inspected pixel by pixel or encoded to PNG.
//
// ImageSurface is safe for concurrent use.
//
// Example:
//
//	s, err := surface.Open("image:800x600")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	err = s.Present(frame, 800, 600)
//	img := s.(*surface.ImageSurface).Snapshot()
type ImageSurface struct {
	mu      sync.Mutex
	width   uint32
	height  uint32
	img     *image.RGBA
	present uint64
	closed  bool
}

// NewImageSurface creates an in-memory surface with the given dimensions.
func NewImageSurface(width, height uint32) (*ImageSurface, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("surface: invalid image surface size %dx%d", width, height)
	}
	return &ImageSurface{
		width:  width,
		height: height,
		img:    image.NewRGBA(image.Rect(0, 0, int(width), int(height))),
	}, nil
}

// newImageSurfaceFromArg parses a "WxH" option argument. An empty
// argument selects the default 800x600 size.
func newImageSurfaceFromArg(arg string) (*ImageSurface, error) {
	if arg == "" {
		return NewImageSurface(800, 600)
	}
	w, h, err := parseSize(arg)
	if err != nil {
		return nil, err
	}
	return NewImageSurface(w, h)
}

// parseSize parses a dimension string of the form "800x600".
func parseSize(s string) (uint32, uint32, error) {
	sep := strings.IndexByte(s, 'x')
	if sep < 0 {
		return 0, 0, fmt.Errorf("surface: invalid size %q (want WxH)", s)
	}
	w, err := strconv.ParseUint(s[:sep], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("surface: invalid width in %q: %w", s, err)
	}
	h, err := strconv.ParseUint(s[sep+1:], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("surface: invalid height in %q: %w", s, err)
	}
	if w == 0 || h == 0 {
		return 0, 0, fmt.Errorf("surface: invalid size %q (zero dimension)", s)
	}
	return uint32(w), uint32(h), nil
}

// Name returns the backend name.
func (s *ImageSurface) Name() string { return "image" }

// Size returns the surface dimensions in pixels.
func (s *ImageSurface) Size() (uint32, uint32) {
	return s.width, s.height
}

// Present copies a complete RGBA frame into the surface. The frame must
// match the surface dimensions exactly; partial updates are not
// supported. The buffer is copied, so the caller may reuse it after
// Present returns.
func (s *ImageSurface) Present(frame []uint8, width, height uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSurfaceClosed
	}
	if width != s.width || height != s.height || len(frame) != int(width)*int(height)*4 {
		return &FrameSizeError{
			Width:     s.width,
			Height:    s.height,
			GotWidth:  width,
			GotHeight: height,
			GotLen:    len(frame),
		}
	}

	copy(s.img.Pix, frame)
	s.present++
	return nil
}

// Snapshot returns a copy of the most recently presented frame.
// Before the first Present the image is fully transparent black.
func (s *ImageSurface) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := image.NewRGBA(s.img.Rect)
	copy(out.Pix, s.img.Pix)
	return out
}

// PresentCount returns the number of complete frames presented so far.
func (s *ImageSurface) PresentCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.present
}

// Close releases the surface. Further Present calls fail with
// ErrSurfaceClosed. Close is idempotent.
func (s *ImageSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Verify ImageSurface implements Surface interface.
var _ Surface = (*ImageSurface)(nil)
