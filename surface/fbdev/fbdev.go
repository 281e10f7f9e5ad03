// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build linux && cgo

// Package fbdev presents frames on a Linux framebuffer device.
//
// Importing this package registers the "fbdev" surface backend:
//
//	import _ "github.com/gogpu/fractal/surface/fbdev"
//
//	s, err := surface.Open("fbdev:/dev/fb0")
//
// The backend reports itself available only when the device node
// exists, so registries on systems without a framebuffer skip it.
package fbdev

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"sync"

	fb "github.com/gonutz/framebuffer"

	"github.com/gogpu/fractal/surface"
)

// DefaultDevice is the framebuffer device used when the surface ID
// carries no argument.
const DefaultDevice = "/dev/fb0"

// FramebufferSurface presents frames on a Linux framebuffer device.
//
// The device dictates the surface dimensions; frames must match them
// exactly. Pixel format conversion from RGBA to the device format is
// handled by the framebuffer driver binding.
type FramebufferSurface struct {
	mu     sync.Mutex
	dev    *fb.Device
	path   string
	width  uint32
	height uint32
	closed bool
}

// Open opens the framebuffer device at the given path.
// An empty path selects DefaultDevice.
func Open(path string) (*FramebufferSurface, error) {
	if path == "" {
		path = DefaultDevice
	}

	dev, err := fb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("surface: open framebuffer %s: %w", path, err)
	}

	bounds := dev.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		dev.Close()
		return nil, fmt.Errorf("surface: framebuffer %s reports empty bounds %v", path, bounds)
	}

	return &FramebufferSurface{
		dev:    dev,
		path:   path,
		width:  uint32(w),
		height: uint32(h),
	}, nil
}

// Name returns the backend name.
func (s *FramebufferSurface) Name() string { return "fbdev" }

// Device returns the framebuffer device path.
func (s *FramebufferSurface) Device() string { return s.path }

// Size returns the framebuffer dimensions in pixels.
func (s *FramebufferSurface) Size() (uint32, uint32) {
	return s.width, s.height
}

// Present copies a complete RGBA frame onto the framebuffer.
func (s *FramebufferSurface) Present(frame []uint8, width, height uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return surface.ErrSurfaceClosed
	}
	if width != s.width || height != s.height || len(frame) != int(width)*int(height)*4 {
		return &surface.FrameSizeError{
			Width:     s.width,
			Height:    s.height,
			GotWidth:  width,
			GotHeight: height,
			GotLen:    len(frame),
		}
	}

	// Wrap the frame without copying; the device handles the pixel
	// format conversion per scanline.
	src := &image.RGBA{
		Pix:    frame,
		Stride: int(width) * 4,
		Rect:   image.Rect(0, 0, int(width), int(height)),
	}
	draw.Draw(s.dev, s.dev.Bounds(), src, image.Point{}, draw.Src)
	return nil
}

// Close releases the framebuffer device. Close is idempotent.
func (s *FramebufferSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.dev.Close()
	return nil
}

// available reports whether the default framebuffer device exists.
func available() bool {
	_, err := os.Stat(DefaultDevice)
	return err == nil
}

func init() {
	surface.Register("fbdev", 20, func(opts surface.Options) (surface.Surface, error) {
		return Open(opts.Arg)
	}, available)
}

var _ surface.Surface = (*FramebufferSurface)(nil)
