// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides presentation targets for rendered frames.
//
// A Surface is a destination that accepts complete RGBA frames. It
// decouples the rendering engine from how frames reach the screen, so
// the same engine code can drive:
//
//   - In-memory images for tests and file output (ImageSurface)
//   - Linux framebuffer devices (the fbdev backend)
//   - Window backends registered by viewer applications
//
// # Registry
//
// Backends register themselves by name with a priority. The engine
// resolves a surface identifier of the form "name" or "name:arg"
// through the registry:
//
//	s, err := surface.Open("image:800x600")
//	s, err := surface.Open("fbdev:/dev/fb0")
//
// Backends that depend on platform facilities report availability
// through their Available hook; NewSurface picks the highest-priority
// backend that is actually usable.
//
// # Frame contract
//
// Present accepts only complete frames whose dimensions match the
// surface. A frame is row-major RGBA, 4 bytes per pixel. Surfaces copy
// the buffer before returning, so callers may reuse it immediately.
package surface
