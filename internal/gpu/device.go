// Package gpu is the narrow device interface the presentation surface draws
// through, plus a software implementation.
//
// The interface mirrors the handful of GLES2 calls the surface needs: one
// shader program, a few RGBA textures, a textured full-screen quad and a text
// overlay. Every call may fail; the surface logs failures and carries on.
package gpu

import (
	"errors"
	"image"
)

// Program is an opaque shader program handle.
type Program uint32

// Texture is an opaque texture handle. Zero is never a valid texture.
type Texture uint32

// ErrInvalidHandle is returned when a handle does not name a live object.
var ErrInvalidHandle = errors.New("gpu: invalid handle")

// Device is the rendering backend.
//
// Methods are called from the render goroutine only, except Snapshot which
// may be called from anywhere.
type Device interface {
	// CreateProgram compiles and links a vertex/fragment shader pair.
	CreateProgram(vertexSrc, fragmentSrc string) (Program, error)

	// CreateTexture allocates a texture name with no storage.
	CreateTexture() (Texture, error)

	// AllocTexture (re)allocates storage for a width x height RGBA texture.
	AllocTexture(t Texture, width, height int) error

	// UploadTexture replaces the full contents of t with packed RGBA pixels.
	UploadTexture(t Texture, rgba []byte) error

	// Viewport sets the drawable size.
	Viewport(width, height int) error

	// Clear fills the viewport with the clear color.
	Clear() error

	// DrawQuad draws t over the [-1,1]x[-1,1] quad transformed by mvp.
	DrawQuad(p Program, t Texture, mvp Mat4, alpha float32) error

	// DrawText draws an overlay string with its baseline starting at (x, y)
	// in viewport pixels.
	DrawText(x, y int, text string) error

	// Present finishes the frame.
	Present() error

	// Snapshot returns the last presented frame, or nil before the first
	// Present. The returned image must not be modified.
	Snapshot() image.Image
}
