// Package render implements the presentation surface: a double-buffered
// texture store for the raw and the processed stream plus the render loop that
// draws one of them with the current orientation and aspect scaling.
//
// # Double Buffering
//
// Each stream owns two textures. Uploads always target the inactive texture
// and the current index flips only after the upload completed, so a draw
// never samples a half-written texture. The only lock guards the pending
// frames and the index flip; conversion and upload run outside of it.
//
// # Lifecycle
//
// A Surface starts in Created. Resize moves it to Sized on the next tick and
// the first tick at that size moves it to Rendering. Device failures during
// rendering are logged and counted; they never stop the loop.
package render
