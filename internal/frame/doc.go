// Package frame defines the luma frame value passed through the pipeline.
//
// A Buffer describes a single-channel brightness plane exactly as the capture
// source delivered it, padding included. Consumers never assume a packed
// layout: every conversion walks rows by RowStride and samples by PixelStride.
//
// # Conversions
//
//   - ToRGBA: 4-channel presentable copy for texture upload
//   - Packed: tight width*height plane
//   - Gray: *image.Gray view for the image ecosystem
//   - EncodeJPEG: transmittable encoding for the network surface
package frame
