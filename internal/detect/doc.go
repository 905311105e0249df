// Package detect provides the edge-detection transform consumed by the
// processing worker.
//
// The worker only depends on the Detector interface, so any backend (an
// in-process library, a subprocess, a remote service) can be plugged in.
// Canny is the built-in implementation.
//
// # Thresholds
//
// Lower thresholds detect more edges but increase noise. Higher thresholds
// produce cleaner results but may miss faint edges.
//
// Recommended starting points:
//   - Indoor scenes: low=50, high=150
//   - Bright outdoor scenes: low=100, high=200
//   - Noisy low-light sensors: low=75, high=175
package detect
