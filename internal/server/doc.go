// Package server implements the HTTP interface of the edge camera.
//
// A remote viewer polls the latest processed frame, reads the processing
// status and pushes detector settings. The server only reads from the frame
// publisher and writes to the settings channel; it never holds a pipeline
// lock.
//
// # Routes
//
//   - GET /frame.jpg: latest processed JPEG, or 404 "no frame"
//   - GET /status: {"status":"idle"|"running"|"error: <msg>"}
//   - POST /settings: {"lowThreshold":n,"highThreshold":n,"edgesEnabled":b},
//     answers {"ok":true} or 400 {"ok":false}
//   - GET /stats: pipeline and render counters
//   - GET /preview.jpg: last presented surface, optional ?width= resize
//   - GET /stream: websocket pushing each new processed JPEG
//   - OPTIONS on any path: empty 200
//   - anything else: 200 "Edge server running"
//
// # CORS
//
// Every response carries Access-Control-Allow-Origin "*", allows the methods
// GET, POST and OPTIONS, and allows the Content-Type request header.
//
// # Settings Defaults
//
// Fields missing from a settings body, or an empty body, default to
// lowThreshold 0, highThreshold 0 and edgesEnabled true. Thresholds outside
// [0, 255] and non-empty bodies that are not a JSON object with those fields
// are rejected.
package server
