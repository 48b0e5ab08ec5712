// Package server implements the MCP (Model Context Protocol) server for
// document scanning.
//
// This package provides a JSON-RPC 2.0 server that exposes the scanner
// through the MCP protocol: an MCP client captures a photo of a document,
// lets the server find the page boundary, commits a perspective-corrected
// crop, enhances and rotates it, and saves the result as a JPEG.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Capture:
//   - scan_detect: Find the page boundary in a file without starting a scan
//   - scan_capture: Start a scan from a file (debounced, 3 s)
//
// Editing:
//   - scan_crop: Commit the perspective crop
//   - scan_enhance: Cycle none, brighten, binarize
//   - scan_sharpen: Sharpen the current image
//   - scan_rotate: Quarter turn counter-clockwise
//   - scan_reset: Back to the committed crop
//   - scan_save: Write JPEG and finish
//
// Inspection:
//   - scan_preview: PNG thumbnail of the document or the captured frame
//   - scan_ocr: Text and word boxes via Tesseract
//   - scan_status: Lifecycle state, mode, rotation and size
//   - scan_abandon: Drop the scan in progress
//
// # Sessions
//
// At most one scan is open. Every tool that reads or edits it is queued on
// the session manager and runs in arrival order, so a rotate sent right
// after an enhance always sees the enhanced image. scan_capture replaces
// the open scan.
//
// # Frames
//
// Files are decoded through an in-memory cache (EXIF orientation applied),
// turned upright when portrait mode is configured, and scaled down to fit
// the configured maximum capture size. Detected corners are reported in the
// coordinates of that prepared frame; scan_crop accepts corners measured on
// another rendering together with its size through quad_space.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A capture ignored by the debounce window is not an error; it is reported
// with accepted=false and the time left in retry_after_ms.
//
// # Usage
//
//	srv := server.New(cfg, log)
//	defer srv.Close()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
