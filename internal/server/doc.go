// Package server implements the MCP (Model Context Protocol) server for screenshot
// annotation.
//
// The server speaks JSON-RPC 2.0 over stdio:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to the configured logrus logger and never to stdout.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load, image_dimensions: screenshot metadata
//   - screenshot_detect_text: text lines with bounding boxes, optionally in a region
//   - screenshot_layout: label placement and SVG for caller-supplied elements, with
//     no backend calls
//   - screenshot_annotate: the full detect, translate, merge, layout and render
//     pipeline, writing the result to a file or S3
//
// Tool failures return JSON-RPC error -32000. When a detection or translation
// service failed, the error data carries "backend", "operation" and "transient" so
// clients can decide whether to retry.
//
// # Image Caching
//
// Decoded screenshots are cached by path and shared with the pipeline, so a client
// can inspect, detect and annotate the same file without decoding it again.
package server
