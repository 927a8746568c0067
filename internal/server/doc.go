// Package server implements the MCP (Model Context Protocol) server for
// pixel-level image analysis.
//
// This package provides a JSON-RPC 2.0 server that exposes thresholding,
// edge and corner detection through the MCP protocol.
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
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Smoothing:
//   - image_convolve: Preset or custom kernel convolution
//
// Thresholding:
//   - image_threshold_otsu: Global Otsu threshold, optional histogram chart
//   - image_threshold_bradley: Adaptive mean threshold
//
// Edge Detection:
//   - image_edge_gradient: Roberts, Prewitt, Sobel or Scharr
//   - image_edge_laplacian: Laplacian zero crossings
//   - image_canny: Canny with hysteresis (vision runtime)
//
// Corner Detection:
//   - image_corners_moravec: Moravec interest operator
//   - image_corners_harris: Harris response (vision runtime)
//   - image_corners_fast: FAST keypoints (opencv runtime only)
//
// Filters:
//   - image_blur: Gaussian blur
//   - image_morphology: Dilate, erode, open, close, skeleton, conditional
//
// Every analysis tool accepts an optional region, cropped first, and an
// optional pre-blur size. Images are converted to 8-bit gray by the vision
// runtime before any operator runs.
//
// # Defaults
//
// Options a call leaves out come from the config.Config passed to New.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv, err := server.New(cfg, server.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer srv.Close()
//	return srv.Run()
package server
