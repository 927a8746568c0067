package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/pixel-tools-mcp/internal/convolution"
	"github.com/ironsheep/pixel-tools-mcp/internal/corner"
	"github.com/ironsheep/pixel-tools-mcp/internal/edge"
	"github.com/ironsheep/pixel-tools-mcp/internal/imaging"
	"github.com/ironsheep/pixel-tools-mcp/internal/pixel"
	"github.com/ironsheep/pixel-tools-mcp/internal/threshold"
	"github.com/ironsheep/pixel-tools-mcp/internal/vision"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_canny").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	s.log.Debug().Str("tool", params.Name).Msg("tool call")

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		event := s.log.Warn().Str("tool", params.Name).Err(err)
		if errors.Is(err, pixel.ErrInvalidInput) {
			event = event.Bool("invalid_input", true)
		}
		if errors.Is(err, vision.ErrUnsupported) {
			event = event.Str("backend", s.runtime.Name())
		}
		event.Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Fills unset options from the server configuration
//  3. Loads, crops, converts and optionally blurs the image
//  4. Calls one operator
//  5. Encodes image outputs as base64 PNG
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Smoothing
	case "image_convolve":
		return s.handleImageConvolve(args)

	// Thresholding
	case "image_threshold_otsu":
		return s.handleThresholdOtsu(args)
	case "image_threshold_bradley":
		return s.handleThresholdBradley(args)

	// Edge Detection
	case "image_edge_gradient":
		return s.handleEdgeGradient(args)
	case "image_edge_laplacian":
		return s.handleEdgeLaplacian(args)
	case "image_canny":
		return s.handleCanny(args)

	// Corner Detection
	case "image_corners_moravec":
		return s.handleCornersMoravec(args)
	case "image_corners_harris":
		return s.handleCornersHarris(args)
	case "image_corners_fast":
		return s.handleCornersFAST(args)

	// Filters
	case "image_blur":
		return s.handleBlur(args)
	case "image_morphology":
		return s.handleMorphology(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared Input Handling ===

// sourceArgs are the arguments every image tool accepts.
type sourceArgs struct {
	Path   string          `json:"path"`
	Region *imaging.Region `json:"region,omitempty"`
	Blur   int             `json:"blur,omitempty"`
}

// loadBuffer loads the image, crops the region, converts it to gray through
// the vision runtime and applies the optional pre-blur.
func (s *Server) loadBuffer(a sourceArgs) (*pixel.Buffer, error) {
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	if a.Region != nil {
		if img, err = imaging.Crop(img, *a.Region); err != nil {
			return nil, err
		}
	}
	buf, err := s.runtime.Grayscale(img)
	if err != nil {
		return nil, err
	}
	if a.Blur > 1 {
		if buf, err = s.runtime.GaussianBlur(buf, a.Blur); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// maskResult reports a binary mask.
type maskResult struct {
	Width      int                  `json:"width"`
	Height     int                  `json:"height"`
	Foreground int                  `json:"foreground_pixels"`
	Mask       *imaging.ImageResult `json:"mask,omitempty"`
}

func newMaskResult(mask *pixel.Buffer) (*maskResult, error) {
	img, err := imaging.EncodeBuffer(mask)
	if err != nil {
		return nil, err
	}
	return &maskResult{
		Width:      mask.Width(),
		Height:     mask.Height(),
		Foreground: mask.Count(255),
		Mask:       img,
	}, nil
}

// cornersResult reports keypoints and, optionally, the annotated image.
type cornersResult struct {
	Detector  string               `json:"detector"`
	Count     int                  `json:"count"`
	Keypoints []corner.Keypoint    `json:"keypoints"`
	Image     *imaging.ImageResult `json:"image,omitempty"`
}

type annotateArgs struct {
	Annotate    *bool   `json:"annotate,omitempty"`
	MarkerColor string  `json:"marker_color,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
}

func (s *Server) newCornersResult(detector string, buf *pixel.Buffer, kps []corner.Keypoint, a annotateArgs) (*cornersResult, error) {
	if kps == nil {
		kps = []corner.Keypoint{}
	}
	res := &cornersResult{Detector: detector, Count: len(kps), Keypoints: kps}
	if a.Annotate != nil && !*a.Annotate {
		return res, nil
	}

	color := a.MarkerColor
	if color == "" {
		color = s.cfg.MarkerColor
	}
	if a.Scale < 0 {
		return nil, pixel.Invalidf("scale %v must be positive", a.Scale)
	}
	canvas, err := imaging.DrawKeypoints(buf, kps, color)
	if err != nil {
		return nil, err
	}
	if res.Image, err = imaging.EncodeImage(imaging.Scale(canvas, a.Scale)); err != nil {
		return nil, err
	}
	return res, nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path   string `json:"path"`
	Reload bool   `json:"reload"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Reload {
		s.cache.Evict(a.Path)
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Smoothing Handlers ===

type imageConvolveArgs struct {
	sourceArgs
	Preset  string      `json:"preset"`
	Kernel  [][]float64 `json:"kernel"`
	Divisor float64     `json:"divisor"`
	Anchor  string      `json:"anchor"`
}

type convolveResult struct {
	Kernel  string               `json:"kernel"`
	Divisor float64              `json:"divisor"`
	Image   *imaging.ImageResult `json:"image"`
}

func (s *Server) handleImageConvolve(args json.RawMessage) (interface{}, error) {
	var a imageConvolveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var (
		kernel  pixel.Kernel
		divisor float64
		label   string
	)
	if len(a.Kernel) > 0 {
		anchor := pixel.AnchorCenter
		if a.Anchor != "" {
			var err error
			if anchor, err = pixel.ParseAnchor(a.Anchor); err != nil {
				return nil, err
			}
		}
		var err error
		if kernel, err = pixel.NewKernel(a.Kernel, anchor); err != nil {
			return nil, err
		}
		divisor = kernel.Sum()
		if divisor == 0 {
			divisor = 1
		}
		label = fmt.Sprintf("custom %dx%d %s", kernel.Size(), kernel.Size(), anchor)
	} else {
		if a.Preset == "" {
			a.Preset = "smooth3"
		}
		preset, ok := convolution.Presets[strings.ToLower(a.Preset)]
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s", a.Preset)
		}
		kernel, divisor, label = preset.Kernel, preset.Divisor, strings.ToLower(a.Preset)
	}
	if a.Divisor != 0 {
		divisor = a.Divisor
	}

	buf, err := s.loadBuffer(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	out, err := convolution.Smooth(buf, kernel, divisor)
	if err != nil {
		return nil, err
	}
	img, err := imaging.EncodeBuffer(out)
	if err != nil {
		return nil, err
	}
	return &convolveResult{Kernel: label, Divisor: divisor, Image: img}, nil
}

// === Thresholding Handlers ===

type thresholdOtsuArgs struct {
	sourceArgs
	Histogram bool `json:"histogram"`
}

type otsuResult struct {
	Threshold int     `json:"threshold"`
	Variance  float64 `json:"variance"`
	maskResult
	HistogramChart *imaging.ImageResult `json:"histogram,omitempty"`
}

func (s *Server) handleThresholdOtsu(args json.RawMessage) (interface{}, error) {
	var a thresholdOtsuArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	buf, err := s.loadBuffer(a.sourceArgs)
	if err != nil {
		return nil, err
	}

	res, err := threshold.Otsu(buf)
	if err != nil {
		return nil, err
	}
	mask, err := newMaskResult(res.Mask)
	if err != nil {
		return nil, err
	}
	out := &otsuResult{Threshold: res.Threshold, Variance: res.Variance, maskResult: *mask}

	if a.Histogram {
		if out.HistogramChart, err = imaging.HistogramChart(res.Histogram, res.Threshold); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type thresholdBradleyArgs struct {
	sourceArgs
	Sensitivity   *float64 `json:"sensitivity"`
	WindowDivisor int      `json:"window_divisor"`
}

type bradleyResult struct {
	Sensitivity   float64 `json:"sensitivity"`
	WindowDivisor int     `json:"window_divisor"`
	maskResult
}

func (s *Server) handleThresholdBradley(args json.RawMessage) (interface{}, error) {
	var a thresholdBradleyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := s.cfg.Bradley
	if a.Sensitivity != nil {
		opts.Sensitivity = *a.Sensitivity
	}
	if a.WindowDivisor != 0 {
		opts.WindowDivisor = a.WindowDivisor
	}

	buf, err := s.loadBuffer(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	mask, err := threshold.Bradley(buf, opts)
	if err != nil {
		return nil, err
	}
	res, err := newMaskResult(mask)
	if err != nil {
		return nil, err
	}
	return &bradleyResult{Sensitivity: opts.Sensitivity, WindowDivisor: opts.WindowDivisor, maskResult: *res}, nil
}

// === Edge Detection Handlers ===

type edgeGradientArgs struct {
	sourceArgs
	Operator  string `json:"operator"`
	Threshold *int   `json:"threshold"`
	Anchor    string `json:"anchor"`
	Output    string `json:"output"`
}

type gradientResult struct {
	Operator  string `json:"operator"`
	Threshold int    `json:"threshold"`
	Anchor    string `json:"anchor"`
	maskResult
	Magnitude *imaging.ImageResult `json:"magnitude,omitempty"`
}

func (s *Server) handleEdgeGradient(args json.RawMessage) (interface{}, error) {
	var a edgeGradientArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Operator == "" {
		a.Operator = "sobel"
	}
	if a.Output == "" {
		a.Output = "mask"
	}
	if a.Output != "mask" && a.Output != "magnitude" {
		return nil, fmt.Errorf("unknown output: %s", a.Output)
	}

	op, err := s.cfg.Operator(a.Operator)
	if err != nil {
		return nil, err
	}
	if a.Threshold != nil {
		op.Threshold = *a.Threshold
	}
	if a.Anchor != "" {
		if op.Name != "roberts" {
			return nil, pixel.Invalidf("anchor applies to the roberts operator only")
		}
		anchor, err := pixel.ParseAnchor(a.Anchor)
		if err != nil {
			return nil, err
		}
		if anchor == pixel.AnchorCenter {
			return nil, pixel.Invalidf("roberts cannot be centered")
		}
		if op, err = op.WithAnchor(anchor); err != nil {
			return nil, err
		}
	}

	buf, err := s.loadBuffer(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	mag, err := edge.Gradient(buf, op)
	if err != nil {
		return nil, err
	}
	mask, err := edge.Mask(mag, op)
	if err != nil {
		return nil, err
	}
	res, err := newMaskResult(mask)
	if err != nil {
		return nil, err
	}
	out := &gradientResult{Operator: op.Name, Threshold: op.Threshold, Anchor: op.X.Anchor().String(), maskResult: *res}

	if a.Output == "magnitude" {
		if out.Magnitude, err = imaging.EncodeGrid(mag); err != nil {
			return nil, err
		}
		out.Mask = nil
	}
	return out, nil
}

type edgeLaplacianArgs struct {
	sourceArgs
	Neighbors int      `json:"neighbors"`
	Factor    *float64 `json:"factor"`
	MinPairs  int      `json:"min_pairs"`
	Axial     string   `json:"axial"`
}

type laplacianResult struct {
	Axial             string  `json:"axial"`
	MinPairs          int     `json:"min_pairs"`
	CrossingThreshold float64 `json:"crossing_threshold"`
	maskResult
}

func (s *Server) handleEdgeLaplacian(args json.RawMessage) (interface{}, error) {
	var a edgeLaplacianArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	lc := s.cfg.Laplacian
	if a.Neighbors != 0 {
		lc.Neighbors = a.Neighbors
	}
	if a.Factor != nil {
		lc.Factor = *a.Factor
	}
	if a.MinPairs != 0 {
		lc.MinPairs = a.MinPairs
	}
	if a.Axial != "" {
		lc.Axial = a.Axial
	}
	cfg := *s.cfg
	cfg.Laplacian = lc
	opts, err := cfg.LaplacianOptions()
	if err != nil {
		return nil, err
	}

	buf, err := s.loadBuffer(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	mask, threshold, err := edge.ZeroCrossings(buf, opts)
	if err != nil {
		return nil, err
	}
	res, err := newMaskResult(mask)
	if err != nil {
		return nil, err
	}
	return &laplacianResult{
		Axial:             opts.Axial.String(),
		MinPairs:          opts.MinPairs,
		CrossingThreshold: threshold,
		maskResult:        *res,
	}, nil
}

type cannyArgs struct {
	sourceArgs
	ThresholdLow  *float64 `json:"threshold_low"`
	ThresholdHigh *float64 `json:"threshold_high"`
}

func (s *Server) handleCanny(args json.RawMessage) (interface{}, error) {
	var a cannyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	low, high := s.cfg.Canny.Low, s.cfg.Canny.High
	if a.ThresholdLow != nil {
		low = *a.ThresholdLow
	}
	if a.ThresholdHigh != nil {
		high = *a.ThresholdHigh
	}

	buf, err := s.loadBuffer(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	mask, err := s.runtime.Canny(buf, low, high)
	if err != nil {
		return nil, err
	}
	return newMaskResult(mask)
}

// === Corner Detection Handlers ===

type cornersMoravecArgs struct {
	sourceArgs
	annotateArgs
	Window      int      `json:"window"`
	Threshold   *float64 `json:"threshold"`
	Suppression int      `json:"suppression"`
}

func (s *Server) handleCornersMoravec(args json.RawMessage) (interface{}, error) {
	var a cornersMoravecArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := s.cfg.Moravec
	if a.Window != 0 {
		opts.Window = a.Window
	}
	if a.Threshold != nil {
		opts.Threshold = *a.Threshold
	}
	if a.Suppression != 0 {
		opts.Suppression = a.Suppression
	}

	buf, err := s.loadBuffer(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	kps, err := corner.Detect(buf, opts)
	if err != nil {
		return nil, err
	}
	return s.newCornersResult("moravec", buf, kps, a.annotateArgs)
}

type cornersHarrisArgs struct {
	sourceArgs
	annotateArgs
	BlockSize int      `json:"block_size"`
	K         *float64 `json:"k"`
	Ratio     *float64 `json:"ratio"`
	Spread    *int     `json:"spread"`
}

func (s *Server) handleCornersHarris(args json.RawMessage) (interface{}, error) {
	var a cornersHarrisArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := s.cfg.Harris
	if a.BlockSize != 0 {
		opts.BlockSize = a.BlockSize
	}
	if a.K != nil {
		opts.K = *a.K
	}
	if a.Ratio != nil {
		opts.Ratio = *a.Ratio
	}
	if a.Spread != nil {
		opts.Spread = *a.Spread
	}

	buf, err := s.loadBuffer(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	kps, err := s.runtime.Harris(buf, opts)
	if err != nil {
		return nil, err
	}
	return s.newCornersResult("harris", buf, kps, a.annotateArgs)
}

type cornersFASTArgs struct {
	sourceArgs
	annotateArgs
	Threshold *int  `json:"threshold"`
	Nonmax    *bool `json:"nonmax"`
}

func (s *Server) handleCornersFAST(args json.RawMessage) (interface{}, error) {
	var a cornersFASTArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	t, nonmax := s.cfg.FAST.Threshold, s.cfg.FAST.Nonmax
	if a.Threshold != nil {
		t = *a.Threshold
	}
	if a.Nonmax != nil {
		nonmax = *a.Nonmax
	}

	buf, err := s.loadBuffer(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	kps, err := s.runtime.FAST(buf, t, nonmax)
	if err != nil {
		return nil, err
	}
	return s.newCornersResult("fast", buf, kps, a.annotateArgs)
}

// === Filter Handlers ===

type blurArgs struct {
	sourceArgs
	Size int `json:"size"`
}

func (s *Server) handleBlur(args json.RawMessage) (interface{}, error) {
	var a blurArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Size == 0 {
		a.Size = 5
	}

	buf, err := s.loadBuffer(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	out, err := s.runtime.GaussianBlur(buf, a.Size)
	if err != nil {
		return nil, err
	}
	return imaging.EncodeBuffer(out)
}

type morphologyArgs struct {
	sourceArgs
	Operation  string `json:"operation"`
	Size       int    `json:"size"`
	Iterations int    `json:"iterations"`
}

func (s *Server) handleMorphology(args json.RawMessage) (interface{}, error) {
	var a morphologyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Size == 0 {
		a.Size = 3
	}

	rt := s.runtime
	var apply func(*pixel.Buffer) (*pixel.Buffer, error)
	switch strings.ToLower(a.Operation) {
	case "dilate":
		apply = func(b *pixel.Buffer) (*pixel.Buffer, error) { return rt.Dilate(b, a.Size) }
	case "erode":
		apply = func(b *pixel.Buffer) (*pixel.Buffer, error) { return rt.Erode(b, a.Size) }
	case "open":
		apply = func(b *pixel.Buffer) (*pixel.Buffer, error) { return vision.Opening(rt, b, a.Size) }
	case "close":
		apply = func(b *pixel.Buffer) (*pixel.Buffer, error) { return vision.Closing(rt, b, a.Size) }
	case "skeleton":
		apply = func(b *pixel.Buffer) (*pixel.Buffer, error) { return vision.Skeleton(rt, b) }
	case "conditional":
		apply = func(b *pixel.Buffer) (*pixel.Buffer, error) {
			return vision.ConditionalDilate(rt, b, a.Size, a.Iterations)
		}
	default:
		return nil, fmt.Errorf("unknown morphology operation: %q", a.Operation)
	}

	buf, err := s.loadBuffer(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	if buf, err = apply(buf); err != nil {
		return nil, err
	}
	return imaging.EncodeBuffer(buf)
}
