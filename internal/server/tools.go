package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imageSchema builds the schema of a tool that reads an image. Every such
// tool takes a path, an optional region of interest and an optional
// pre-blur, plus its own properties.
func imageSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	all := map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file",
		},
		"region": map[string]interface{}{
			"type":        "object",
			"description": "Optional region of interest, cropped before analysis. x1,y1 inclusive; x2,y2 exclusive",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "integer"},
				"y1": map[string]interface{}{"type": "integer"},
				"x2": map[string]interface{}{"type": "integer"},
				"y2": map[string]interface{}{"type": "integer"},
			},
			"required": []string{"x1", "y1", "x2", "y2"},
		},
		"blur": map[string]interface{}{
			"type":        "integer",
			"description": "Optional odd Gaussian kernel size applied before analysis. 0 or 1 disables",
			"default":     0,
		},
	}
	for k, v := range props {
		all[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": all,
		"required":   append([]string{"path"}, required...),
	}
}

func annotateProps(props map[string]interface{}) map[string]interface{} {
	props["annotate"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Return the image with every keypoint circled. Default true",
		"default":     true,
	}
	props["marker_color"] = map[string]interface{}{
		"type":        "string",
		"description": "Hex color of the keypoint circles (e.g., \"#FF0000\"). Defaults to the configured color",
	}
	props["scale"] = map[string]interface{}{
		"type":        "number",
		"description": "Resize factor applied to the annotated image after drawing (e.g., 2.0 for 2x zoom)",
		"default":     1.0,
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and color model.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Drop the cached copy and read the file again",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Smoothing
		{
			Name:        "image_convolve",
			Description: "Convolve the grayscale image with a preset or custom kernel, divide, floor and clamp to 0-255. Pixels outside the image count as 0.",
			InputSchema: imageSchema(map[string]interface{}{
				"preset": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"identity", "smooth3", "gaussian5"},
					"description": "Named kernel, used when no kernel is given. Default smooth3",
					"default":     "smooth3",
				},
				"kernel": map[string]interface{}{
					"type":        "array",
					"description": "Custom square kernel as rows of numbers",
					"items": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "number"},
					},
				},
				"divisor": map[string]interface{}{
					"type":        "number",
					"description": "Divisor applied after convolution. Defaults to the preset divisor, or the kernel sum (1 if zero) for custom kernels",
				},
				"anchor": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"center", "top-left", "bottom-right"},
					"description": "Custom kernel anchor. Default center",
					"default":     "center",
				},
			}),
		},

		// Thresholding
		{
			Name:        "image_threshold_otsu",
			Description: "Compute the global Otsu threshold and binarize: pixels below it become 0, others 255.",
			InputSchema: imageSchema(map[string]interface{}{
				"histogram": map[string]interface{}{
					"type":        "boolean",
					"description": "Also return a histogram chart with the threshold marked. Default false",
					"default":     false,
				},
			}),
		},
		{
			Name:        "image_threshold_bradley",
			Description: "Adaptive Bradley-Roth threshold: a pixel is foreground when brighter than (1 - sensitivity) times its local window mean.",
			InputSchema: imageSchema(map[string]interface{}{
				"sensitivity": map[string]interface{}{
					"type":        "number",
					"description": "t in ratio = 1 - t. Must be below 1. Default 0.15",
				},
				"window_divisor": map[string]interface{}{
					"type":        "integer",
					"description": "Window half-size is image width / window_divisor. Default 16",
				},
			}),
		},

		// Edge Detection
		{
			Name:        "image_edge_gradient",
			Description: "Gradient edge detection with the Roberts, Prewitt, Sobel or Scharr operator. Edges are pixels whose gradient magnitude is strictly above the threshold.",
			InputSchema: imageSchema(map[string]interface{}{
				"operator": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"roberts", "prewitt", "sobel", "scharr"},
					"description": "Gradient operator. Default sobel",
					"default":     "sobel",
				},
				"threshold": map[string]interface{}{
					"type":        "integer",
					"description": "Magnitude threshold. Defaults per operator: roberts 10, prewitt 50, sobel 90, scharr 90",
				},
				"anchor": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"top-left", "bottom-right"},
					"description": "Roberts kernel anchor. Defaults to the configured anchor",
				},
				"output": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"mask", "magnitude"},
					"description": "Return the binary edge mask or the normalized magnitude. Default mask",
					"default":     "mask",
				},
			}),
		},
		{
			Name:        "image_edge_laplacian",
			Description: "Laplacian zero-crossing edge detection: a pixel is an edge when enough opposite neighbor pairs change sign by more than factor times the largest response.",
			InputSchema: imageSchema(map[string]interface{}{
				"neighbors": map[string]interface{}{
					"type":        "integer",
					"enum":        []int{4, 8},
					"description": "Laplacian kernel connectivity. Default 8",
				},
				"factor": map[string]interface{}{
					"type":        "number",
					"description": "Crossing threshold as a fraction of the maximum response. Default 0.04",
				},
				"min_pairs": map[string]interface{}{
					"type":        "integer",
					"description": "Crossing pairs required, 1-4. Default 2",
				},
				"axial": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"threshold", "sign-only", "never"},
					"description": "How the horizontal and vertical pairs are tested. Default threshold",
				},
			}),
		},
		{
			Name:        "image_canny",
			Description: "Canny edge detection with hysteresis thresholds on the gradient magnitude.",
			InputSchema: imageSchema(map[string]interface{}{
				"threshold_low": map[string]interface{}{
					"type":        "number",
					"description": "Low hysteresis threshold. Default 50",
				},
				"threshold_high": map[string]interface{}{
					"type":        "number",
					"description": "High hysteresis threshold. Default 150",
				},
			}),
		},

		// Corner Detection
		{
			Name:        "image_corners_moravec",
			Description: "Moravec corner detection: minimum patch self-difference over eight shifts, thresholded and thinned by non-maximum suppression.",
			InputSchema: imageSchema(annotateProps(map[string]interface{}{
				"window": map[string]interface{}{
					"type":        "integer",
					"description": "Odd patch size. Default 5",
				},
				"threshold": map[string]interface{}{
					"type":        "number",
					"description": "Responses not above this are discarded. Default 40000",
				},
				"suppression": map[string]interface{}{
					"type":        "integer",
					"description": "Odd non-maximum suppression window. Default 31",
				},
			})),
		},
		{
			Name:        "image_corners_harris",
			Description: "Harris corner detection: normalized response above ratio times the maximum.",
			InputSchema: imageSchema(annotateProps(map[string]interface{}{
				"block_size": map[string]interface{}{
					"type":        "integer",
					"description": "Structure tensor window. Default 2",
				},
				"k": map[string]interface{}{
					"type":        "number",
					"description": "Harris free parameter. Default 0.04",
				},
				"ratio": map[string]interface{}{
					"type":        "number",
					"description": "Fraction of the maximum response to keep. Default 0.45",
				},
				"spread": map[string]interface{}{
					"type":        "integer",
					"description": "Side of the ellipse the normalized response is dilated with before the cut. 0 or 1 disables. Default 10",
				},
			})),
		},
		{
			Name:        "image_corners_fast",
			Description: "FAST-9 keypoints. Requires the opencv vision backend.",
			InputSchema: imageSchema(annotateProps(map[string]interface{}{
				"threshold": map[string]interface{}{
					"type":        "integer",
					"description": "Intensity difference threshold. Default 45",
				},
				"nonmax": map[string]interface{}{
					"type":        "boolean",
					"description": "Apply non-maximum suppression. Default true",
				},
			})),
		},

		// Filters
		{
			Name:        "image_blur",
			Description: "Gaussian blur of the grayscale image.",
			InputSchema: imageSchema(map[string]interface{}{
				"size": map[string]interface{}{
					"type":        "integer",
					"description": "Odd kernel size. Default 5",
					"default":     5,
				},
			}),
		},
		{
			Name:        "image_morphology",
			Description: "Grayscale morphology with an elliptical element: dilate, erode, open (erode then dilate), close (dilate then erode), skeleton (thin bright regions with a 3x3 cross) or conditional (erode, then regrow inside the source with a 3x3 cross).",
			InputSchema: imageSchema(map[string]interface{}{
				"operation": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"dilate", "erode", "open", "close", "skeleton", "conditional"},
					"description": "Morphological operation",
				},
				"size": map[string]interface{}{
					"type":        "integer",
					"description": "Odd structuring element size; for conditional, the erosion size. Ignored by skeleton. Default 3",
					"default":     3,
				},
				"iterations": map[string]interface{}{
					"type":        "integer",
					"description": "Conditional only: maximum regrowth rounds. 0 runs until stable. Default 0",
					"default":     0,
				},
			}, "operation"),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
