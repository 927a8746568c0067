package server

import (
	"testing"
)

func toolByName(t *testing.T, name string) Tool {
	t.Helper()
	for _, tool := range GetToolDefinitions() {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %s not found", name)
	return Tool{}
}

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"image_load",
		"image_dimensions",
		"image_convolve",
		"image_threshold_otsu",
		"image_threshold_bradley",
		"image_edge_gradient",
		"image_edge_laplacian",
		"image_canny",
		"image_corners_moravec",
		"image_corners_harris",
		"image_corners_fast",
		"image_blur",
		"image_morphology",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("Duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}

			schemaType, ok := tool.InputSchema["type"]
			if !ok {
				t.Error("InputSchema missing 'type' field")
			}
			if schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || props == nil {
				t.Fatal("InputSchema properties should be a map")
			}
			if _, ok := props["path"]; !ok {
				t.Error("InputSchema missing 'path' property")
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			requiredList, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}

			hasPath := false
			for _, r := range requiredList {
				if r == "path" {
					hasPath = true
					break
				}
			}
			if !hasPath {
				t.Error("Tool should require 'path' parameter")
			}
		})
	}
}

func TestToolDefinitions_SourceProperties(t *testing.T) {
	// Analysis tools accept a region and a pre-blur; the metadata tools do not.
	for _, tool := range GetToolDefinitions() {
		props := tool.InputSchema["properties"].(map[string]interface{})
		_, hasRegion := props["region"]
		_, hasBlur := props["blur"]

		metadata := tool.Name == "image_load" || tool.Name == "image_dimensions"
		if hasRegion == metadata || hasBlur == metadata {
			t.Errorf("%s: region=%v blur=%v", tool.Name, hasRegion, hasBlur)
		}
	}
}

func TestToolDefinitions_MorphologyRequiresOperation(t *testing.T) {
	tool := toolByName(t, "image_morphology")

	required := tool.InputSchema["required"].([]string)
	want := map[string]bool{"path": true, "operation": true}
	for _, r := range required {
		delete(want, r)
	}
	for missing := range want {
		t.Errorf("image_morphology should require '%s' parameter", missing)
	}
}

func TestToolDefinitions_MorphologyOperations(t *testing.T) {
	props := toolByName(t, "image_morphology").InputSchema["properties"].(map[string]interface{})
	enum := props["operation"].(map[string]interface{})["enum"].([]string)

	want := []string{"dilate", "erode", "open", "close", "skeleton", "conditional"}
	if len(enum) != len(want) {
		t.Fatalf("operation enum: got %v, want %v", enum, want)
	}
	for i := range want {
		if enum[i] != want[i] {
			t.Errorf("operation enum[%d]: got %s, want %s", i, enum[i], want[i])
		}
	}
	if _, ok := props["iterations"]; !ok {
		t.Error("image_morphology should expose iterations")
	}
}

func TestToolDefinitions_Annotate(t *testing.T) {
	for _, name := range []string{"image_corners_moravec", "image_corners_harris", "image_corners_fast"} {
		props := toolByName(t, name).InputSchema["properties"].(map[string]interface{})
		annotate, ok := props["annotate"].(map[string]interface{})
		if !ok {
			t.Errorf("%s: missing annotate", name)
			continue
		}
		if annotate["default"] != true {
			t.Errorf("%s: annotate default got %v, want true", name, annotate["default"])
		}
		if _, ok := props["marker_color"]; !ok {
			t.Errorf("%s: missing marker_color", name)
		}
		if scale, ok := props["scale"].(map[string]interface{}); !ok || scale["default"] != 1.0 {
			t.Errorf("%s: scale got %v, want default 1.0", name, props["scale"])
		}
	}
}

func TestToolDefinitions_OptionalDefaults(t *testing.T) {
	toolDefaults := map[string]map[string]interface{}{
		"image_convolve":       {"preset": "smooth3", "anchor": "center"},
		"image_threshold_otsu": {"histogram": false},
		"image_edge_gradient":  {"operator": "sobel", "output": "mask"},
		"image_blur":           {"size": 5, "blur": 0},
		"image_morphology":     {"size": 3, "iterations": 0},
	}

	for toolName, expectedDefaults := range toolDefaults {
		props, ok := toolByName(t, toolName).InputSchema["properties"].(map[string]interface{})
		if !ok {
			t.Errorf("%s: properties should be a map", toolName)
			continue
		}

		for paramName, expectedDefault := range expectedDefaults {
			param, ok := props[paramName].(map[string]interface{})
			if !ok {
				t.Errorf("%s.%s: parameter not found or not a map", toolName, paramName)
				continue
			}

			actualDefault, ok := param["default"]
			if !ok {
				t.Errorf("%s.%s: missing default value", toolName, paramName)
				continue
			}
			if actualDefault != expectedDefault {
				t.Errorf("%s.%s: default got %v (%T), want %v (%T)",
					toolName, paramName, actualDefault, actualDefault, expectedDefault, expectedDefault)
			}
		}
	}
}

func TestToolDefinitions_OperatorEnum(t *testing.T) {
	props := toolByName(t, "image_edge_gradient").InputSchema["properties"].(map[string]interface{})
	operator := props["operator"].(map[string]interface{})

	enum, ok := operator["enum"].([]string)
	if !ok {
		t.Fatal("operator should have enum")
	}
	want := []string{"roberts", "prewitt", "sobel", "scharr"}
	if len(enum) != len(want) {
		t.Fatalf("operator enum: got %v, want %v", enum, want)
	}
	for i := range want {
		if enum[i] != want[i] {
			t.Errorf("operator enum[%d]: got %s, want %s", i, enum[i], want[i])
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	expected := GetToolDefinitions()
	if len(toolsList) != len(expected) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(expected))
	}
}
