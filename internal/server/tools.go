package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// noArgs is the schema of a tool without parameters.
func noArgs() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// quadSchema describes four {x, y} corners.
func quadSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"minItems":    4,
		"maxItems":    4,
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"x": map[string]interface{}{"type": "number"},
				"y": map[string]interface{}{"type": "number"},
			},
			"required": []string{"x", "y"},
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Capture
		{
			Name:        "scan_detect",
			Description: "Find the document boundary in an image file without starting a scan. Returns the four corners (top-left, top-right, bottom-right, bottom-left) in the coordinates of the size-capped frame, or found=false.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"annotate": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return a PNG preview with the boundary drawn on the frame",
						"default":     false,
					},
					"outline_color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color for the annotated preview as #RRGGBB. Default #00FF00",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "scan_capture",
			Description: "Capture an image file as the document to scan. Abandons any scan in progress, detects the boundary and opens a new scan. Captures less than 3 seconds apart are ignored and reported with accepted=false.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the captured image file"),
				},
				"required": []string{"path"},
			},
		},

		// Editing
		{
			Name:        "scan_crop",
			Description: "Commit the crop: warp the region inside the quad onto an upright rectangle. Without a quad the detected boundary is used, or the full frame when none was found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"quad": quadSchema("Optional corners of the document, in any order"),
					"quad_space": map[string]interface{}{
						"type":        "object",
						"description": "Size of the image the quad was measured on, when it differs from the captured frame. The quad is scaled to the frame.",
						"properties": map[string]interface{}{
							"width":  map[string]interface{}{"type": "number"},
							"height": map[string]interface{}{"type": "number"},
						},
						"required": []string{"width", "height"},
					},
				},
			},
		},
		{
			Name:        "scan_enhance",
			Description: "Cycle the enhancement mode (none, brighten, binarize) and apply it to the cropped document. Any rotation is cleared.",
			InputSchema: noArgs(),
		},
		{
			Name:        "scan_sharpen",
			Description: "Sharpen the current document image. The rotation is kept.",
			InputSchema: noArgs(),
		},
		{
			Name:        "scan_rotate",
			Description: "Rotate the current document image a quarter turn counter-clockwise.",
			InputSchema: noArgs(),
		},
		{
			Name:        "scan_reset",
			Description: "Discard enhancement and rotation, returning to the committed crop.",
			InputSchema: noArgs(),
		},
		{
			Name:        "scan_save",
			Description: "Write the current document image as a JPEG (quality 100) and finish the scan.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path of the JPEG file to write"),
				},
				"required": []string{"path"},
			},
		},

		// Inspection
		{
			Name:        "scan_preview",
			Description: "Return a base64-encoded PNG thumbnail of the current document image, or of the captured frame with the detected boundary drawn on it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"max_size": map[string]interface{}{
						"type":        "integer",
						"description": "Longest side of the thumbnail in pixels. Defaults to the server setting",
					},
					"source": map[string]interface{}{
						"type":        "boolean",
						"description": "Preview the captured frame instead of the edited document",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "scan_ocr",
			Description: "Read the text of the current document image with Tesseract. Returns the full text and word bounding boxes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code, e.g. 'eng' or 'eng+deu'. Defaults to the server setting",
					},
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Optional region left edge",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Optional region top edge",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Optional region right edge (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Optional region bottom edge (exclusive)",
					},
				},
			},
		},
		{
			Name:        "scan_status",
			Description: "Report the state of the current scan: lifecycle state, enhancement mode, rotation and image size.",
			InputSchema: noArgs(),
		},
		{
			Name:        "scan_abandon",
			Description: "Abandon the current scan without saving.",
			InputSchema: noArgs(),
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
