package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the screenshot (PNG, JPEG or GIF)",
	}
}

func regionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "number", "description": "Left edge in source pixels"},
			"y1": map[string]interface{}{"type": "number", "description": "Top edge in source pixels"},
			"x2": map[string]interface{}{"type": "number", "description": "Right edge in source pixels"},
			"y2": map[string]interface{}{"type": "number", "description": "Bottom edge in source pixels"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load a screenshot and return its dimensions, format and file size. The image stays cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of a screenshot.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Detection
		{
			Name:        "screenshot_detect_text",
			Description: "Locate the text lines of a screenshot. Returns each line with its bounding box in source pixels. Use a region to read only part of the screenshot.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Language of the text in the screenshot (ISO 639-1, e.g. 'de'). Default 'en'",
						"default":     "en",
					},
					"region": regionProperty("Optional rectangle to read instead of the whole screenshot"),
				},
				"required": []string{"path"},
			},
		},

		// Layout
		{
			Name:        "screenshot_layout",
			Description: "Lay out numbered labels for known elements around a screenshot and render the annotated SVG. No detection or translation backend is called.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"elements": map[string]interface{}{
						"type":        "array",
						"description": "Elements to label, in reading order",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"text": map[string]interface{}{
									"type":        "string",
									"description": "Text as it appears in the screenshot",
								},
								"translation": map[string]interface{}{
									"type":        "string",
									"description": "Optional translation shown after the text",
								},
								"bounding_box": regionProperty("Optional location of the element. Elements without one become floating labels"),
							},
							"required": []string{"text"},
						},
					},
					"title": map[string]interface{}{
						"type":        "string",
						"description": "Optional title shown above the screenshot",
					},
					"include_svg": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the SVG markup along with the placements. Default true",
						"default":     true,
					},
				},
				"required": []string{"path", "elements"},
			},
		},

		// Full pipeline
		{
			Name:        "screenshot_annotate",
			Description: "Detect and translate the text of a screenshot, then write an annotated diagram with numbered labels. Returns where the document was written and the labeled elements.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Target language for the labels (ISO 639-1). Defaults to the server's configured language",
					},
					"source_language": map[string]interface{}{
						"type":        "string",
						"description": "Optional language of the screenshot. Lets detection and translation run concurrently",
					},
					"title": map[string]interface{}{
						"type":        "string",
						"description": "Optional title overriding the suggested one",
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Destination file or s3://bucket/key URL. Defaults to '<image>-annotated.<format>' next to the screenshot",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"description": "Output format",
						"enum":        []string{"svg", "png", "pdf"},
					},
				},
				"required": []string{"path"},
			},
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
