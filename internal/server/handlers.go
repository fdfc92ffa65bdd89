package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/labelingo/internal/annotate"
	"github.com/ironsheep/labelingo/internal/backend"
	"github.com/ironsheep/labelingo/internal/export"
	"github.com/ironsheep/labelingo/internal/imaging"
	"github.com/ironsheep/labelingo/internal/layout"
	"github.com/ironsheep/labelingo/internal/ocr"
	"github.com/ironsheep/labelingo/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "screenshot_annotate").
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
// Tool execution errors return a JSON-RPC error response with code -32000. When a
// detection or translation backend failed, the error data names it.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	log := s.log.WithField("tool", params.Name)
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		log.WithError(err).Warn("tool failed")
		if be, ok := backend.AsError(err); ok {
			return &MCPResponse{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error: &MCPError{
					Code:    -32000,
					Message: "Tool execution failed",
					Data: map[string]interface{}{
						"backend":   be.Backend,
						"operation": be.Op,
						"transient": be.Transient,
						"details":   err.Error(),
					},
				},
			}
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	log.Debug("tool succeeded")

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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	case "screenshot_detect_text":
		return s.handleDetectText(ctx, args)
	case "screenshot_layout":
		return s.handleLayout(args)
	case "screenshot_annotate":
		return s.handleAnnotate(ctx, args)

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

func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return errors.New("missing arguments")
	}
	return json.Unmarshal(args, v)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Detection Handlers ===

type detectTextArgs struct {
	Path     string         `json:"path"`
	Language string         `json:"language"`
	Region   *annotate.BBox `json:"region"`
}

// DetectTextResult lists the text lines found in a screenshot.
type DetectTextResult struct {
	Detector string                     `json:"detector"`
	Language string                     `json:"language"`
	Elements []annotate.DetectedElement `json:"elements"`
}

type regionDetector interface {
	DetectRegion(ctx context.Context, img image.Image, x1, y1, x2, y2 int, lang string) ([]annotate.DetectedElement, error)
}

func (s *Server) textDetector() backend.Detector {
	if s.detector != nil {
		return s.detector
	}
	if s.pipeline.Detector != nil {
		return s.pipeline.Detector
	}
	return ocr.New(ocr.Options{})
}

func (s *Server) handleDetectText(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a detectTextArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Language == "" {
		a.Language = "en"
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	det := s.textDetector()
	var elements []annotate.DetectedElement
	switch {
	case a.Region == nil:
		elements, err = det.Detect(ctx, img, a.Language)
	default:
		if a.Region.IsZero() {
			return nil, errors.New("region has no area")
		}
		region, _ := a.Region.Normalize()
		if rd, ok := det.(regionDetector); ok {
			elements, err = rd.DetectRegion(ctx, img, int(region.X1), int(region.Y1), int(region.X2), int(region.Y2), a.Language)
		} else {
			elements, err = det.Detect(ctx, img, a.Language)
			elements = within(elements, region)
		}
	}
	if err != nil {
		return nil, err
	}
	if elements == nil {
		elements = []annotate.DetectedElement{}
	}

	return &DetectTextResult{
		Detector: det.Name(),
		Language: a.Language,
		Elements: elements,
	}, nil
}

// within keeps the elements whose box center lies inside region.
func within(elements []annotate.DetectedElement, region annotate.BBox) []annotate.DetectedElement {
	var kept []annotate.DetectedElement
	for _, e := range elements {
		box, _ := e.Box()
		if box == nil {
			continue
		}
		cx, cy := box.CenterX(), box.CenterY()
		if cx >= region.X1 && cx <= region.X2 && cy >= region.Y1 && cy <= region.Y2 {
			kept = append(kept, e)
		}
	}
	return kept
}

// === Layout Handlers ===

type layoutArgs struct {
	Path       string                     `json:"path"`
	Elements   []annotate.DetectedElement `json:"elements"`
	Title      string                     `json:"title"`
	IncludeSVG *bool                      `json:"include_svg"`
}

// LayoutResult is the computed label placement for a screenshot.
type LayoutResult struct {
	Canvas     layout.Canvas      `json:"canvas"`
	Placements []layout.Placement `json:"placements"`
	Title      *layout.Title      `json:"title,omitempty"`
	Sanitized  int                `json:"sanitized"`
	SVG        string             `json:"svg,omitempty"`
}

func (s *Server) handleLayout(args json.RawMessage) (interface{}, error) {
	var a layoutArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	plan, doc, err := s.pipeline.Compose(img, a.Elements, a.Title)
	if err != nil {
		return nil, err
	}

	result := &LayoutResult{
		Canvas:     plan.Canvas,
		Placements: plan.Placements,
		Title:      plan.Title,
		Sanitized:  plan.Sanitized,
	}
	if a.IncludeSVG == nil || *a.IncludeSVG {
		result.SVG = doc.SVG
	}
	return result, nil
}

// === Annotation Handlers ===

type annotateArgs struct {
	Path           string `json:"path"`
	Language       string `json:"language"`
	SourceLanguage string `json:"source_language"`
	Title          string `json:"title"`
	Output         string `json:"output"`
	Format         string `json:"format"`
}

// AnnotateResult reports a written diagram.
type AnnotateResult struct {
	RunID          string                     `json:"run_id"`
	Output         string                     `json:"output"`
	Format         string                     `json:"format"`
	Width          int                        `json:"width"`
	Height         int                        `json:"height"`
	SourceLanguage string                     `json:"source_language,omitempty"`
	Title          string                     `json:"title,omitempty"`
	Elements       []annotate.DetectedElement `json:"elements"`
	Floating       int                        `json:"floating"`
	Sanitized      int                        `json:"sanitized"`
}

func (s *Server) handleAnnotate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a annotateArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if a.Language == "" {
		a.Language = s.language
	}
	if a.Format == "" {
		a.Format = s.format
	}
	a.Format = strings.ToLower(a.Format)
	switch a.Format {
	case export.FormatSVG, export.FormatPNG, export.FormatPDF:
	default:
		return nil, fmt.Errorf("%w: %s", export.ErrUnsupportedFormat, a.Format)
	}

	res, err := s.pipeline.Run(ctx, pipeline.Request{
		ImagePath:      a.Path,
		TargetLanguage: a.Language,
		SourceLanguage: a.SourceLanguage,
		Title:          a.Title,
	})
	if err != nil {
		return nil, err
	}

	dest := a.Output
	if dest == "" {
		dest = export.DefaultOutput(a.Path, a.Format)
	} else if _, _, isS3 := export.ParseS3URL(dest); !isS3 {
		dest = export.NormalizeOutput(dest, a.Format)
	}
	location, err := s.exporter.Write(ctx, res.Document, dest, a.Format)
	if err != nil {
		return nil, err
	}

	return &AnnotateResult{
		RunID:          res.RunID,
		Output:         location,
		Format:         a.Format,
		Width:          res.Document.Width,
		Height:         res.Document.Height,
		SourceLanguage: res.Analysis.SourceLanguage,
		Title:          res.Analysis.Title,
		Elements:       res.Analysis.Elements,
		Floating:       len(res.Report.TranslatedOnly),
		Sanitized:      res.Plan.Sanitized,
	}, nil
}
