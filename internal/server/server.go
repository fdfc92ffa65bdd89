package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/labelingo/internal/backend"
	"github.com/ironsheep/labelingo/internal/export"
	"github.com/ironsheep/labelingo/internal/imaging"
	"github.com/ironsheep/labelingo/internal/pipeline"
)

// Version is reported in the initialize handshake. The binary overrides it at link
// time.
var Version = "dev"

// Server handles MCP protocol communication
type Server struct {
	cache    *imaging.ImageCache
	pipeline *pipeline.Pipeline
	detector backend.Detector
	exporter *export.Exporter
	log      logrus.FieldLogger

	language string
	format   string

	in  io.Reader
	out io.Writer
}

// Option configures a Server.
type Option func(*Server)

// WithPipeline sets the pipeline used by screenshot_layout and screenshot_annotate.
// The server shares its image cache with the pipeline.
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(s *Server) { s.pipeline = p }
}

// WithDetector sets the text detector used by screenshot_detect_text.
func WithDetector(d backend.Detector) Option {
	return func(s *Server) { s.detector = d }
}

// WithExporter sets where screenshot_annotate writes documents.
func WithExporter(e *export.Exporter) Option {
	return func(s *Server) { s.exporter = e }
}

// WithLogger sets the logger. Logs must not go to stdout.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) { s.log = l }
}

// WithDefaults sets the target language and output format used when a tool call
// omits them.
func WithDefaults(language, format string) Option {
	return func(s *Server) {
		if language != "" {
			s.language = language
		}
		if format != "" {
			s.format = format
		}
	}
}

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a new MCP server instance. Without options it serves
// image_dimensions, screenshot_layout and (with a local Tesseract)
// screenshot_detect_text; screenshot_annotate needs a pipeline with a translator.
func New(opts ...Option) *Server {
	s := &Server{
		cache:    imaging.NewImageCache(),
		language: "en",
		format:   export.FormatSVG,
		in:       os.Stdin,
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.pipeline == nil {
		s.pipeline = &pipeline.Pipeline{}
	}
	if s.pipeline.Images != nil {
		s.cache = s.pipeline.Images
	} else {
		s.pipeline.Images = s.cache
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.pipeline.Logger == nil {
		s.pipeline.Logger = s.log
	}
	if s.exporter == nil {
		s.exporter = &export.Exporter{Logger: s.log}
	}
	return s
}

// Run reads requests line by line until the input ends or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	// Layout requests carry element lists; allow large lines.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 8*1024*1024)

	encoder := json.NewEncoder(s.out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.WithError(err).Warn("failed to parse request")
			if err := encoder.Encode(s.errorResponse(nil, -32700, "Parse error", err.Error())); err != nil {
				s.log.WithError(err).Error("failed to encode response")
			}
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.WithError(err).Error("failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.log.WithField("method", req.Method).Debug("request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "labelingo",
				"version": Version,
			},
		},
	}
}
