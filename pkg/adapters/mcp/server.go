package mcp

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/mdgraph/internal/validator"
	"github.com/aretw0/mdgraph/pkg/domain"
	"github.com/aretw0/mdgraph/pkg/render"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Engine defines what the MCP server needs from mdgraph.
type Engine interface {
	Validate(text string) (*domain.Diagram, []validator.Finding)
	DOT(d *domain.Diagram) string
	Mermaid(d *domain.Diagram) string
	Render(ctx context.Context, d *domain.Diagram, format string) ([]byte, error)
}

// ParseResponse is the structured result of parse_diagram.
type ParseResponse struct {
	Nodes     []*domain.Node      `json:"nodes" jsonschema_description:"Nodes in declaration order"`
	Relations []domain.Relation   `json:"relations" jsonschema_description:"Relations in declaration order"`
	Findings  []validator.Finding `json:"findings" jsonschema_description:"Parse diagnostics and graph problems"`
}

// Server exposes the engine as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("mdgraph-mcp", version),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: parse_diagram
	parseTool := mcp.NewTool("parse_diagram",
		mcp.WithDescription("Parse an mdgraph document and return its nodes, relations and validation findings."),
		mcp.WithString("source", mcp.Required(), mcp.Description("The document text")),
		mcp.WithOutputSchema[ParseResponse](),
	)
	s.mcpServer.AddTool(parseTool, mcp.NewStructuredToolHandler(s.handleParse))

	// TOOL: export_diagram
	s.mcpServer.AddTool(mcp.NewTool("export_diagram",
		mcp.WithDescription("Convert an mdgraph document to Mermaid or Graphviz DOT source."),
		mcp.WithString("source", mcp.Required(), mcp.Description("The document text")),
		mcp.WithString("format", mcp.Description("mermaid (default) or dot"), mcp.Enum("mermaid", "dot")),
	), s.handleExport)

	// TOOL: render_diagram
	s.mcpServer.AddTool(mcp.NewTool("render_diagram",
		mcp.WithDescription("Render an mdgraph document with graphviz. SVG is returned as text, PNG as an image."),
		mcp.WithString("source", mcp.Required(), mcp.Description("The document text")),
		mcp.WithString("format", mcp.Description("svg (default) or png"), mcp.Enum("svg", "png")),
	), s.handleRender)
}

func (s *Server) handleParse(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ParseResponse, error) {
	source, _ := args["source"].(string)
	d, findings := s.engine.Validate(source)
	if findings == nil {
		findings = []validator.Finding{}
	}
	return ParseResponse{
		Nodes:     d.Nodes(),
		Relations: d.Relations(),
		Findings:  findings,
	}, nil
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, _ := s.engine.Validate(source)

	switch format := request.GetString("format", "mermaid"); format {
	case "mermaid":
		return mcp.NewToolResultText(s.engine.Mermaid(d)), nil
	case "dot":
		return mcp.NewToolResultText(s.engine.DOT(d)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unsupported export format %q", format)), nil
	}
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := request.GetString("format", render.FormatSVG)
	if format != render.FormatSVG && format != render.FormatPNG {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported render format %q", format)), nil
	}

	d, _ := s.engine.Validate(source)
	out, err := s.engine.Render(ctx, d, format)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	if format == render.FormatPNG {
		return mcp.NewToolResultImage("rendered diagram", base64.StdEncoding.EncodeToString(out), "image/png"), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
