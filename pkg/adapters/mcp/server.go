package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/atidraw/pkg/domain"
)

const (
	// CatalogURI is the resource holding the tool catalog.
	CatalogURI = "atidraw://tools"
	// DrawingURITemplate addresses a stored drawing.
	DrawingURITemplate = "drawing://{id}"

	drawingScheme = "drawing://"
)

// ToolService is the tool surface the MCP server exposes.
type ToolService interface {
	Dispatch(ctx context.Context, toolName string, args map[string]any) domain.Response
	ListTools(category string) []domain.Tool
}

// Server exposes a ToolService as an MCP Server.
type Server struct {
	tools     ToolService
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used for transport events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server publishing every tool of the service.
func NewServer(tools ToolService, name, version string, opts ...Option) (*Server, error) {
	s := &Server{
		tools:  tools,
		logger: slog.New(slog.DiscardHandler),
		mcpServer: server.NewMCPServer(name, strings.TrimSpace(version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithRecovery(),
		),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.registerTools(); err != nil {
		return nil, err
	}
	s.registerResources()
	return s, nil
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// HandleMessage processes one JSON-RPC message.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, message)
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
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
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
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

func (s *Server) registerTools() error {
	for _, tool := range s.tools.ListTools("") {
		inputSchema, err := json.Marshal(tool.InputSchema())
		if err != nil {
			return fmt.Errorf("tool %s: input schema: %w", tool.Name, err)
		}
		s.mcpServer.AddTool(
			mcp.NewToolWithRawSchema(tool.Name, tool.Description, inputSchema),
			s.callHandler(tool.Name),
		)
	}
	return nil
}

// callHandler runs the dispatcher and returns the envelope as text content.
// The result is flagged as an error whenever the envelope reports a failure.
func (s *Server) callHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp := s.tools.Dispatch(ctx, name, request.GetArguments())
		text, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("encode envelope: %w", err)
		}
		result := mcp.NewToolResultText(string(text))
		result.IsError = !resp.Success
		return result, nil
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Tool Catalog",
		mcp.WithResourceDescription("Descriptors of every registered tool"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.tools.ListTools(""))
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CatalogURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(DrawingURITemplate, "Drawing",
		mcp.WithTemplateDescription("A stored drawing with its data and canvas metadata"),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		uri := request.Params.URI
		id := strings.TrimPrefix(uri, drawingScheme)
		if id == "" || id == uri {
			return nil, fmt.Errorf("invalid drawing uri: %s", uri)
		}

		resp := s.tools.Dispatch(ctx, "get_drawing", map[string]any{"drawingId": id})
		if !resp.Success {
			return nil, errors.New(resp.Message)
		}
		jsonBytes, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to encode drawing: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
