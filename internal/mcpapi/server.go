package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tunnelctl/internal/config"
	"tunnelctl/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
)

// ToolProvider registers a group of tools on an MCP server.
type ToolProvider interface {
	Register(s *server.MCPServer)
}

// Server serves tool providers over MCP.
type Server struct {
	cfg config.MCPConfig
	mcp *server.MCPServer
}

// NewServer creates an MCP server with the tools of every provider registered.
func NewServer(cfg config.MCPConfig, providers ...ToolProvider) *Server {
	name := cfg.Name
	if name == "" {
		name = "tunnelctl"
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
	)
	for _, p := range providers {
		p.Register(s)
	}

	return &Server{cfg: cfg, mcp: s}
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve runs the configured transport until ctx is cancelled or the client
// disconnects.
func (s *Server) Serve(ctx context.Context) error {
	switch s.cfg.Transport {
	case "", config.MCPTransportStdio:
		logging.Info("MCP", "Serving %s over stdio", s.cfg.Name)
		return server.ServeStdio(s.mcp)
	case config.MCPTransportSSE:
		return s.serveSSE(ctx)
	default:
		return fmt.Errorf("unsupported MCP transport %q", s.cfg.Transport)
	}
}

func (s *Server) serveSSE(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	sse := server.NewSSEServer(
		s.mcp,
		server.WithBaseURL("http://"+addr),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
		server.WithKeepAlive(true),
		server.WithKeepAliveInterval(30*time.Second),
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			logging.Error("MCP", err, "SSE server shutdown")
		}
	}()

	logging.Info("MCP", "Serving %s on http://%s/sse", s.cfg.Name, addr)
	if err := sse.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("SSE server: %w", err)
	}
	return nil
}
