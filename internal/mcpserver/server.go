// Package mcpserver exposes a wizard session as MCP tools so an agent can
// fill in and publish a rental object step by step.
package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mark3labs/rentalwizard/internal/logger"
	"github.com/mark3labs/rentalwizard/internal/wizard"
)

var log = logger.Named("mcp")

// Server wraps one wizard controller. Tools operate on that controller only;
// a new session needs a new Server.
type Server struct {
	ctrl       *wizard.Controller
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	stdServer  *http.Server
	port       int
	mu         sync.Mutex
}

// New creates a server for ctrl. Nothing listens until Start or ServeStdio.
func New(ctrl *wizard.Controller) *Server {
	s := &Server{ctrl: ctrl}
	s.mcpServer = server.NewMCPServer(
		"rentalwizard",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// ServeStdio serves the tools over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	log.Debug("Serving MCP over stdio")
	return server.ServeStdio(s.mcpServer)
}

// Start starts the MCP HTTP server on addr, or on a random local port when
// addr is empty. Returns the port number.
func (s *Server) Start(ctx context.Context, addr string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return 0, fmt.Errorf("server already started")
	}
	if addr == "" {
		addr = "127.0.0.1:0"
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	// Pass the listener on directly so the port cannot be taken in between.
	mux := http.NewServeMux()
	mcpHandler := server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	)
	mux.Handle("/mcp", mcpHandler)

	s.stdServer = &http.Server{
		Handler:     mux,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	s.httpServer = mcpHandler

	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("MCP server error: %v", err)
		}
	}()

	log.Debug("MCP server ready on port %d", s.port)
	return s.port, nil
}

// Stop stops the MCP HTTP server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil
	}

	log.Debug("Stopping MCP server")
	if err := s.stdServer.Shutdown(context.Background()); err != nil {
		log.Warn("Error stopping MCP server: %v", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}

	s.httpServer = nil
	s.stdServer = nil
	return nil
}

// URL returns the HTTP URL for the MCP server endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}

type confirmKey struct{}

// withConfirmation marks ctx with the caller's answer to the discard prompt.
func withConfirmation(ctx context.Context, yes bool) context.Context {
	return context.WithValue(ctx, confirmKey{}, yes)
}

// Confirmer answers the controller's discard prompt with the "confirm"
// argument of the wizard-cancel call that triggered it. Controllers served
// by this package should be built with it.
var Confirmer = wizard.ConfirmFunc(func(ctx context.Context, _ string) (bool, error) {
	yes, _ := ctx.Value(confirmKey{}).(bool)
	return yes, nil
})
