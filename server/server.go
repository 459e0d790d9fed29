// Package server implements the MCP server that exposes one gptcore
// conversation to an agent over stdio.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/nox-hq/gptcore/core"
)

const (
	// maxOutputBytes is the maximum response size before truncation (1 MB).
	maxOutputBytes = 1 << 20

	transcriptURI = "gptcore://transcript"
)

// Server is the gptcore MCP server. All tool calls share one conversation
// and are serialized: at most one turn is in flight.
type Server struct {
	version string

	mu    sync.Mutex
	conv  *core.Conversation
	ended error // set by the first failed turn; the session is over
}

// New creates a new MCP server around conv.
func New(version string, conv *core.Conversation) *Server {
	return &Server{
		version: version,
		conv:    conv,
	}
}

// Serve starts the MCP server on stdio and blocks until the client disconnects.
func (s *Server) Serve() error {
	srv := mcpserver.NewMCPServer(
		"gptcore",
		s.version,
		mcpserver.WithRecovery(),
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithResourceCapabilities(false, false),
	)

	s.registerTools(srv)
	s.registerResources(srv)

	return mcpserver.ServeStdio(srv)
}

func (s *Server) registerTools(srv *mcpserver.MCPServer) {
	// chat tool: one conversation turn.
	srv.AddTool(
		mcp.NewTool("chat",
			mcp.WithDescription("Send a prompt to the model. The full conversation so far is sent with it."),
			mcp.WithString("prompt",
				mcp.Description("The user message for this turn"),
				mcp.Required(),
			),
		),
		s.handleChat,
	)

	// usage tool: running totals.
	srv.AddTool(
		mcp.NewTool("usage",
			mcp.WithDescription("Report completed turns and the running cost estimate of the conversation"),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleUsage,
	)
}

func (s *Server) registerResources(srv *mcpserver.MCPServer) {
	srv.AddResource(
		mcp.NewResource(transcriptURI, "Transcript",
			mcp.WithResourceDescription("Ordered user/assistant messages of the conversation"),
			mcp.WithMIMEType("application/json"),
		),
		s.handleResourceTranscript,
	)
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("missing required argument: prompt"), nil
	}
	if strings.TrimSpace(prompt) == "" {
		return mcp.NewToolResultError("prompt must not be empty"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session ended: %v", s.ended)), nil
	}

	reply, usage, err := s.conv.Turn(ctx, prompt)
	if err != nil {
		s.ended = err
		return mcp.NewToolResultError(fmt.Sprintf("completion failed: %v", err)), nil
	}

	return mcp.NewToolResultText(truncate(reply + "\n\n" + usage.String())), nil
}

// usageJSON is the payload of the usage tool.
type usageJSON struct {
	SessionID string  `json:"session_id"`
	Model     string  `json:"model"`
	Turns     int     `json:"turns"`
	PriceUSD  float64 `json:"total_price_usd"`
	Ended     string  `json:"ended,omitempty"`
}

func (s *Server) handleUsage(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	u := usageJSON{
		SessionID: s.conv.SessionID(),
		Model:     s.conv.Model(),
		Turns:     s.conv.Turns(),
		PriceUSD:  s.conv.Price(),
	}
	if s.ended != nil {
		u.Ended = s.ended.Error()
	}
	s.mu.Unlock()

	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding usage: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Resource handlers.

func (s *Server) handleResourceTranscript(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s.mu.Lock()
	messages := s.conv.Transcript()
	s.mu.Unlock()

	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding transcript: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     truncate(string(data)),
		},
	}, nil
}

// truncate limits output to maxOutputBytes, appending a truncation notice if needed.
func truncate(s string) string {
	if len(s) <= maxOutputBytes {
		return s
	}
	return s[:maxOutputBytes] + "\n... [truncated: output exceeded 1MB limit]"
}
