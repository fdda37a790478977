// Package mcpserver exposes the assistant as a Model Context Protocol tool so
// agent clients can ask it questions over streamable HTTP.
package mcpserver

import (
	"context"
	"net/http"

	"github.com/akolanti/DermaRAG/internal/rag"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName = "derma-rag"
	Version    = "1.0.0"
	ToolName   = "ask_dermatology_assistant"
)

type AskInput struct {
	Message                string `json:"message" jsonschema:"the doctor's question"`
	TranslatedConversation string `json:"translated_conversation,omitempty" jsonschema:"consultation transcript translated to English"`
}

type AskOutput struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources,omitempty"`
}

var logger = logger_i.NewLogger("MCPServer")

func NewServer(ragService rag.Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: Version}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolName,
		Description: "Answer a dermatology question from the reference library, optionally using the consultation transcript.",
	}, askTool(ragService))
	return server
}

// Handler serves the MCP endpoint with one shared server instance.
func Handler(ragService rag.Service) http.Handler {
	server := NewServer(ragService)
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
}

func askTool(ragService rag.Service) mcp.ToolHandlerFor[AskInput, AskOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in AskInput) (*mcp.CallToolResult, AskOutput, error) {
		res, err := ragService.Ask(ctx, rag.AskRequest{Message: in.Message, Conversation: in.TranslatedConversation})
		if err != nil {
			logger.FromContext(ctx).Warn("Tool call failed", "err", err)
			// tool failures go back to the model, not the transport
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
			}, AskOutput{}, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: res.Answer}},
		}, AskOutput{Response: res.Answer, Sources: res.Sources}, nil
	}
}
