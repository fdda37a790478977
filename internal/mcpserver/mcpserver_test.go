package mcpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/DermaRAG/internal/domain/jobModel"
	"github.com/akolanti/DermaRAG/internal/rag"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mockRag struct {
	answer string
	err    error
	seen   rag.AskRequest
}

func (m *mockRag) Ask(ctx context.Context, req rag.AskRequest) (rag.AskResult, error) {
	m.seen = req
	return rag.AskResult{Answer: m.answer, Sources: []string{"Atlas (page 3)"}}, m.err
}
func (m *mockRag) ProcessJob(ctx context.Context, j jobModel.Job) jobModel.Job { return j }
func (m *mockRag) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job { return j }
func (m *mockRag) Wait() {}

func TestAskTool(t *testing.T) {
	m := &mockRag{answer: "Use emollients."}
	res, out, err := askTool(m)(context.Background(), &mcp.CallToolRequest{}, AskInput{
		Message:                "dry skin?",
		TranslatedConversation: "Patient: flaky shins",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError || out.Response != "Use emollients." || len(out.Sources) != 1 {
		t.Errorf("unexpected result %+v %+v", res, out)
	}
	if m.seen.Conversation != "Patient: flaky shins" {
		t.Errorf("conversation not forwarded: %+v", m.seen)
	}
	if text, ok := res.Content[0].(*mcp.TextContent); !ok || text.Text != "Use emollients." {
		t.Errorf("unexpected content %#v", res.Content)
	}
}

func TestAskTool_ErrorIsToolResult(t *testing.T) {
	m := &mockRag{err: errors.New("LLM_GENERATION_FAILURE: quota")}
	res, _, err := askTool(m)(context.Background(), &mcp.CallToolRequest{}, AskInput{Message: "q"})
	if err != nil {
		t.Fatalf("transport error returned: %v", err)
	}
	if !res.IsError {
		t.Error("expected IsError result")
	}
}

func TestNewServer(t *testing.T) {
	if NewServer(&mockRag{}) == nil {
		t.Fatal("nil server")
	}
	if Handler(&mockRag{}) == nil {
		t.Fatal("nil handler")
	}
}
