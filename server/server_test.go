package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nox-hq/gptcore/assist"
	"github.com/nox-hq/gptcore/core"
)

// echoProvider answers every request with the last user message and fixed
// token counts. It records the peak number of concurrent calls.
type echoProvider struct {
	err      error
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (p *echoProvider) Complete(_ context.Context, req assist.Request) (*assist.Response, error) {
	p.calls.Add(1)
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)

	if p.err != nil {
		return nil, p.err
	}
	last := req.Messages[len(req.Messages)-1]
	return &assist.Response{
		Message:          assist.Message{Role: assist.RoleAssistant, Content: " echo: " + last.Content + "\n"},
		PromptTokens:     1000,
		CompletionTokens: 1000,
	}, nil
}

func newTestServer(p assist.Provider) *Server {
	conv := core.New(p, core.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return New("0.1.0", conv)
}

func makeToolRequest(t *testing.T, name string, args map[string]any) mcp.CallToolRequest {
	t.Helper()
	argsJSON, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshaling args: %v", err)
	}
	var raw any
	if err := json.Unmarshal(argsJSON, &raw); err != nil {
		t.Fatalf("unmarshaling args: %v", err)
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: raw,
		},
	}
}

func toolResultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestHandleChat_Success(t *testing.T) {
	s := newTestServer(&echoProvider{})
	req := makeToolRequest(t, "chat", map[string]any{"prompt": "hello"})

	result, err := s.handleChat(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("chat returned error: %s", toolResultText(result))
	}

	text := toolResultText(result)
	if !strings.HasPrefix(text, "echo: hello\n\n") {
		t.Errorf("expected trimmed reply first, got %q", text)
	}
	if !strings.Contains(text, "Prompt tokens: 1000, Completion tokens: 1000, Total price: 0.040 USD") {
		t.Errorf("expected usage line, got %q", text)
	}
}

func TestHandleChat_MissingPrompt(t *testing.T) {
	s := newTestServer(&echoProvider{})
	req := makeToolRequest(t, "chat", map[string]any{})

	result, err := s.handleChat(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for missing prompt")
	}
}

func TestHandleChat_EmptyPrompt(t *testing.T) {
	p := &echoProvider{}
	s := newTestServer(p)
	req := makeToolRequest(t, "chat", map[string]any{"prompt": "   "})

	result, err := s.handleChat(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for empty prompt")
	}
	if p.calls.Load() != 0 {
		t.Errorf("provider calls = %d, want 0", p.calls.Load())
	}
}

func TestHandleChat_FailureEndsSession(t *testing.T) {
	p := &echoProvider{err: errors.New("quota exceeded")}
	s := newTestServer(p)

	first, err := s.handleChat(context.Background(), makeToolRequest(t, "chat", map[string]any{"prompt": "a"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.IsError || !strings.Contains(toolResultText(first), "quota exceeded") {
		t.Fatalf("expected completion failure, got %q", toolResultText(first))
	}

	second, err := s.handleChat(context.Background(), makeToolRequest(t, "chat", map[string]any{"prompt": "b"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.IsError || !strings.Contains(toolResultText(second), "session ended") {
		t.Fatalf("expected session ended, got %q", toolResultText(second))
	}
	if p.calls.Load() != 1 {
		t.Errorf("provider calls = %d, want 1", p.calls.Load())
	}

	// The unanswered prompt stays in the transcript.
	if got := len(s.conv.Transcript()); got != 1 {
		t.Errorf("transcript length = %d, want 1", got)
	}
}

func TestHandleChat_SerializesTurns(t *testing.T) {
	p := &echoProvider{}
	s := newTestServer(p)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := makeToolRequest(t, "chat", map[string]any{"prompt": "hi"})
			if _, err := s.handleChat(context.Background(), req); err != nil {
				t.Errorf("handleChat: %v", err)
			}
		}()
	}
	wg.Wait()

	if peak := p.peak.Load(); peak != 1 {
		t.Errorf("peak concurrent completions = %d, want 1", peak)
	}
	tr := s.conv.Transcript()
	if len(tr) != 16 {
		t.Fatalf("transcript length = %d, want 16", len(tr))
	}
	for i, m := range tr {
		want := assist.RoleUser
		if i%2 == 1 {
			want = assist.RoleAssistant
		}
		if m.Role != want {
			t.Errorf("transcript[%d].Role = %q, want %q", i, m.Role, want)
		}
	}
}

func TestHandleUsage(t *testing.T) {
	s := newTestServer(&echoProvider{})
	for _, prompt := range []string{"a", "b"} {
		if _, err := s.handleChat(context.Background(), makeToolRequest(t, "chat", map[string]any{"prompt": prompt})); err != nil {
			t.Fatalf("handleChat: %v", err)
		}
	}

	result, err := s.handleUsage(context.Background(), makeToolRequest(t, "usage", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var u usageJSON
	if err := json.Unmarshal([]byte(toolResultText(result)), &u); err != nil {
		t.Fatalf("decoding usage: %v", err)
	}
	if u.Turns != 2 {
		t.Errorf("turns = %d, want 2", u.Turns)
	}
	want := 2 * core.DefaultPricing().Cost(1000, 1000)
	if diff := u.PriceUSD - want; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("price = %v, want %v", u.PriceUSD, want)
	}
	if u.SessionID == "" {
		t.Error("expected session ID")
	}
	if u.Model != assist.DefaultModel {
		t.Errorf("model = %q, want %q", u.Model, assist.DefaultModel)
	}
}

func TestHandleResourceTranscript(t *testing.T) {
	s := newTestServer(&echoProvider{})
	if _, err := s.handleChat(context.Background(), makeToolRequest(t, "chat", map[string]any{"prompt": "hello"})); err != nil {
		t.Fatalf("handleChat: %v", err)
	}

	req := mcp.ReadResourceRequest{}
	req.Params.URI = transcriptURI

	contents, err := s.handleResourceTranscript(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content entry, got %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}

	var messages []assist.Message
	if err := json.Unmarshal([]byte(tc.Text), &messages); err != nil {
		t.Fatalf("decoding transcript: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	// The stored reply keeps the provider's whitespace.
	if messages[1].Content != " echo: hello\n" {
		t.Errorf("assistant content = %q, want untrimmed", messages[1].Content)
	}
}

func TestHandleResourceTranscript_Empty(t *testing.T) {
	s := newTestServer(&echoProvider{})

	req := mcp.ReadResourceRequest{}
	req.Params.URI = transcriptURI

	contents, err := s.handleResourceTranscript(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc := contents[0].(mcp.TextResourceContents); tc.Text != "[]" {
		t.Errorf("empty transcript = %q, want []", tc.Text)
	}
}

func TestTruncate(t *testing.T) {
	short := "hello"
	if got := truncate(short); got != short {
		t.Errorf("truncate(short) = %q, want unchanged", got)
	}

	long := strings.Repeat("x", maxOutputBytes+10)
	got := truncate(long)
	if !strings.HasSuffix(got, "[truncated: output exceeded 1MB limit]") {
		t.Error("expected truncation notice")
	}
}
