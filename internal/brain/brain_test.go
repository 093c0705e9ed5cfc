package brain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/teramind-labs/theta/internal/models"
)

// scriptedBackend returns a canned result and records the requests it saw.
type scriptedBackend struct {
	name     string
	text     string
	err      error
	requests []Request
}

func (b *scriptedBackend) Name() string { return b.name }

func (b *scriptedBackend) Generate(ctx context.Context, req Request) (string, error) {
	b.requests = append(b.requests, req)
	return b.text, b.err
}

func fullCandidate(b Backend) Candidate {
	return Candidate{Backend: b, SupportsSystemInstruction: true, SupportsToolUse: true}
}

func TestGenerateFirstCandidateWins(t *testing.T) {
	first := &scriptedBackend{name: "m1", text: "answer one"}
	second := &scriptedBackend{name: "m2", text: "answer two"}
	g := NewGenerator(fullCandidate(first), fullCandidate(second))

	result := g.Generate(context.Background(), models.ModeChat, "what is the boiling point of water?")
	if result.ModelUsed != "m1" {
		t.Errorf("expected first candidate to answer, got %s", result.ModelUsed)
	}
	if len(second.requests) != 0 {
		t.Errorf("second candidate should not be called, got %d calls", len(second.requests))
	}
}

func TestGenerateRateLimitedFallsThrough(t *testing.T) {
	first := &scriptedBackend{name: "m1", err: errors.New("googleapi: Error 429: Resource has been exhausted")}
	second := &scriptedBackend{name: "m2", text: "answer two"}
	g := NewGenerator(fullCandidate(first), fullCandidate(second))

	result := g.Generate(context.Background(), models.ModeChat, "what is the boiling point of water?")
	if result.ModelUsed != "m2" {
		t.Errorf("expected fall-through to second candidate, got %s", result.ModelUsed)
	}
	if result.Text != "answer two" {
		t.Errorf("unexpected text: %q", result.Text)
	}
}

func TestGenerateHardErrorAlsoFallsThrough(t *testing.T) {
	first := &scriptedBackend{name: "m1", err: errors.New("invalid request")}
	second := &scriptedBackend{name: "m2", text: "answer two"}
	g := NewGenerator(fullCandidate(first), fullCandidate(second))

	result := g.Generate(context.Background(), models.ModeChat, "hm?")
	if result.ModelUsed != "m2" {
		t.Errorf("expected fall-through on hard error, got %s", result.ModelUsed)
	}
}

func TestGenerateEmptyTextFallsThrough(t *testing.T) {
	first := &scriptedBackend{name: "m1", text: "   "}
	second := &scriptedBackend{name: "m2", text: "real answer"}
	g := NewGenerator(fullCandidate(first), fullCandidate(second))

	result := g.Generate(context.Background(), models.ModeChat, "question?")
	if result.ModelUsed != "m2" {
		t.Errorf("expected whitespace-only result to fall through, got %s", result.ModelUsed)
	}
}

func TestGenerateExhaustedCascadeReturnsFallback(t *testing.T) {
	first := &scriptedBackend{name: "m1", err: errors.New("quota exceeded")}
	second := &scriptedBackend{name: "m2", err: errors.New("model not found")}
	g := NewGenerator(fullCandidate(first), fullCandidate(second))

	result := g.Generate(context.Background(), models.ModeChat, "question?")
	if result.ModelUsed != "fallback" {
		t.Fatalf("expected fallback model label, got %s", result.ModelUsed)
	}
	if result.Text != FallbackMessage {
		t.Errorf("expected fixed fallback message, got %q", result.Text)
	}
}

func TestGenerateEmptyCascadeReturnsFallback(t *testing.T) {
	g := NewGenerator()

	result := g.Generate(context.Background(), models.ModeChat, "question?")
	if result.ModelUsed != "fallback" || result.Text != FallbackMessage {
		t.Errorf("empty cascade must yield the fallback message, got %+v", result)
	}
}

func TestGenerateFoldsSystemInstructionForLimitedBackend(t *testing.T) {
	limited := &scriptedBackend{name: "lite", text: "answer"}
	g := NewGenerator(Candidate{Backend: limited})

	g.Generate(context.Background(), models.ModeChat, "hello there friend")
	if len(limited.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(limited.requests))
	}
	req := limited.requests[0]
	if req.SystemInstruction != "" {
		t.Error("system instruction must be cleared for a backend that rejects it")
	}
	if !strings.Contains(req.Prompt, "You are Theta") {
		t.Errorf("persona must be folded into the prompt, got %q", req.Prompt)
	}
	if !strings.Contains(req.Prompt, "hello there friend") {
		t.Errorf("original message must remain in the prompt, got %q", req.Prompt)
	}
}

func TestGenerateStripsSearchForLimitedBackend(t *testing.T) {
	limited := &scriptedBackend{name: "lite", text: "answer"}
	g := NewGenerator(Candidate{Backend: limited, SupportsSystemInstruction: true})

	g.Generate(context.Background(), models.ModeFactCheck, "some viral claim")
	if len(limited.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(limited.requests))
	}
	if limited.requests[0].EnableSearch {
		t.Error("search must be stripped for a backend without tool support")
	}
}

func TestGenerateCapableBackendKeepsRequestIntact(t *testing.T) {
	full := &scriptedBackend{name: "full", text: "answer"}
	g := NewGenerator(fullCandidate(full))

	g.Generate(context.Background(), models.ModeChat, "hello there friend")
	req := full.requests[0]
	if req.SystemInstruction == "" {
		t.Error("capable backend should receive the system instruction separately")
	}
	if req.Prompt != "hello there friend" {
		t.Errorf("capable backend should receive the raw message, got %q", req.Prompt)
	}
}

func TestGenerateFactCheckAppendsSignature(t *testing.T) {
	full := &scriptedBackend{name: "full", text: "The claim is false."}
	g := NewGenerator(fullCandidate(full))

	result := g.Generate(context.Background(), models.ModeFactCheck, "some viral claim")
	if !strings.HasSuffix(result.Text, factCheckSignature) {
		t.Errorf("fact-check reply must carry the signature, got %q", result.Text)
	}
	if !full.requests[0].EnableSearch {
		t.Error("fact-check mode must request search")
	}
}

func TestGenerateChatOmitsSignature(t *testing.T) {
	full := &scriptedBackend{name: "full", text: "Sure thing."}
	g := NewGenerator(fullCandidate(full))

	result := g.Generate(context.Background(), models.ModeChat, "thanks!")
	if strings.Contains(result.Text, "Verified by Theta") {
		t.Errorf("chat replies must not carry the fact-check signature, got %q", result.Text)
	}
}

func TestGenerateFallbackAttemptDoesNotMutateLaterAttempts(t *testing.T) {
	limited := &scriptedBackend{name: "lite", err: errors.New("429 too many requests")}
	full := &scriptedBackend{name: "full", text: "answer"}
	g := NewGenerator(Candidate{Backend: limited}, fullCandidate(full))

	g.Generate(context.Background(), models.ModeChat, "hello there friend")
	req := full.requests[0]
	if req.SystemInstruction == "" || req.Prompt != "hello there friend" {
		t.Errorf("capability rewriting for one candidate leaked into the next: %+v", req)
	}
}

func TestBackendsReportsCascadeOrder(t *testing.T) {
	g := NewGenerator(
		fullCandidate(&scriptedBackend{name: "a"}),
		fullCandidate(&scriptedBackend{name: "b"}),
	)
	names := g.Backends()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("unexpected cascade order: %v", names)
	}
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		err  string
		want bool
	}{
		{"googleapi: Error 429: quota exceeded", true},
		{"rate limit reached", true},
		{"Resource has been exhausted", true},
		{"model not found", true},
		{"404 no such model", true},
		{"invalid request payload", false},
		{"connection refused", false},
	}
	for _, tc := range tests {
		if got := isRateLimited(errors.New(tc.err)); got != tc.want {
			t.Errorf("isRateLimited(%q) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
