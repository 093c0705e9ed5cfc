// Package brain turns resolved content into reply text using a cascading
// set of generation backends.
//
// Backends differ in which configuration they accept: some reject a combined
// persona-plus-tool configuration outright. Each cascade candidate therefore
// carries capability flags consumed by a single loop, which rewrites the
// request to fit before calling. Rate-limited candidates are skipped
// immediately rather than waited on, to keep end-to-end latency low; when
// every candidate fails the generator returns a fixed user-facing fallback
// instead of an error.
package brain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/teramind-labs/theta/internal/models"
)

// FallbackMessage is the terminal result when every backend failed.
const FallbackMessage = "I am currently recalibrating my neural net. Please try again later. — Theta"

// factCheckSignature is appended to successful fact-check replies.
const factCheckSignature = "\n\n— Verified by Theta (TeraMind Labs) 🧬"

const factCheckPromptTemplate = `You are Theta, a research AI entity from TeraMind Labs.

TASK: Analyze this viral Facebook post for accuracy.
POST CONTENT: "%s"

INSTRUCTIONS:
1. Use Google Search to verify the claims.
2. If false/misleading: Debunk it with a "Wait a minute..." tone.
3. If true: Add a technical insight or "Easter egg" fact.
4. Be concise (max 80 words).
5. CITE YOUR SOURCES.`

const chatSystemInstruction = `You are Theta, a research AI entity from TeraMind Labs, answering private messages sent to the TeraMind Facebook page. Be warm, concise, and factual. Keep replies under 80 words.`

// Request is one generation attempt's configuration.
type Request struct {
	Prompt            string
	SystemInstruction string
	EnableSearch      bool
}

// Backend is an abstract generation capability.
type Backend interface {
	// Name identifies the backend for logging and ReplyResult.ModelUsed.
	Name() string
	// Generate produces text for the request or returns an error.
	Generate(ctx context.Context, req Request) (string, error)
}

// Candidate pairs a backend with its capability profile.
type Candidate struct {
	Backend Backend
	// SupportsSystemInstruction is false for backends that reject a separate
	// system instruction; the instruction is folded into the prompt instead.
	SupportsSystemInstruction bool
	// SupportsToolUse is false for backends that reject the search tool;
	// search is silently dropped for them.
	SupportsToolUse bool
}

// Generator drives the cascade over an ordered candidate list.
type Generator struct {
	candidates []Candidate
}

// NewGenerator creates a Generator over the given ordered candidates.
func NewGenerator(candidates ...Candidate) *Generator {
	return &Generator{candidates: candidates}
}

// Backends reports the candidate names in cascade order.
func (g *Generator) Backends() []string {
	names := make([]string, 0, len(g.candidates))
	for _, c := range g.candidates {
		names = append(names, c.Backend.Name())
	}
	return names
}

// Generate produces reply text for the given mode and context. It never
// returns an error: exhausting the cascade yields FallbackMessage.
func (g *Generator) Generate(ctx context.Context, mode models.ReplyMode, contextText string) models.ReplyResult {
	req := buildRequest(mode, contextText)
	slog.Debug("Generator.Generate: cascade starting",
		"mode", mode, "search", req.EnableSearch, "candidates", len(g.candidates))

	for _, cand := range g.candidates {
		attempt := req
		if !cand.SupportsSystemInstruction && attempt.SystemInstruction != "" {
			attempt.Prompt = attempt.SystemInstruction + "\n\n" + attempt.Prompt
			attempt.SystemInstruction = ""
		}
		if !cand.SupportsToolUse {
			attempt.EnableSearch = false
		}

		text, err := cand.Backend.Generate(ctx, attempt)
		if err != nil {
			if isRateLimited(err) {
				slog.Warn("Generator.Generate: backend rate limited, falling through",
					"backend", cand.Backend.Name(), "error", err)
			} else {
				slog.Error("Generator.Generate: backend failed, falling through",
					"backend", cand.Backend.Name(), "error", err)
			}
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			slog.Warn("Generator.Generate: backend returned empty text, falling through",
				"backend", cand.Backend.Name())
			continue
		}

		if mode == models.ModeFactCheck {
			text += factCheckSignature
		}
		slog.Info("Generator.Generate: reply generated", "backend", cand.Backend.Name(), "length", len(text))
		return models.ReplyResult{Text: text, ModelUsed: cand.Backend.Name()}
	}

	slog.Warn("Generator.Generate: every backend failed, using fallback message")
	return models.ReplyResult{Text: FallbackMessage, ModelUsed: "fallback"}
}

// buildRequest maps a reply mode onto a request configuration. Fact-check
// mode always forces search on; chat mode consults the heuristic.
func buildRequest(mode models.ReplyMode, contextText string) Request {
	switch mode {
	case models.ModeFactCheck:
		return Request{
			Prompt:       fmt.Sprintf(factCheckPromptTemplate, contextText),
			EnableSearch: true,
		}
	default:
		return Request{
			Prompt:            contextText,
			SystemInstruction: chatSystemInstruction,
			EnableSearch:      ShouldSearch(contextText),
		}
	}
}

// isRateLimited classifies quota and availability failures that should fall
// through to the next candidate without being treated as hard errors.
func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "rate limit", "exhausted", "quota", "404", "not found"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
