package anyllm

import (
	"testing"

	"github.com/flueprint/flueprint/pkg/provider/llm"
)

// ── New validation ────────────────────────────────────────────────────────────

func TestNew_EmptyProviderName(t *testing.T) {
	_, err := New("", "gpt-4o")
	if err == nil {
		t.Fatal("expected error for empty provider name")
	}
}

func TestNew_EmptyModel(t *testing.T) {
	_, err := New("ollama", "")
	if err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New("carrier-pigeon", "fast-pigeon-1")
	if err == nil {
		t.Fatal("expected error for unsupported provider name")
	}
}

// ── buildParams ───────────────────────────────────────────────────────────────

func TestBuildParams_SystemAndUserMessages(t *testing.T) {
	p := &Provider{model: "gpt-4o"}
	params := p.buildParams(llm.Request{
		SystemPrompt: "You extract depot notes.",
		UserContent:  "Transcript: boiler in the airing cupboard.",
	})

	if params.Model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %q", params.Model)
	}
	if len(params.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(params.Messages))
	}
	if params.Messages[0].Role != "system" {
		t.Errorf("expected first message role system, got %q", params.Messages[0].Role)
	}
	if params.Messages[1].Role != "user" {
		t.Errorf("expected second message role user, got %q", params.Messages[1].Role)
	}
	if params.Messages[1].ContentString() != "Transcript: boiler in the airing cupboard." {
		t.Errorf("unexpected user content: %q", params.Messages[1].ContentString())
	}
}

func TestBuildParams_NoSystemPrompt(t *testing.T) {
	p := &Provider{model: "gpt-4o"}
	params := p.buildParams(llm.Request{UserContent: "hello"})

	if len(params.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(params.Messages))
	}
	if params.Messages[0].Role != "user" {
		t.Errorf("expected role user, got %q", params.Messages[0].Role)
	}
}

func TestBuildParams_TemperatureAndMaxTokens(t *testing.T) {
	p := &Provider{model: "gpt-4o"}
	params := p.buildParams(llm.Request{
		UserContent: "hello",
		Temperature: 0.2,
		MaxTokens:   2048,
	})

	if params.Temperature == nil || *params.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %v", params.Temperature)
	}
	if params.MaxTokens == nil || *params.MaxTokens != 2048 {
		t.Errorf("expected max tokens 2048, got %v", params.MaxTokens)
	}
}

func TestBuildParams_ZeroTemperatureOmitted(t *testing.T) {
	p := &Provider{model: "gpt-4o"}
	params := p.buildParams(llm.Request{UserContent: "hello"})

	if params.Temperature != nil {
		t.Errorf("expected nil temperature for zero value, got %v", *params.Temperature)
	}
	if params.MaxTokens != nil {
		t.Errorf("expected nil max tokens for zero value, got %v", *params.MaxTokens)
	}
}
