package openai

import (
	"testing"

	"github.com/flueprint/flueprint/pkg/provider/llm"
)

func TestNew_EmptyAPIKey(t *testing.T) {
	_, err := New("", "gpt-4o")
	if err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestNew_EmptyModel(t *testing.T) {
	_, err := New("sk-test", "")
	if err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestBuildParams_Messages(t *testing.T) {
	p := &Provider{model: "gpt-4o"}
	params := p.buildParams(llm.Request{
		SystemPrompt: "Return only JSON.",
		UserContent:  "Survey transcript here.",
	})

	if string(params.Model) != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %q", params.Model)
	}
	if len(params.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(params.Messages))
	}
	if params.Messages[0].OfSystem == nil {
		t.Error("expected first message to be a system message")
	}
	if params.Messages[1].OfUser == nil {
		t.Error("expected second message to be a user message")
	}
}

func TestBuildParams_Optionals(t *testing.T) {
	p := &Provider{model: "gpt-4o"}

	params := p.buildParams(llm.Request{UserContent: "x", Temperature: 0.1, MaxTokens: 4096})
	if !params.Temperature.Valid() || params.Temperature.Value != 0.1 {
		t.Errorf("expected temperature 0.1, got %+v", params.Temperature)
	}
	if !params.MaxCompletionTokens.Valid() || params.MaxCompletionTokens.Value != 4096 {
		t.Errorf("expected max completion tokens 4096, got %+v", params.MaxCompletionTokens)
	}

	params = p.buildParams(llm.Request{UserContent: "x"})
	if params.Temperature.Valid() {
		t.Error("expected unset temperature for zero value")
	}
	if params.MaxCompletionTokens.Valid() {
		t.Error("expected unset max completion tokens for zero value")
	}
}
