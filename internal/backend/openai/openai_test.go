package openai

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/ironsheep/labelingo/internal/backend"
)

type fakeChat struct {
	resp openai.ChatCompletionResponse
	err  error
	req  openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.req = req
	return f.resp, f.err
}

func reply(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
	}}
}

func TestNew(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, backend.ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
	c, err := New(Config{APIKey: "sk-test"})
	if err != nil {
		t.Fatal(err)
	}
	if c.model != DefaultModel {
		t.Errorf("model: got %s, want %s", c.model, DefaultModel)
	}
}

func TestTranslate(t *testing.T) {
	chat := &fakeChat{resp: reply(`{"title":"Settings","source_languages":["fr","zh"],"elements":[{"text":"设置","translation":"Paramètres"},{"text":"OK","translation":""}]}`)}
	c := &Client{chat: chat, model: "gpt-test"}

	scene, err := c.Translate(context.Background(), image.NewRGBA(image.Rect(0, 0, 64, 32)), "fr")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	if scene.SourceLanguage != "zh" {
		t.Errorf("target language should be dropped from several sources, got %q", scene.SourceLanguage)
	}
	if len(scene.Elements) != 2 || scene.Elements[0].Translation != "Paramètres" {
		t.Errorf("elements: %+v", scene.Elements)
	}
	if scene.Located != nil {
		t.Error("openai scenes should not carry locations")
	}

	req := chat.req
	if req.Model != "gpt-test" || req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Errorf("request: model %s, format %+v", req.Model, req.ResponseFormat)
	}
	parts := req.Messages[0].MultiContent
	if len(parts) != 2 || !strings.HasPrefix(parts[0].ImageURL.URL, "data:image/jpeg;base64,") {
		t.Errorf("first part should be the JPEG data URI: %+v", parts)
	}
	if !strings.Contains(parts[1].Text, "French") || strings.Contains(parts[1].Text, "bbox") {
		t.Error("prompt should name the language and not ask for boxes")
	}
}

func TestTranslate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		chat      *fakeChat
		transient bool
	}{
		{"rate limited", &fakeChat{err: &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}}, true},
		{"bad key", &fakeChat{err: &openai.APIError{HTTPStatusCode: 401, Message: "nope"}}, false},
		{"no choices", &fakeChat{resp: openai.ChatCompletionResponse{}}, true},
		{"not json", &fakeChat{resp: reply("sorry")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{chat: tt.chat, model: DefaultModel}
			_, err := c.Translate(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)), "en")
			be, ok := backend.AsError(err)
			if !ok {
				t.Fatalf("expected backend error, got %v", err)
			}
			if be.Transient != tt.transient {
				t.Errorf("Transient: got %v, want %v", be.Transient, tt.transient)
			}
		})
	}
}
