package claude

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/ironsheep/labelingo/internal/backend"
)

type fakeModel struct {
	content  string
	err      error
	messages []llms.MessageContent
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.content}}}, nil
}

func (f *fakeModel) Call(context.Context, string, ...llms.CallOption) (string, error) {
	return f.content, f.err
}

func TestNew_MissingKey(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, backend.ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestTranslate_ScalesBoxes(t *testing.T) {
	model := &fakeModel{content: "```json\n" +
		`{"title":"Dialog","source_languages":["ja"],"elements":[{"bbox":[100,50,300,90],"text":"キャンセル","translation":"Cancel"}]}` +
		"\n```"}
	c := &Client{llm: model, maxTokens: DefaultMaxTokens}

	// 3136 wide is scaled by 0.5 to fit 1568.
	scene, err := c.Translate(context.Background(), image.NewRGBA(image.Rect(0, 0, 3136, 800)), "en")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	if len(scene.Located) != 1 {
		t.Fatalf("located: %+v", scene.Located)
	}
	box := scene.Located[0].BoundingBox
	if box.X1 != 200 || box.Y1 != 100 || box.X2 != 600 || box.Y2 != 180 {
		t.Errorf("box should be in source pixels, got %+v", box)
	}

	parts := model.messages[0].Parts
	if len(parts) != 2 {
		t.Fatalf("parts: %d", len(parts))
	}
	if bin, ok := parts[0].(llms.BinaryContent); !ok || bin.MIMEType != "image/jpeg" {
		t.Errorf("first part should be the JPEG image, got %T", parts[0])
	}
}

func TestDetect(t *testing.T) {
	model := &fakeModel{content: `{"elements":[{"bbox":[1,2,30,12],"text":"開く"}]}`}
	c := &Client{llm: model, maxTokens: DefaultMaxTokens}

	got, err := c.Detect(context.Background(), image.NewRGBA(image.Rect(0, 0, 100, 100)), "ja")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].TranslationText() != "開く" {
		t.Errorf("Detect: %+v", got)
	}
}

func TestTransient(t *testing.T) {
	tests := map[string]bool{
		"API returned unexpected status code: 529: Overloaded": true,
		"API returned unexpected status code: 429":             true,
		"API returned unexpected status code: 401":             false,
		"invalid x-api-key":                                    false,
	}
	for msg, want := range tests {
		if got := transient(errors.New(msg)); got != want {
			t.Errorf("transient(%q) = %v, want %v", msg, got, want)
		}
	}
}
