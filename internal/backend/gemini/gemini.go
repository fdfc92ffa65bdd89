// Package gemini reads screenshots with Google's Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ironsheep/labelingo/internal/annotate"
	"github.com/ironsheep/labelingo/internal/backend"
)

// Name is the configuration tag of this backend.
const Name = "gemini"

// Upload limits for screenshots sent to Gemini.
const (
	MaxLongEdge  = 2048
	MaxShortEdge = 1536
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-1.5-flash"

// Config configures a Client.
type Config struct {
	// APIKey is required.
	APIKey string

	// Model defaults to DefaultModel.
	Model string
}

type generateFunc func(ctx context.Context, jpeg []byte, prompt string) (string, error)

// Client is both a backend.Detector and a backend.Translator.
type Client struct {
	client   *genai.Client
	generate generateFunc
}

// New connects to the Gemini API.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w (set GEMINI_API_KEY)", backend.ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0)

	return &Client{
		client: client,
		generate: func(ctx context.Context, jpeg []byte, prompt string) (string, error) {
			res, err := model.GenerateContent(ctx, genai.ImageData("jpeg", jpeg), genai.Text(prompt))
			if err != nil {
				return "", err
			}
			return responseText(res)
		},
	}, nil
}

func responseText(res *genai.GenerateContentResponse) (string, error) {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", backend.ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("unexpected response format from Gemini API")
	}
	return b.String(), nil
}

// Name returns "gemini".
func (c *Client) Name() string { return Name }

// Version is part of every cache key. Bump it when the prompt or the response parsing
// changes so stale entries are not served.
func (c *Client) Version() string { return "1" }

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Detect locates text without translating it.
func (c *Client) Detect(ctx context.Context, img image.Image, lang string) ([]annotate.DetectedElement, error) {
	scene, err := c.ask(ctx, "detect", img, backend.DetectPrompt(lang), lang)
	if err != nil {
		return nil, err
	}
	return backend.Untranslated(scene), nil
}

// Translate reads the screenshot and translates it into targetLang. The returned
// scene carries bounding boxes, so no separate detector is needed.
func (c *Client) Translate(ctx context.Context, img image.Image, targetLang string) (*backend.Scene, error) {
	return c.ask(ctx, "translate", img, backend.VisionPrompt(targetLang, true), targetLang)
}

func (c *Client) ask(ctx context.Context, op string, img image.Image, prompt, lang string) (*backend.Scene, error) {
	up, err := backend.PrepareUpload(img, MaxLongEdge, MaxShortEdge)
	if err != nil {
		return nil, backend.Wrap(Name, op, err, false)
	}

	text, err := c.generate(ctx, up.JPEG, prompt)
	if err != nil {
		return nil, backend.Wrap(Name, op, err, backend.IsTransient(err))
	}

	scene, err := backend.ParseVisionResponse(text, lang, up.Factor)
	if err != nil {
		// Malformed replies are retried.
		return nil, backend.Wrap(Name, op, err, true)
	}
	return scene, nil
}
