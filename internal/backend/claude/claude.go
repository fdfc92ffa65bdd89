// Package claude reads screenshots with Anthropic's Claude models through langchaingo.
package claude

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/schema"

	"github.com/ironsheep/labelingo/internal/annotate"
	"github.com/ironsheep/labelingo/internal/backend"
)

// Name is the configuration tag of this backend.
const Name = "claude"

// MaxLongEdge is the largest image edge Claude accepts without resizing it itself.
const MaxLongEdge = 1568

const (
	DefaultModel     = "claude-3-5-sonnet-20241022"
	DefaultMaxTokens = 4096
)

// Config configures a Client. Zero Model and MaxTokens take the defaults.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// Client is both a backend.Detector and a backend.Translator.
type Client struct {
	llm       llms.Model
	maxTokens int
}

func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("claude: %w (set ANTHROPIC_API_KEY)", backend.ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	llm, err := anthropic.New(
		anthropic.WithModel(cfg.Model),
		anthropic.WithToken(cfg.APIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("claude: failed to create client: %w", err)
	}
	return &Client{llm: llm, maxTokens: cfg.MaxTokens}, nil
}

func (c *Client) Name() string    { return Name }
func (c *Client) Version() string { return "1" }

// Detect locates text without translating it.
func (c *Client) Detect(ctx context.Context, img image.Image, lang string) ([]annotate.DetectedElement, error) {
	scene, err := c.ask(ctx, "detect", img, backend.DetectPrompt(lang), lang)
	if err != nil {
		return nil, err
	}
	return backend.Untranslated(scene), nil
}

// Translate reads the screenshot and translates it into targetLang, with boxes.
func (c *Client) Translate(ctx context.Context, img image.Image, targetLang string) (*backend.Scene, error) {
	return c.ask(ctx, "translate", img, backend.VisionPrompt(targetLang, true), targetLang)
}

func (c *Client) ask(ctx context.Context, op string, img image.Image, prompt, lang string) (*backend.Scene, error) {
	up, err := backend.PrepareUpload(img, MaxLongEdge, 0)
	if err != nil {
		return nil, backend.Wrap(Name, op, err, false)
	}

	resp, err := c.llm.GenerateContent(ctx, []llms.MessageContent{
		{
			Role: schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart("image/jpeg", up.JPEG),
				llms.TextPart(prompt),
			},
		},
	}, llms.WithMaxTokens(c.maxTokens), llms.WithTemperature(0))
	if err != nil {
		return nil, backend.Wrap(Name, op, err, transient(err))
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, backend.Wrap(Name, op, backend.ErrEmptyResponse, true)
	}

	scene, err := backend.ParseVisionResponse(resp.Choices[0].Content, lang, up.Factor)
	if err != nil {
		return nil, backend.Wrap(Name, op, err, true)
	}
	return scene, nil
}

// transient classifies langchaingo errors, which carry the HTTP status only in
// their message.
func transient(err error) bool {
	if backend.IsTransient(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"429", "500", "502", "503", "529", "overloaded", "rate limit", "timeout"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
