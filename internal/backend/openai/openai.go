// Package openai translates screenshots with OpenAI vision models. OpenAI does not
// return reliable bounding boxes, so it only implements backend.Translator.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"

	"github.com/sashabaranov/go-openai"

	"github.com/ironsheep/labelingo/internal/backend"
)

// Name is the configuration tag of this backend.
const Name = "openai"

// Upload limits for screenshots sent to OpenAI.
const (
	MaxLongEdge  = 2048
	MaxShortEdge = 768
)

const DefaultModel = "gpt-4o-mini"

// Config configures a Client. Model defaults to DefaultModel.
type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the API endpoint, for proxies and compatible servers.
	BaseURL string
}

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	chat  chatClient
	model string
}

// New returns a translator using the chat completions API.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w (set OPENAI_API_KEY)", backend.ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &Client{chat: openai.NewClientWithConfig(oc), model: cfg.Model}, nil
}

func (c *Client) Name() string    { return Name }
func (c *Client) Version() string { return "1" }

// Translate reads the screenshot and translates its text into targetLang.
func (c *Client) Translate(ctx context.Context, img image.Image, targetLang string) (*backend.Scene, error) {
	up, err := backend.PrepareUpload(img, MaxLongEdge, MaxShortEdge)
	if err != nil {
		return nil, backend.Wrap(Name, "translate", err, false)
	}

	resp, err := c.chat.CreateChatCompletion(ctx, c.request(up.JPEG, targetLang))
	if err != nil {
		return nil, backend.Wrap(Name, "translate", err, transient(err))
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, backend.Wrap(Name, "translate", backend.ErrEmptyResponse, true)
	}

	scene, err := backend.ParseVisionResponse(resp.Choices[0].Message.Content, targetLang, up.Factor)
	if err != nil {
		return nil, backend.Wrap(Name, "translate", err, true)
	}
	// Boxes from this API are not trusted.
	scene.Located = nil
	return scene, nil
}

func (c *Client) request(jpeg []byte, targetLang string) openai.ChatCompletionRequest {
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)
	return openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: uri, Detail: openai.ImageURLDetailAuto},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: backend.VisionPrompt(targetLang, false),
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens: 4096,
	}
}

func transient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return backend.TransientStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return backend.TransientStatus(reqErr.HTTPStatusCode)
	}
	return backend.IsTransient(err)
}
