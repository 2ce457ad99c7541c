package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/sashabaranov/go-openai"
)

const totalPrompt = `Extract the total amount paid from this receipt image. ` +
	`Answer only with JSON: {"total": <number>}. Use a plain number without currency signs.`

// VisionOptions for the image understanding endpoint
type VisionOptions struct {
	Key   string
	URL   string
	Model string
}

// VisionClient reads receipt images with an OpenAI compatible chat endpoint
type VisionClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewVisionClient creates a vision client
func NewVisionClient(opt VisionOptions) (*VisionClient, error) {
	if opt.Key == "" {
		return nil, fmt.Errorf("no vision key")
	}
	if opt.Model == "" {
		return nil, fmt.Errorf("no vision model")
	}
	cfg := newConfig(opt.Key, opt.URL)
	res := &VisionClient{client: openai.NewClientWithConfig(cfg), model: opt.Model, timeout: time.Minute * 2}
	goapp.Log.Info().Str("url", cfg.BaseURL).Str("model", res.model).Msg("init vision client")
	return res, nil
}

// ReadTotal asks the vision model for the receipt total, returns raw model answer
func (c *VisionClient) ReadTotal(ctx context.Context, imageURL string) (string, error) {
	ctx, cf := context.WithTimeout(ctx, c.timeout)
	defer cf()
	goapp.Log.Info().Str("url", goapp.Sanitize(imageURL)).Str("model", c.model).Msg("read total")
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: totalPrompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL: imageURL, Detail: openai.ImageURLDetailAuto}},
			}},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0,
	})
	if err != nil {
		return "", fmt.Errorf("can't read total: %w", err)
	}
	res, err := firstContent(&resp)
	if err != nil {
		return "", fmt.Errorf("can't read total: %w", err)
	}
	return res, nil
}
