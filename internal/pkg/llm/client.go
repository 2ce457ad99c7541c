package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/sashabaranov/go-openai"
)

const (
	summarySystemPrompt = "You are a helpful assistant that provides concise summaries."
	summaryUserPrompt   = "Please provide a concise summary of this transcription: %s"
)

// Options for the hosted model endpoint
type Options struct {
	Key                string
	URL                string
	TranscriptionModel string
	SummaryModel       string
}

// Client calls OpenAI compatible speech and chat endpoints
type Client struct {
	client             *openai.Client
	transcriptionModel string
	summaryModel       string
	timeout            time.Duration
}

// NewClient creates a client
func NewClient(opt Options) (*Client, error) {
	if opt.Key == "" {
		return nil, fmt.Errorf("no key")
	}
	if opt.TranscriptionModel == "" {
		return nil, fmt.Errorf("no transcription model")
	}
	if opt.SummaryModel == "" {
		return nil, fmt.Errorf("no summary model")
	}
	cfg := newConfig(opt.Key, opt.URL)
	res := &Client{client: openai.NewClientWithConfig(cfg),
		transcriptionModel: opt.TranscriptionModel,
		summaryModel:       opt.SummaryModel,
		timeout:            time.Minute * 5,
	}
	goapp.Log.Info().Str("url", cfg.BaseURL).Str("stt", res.transcriptionModel).
		Str("summary", res.summaryModel).Msg("init llm client")
	return res, nil
}

// Transcribe converts the audio file into text
func (c *Client) Transcribe(ctx context.Context, file string) (string, error) {
	ctx, cf := context.WithTimeout(ctx, c.timeout)
	defer cf()
	goapp.Log.Info().Str("file", file).Str("model", c.transcriptionModel).Msg("transcribe")
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcriptionModel,
		FilePath: file,
	})
	if err != nil {
		return "", fmt.Errorf("can't transcribe: %w", err)
	}
	res := strings.TrimSpace(resp.Text)
	if res == "" {
		return "", fmt.Errorf("empty transcription")
	}
	return res, nil
}

// Summarize returns a concise summary of the text
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	ctx, cf := context.WithTimeout(ctx, c.timeout)
	defer cf()
	goapp.Log.Info().Int("len", len(text)).Str("model", c.summaryModel).Msg("summarize")
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.summaryModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(summaryUserPrompt, text)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("can't summarize: %w", err)
	}
	res, err := firstContent(&resp)
	if err != nil {
		return "", fmt.Errorf("can't summarize: %w", err)
	}
	return res, nil
}

func firstContent(resp *openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	res := strings.TrimSpace(resp.Choices[0].Message.Content)
	if res == "" {
		return "", fmt.Errorf("empty response")
	}
	return res, nil
}

func newConfig(key, url string) openai.ClientConfig {
	res := openai.DefaultConfig(key)
	if url != "" {
		res.BaseURL = strings.TrimSuffix(url, "/")
	}
	res.HTTPClient = &http.Client{Transport: newTransport()}
	return res
}

func newTransport() http.RoundTripper {
	res := http.DefaultTransport.(*http.Transport).Clone()
	res.MaxIdleConnsPerHost = 10
	res.IdleConnTimeout = 90 * time.Second
	return res
}
