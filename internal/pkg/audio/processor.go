package audio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/refundo/internal/pkg/status"
	"github.com/airenas/refundo/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Outcome messages for failed steps
const (
	ErrDownload           = "download failed"
	ErrEmptyTranscription = "empty transcription"
	ErrEmptySummary       = "empty summary"
)

// Fetcher downloads remote audio into a local scratch file
type Fetcher interface {
	FetchToLocal(ctx context.Context, url string) string
}

// Transcriber converts an audio file to text
type Transcriber interface {
	Transcribe(ctx context.Context, file string) (string, error)
}

// Summarizer makes a concise summary
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// ServiceData keeps collaborators of the processor
type ServiceData struct {
	Fetcher     Fetcher
	Transcriber Transcriber
	Summarizer  Summarizer
}

// Outcome of one audio file processing
type Outcome struct {
	Success       bool
	Transcription string
	Summary       string
	Error         string
}

// Item to process in a batch
type Item struct {
	ID  int64  `json:"id"`
	URL string `json:"audio_url"`
}

// Result is a per item batch record
type Result struct {
	ID            int64         `json:"id"`
	URL           string        `json:"audio_url"`
	Transcription string        `json:"transcription,omitempty"`
	Summary       string        `json:"summary,omitempty"`
	Status        status.Status `json:"status"`
	Error         string        `json:"error,omitempty"`
}

// BatchResult is the outcome of ProcessBatch
type BatchResult struct {
	Success  bool      `json:"success"`
	Response string    `json:"response"`
	Data     []*Result `json:"data"`
}

// Processor runs download, transcription and summary for audio files
type Processor struct {
	data *ServiceData
}

// NewProcessor creates processor
func NewProcessor(data *ServiceData) (*Processor, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	return &Processor{data: data}, nil
}

// TranscribeAndSummarize processes one audio file. It never fails,
// all errors are reported inside the outcome
func (p *Processor) TranscribeAndSummarize(ctx context.Context, url string) (res *Outcome) {
	defer func() {
		if r := recover(); r != nil {
			goapp.Log.Error().Interface("panic", r).Str("url", goapp.Sanitize(url)).Msg("recovered")
			res = failure(fmt.Sprintf("unexpected failure: %v", r))
		}
	}()
	if err := validate(p.data); err != nil {
		return failure(err.Error())
	}
	file := p.data.Fetcher.FetchToLocal(ctx, url)
	if file == "" {
		return failure(ErrDownload)
	}
	defer utils.RemoveQuietly(file)

	text, err := p.data.Transcriber.Transcribe(ctx, file)
	if err != nil {
		goapp.Log.Error().Err(err).Str("file", file).Msg("can't transcribe")
		return failure(err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return failure(ErrEmptyTranscription)
	}
	summary, err := p.data.Summarizer.Summarize(ctx, text)
	if err != nil {
		goapp.Log.Error().Err(err).Str("file", file).Msg("can't summarize")
		return failure(err.Error())
	}
	if strings.TrimSpace(summary) == "" {
		return failure(ErrEmptySummary)
	}
	return &Outcome{Success: true, Transcription: text, Summary: summary}
}

// ProcessBatch processes items one by one in the given order.
// A failed item is recorded and never stops the batch
func (p *Processor) ProcessBatch(ctx context.Context, items []*Item) *BatchResult {
	if err := p.validateBatch(items); err != nil {
		goapp.Log.Error().Err(err).Msg("can't start batch")
		return &BatchResult{Response: fmt.Sprintf("Error processing audio files: %v", err), Data: []*Result{}}
	}
	runID := uuid.NewString()
	goapp.Log.Info().Str("run", runID).Int("items", len(items)).Msg("start batch")
	defer goapp.Estimate("batch " + runID)()

	res := &BatchResult{Success: true, Data: make([]*Result, 0, len(items))}
	ok, failed := 0, 0
	for i, it := range items {
		r := p.processItem(ctx, it)
		if r.Status == status.Processed {
			ok++
		} else {
			failed++
		}
		goapp.Log.Info().Str("run", runID).Int("at", i+1).Int64("ID", it.ID).Str("status", r.Status.String()).Msg("item done")
		res.Data = append(res.Data, r)
	}
	res.Response = fmt.Sprintf("Successfully processed %d audio files. %d failed.", ok, failed)
	goapp.Log.Info().Str("run", runID).Msg(res.Response)
	return res
}

func (p *Processor) processItem(ctx context.Context, it *Item) (res *Result) {
	res = &Result{ID: it.ID, URL: it.URL}
	defer func() {
		if r := recover(); r != nil {
			goapp.Log.Error().Interface("panic", r).Int64("ID", it.ID).Msg("recovered")
			res.Status, res.Error = status.Failed, fmt.Sprintf("unexpected failure: %v", r)
		}
	}()
	start := time.Now()
	o := p.TranscribeAndSummarize(ctx, it.URL)
	if o == nil {
		res.Status, res.Error = status.Failed, "no outcome"
		return res
	}
	if !o.Success {
		goapp.Log.Warn().Int64("ID", it.ID).Str("error", o.Error).Dur("took", time.Since(start)).Msg("item failed")
		res.Status, res.Error = status.Failed, o.Error
		return res
	}
	res.Status, res.Transcription, res.Summary = status.Processed, o.Transcription, o.Summary
	return res
}

func (p *Processor) validateBatch(items []*Item) error {
	if p == nil {
		return errors.New("no processor")
	}
	if err := validate(p.data); err != nil {
		return err
	}
	for i, it := range items {
		if it == nil {
			return errors.Errorf("no item at %d", i)
		}
	}
	return nil
}

func failure(msg string) *Outcome {
	return &Outcome{Error: msg}
}

func validate(data *ServiceData) error {
	if data == nil {
		return errors.New("no service data")
	}
	if data.Fetcher == nil {
		return errors.New("no fetcher")
	}
	if data.Transcriber == nil {
		return errors.New("no transcriber")
	}
	if data.Summarizer == nil {
		return errors.New("no summarizer")
	}
	return nil
}
