package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/refundo/internal/pkg/audio"
	"github.com/airenas/refundo/internal/pkg/config"
	"github.com/airenas/refundo/internal/pkg/fetcher"
	"github.com/airenas/refundo/internal/pkg/llm"
	"github.com/airenas/refundo/internal/pkg/persistence"
	"github.com/airenas/refundo/internal/pkg/postgres"
)

// processes every refund request having an audio URL and prints the batch result
func main() {
	goapp.StartWithDefault()
	settings, err := config.Load(goapp.Config)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't load config")
	}

	ctx, cf := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cf()

	dbPool, err := postgres.NewPool(ctx, settings.DB.URL, settings.DB.Key)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}
	defer dbPool.Close()
	db, err := postgres.NewDB(dbPool)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db")
	}
	llmClient, err := llm.NewClient(llm.Options{Key: settings.LLM.Key, URL: settings.LLM.URL,
		TranscriptionModel: settings.LLM.TranscriptionModel, SummaryModel: settings.LLM.SummaryModel})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init llm client")
	}
	f, err := fetcher.NewFetcher(settings.Fetch.Dir, settings.Fetch.Retries)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init fetcher")
	}
	pr, err := audio.NewProcessor(&audio.ServiceData{Fetcher: f, Transcriber: llmClient, Summarizer: llmClient})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init audio processor")
	}

	refs, err := db.ListAudioRefs(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't load audio urls")
	}
	res := pr.ProcessBatch(ctx, toItems(refs))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't write result")
	}
	if !res.Success {
		cf()
		dbPool.Close()
		os.Exit(1)
	}
}

func toItems(refs []*persistence.AudioRef) []*audio.Item {
	res := make([]*audio.Item, 0, len(refs))
	for _, r := range refs {
		res = append(res, &audio.Item{ID: r.ID, URL: r.AudioURL})
	}
	return res
}
