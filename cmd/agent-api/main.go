package main

import (
	"context"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/refundo/internal/pkg/agentservice"
	"github.com/airenas/refundo/internal/pkg/audio"
	"github.com/airenas/refundo/internal/pkg/config"
	"github.com/airenas/refundo/internal/pkg/fetcher"
	"github.com/airenas/refundo/internal/pkg/llm"
	"github.com/airenas/refundo/internal/pkg/postgres"
	"github.com/airenas/refundo/internal/pkg/receipt"
	"github.com/airenas/refundo/internal/pkg/storage"
	"github.com/airenas/refundo/internal/pkg/utils"
	"github.com/labstack/gommon/color"
)

func main() {
	goapp.StartWithDefault()
	cfg := goapp.Config
	settings, err := config.Load(cfg)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't load config")
	}

	printBanner()

	go utils.RunPerfEndpoint()

	data := &agentservice.Data{}
	cfg.SetDefault("port", 8000)
	data.Port = cfg.GetInt("port")
	data.ReceiptsBucket = settings.Storage.Bucket

	ctx := context.Background()
	dbPool, err := postgres.NewPool(ctx, settings.DB.URL, settings.DB.Key)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}
	defer dbPool.Close()

	data.DB, err = postgres.NewDB(dbPool)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db")
	}
	data.MsgSender, err = postgres.NewSender(dbPool)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init gue sender")
	}
	data.Storage, err = storage.NewResolver(storage.Options{URL: settings.Storage.URL, User: settings.Storage.User,
		Key: settings.Storage.Key, Secure: settings.Storage.Secure, PublicURL: settings.Storage.PublicURL})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init storage")
	}
	llmClient, err := llm.NewClient(llm.Options{Key: settings.LLM.Key, URL: settings.LLM.URL,
		TranscriptionModel: settings.LLM.TranscriptionModel, SummaryModel: settings.LLM.SummaryModel})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init llm client")
	}
	visionClient, err := llm.NewVisionClient(llm.VisionOptions{Key: settings.Vision.Key,
		URL: settings.Vision.URL, Model: settings.Vision.Model})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init vision client")
	}
	data.Analyzer, err = receipt.NewAnalyzer(visionClient)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init analyzer")
	}
	data.NameMapper, err = receipt.NewNameMapper(settings.ReceiptNamePattern)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init receipt name mapper")
	}
	f, err := fetcher.NewFetcher(settings.Fetch.Dir, settings.Fetch.Retries)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init fetcher")
	}
	data.Audio, err = audio.NewProcessor(&audio.ServiceData{Fetcher: f, Transcriber: llmClient, Summarizer: llmClient})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init audio processor")
	}

	err = agentservice.StartWebServer(data)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start web server")
	}
}

var (
	version = "DEV"
)

func printBanner() {
	banner := `
                 ____                __    
   ________  / __/_  ______  ____/ /___ 
  / ___/ _ \/ /_/ / / / __ \/ __  / __ \
 / /  /  __/ __/ /_/ / / / / /_/ / /_/ /
/_/   \___/_/  \__,_/_/ /_/\__,_/\____/ 
                           __ 
   ____ _____ ____  ____  / /_
  / __ ` + "`" + `/ __ ` + "`" + `/ _ \/ __ \/ __/
 / /_/ / /_/ /  __/ / / / /_  
 \__,_/\__, /\___/_/ /_/\__/   v: %s
      /____/                  
	
%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/airenas/refundo"))
}
