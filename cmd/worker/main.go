package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/refundo/internal/pkg/config"
	"github.com/airenas/refundo/internal/pkg/llm"
	"github.com/airenas/refundo/internal/pkg/postgres"
	"github.com/airenas/refundo/internal/pkg/receipt"
	"github.com/airenas/refundo/internal/pkg/storage"
	"github.com/airenas/refundo/internal/pkg/worker"
	"github.com/labstack/gommon/color"
	"github.com/vgarvardt/gue/v5"
	"github.com/vgarvardt/gue/v5/adapter/pgxv5"
)

func main() {
	goapp.StartWithDefault()
	cfg := goapp.Config
	settings, err := config.Load(cfg)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't load config")
	}

	data := &worker.ServiceData{}
	ctx := context.Background()

	dbPool, err := postgres.NewPool(ctx, settings.DB.URL, settings.DB.Key)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}
	defer dbPool.Close()

	data.GueClient, err = gue.NewClient(pgxv5.NewConnPool(dbPool))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init gue")
	}
	data.WorkerCount = defaultV(cfg.GetInt("worker.count"), 1)
	data.Retries = cfg.GetInt("worker.retries")
	data.Testing = cfg.GetBool("worker.testing")
	db, err := postgres.NewDB(dbPool)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db")
	}
	data.DB = db

	data.URLResolver, err = storage.NewResolver(storage.Options{URL: settings.Storage.URL, User: settings.Storage.User,
		Key: settings.Storage.Key, Secure: settings.Storage.Secure, PublicURL: settings.Storage.PublicURL})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init storage")
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

	printBanner()

	ctx, cancelFunc := context.WithCancel(context.Background())
	doneCh, err := worker.StartWorkerService(ctx, data)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start worker service")
	}
	/////////////////////// Waiting for terminate
	waitCh := make(chan os.Signal, 2)
	signal.Notify(waitCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-waitCh:
		goapp.Log.Info().Msg("Got exit signal")
	case <-doneCh:
		goapp.Log.Info().Msg("Service exit")
	}
	cancelFunc()
	select {
	case <-doneCh:
		goapp.Log.Info().Msg("All code returned. Now exit. Bye")
	case <-time.After(time.Second * 15):
		goapp.Log.Warn().Msg("Timeout gracefull shutdown")
	}
}

func defaultV[T comparable](v, d T) T {
	var zero T
	if v == zero {
		return d
	}
	return v
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
 _      ______  _____/ /_____  _____
| | /| / / __ \/ ___/ //_/ _ \/ ___/
| |/ |/ / /_/ / /  / ,< /  __/ /    
|__/|__/\____/_/  /_/|_|\___/_/   v: %s
							  
%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/airenas/refundo"))
}
