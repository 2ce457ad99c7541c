package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/refundo/internal/pkg/messages"
	"github.com/airenas/refundo/internal/pkg/persistence"
	"github.com/airenas/refundo/internal/pkg/utils"
	"github.com/airenas/refundo/internal/pkg/utils/handler"
	"github.com/vgarvardt/gue/v5"
)

// DB provides refund rows
type DB interface {
	LoadRefund(ctx context.Context, id int64) (*persistence.RefundRequest, error)
	UpdateRefund(ctx context.Context, id int64, upd *persistence.RefundUpdate) (*persistence.RefundRequest, error)
}

// URLResolver makes public object URLs
type URLResolver interface {
	PublicURL(bucket, fileName string) string
}

// Analyzer reads receipt totals
type Analyzer interface {
	Analyze(ctx context.Context, imageURL string) (float64, error)
}

// ServiceData keeps data required for service work
type ServiceData struct {
	GueClient   *gue.Client
	WorkerCount int
	Retries     int
	DB          DB
	URLResolver URLResolver
	Analyzer    Analyzer
	Testing     bool
}

// StartWorkerService starts the event queue listener service to listen for events
// returns channel for tracking if all jobs are finished
func StartWorkerService(ctx context.Context, data *ServiceData) (chan struct{}, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	goapp.Log.Info().Int("workers", data.WorkerCount).Msg("Starting listen for messages")
	if data.Testing {
		goapp.Log.Warn().Msg("SERVICE IN TEST MODE")
	}

	opts := handler.DefaultOpts().WithRetries(data.Retries).WithTimeout(time.Minute * 10).
		WithBackoff(handler.DefaultBackoffOrTest(data.Testing))
	goapp.Log.Info().Stringer("opts", opts).Str("queue", messages.Receipt).Msg("handler")
	wm := gue.WorkMap{
		messages.Receipt: handler.Create(data, handleReceipt, opts),
	}

	pool, err := gue.NewWorkerPool(
		data.GueClient, wm, data.WorkerCount,
		gue.WithPoolQueue(messages.Receipt),
		gue.WithPoolLogger(utils.NewGueLoggerAdapter()),
		gue.WithPoolPollInterval(500*time.Millisecond),
		gue.WithPoolPollStrategy(gue.RunAtPollStrategy),
		gue.WithPoolID("receipt-worker"),
	)
	if err != nil {
		return nil, fmt.Errorf("could not build gue workers pool: %w", err)
	}
	res := make(chan struct{}, 1)
	go func() {
		goapp.Log.Info().Msg("Starting workers")
		if err := pool.Run(ctx); err != nil {
			goapp.Log.Error().Err(err).Msg("pool error")
		}
		goapp.Log.Info().Msg("Pool workers finished")
		res <- struct{}{}
	}()
	return res, nil
}

func handleReceipt(ctx context.Context, m *messages.ReceiptMessage, data *ServiceData) error {
	goapp.Log.Info().Str("ID", m.ID).Int64("refund", m.RefundID).Msg("handling receipt")
	ref, err := data.DB.LoadRefund(ctx, m.RefundID)
	if err != nil {
		return fmt.Errorf("can't load refund: %w", err)
	}
	if ref == nil {
		return utils.NewErrNonRetryable(fmt.Errorf("no refund %d", m.RefundID))
	}
	url := data.URLResolver.PublicURL(m.Bucket, m.FileName)
	amount, err := data.Analyzer.Analyze(ctx, url)
	if err != nil {
		return fmt.Errorf("can't analyze receipt: %w", err)
	}
	ref, err = data.DB.UpdateRefund(ctx, m.RefundID, &persistence.RefundUpdate{ImageURL: &url, Amount: &amount})
	if err != nil {
		return fmt.Errorf("can't update refund: %w", err)
	}
	if ref == nil {
		return utils.NewErrNonRetryable(fmt.Errorf("refund %d vanished", m.RefundID))
	}
	goapp.Log.Info().Str("ID", m.ID).Int64("refund", m.RefundID).Float64("amount", amount).Msg("refund updated")
	return nil
}

func validate(data *ServiceData) error {
	if data.GueClient == nil {
		return fmt.Errorf("no gue client")
	}
	if data.WorkerCount < 1 {
		return fmt.Errorf("no worker count provided")
	}
	if data.Retries < 0 {
		return fmt.Errorf("wrong retries %d", data.Retries)
	}
	if data.DB == nil {
		return fmt.Errorf("no DB")
	}
	if data.URLResolver == nil {
		return fmt.Errorf("no URL resolver")
	}
	if data.Analyzer == nil {
		return fmt.Errorf("no analyzer")
	}
	return nil
}
