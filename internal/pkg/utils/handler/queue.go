package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/refundo/internal/pkg/utils"
	"github.com/vgarvardt/gue/v5"
)

// Opts configures job handler
type Opts struct {
	backoff gue.Backoff
	timeout time.Duration
	retries int32
}

// Create wraps typed job func into gue.WorkFunc
func Create[TM any, SD any](data *SD, hf func(context.Context, *TM, *SD) error, opts *Opts) gue.WorkFunc {
	if opts == nil {
		goapp.Log.Panic().Msg("no opts provided")
	}
	return func(ctx context.Context, j *gue.Job) error {
		goapp.Log.Info().Str("queue", j.Queue).Str("type", j.Type).Int32("errCount", j.ErrorCount).Msg("got msg")

		var m TM
		err := json.Unmarshal(j.Args, &m)
		if err != nil {
			goapp.Log.Error().Err(err).Str("queue", j.Queue).Msg("could not unmarshal message, drop")
			return nil
		}
		wrkCtx, cf := context.WithTimeout(ctx, opts.timeout)
		defer cf()
		err = hf(wrkCtx, &m, data)
		if err == nil {
			return nil
		}
		goapp.Log.Warn().Err(err).Str("queue", j.Queue).Str("type", j.Type).Msg("fail")
		if !opts.retry(err, j.ErrorCount) {
			goapp.Log.Warn().Str("queue", j.Queue).Str("type", j.Type).Int32("errCount", j.ErrorCount).Msg("no retry")
			return nil
		}
		delay := opts.backoff(int(j.ErrorCount + 1))
		goapp.Log.Info().Str("queue", j.Queue).Str("type", j.Type).Dur("after", delay).Msg("retry after")
		return gue.ErrRescheduleJobIn(delay, err.Error())
	}
}

func (o *Opts) retry(err error, errCount int32) bool {
	var errNR *utils.ErrNonRetryable
	if errors.As(err, &errNR) {
		return false
	}
	return errCount < o.retries
}

// DefaultOpts returns opts without retries
func DefaultOpts() *Opts {
	return &Opts{timeout: time.Minute * 5, backoff: DefaultBackoff()}
}

// DefaultBackoff returns jittered linear backoff
func DefaultBackoff() gue.Backoff {
	return func(retries int) time.Duration {
		return fullJitter(time.Duration(retries) * time.Second * 10)
	}
}

// NoBackoff returns zero delay backoff
func NoBackoff() gue.Backoff {
	return func(retries int) time.Duration {
		return 0
	}
}

// DefaultBackoffOrTest returns NoBackoff in testing mode
func DefaultBackoffOrTest(test bool) gue.Backoff {
	if test {
		return NoBackoff()
	}
	return DefaultBackoff()
}

// WithRetries sets how many times a failed job is rescheduled
func (o *Opts) WithRetries(retries int) *Opts {
	o.retries = int32(retries)
	return o
}

// WithTimeout sets job handling timeout
func (o *Opts) WithTimeout(timeout time.Duration) *Opts {
	o.timeout = timeout
	return o
}

// WithBackoff sets reschedule backoff
func (o *Opts) WithBackoff(b gue.Backoff) *Opts {
	o.backoff = b
	return o
}

func (o *Opts) String() string {
	return fmt.Sprintf("timeout: %s, retries: %d", o.timeout, o.retries)
}

// fullJitter return randomized duration in interval [0, t)
// as suggested by https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/
func fullJitter(t time.Duration) time.Duration {
	return time.Duration(float64(t) * rand.Float64())
}
