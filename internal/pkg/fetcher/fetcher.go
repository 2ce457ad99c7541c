package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/refundo/internal/pkg/utils"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const filePrefix = "temp_audio_"

// Fetcher downloads remote files into the scratch dir
type Fetcher struct {
	httpclient *http.Client
	dir        string
	backoff    func() backoff.BackOff
}

// NewFetcher creates fetcher, retries = 0 means a single attempt
func NewFetcher(dir string, retries int) (*Fetcher, error) {
	if dir == "" {
		return nil, fmt.Errorf("no scratch dir")
	}
	if retries < 0 {
		return nil, fmt.Errorf("wrong retries %d", retries)
	}
	res := &Fetcher{dir: dir, httpclient: &http.Client{Transport: newTransport()}}
	res.backoff = func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(retries))
	}
	goapp.Log.Info().Str("dir", dir).Int("retries", retries).Msg("init fetcher")
	return res, nil
}

// FetchToLocal downloads the file and returns its local path.
// Returns empty string on any failure, the error is only logged
func (f *Fetcher) FetchToLocal(ctx context.Context, url string) string {
	res, err := f.fetch(ctx, url)
	if err != nil {
		goapp.Log.Error().Err(err).Str("url", goapp.Sanitize(url)).Msg("can't download")
		return ""
	}
	goapp.Log.Info().Str("file", res).Msg("downloaded")
	return res
}

func (f *Fetcher) fetch(ctx context.Context, url string) (string, error) {
	name, err := localName(url)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("can't create dir: %w", err)
	}
	data, err := goapp.InvokeWithBackoff(ctx, func() ([]byte, bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, false, err
		}
		resp, err := f.httpclient.Do(req)
		if err != nil {
			return nil, goapp.IsRetryableErr(err), fmt.Errorf("can't call: %w", err)
		}
		defer func() {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10000))
			_ = resp.Body.Close()
		}()
		if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
			return nil, goapp.IsRetryableCode(resp.StatusCode), fmt.Errorf("can't download: %w", err)
		}
		br, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, goapp.IsRetryableErr(err), fmt.Errorf("can't read body: %w", err)
		}
		return br, false, nil
	}, f.backoff())
	if err != nil {
		return "", err
	}
	res, err := filepath.Abs(filepath.Join(f.dir, filePrefix+uuid.NewString()[:8]+"_"+name))
	if err != nil {
		return "", fmt.Errorf("can't make path: %w", err)
	}
	if err := utils.WriteFile(res, data); err != nil {
		return "", fmt.Errorf("can't save: %w", err)
	}
	return res, nil
}

// localName takes the last path segment before the query string
func localName(url string) (string, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", fmt.Errorf("not a http url '%s'", url)
	}
	s := url
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = s[strings.LastIndex(s, "/")+1:]
	if s == "" || s == "." || s == ".." || strings.Contains(s, `\`) {
		return "audio", nil
	}
	return s, nil
}

func newTransport() http.RoundTripper {
	res := http.DefaultTransport.(*http.Transport).Clone()
	res.MaxIdleConnsPerHost = 10
	res.IdleConnTimeout = 90 * time.Second
	return res
}
