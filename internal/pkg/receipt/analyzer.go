package receipt

import (
	"context"
	"fmt"

	"github.com/airenas/go-app/pkg/goapp"
)

// TotalReader asks the vision model about the receipt total
type TotalReader interface {
	ReadTotal(ctx context.Context, imageURL string) (string, error)
}

// Analyzer extracts receipt amounts
type Analyzer struct {
	reader TotalReader
}

// NewAnalyzer creates analyzer
func NewAnalyzer(reader TotalReader) (*Analyzer, error) {
	if reader == nil {
		return nil, fmt.Errorf("no total reader")
	}
	return &Analyzer{reader: reader}, nil
}

// Analyze returns the total amount of the receipt image
func (a *Analyzer) Analyze(ctx context.Context, imageURL string) (float64, error) {
	answer, err := a.reader.ReadTotal(ctx, imageURL)
	if err != nil {
		return 0, fmt.Errorf("can't read total: %w", err)
	}
	res, err := ParseTotal(answer)
	if err != nil {
		return 0, fmt.Errorf("can't parse total: %w", err)
	}
	goapp.Log.Info().Str("url", goapp.Sanitize(imageURL)).Float64("total", res).Msg("receipt total")
	return res, nil
}
