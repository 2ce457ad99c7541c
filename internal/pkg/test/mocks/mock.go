package mocks

import (
	"context"
	"io"

	"github.com/airenas/async-api/pkg/messages"
	"github.com/airenas/refundo/internal/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// Fetcher is audio download mock
type Fetcher struct{ mock.Mock }

func (m *Fetcher) FetchToLocal(ctx context.Context, url string) string {
	args := m.Called(ctx, url)
	return args.String(0)
}

// Transcriber is speech to text mock
type Transcriber struct{ mock.Mock }

func (m *Transcriber) Transcribe(ctx context.Context, file string) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}

// Summarizer is summary model mock
type Summarizer struct{ mock.Mock }

func (m *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

// TotalReader is vision model mock
type TotalReader struct{ mock.Mock }

func (m *TotalReader) ReadTotal(ctx context.Context, imageURL string) (string, error) {
	args := m.Called(ctx, imageURL)
	return args.String(0), args.Error(1)
}

// Analyzer is receipt analyzer mock
type Analyzer struct{ mock.Mock }

func (m *Analyzer) Analyze(ctx context.Context, imageURL string) (float64, error) {
	args := m.Called(ctx, imageURL)
	return args.Get(0).(float64), args.Error(1)
}

// NameMapper is receipt name mapper mock
type NameMapper struct{ mock.Mock }

func (m *NameMapper) RefundID(name string) (int64, bool) {
	args := m.Called(name)
	return args.Get(0).(int64), args.Bool(1)
}

// Storage is object storage mock
type Storage struct{ mock.Mock }

func (m *Storage) EnsureBucket(ctx context.Context, name string) bool {
	args := m.Called(ctx, name)
	return args.Bool(0)
}

func (m *Storage) PublicURL(bucket, fileName string) string {
	args := m.Called(bucket, fileName)
	return args.String(0)
}

func (m *Storage) ListFiles(ctx context.Context, bucket string) ([]string, error) {
	args := m.Called(ctx, bucket)
	return to[[]string](args.Get(0)), args.Error(1)
}

func (m *Storage) Upload(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, bucket, name, r, size, contentType)
	return args.String(0), args.Error(1)
}

// DB is postgress DB mock
type DB struct{ mock.Mock }

func (m *DB) FindEmployees(ctx context.Context, filters []persistence.Filter) ([]*persistence.Employee, error) {
	args := m.Called(ctx, filters)
	return to[[]*persistence.Employee](args.Get(0)), args.Error(1)
}

func (m *DB) LoadEmployee(ctx context.Context, id int64) (*persistence.Employee, error) {
	args := m.Called(ctx, id)
	return to[*persistence.Employee](args.Get(0)), args.Error(1)
}

func (m *DB) TopSalaryEmployee(ctx context.Context) (*persistence.Employee, error) {
	args := m.Called(ctx)
	return to[*persistence.Employee](args.Get(0)), args.Error(1)
}

func (m *DB) InsertEmployee(ctx context.Context, e *persistence.Employee) (*persistence.Employee, error) {
	args := m.Called(ctx, e)
	return to[*persistence.Employee](args.Get(0)), args.Error(1)
}

func (m *DB) UpdateEmployee(ctx context.Context, id int64, upd *persistence.EmployeeUpdate) (*persistence.Employee, error) {
	args := m.Called(ctx, id, upd)
	return to[*persistence.Employee](args.Get(0)), args.Error(1)
}

func (m *DB) DeleteEmployee(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *DB) FindRefunds(ctx context.Context, filters []persistence.Filter) ([]*persistence.RefundRequest, error) {
	args := m.Called(ctx, filters)
	return to[[]*persistence.RefundRequest](args.Get(0)), args.Error(1)
}

func (m *DB) LoadRefund(ctx context.Context, id int64) (*persistence.RefundRequest, error) {
	args := m.Called(ctx, id)
	return to[*persistence.RefundRequest](args.Get(0)), args.Error(1)
}

func (m *DB) UpdateRefund(ctx context.Context, id int64, upd *persistence.RefundUpdate) (*persistence.RefundRequest, error) {
	args := m.Called(ctx, id, upd)
	return to[*persistence.RefundRequest](args.Get(0)), args.Error(1)
}

func (m *DB) ListAudioRefs(ctx context.Context) ([]*persistence.AudioRef, error) {
	args := m.Called(ctx)
	return to[[]*persistence.AudioRef](args.Get(0)), args.Error(1)
}

func (m *DB) Select(ctx context.Context, table string, q *persistence.Query) ([]map[string]interface{}, error) {
	args := m.Called(ctx, table, q)
	return to[[]map[string]interface{}](args.Get(0)), args.Error(1)
}

func (m *DB) Live(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Sender is postgres queue mock
type Sender struct{ mock.Mock }

func (m *Sender) SendMessage(ctx context.Context, msg messages.Message, queue string) error {
	args := m.Called(ctx, msg, queue)
	return args.Error(0)
}

func to[T interface{}](val interface{}) T {
	if val == nil {
		var res T
		return res
	}
	return val.(T)
}
