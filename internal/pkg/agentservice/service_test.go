package agentservice

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/airenas/refundo/internal/pkg/audio"
	"github.com/airenas/refundo/internal/pkg/persistence"
	"github.com/airenas/refundo/internal/pkg/status"
	"github.com/airenas/refundo/internal/pkg/test"
	"github.com/airenas/refundo/internal/pkg/test/mocks"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type audioMock struct{ mock.Mock }

func (m *audioMock) TranscribeAndSummarize(ctx context.Context, url string) *audio.Outcome {
	args := m.Called(ctx, url)
	return args.Get(0).(*audio.Outcome)
}

func (m *audioMock) ProcessBatch(ctx context.Context, items []*audio.Item) *audio.BatchResult {
	args := m.Called(ctx, items)
	return args.Get(0).(*audio.BatchResult)
}

var (
	dbMock       *mocks.DB
	storageMock  *mocks.Storage
	audioPrMock  *audioMock
	analyzerMock *mocks.Analyzer
	mapperMock   *mocks.NameMapper
	senderMock   *mocks.Sender
	tData        *Data
	tEcho        *echo.Echo
)

func initTest(t *testing.T) {
	t.Helper()
	dbMock = &mocks.DB{}
	storageMock = &mocks.Storage{}
	audioPrMock = &audioMock{}
	analyzerMock = &mocks.Analyzer{}
	mapperMock = &mocks.NameMapper{}
	senderMock = &mocks.Sender{}
	tData = &Data{DB: dbMock, Storage: storageMock, Audio: audioPrMock, Analyzer: analyzerMock,
		NameMapper: mapperMock, MsgSender: senderMock, ReceiptsBucket: "receipts"}
	tEcho = initRoutes(tData)
}

func TestWrongPath(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/invalid", nil)
	test.Code(t, tEcho, req, http.StatusNotFound)
}

func TestWrongMethod(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/audio/process", nil)
	test.Code(t, tEcho, req, http.StatusMethodNotAllowed)
}

func TestLive(t *testing.T) {
	initTest(t)
	dbMock.On("Live", mock.Anything).Return(nil)
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	assert.Equal(t, `{"service":"OK","db":"OK"}`, test.RStr(t, resp.Body))
}

func TestLive_Fail(t *testing.T) {
	initTest(t)
	dbMock.On("Live", mock.Anything).Return(fmt.Errorf("olia"))
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	test.Code(t, tEcho, req, http.StatusServiceUnavailable)
}

func Test_validate(t *testing.T) {
	initTest(t)
	assert.Nil(t, validate(tData))
	tests := []struct {
		name   string
		change func(*Data)
	}{
		{name: "db", change: func(d *Data) { d.DB = nil }},
		{name: "storage", change: func(d *Data) { d.Storage = nil }},
		{name: "audio", change: func(d *Data) { d.Audio = nil }},
		{name: "analyzer", change: func(d *Data) { d.Analyzer = nil }},
		{name: "mapper", change: func(d *Data) { d.NameMapper = nil }},
		{name: "sender", change: func(d *Data) { d.MsgSender = nil }},
		{name: "bucket", change: func(d *Data) { d.ReceiptsBucket = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initTest(t)
			tt.change(tData)
			assert.NotNil(t, validate(tData))
		})
	}
}

func TestTranscribe(t *testing.T) {
	initTest(t)
	audioPrMock.On("TranscribeAndSummarize", mock.Anything, "http://s/a.mp3").
		Return(&audio.Outcome{Success: true, Transcription: "t", Summary: "s"})
	req := test.JSONReq(http.MethodPost, "/audio/transcribe", `{"audio_url":"http://s/a.mp3"}`)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	assert.JSONEq(t, `{"success":true,"transcription":"t","summary":"s"}`, test.RStr(t, resp.Body))
}

func TestTranscribe_Failure(t *testing.T) {
	initTest(t)
	audioPrMock.On("TranscribeAndSummarize", mock.Anything, "http://s/a.mp3").
		Return(&audio.Outcome{Error: audio.ErrDownload})
	req := test.JSONReq(http.MethodPost, "/audio/transcribe", `{"audio_url":"http://s/a.mp3"}`)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	assert.JSONEq(t, `{"success":false,"error":"download failed"}`, test.RStr(t, resp.Body))
}

func TestTranscribe_NoURL(t *testing.T) {
	initTest(t)
	req := test.JSONReq(http.MethodPost, "/audio/transcribe", `{}`)
	test.Code(t, tEcho, req, http.StatusBadRequest)
}

func TestProcessAudio_Items(t *testing.T) {
	initTest(t)
	audioPrMock.On("ProcessBatch", mock.Anything, mock.Anything).Return(&audio.BatchResult{Success: true,
		Response: "Successfully processed 1 audio files. 0 failed.",
		Data:     []*audio.Result{{ID: 3, URL: "http://s/a.mp3", Status: status.Processed, Summary: "s"}}})
	req := test.JSONReq(http.MethodPost, "/audio/process", `{"items":[{"id":3,"audio_url":"http://s/a.mp3"}]}`)
	resp := test.Code(t, tEcho, req, http.StatusOK)

	got := test.Decode[audio.BatchResult](t, resp.Body)
	assert.Equal(t, "Successfully processed 1 audio files. 0 failed.", got.Response)
	require.Len(t, got.Data, 1)
	assert.Equal(t, status.Processed, got.Data[0].Status)
	items := audioPrMock.Calls[0].Arguments[1].([]*audio.Item)
	assert.Equal(t, []*audio.Item{{ID: 3, URL: "http://s/a.mp3"}}, items)
	dbMock.AssertNotCalled(t, "ListAudioRefs", mock.Anything)
}

func TestProcessAudio_FromDB(t *testing.T) {
	initTest(t)
	dbMock.On("ListAudioRefs", mock.Anything).Return([]*persistence.AudioRef{{ID: 1, AudioURL: "http://s/1.mp3"},
		{ID: 2, AudioURL: "http://s/2.mp3"}}, nil)
	audioPrMock.On("ProcessBatch", mock.Anything, mock.Anything).Return(&audio.BatchResult{Success: true,
		Data: []*audio.Result{}})
	req := httptest.NewRequest(http.MethodPost, "/audio/process", nil)
	test.Code(t, tEcho, req, http.StatusOK)

	items := audioPrMock.Calls[0].Arguments[1].([]*audio.Item)
	assert.Equal(t, []*audio.Item{{ID: 1, URL: "http://s/1.mp3"}, {ID: 2, URL: "http://s/2.mp3"}}, items)
}

func TestProcessAudio_DBFail(t *testing.T) {
	initTest(t)
	dbMock.On("ListAudioRefs", mock.Anything).Return(nil, fmt.Errorf("olia"))
	req := httptest.NewRequest(http.MethodPost, "/audio/process", nil)
	test.Code(t, tEcho, req, http.StatusInternalServerError)
}

func TestProcessAudio_WrongInput(t *testing.T) {
	initTest(t)
	req := test.JSONReq(http.MethodPost, "/audio/process", `{"items":"olia"}`)
	test.Code(t, tEcho, req, http.StatusBadRequest)
}

func TestEnsureBucket(t *testing.T) {
	initTest(t)
	storageMock.On("EnsureBucket", mock.Anything, "audio").Return(true)
	req := httptest.NewRequest(http.MethodPut, "/buckets/audio", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	assert.JSONEq(t, `{"bucket":"audio","exists":true}`, test.RStr(t, resp.Body))
}

func TestEnsureBucket_Fail(t *testing.T) {
	initTest(t)
	storageMock.On("EnsureBucket", mock.Anything, "audio").Return(false)
	req := httptest.NewRequest(http.MethodPut, "/buckets/audio", nil)
	test.Code(t, tEcho, req, http.StatusServiceUnavailable)
}

func TestPublicURL(t *testing.T) {
	initTest(t)
	storageMock.On("PublicURL", "audio", "refund1.mp3").Return("http://s/audio/refund1.mp3")
	req := httptest.NewRequest(http.MethodGet, "/buckets/audio/url?file=refund1.mp3", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	assert.JSONEq(t, `{"url":"http://s/audio/refund1.mp3"}`, test.RStr(t, resp.Body))
}

func TestPublicURL_NoFile(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/buckets/audio/url", nil)
	test.Code(t, tEcho, req, http.StatusBadRequest)
}
