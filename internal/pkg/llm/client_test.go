package llm

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/airenas/refundo/internal/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testResp struct {
	code int
	resp string
}

type testReq struct {
	URL  string
	body string
}

func startServer(t *testing.T, rData map[string]testResp) (string, *[]testReq) {
	t.Helper()
	resRequest := make([]testReq, 0)
	rLock := &sync.Mutex{}
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rLock.Lock()
		defer rLock.Unlock()
		b, _ := io.ReadAll(req.Body)
		resRequest = append(resRequest, testReq{URL: req.URL.Path, body: string(b)})
		resp, f := rData[req.URL.Path]
		if f {
			rw.Header().Set("Content-Type", "application/json")
			rw.WriteHeader(resp.code)
			_, _ = rw.Write([]byte(resp.resp))
		} else {
			rw.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(func() { server.Close() })
	return server.URL + "/v1/", &resRequest
}

func initTestServer(t *testing.T, rData map[string]testResp) (*Client, *[]testReq) {
	t.Helper()
	url, reqs := startServer(t, rData)
	c, err := NewClient(Options{Key: "k", URL: url, TranscriptionModel: "whisper", SummaryModel: "llama"})
	require.Nil(t, err)
	return c, reqs
}

func chatResp(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []interface{}{map[string]interface{}{"index": 0,
			"message": map[string]interface{}{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func audioFile(t *testing.T) string {
	t.Helper()
	res := filepath.Join(t.TempDir(), "a.mp3")
	require.Nil(t, os.WriteFile(res, []byte("olia"), 0o600))
	return res
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Options{TranscriptionModel: "w", SummaryModel: "s"})
	assert.NotNil(t, err)
	_, err = NewClient(Options{Key: "k", SummaryModel: "s"})
	assert.NotNil(t, err)
	_, err = NewClient(Options{Key: "k", TranscriptionModel: "w"})
	assert.NotNil(t, err)
	got, err := NewClient(Options{Key: "k", TranscriptionModel: "w", SummaryModel: "s"})
	require.Nil(t, err)
	assert.NotNil(t, got)
}

func TestTranscribe(t *testing.T) {
	c, reqs := initTestServer(t, map[string]testResp{
		"/v1/audio/transcriptions": {code: 200, resp: `{"text":" I need a refund for shoes "}`}})

	got, err := c.Transcribe(test.Ctx(t), audioFile(t))

	require.Nil(t, err)
	assert.Equal(t, "I need a refund for shoes", got)
	require.Len(t, *reqs, 1)
	assert.Contains(t, (*reqs)[0].body, "whisper")
}

func TestTranscribe_Fail(t *testing.T) {
	c, _ := initTestServer(t, map[string]testResp{
		"/v1/audio/transcriptions": {code: 500, resp: `{"error":{"message":"olia"}}`}})

	_, err := c.Transcribe(test.Ctx(t), audioFile(t))

	assert.NotNil(t, err)
}

func TestTranscribe_Empty(t *testing.T) {
	c, _ := initTestServer(t, map[string]testResp{
		"/v1/audio/transcriptions": {code: 200, resp: `{"text":"  "}`}})

	_, err := c.Transcribe(test.Ctx(t), audioFile(t))

	assert.NotNil(t, err)
}

func TestTranscribe_NoFile(t *testing.T) {
	c, reqs := initTestServer(t, map[string]testResp{})

	_, err := c.Transcribe(test.Ctx(t), filepath.Join(t.TempDir(), "none.mp3"))

	assert.NotNil(t, err)
	assert.Empty(t, *reqs)
}

func TestSummarize(t *testing.T) {
	c, reqs := initTestServer(t, map[string]testResp{
		"/v1/chat/completions": {code: 200, resp: chatResp("Refund for shoes.")}})

	got, err := c.Summarize(test.Ctx(t), "I need a refund for shoes")

	require.Nil(t, err)
	assert.Equal(t, "Refund for shoes.", got)
	require.Len(t, *reqs, 1)
	body := (*reqs)[0].body
	assert.Contains(t, body, `"model":"llama"`)
	assert.Contains(t, body, summarySystemPrompt)
	assert.Contains(t, body, "Please provide a concise summary of this transcription: I need a refund for shoes")
}

func TestSummarize_Fail(t *testing.T) {
	tests := []struct {
		name string
		resp testResp
	}{
		{name: "code", resp: testResp{code: 429, resp: `{"error":{"message":"limit"}}`}},
		{name: "no choices", resp: testResp{code: 200, resp: `{"choices":[]}`}},
		{name: "empty", resp: testResp{code: 200, resp: chatResp(" ")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := initTestServer(t, map[string]testResp{"/v1/chat/completions": tt.resp})
			_, err := c.Summarize(test.Ctx(t), "olia")
			assert.NotNil(t, err)
		})
	}
}
