package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]interface{}) *viper.Viper {
	res := viper.New()
	for k, v := range values {
		res.Set(k, v)
	}
	return res
}

func TestLoad(t *testing.T) {
	v := newViper(map[string]interface{}{"llm.key": "k", "db.url": "postgres://db", "db.key": "dk",
		"storage.url": "storage:9000", "storage.https": true, "fetch.retries": 2})

	got, err := Load(v)

	require.Nil(t, err)
	assert.Equal(t, "k", got.LLM.Key)
	assert.Equal(t, "https://api.groq.com/openai/v1", got.LLM.URL)
	assert.Equal(t, "whisper-large-v3-turbo", got.LLM.TranscriptionModel)
	assert.Equal(t, "https://api.openai.com/v1", got.Vision.URL)
	assert.Equal(t, "gpt-4o", got.Vision.Model)
	assert.Empty(t, got.Vision.Key)
	assert.Equal(t, "postgres://db", got.DB.URL)
	assert.Equal(t, "dk", got.DB.Key)
	assert.Equal(t, "storage:9000", got.Storage.URL)
	assert.True(t, got.Storage.Secure)
	assert.Equal(t, "receipts", got.Storage.Bucket)
	assert.Equal(t, 2, got.Fetch.Retries)
	assert.NotEmpty(t, got.Fetch.Dir)
	assert.Equal(t, `refund_req(\d+)`, got.ReceiptNamePattern)
}

func TestLoad_Vision(t *testing.T) {
	v := newViper(map[string]interface{}{"llm.key": "k", "db.url": "postgres://db", "db.key": "dk",
		"vision.key": "vk", "vision.url": "http://vision/v1", "vision.model": "gpt-4.1"})

	got, err := Load(v)

	require.Nil(t, err)
	assert.Equal(t, Vision{Key: "vk", URL: "http://vision/v1", Model: "gpt-4.1"}, got.Vision)
	assert.Equal(t, "k", got.LLM.Key)
	assert.NotEqual(t, got.LLM.URL, got.Vision.URL)
}

func TestLoad_Missing(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
		want   string
	}{
		{name: "llm", values: map[string]interface{}{"db.url": "u", "db.key": "k"}, want: "llm.key"},
		{name: "db url", values: map[string]interface{}{"llm.key": "u", "db.key": "k"}, want: "db.url"},
		{name: "db key", values: map[string]interface{}{"llm.key": "u", "db.url": "k"}, want: "db.key"},
		{name: "space", values: map[string]interface{}{"llm.key": " ", "db.url": "u", "db.key": "k"}, want: "llm.key"},
		{name: "all", values: map[string]interface{}{}, want: "llm.key, db.url, db.key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newViper(tt.values))
			require.NotNil(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_Nil(t *testing.T) {
	_, err := Load(nil)
	assert.NotNil(t, err)
}
