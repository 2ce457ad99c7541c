package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings keeps process-wide configuration
type Settings struct {
	LLM     LLM
	Vision  Vision
	DB      DB
	Storage Storage
	Fetch   Fetch
	// ReceiptNamePattern maps receipt file names to refund row IDs, first group is the ID
	ReceiptNamePattern string
}

// LLM hosted model settings
type LLM struct {
	Key                string
	URL                string
	TranscriptionModel string
	SummaryModel       string
}

// Vision receipt image model settings, served by a separate endpoint
type Vision struct {
	Key   string
	URL   string
	Model string
}

// DB hosted database settings
type DB struct {
	URL string
	Key string
}

// Storage object storage settings
type Storage struct {
	URL       string
	User      string
	Key       string
	Secure    bool
	PublicURL string
	Bucket    string
}

// Fetch scratch download settings
type Fetch struct {
	Dir     string
	Retries int
}

var required = []string{"llm.key", "db.url", "db.key"}

// SetDefaults registers default values
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.transcriptionModel", "whisper-large-v3-turbo")
	v.SetDefault("llm.summaryModel", "llama3-70b-8192")
	v.SetDefault("vision.url", "https://api.openai.com/v1")
	v.SetDefault("vision.model", "gpt-4o")
	v.SetDefault("storage.bucket", "receipts")
	v.SetDefault("fetch.dir", filepath.Join(os.TempDir(), "audio_processing"))
	v.SetDefault("fetch.retries", 0)
	v.SetDefault("receipts.namePattern", `refund_req(\d+)`)
}

// Load reads settings, fails if any required value is missing
func Load(v *viper.Viper) (*Settings, error) {
	if v == nil {
		return nil, fmt.Errorf("no config")
	}
	SetDefaults(v)
	var missing []string
	for _, k := range required {
		if strings.TrimSpace(v.GetString(k)) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("no required config: %s", strings.Join(missing, ", "))
	}
	res := &Settings{}
	res.LLM = LLM{Key: v.GetString("llm.key"), URL: v.GetString("llm.url"),
		TranscriptionModel: v.GetString("llm.transcriptionModel"),
		SummaryModel:       v.GetString("llm.summaryModel")}
	res.Vision = Vision{Key: v.GetString("vision.key"), URL: v.GetString("vision.url"),
		Model: v.GetString("vision.model")}
	res.DB = DB{URL: v.GetString("db.url"), Key: v.GetString("db.key")}
	res.Storage = Storage{URL: v.GetString("storage.url"), User: v.GetString("storage.user"),
		Key: v.GetString("storage.key"), Secure: v.GetBool("storage.https"),
		PublicURL: v.GetString("storage.publicURL"), Bucket: v.GetString("storage.bucket")}
	res.Fetch = Fetch{Dir: v.GetString("fetch.dir"), Retries: v.GetInt("fetch.retries")}
	res.ReceiptNamePattern = v.GetString("receipts.namePattern")
	return res, nil
}
