package gateway

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// holds settings for an OpenAI-compatible chat/transcription gateway
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	TranscribeModel string
	Timeout         time.Duration
}

func NewConfig() (*Config, error) {
	baseURL := os.Getenv("AI_GATEWAY_URL")
	if baseURL == "" {
		baseURL = "https://ai.gateway.lovable.dev/v1"
	}

	model := os.Getenv("AI_GATEWAY_MODEL")
	if model == "" {
		model = "google/gemini-2.5-flash"
	}

	transcribeModel := os.Getenv("AI_GATEWAY_TRANSCRIBE_MODEL")
	if transcribeModel == "" {
		transcribeModel = "whisper-1"
	}

	timeout := 60 * time.Second
	if v := os.Getenv("AI_GATEWAY_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, errors.New("AI_GATEWAY_TIMEOUT_SECONDS must be a positive integer")
		}
		timeout = time.Duration(secs) * time.Second
	}

	return &Config{
		APIKey:          os.Getenv("AI_GATEWAY_API_KEY"),
		BaseURL:         baseURL,
		Model:           model,
		TranscribeModel: transcribeModel,
		Timeout:         timeout,
	}, nil
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("AI_GATEWAY_API_KEY environment variable is required")
	}
	return nil
}
