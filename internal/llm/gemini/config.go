package gemini

import (
	"errors"
	"os"
)

// holds Gemini-specific configuration
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewConfig reads the Gemini settings from the environment. A missing key is
// not an error here: the client reports it per request so the service can
// still start and serve the non-AI routes.
func NewConfig() (*Config, error) {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash" // default model
	}

	return &Config{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Model:   model,
		BaseURL: os.Getenv("GEMINI_BASE_URL"),
	}, nil
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("GEMINI_API_KEY environment variable is required")
	}
	return nil
}
