package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/akashvaddapelli/Resumeiq/internal/llm"
	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

const ProviderName = "gemini"

// Client talks to the Gemini API. Audio is sent inline to the same model.
type Client struct {
	client *genai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	if config.APIKey == "" {
		return &Client{config: config}, nil
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: config.BaseURL,
		},
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: ProviderName,
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	return &Client{
		client: client,
		config: config,
	}, nil
}

func (c *Client) GenerateContent(ctx context.Context, prompt *models.Prompt, requestID string) (*models.GenerationResponse, error) {
	if c.client == nil {
		return nil, notConfigured()
	}

	startTime := time.Now()
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	if prompt.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.config.Model, genai.Text(prompt.User), cfg)
	if err != nil {
		return nil, providerError(err, "Failed to generate content")
	}
	if result == nil {
		return nil, &llm.ProviderError{
			Provider: ProviderName,
			Code:     llm.ErrCodeInvalidResponse,
			Message:  "No response generated",
		}
	}

	content := result.Text()
	if strings.TrimSpace(content) == "" {
		return nil, &llm.ProviderError{
			Provider: ProviderName,
			Code:     llm.ErrCodeInvalidResponse,
			Message:  "Empty response generated",
		}
	}

	return &models.GenerationResponse{
		Content: content,
		Metadata: models.GenerationMetadata{
			ProcessingTime: int(time.Since(startTime).Milliseconds()),
			Provider:       ProviderName,
			Model:          c.config.Model,
		},
	}, nil
}

// Transcribe sends the recording inline next to the instruction and returns
// whatever text the model produces.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string, instruction string) (string, error) {
	if c.client == nil {
		return "", notConfigured()
	}

	parts := []*genai.Part{
		genai.NewPartFromText(instruction),
		genai.NewPartFromBytes(audio, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	result, err := c.client.Models.GenerateContent(ctx, c.config.Model, contents, nil)
	if err != nil {
		return "", providerError(err, "Failed to transcribe audio")
	}
	if result == nil {
		return "", &llm.ProviderError{
			Provider: ProviderName,
			Code:     llm.ErrCodeInvalidResponse,
			Message:  "No transcription generated",
		}
	}

	return strings.TrimSpace(result.Text()), nil
}

func (c *Client) GetProviderName() string {
	return ProviderName
}

func notConfigured() error {
	return &llm.ProviderError{
		Provider: ProviderName,
		Code:     llm.ErrCodeConfiguration,
		Message:  "GEMINI_API_KEY is not set",
	}
}

func providerError(err error, message string) *llm.ProviderError {
	code := llm.ErrCodeServiceDown

	var apiErr genai.APIError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = llm.ErrCodeTimeout
	case errors.As(err, &apiErr):
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			code = llm.ErrCodeRateLimit
		case http.StatusPaymentRequired:
			code = llm.ErrCodeQuotaExhausted
		case http.StatusUnauthorized, http.StatusForbidden:
			code = llm.ErrCodeAPIKey
		case http.StatusBadRequest:
			code = llm.ErrCodeInvalidInput
		}
	case isRateLimitError(err):
		code = llm.ErrCodeRateLimit
	}

	return &llm.ProviderError{
		Provider: ProviderName,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(strings.ToLower(msg), "quota")
}
