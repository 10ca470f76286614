package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/akashvaddapelli/Resumeiq/internal/llm"
	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

const ProviderName = "gateway"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Client speaks the OpenAI chat-completions and audio-transcriptions wire
// format. Audio is uploaded as a multipart file.
type Client struct {
	http   *resty.Client
	config *Config
}

func NewClient(config *Config) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(config.BaseURL, "/")).
		SetTimeout(config.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient, config: config}
}

func (c *Client) GenerateContent(ctx context.Context, prompt *models.Prompt, requestID string) (*models.GenerationResponse, error) {
	if c.config.APIKey == "" {
		return nil, notConfigured()
	}

	startTime := time.Now()
	messages := make([]chatMessage, 0, 2)
	if prompt.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: prompt.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt.User})

	res, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.config.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Request-ID", requestID).
		SetBody(chatRequest{Model: c.config.Model, Messages: messages}).
		Post("/chat/completions")
	if err != nil {
		return nil, transportError(err, "Failed to reach AI gateway")
	}
	if res.IsError() {
		return nil, statusError(res.StatusCode(), res.Body())
	}

	var parsed chatResponse
	if err := json.Unmarshal(res.Body(), &parsed); err != nil {
		return nil, &llm.ProviderError{
			Provider: ProviderName,
			Code:     llm.ErrCodeInvalidResponse,
			Message:  "Malformed gateway response",
			Err:      err,
		}
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return nil, &llm.ProviderError{
			Provider: ProviderName,
			Code:     llm.ErrCodeInvalidResponse,
			Message:  "Empty response generated",
		}
	}

	model := parsed.Model
	if model == "" {
		model = c.config.Model
	}

	return &models.GenerationResponse{
		Content: parsed.Choices[0].Message.Content,
		Metadata: models.GenerationMetadata{
			ProcessingTime: int(time.Since(startTime).Milliseconds()),
			Provider:       ProviderName,
			Model:          model,
		},
	}, nil
}

// Transcribe uploads the recording to the speech-to-text endpoint. The
// instruction is unused; the endpoint only returns the spoken words.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string, _ string) (string, error) {
	if c.config.APIKey == "" {
		return "", notConfigured()
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.config.APIKey).
		SetFileReader("file", "audio."+fileExtension(mimeType), bytes.NewReader(audio)).
		SetFormData(map[string]string{"model": c.config.TranscribeModel}).
		Post("/audio/transcriptions")
	if err != nil {
		return "", transportError(err, "Failed to reach transcription service")
	}
	if res.IsError() {
		return "", statusError(res.StatusCode(), res.Body())
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(res.Body(), &parsed); err != nil {
		return "", &llm.ProviderError{
			Provider: ProviderName,
			Code:     llm.ErrCodeInvalidResponse,
			Message:  "Malformed transcription response",
			Err:      err,
		}
	}

	return strings.TrimSpace(parsed.Text), nil
}

func (c *Client) GetProviderName() string {
	return ProviderName
}

func fileExtension(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "mp4"):
		return "mp4"
	case strings.Contains(mimeType, "ogg"):
		return "ogg"
	case strings.Contains(mimeType, "wav"):
		return "wav"
	case strings.Contains(mimeType, "mpeg"):
		return "mp3"
	default:
		return "webm"
	}
}

func notConfigured() error {
	return &llm.ProviderError{
		Provider: ProviderName,
		Code:     llm.ErrCodeConfiguration,
		Message:  "AI_GATEWAY_API_KEY is not set",
	}
}

func transportError(err error, message string) error {
	code := llm.ErrCodeServiceDown
	if errors.Is(err, context.DeadlineExceeded) {
		code = llm.ErrCodeTimeout
	}
	return &llm.ProviderError{Provider: ProviderName, Code: code, Message: message, Err: err}
}

func statusError(status int, body []byte) error {
	code := llm.ErrCodeServiceDown
	switch status {
	case http.StatusTooManyRequests:
		code = llm.ErrCodeRateLimit
	case http.StatusPaymentRequired:
		code = llm.ErrCodeQuotaExhausted
	case http.StatusUnauthorized, http.StatusForbidden:
		code = llm.ErrCodeAPIKey
	case http.StatusBadRequest:
		code = llm.ErrCodeInvalidInput
	}

	detail := string(body)
	if len(detail) > 512 {
		detail = detail[:512]
	}
	return &llm.ProviderError{
		Provider: ProviderName,
		Code:     code,
		Message:  fmt.Sprintf("gateway returned %d", status),
		Err:      errors.New(detail),
	}
}
