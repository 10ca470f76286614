package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

// defines the interface for LLM providers
type Provider interface {
	GenerateContent(ctx context.Context, prompt *models.Prompt, requestID string) (*models.GenerationResponse, error)
	// Transcribe turns recorded speech into text. instruction is only used by
	// providers that transcribe through a multimodal chat model.
	Transcribe(ctx context.Context, audio []byte, mimeType string, instruction string) (string, error)
	GetProviderName() string
}

// represents an error from an LLM provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeAPIKey          = "invalid_api_key"
	ErrCodeConfiguration   = "configuration_error"
	ErrCodeRateLimit       = "rate_limit_exceeded"
	ErrCodeQuotaExhausted  = "quota_exhausted"
	ErrCodeServiceDown     = "service_unavailable"
	ErrCodeInvalidInput    = "invalid_input"
	ErrCodeInvalidResponse = "invalid_response"
	ErrCodeTimeout         = "timeout"
)

// client-facing copy; upstream detail never leaves the service
const (
	MsgRateLimited   = "Rate limit exceeded. Please try again."
	MsgQuotaExceeded = "AI credits exhausted. Please add credits to continue."
	MsgNotConfigured = "AI service is not configured"
	MsgGeneric       = "an error occurred"
)

// StatusFor maps a provider failure onto the HTTP status, error code and
// message returned to the client.
func StatusFor(err error) (int, string, string) {
	var perr *ProviderError
	if !errors.As(err, &perr) {
		return http.StatusInternalServerError, "internal_error", MsgGeneric
	}

	switch perr.Code {
	case ErrCodeRateLimit:
		return http.StatusTooManyRequests, perr.Code, MsgRateLimited
	case ErrCodeQuotaExhausted:
		return http.StatusPaymentRequired, perr.Code, MsgQuotaExceeded
	case ErrCodeConfiguration, ErrCodeAPIKey:
		return http.StatusInternalServerError, ErrCodeConfiguration, MsgNotConfigured
	default:
		return http.StatusInternalServerError, "internal_error", MsgGeneric
	}
}
