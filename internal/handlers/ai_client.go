package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akashvaddapelli/Resumeiq/internal/feedback"
	"github.com/akashvaddapelli/Resumeiq/internal/generation"
	"github.com/akashvaddapelli/Resumeiq/internal/llm"
	"github.com/akashvaddapelli/Resumeiq/internal/metrics"
	"github.com/akashvaddapelli/Resumeiq/internal/models"
	"github.com/akashvaddapelli/Resumeiq/internal/prompts"
	"github.com/akashvaddapelli/Resumeiq/internal/utils"
)

var errPromptBuild = errors.New("failed to build AI prompt")

// aiClient is the prompt, call and decode path shared by the handlers that
// talk to the model.
type aiClient struct {
	provider        llm.Provider
	promptManager   prompts.PromptProvider
	feedbackManager *feedback.FeedbackManager
	logger          *zap.Logger
}

// call renders a prompt and sends it to the provider. Exactly one upstream
// call is made; failures are not retried.
func (c *aiClient) call(ctx context.Context, mode, variant string, data interface{}, requestID string) (*models.Prompt, *models.GenerationResponse, error) {
	prompt, err := c.promptManager.BuildPrompt(mode, variant, data)
	if err != nil {
		c.logger.Error("Failed to build prompt", zap.Error(err), zap.String("request_id", requestID))
		return nil, nil, fmt.Errorf("%w: %v", errPromptBuild, err)
	}

	start := time.Now()
	resp, err := c.provider.GenerateContent(ctx, prompt, requestID)
	metrics.ObserveLLMCall(c.provider.GetProviderName(), mode, outcome(err), time.Since(start))
	if err != nil {
		c.logger.Error("AI provider error",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.String("provider", c.provider.GetProviderName()))
		return prompt, nil, err
	}
	return prompt, resp, nil
}

// evaluate grades one answer. The exchange is kept for rating by userID.
func (c *aiClient) evaluate(ctx context.Context, userID string, req *models.EvaluateAnswerRequest) (*models.EvaluateAnswerResponse, error) {
	variant, data := prompts.NewEvaluateData(req)
	prompt, resp, err := c.call(ctx, prompts.ModeEvaluate, variant, data, req.RequestID)
	if err != nil {
		return nil, err
	}

	out, err := generation.DecodeEvaluation(resp.Content, req.IsVoice)
	if err != nil {
		c.logger.Error("Failed to decode evaluation", zap.Error(err), zap.String("request_id", req.RequestID))
		return nil, err
	}
	out.RequestID = req.RequestID

	c.logger.Info("Answer evaluated",
		zap.String("request_id", req.RequestID),
		zap.String("provider", c.provider.GetProviderName()),
		zap.Int("processing_time_ms", resp.Metadata.ProcessingTime),
		zap.Int("confidence_score", out.ConfidenceScore))

	c.remember(ctx, userID, models.RequestTypeEvaluate, req.RequestID, prompt, resp)
	return out, nil
}

// remember caches the exchange so userID can rate it later. Anonymous
// exchanges are not kept.
func (c *aiClient) remember(ctx context.Context, userID, requestType, requestID string, prompt *models.Prompt, resp *models.GenerationResponse) {
	if c.feedbackManager == nil || userID == "" {
		return
	}
	err := c.feedbackManager.StoreRequestContext(ctx, &models.RequestContext{
		RequestID:    requestID,
		UserID:       userID,
		RequestType:  requestType,
		Prompt:       prompt.Text(),
		Response:     resp.Content,
		ModelVersion: resp.Metadata.Model,
	})
	if err != nil {
		c.logger.Warn("Failed to store request context", zap.Error(err), zap.String("request_id", requestID))
	}
}

// writeError maps a failed AI call onto the client response. Upstream
// detail stays in the logs.
func (c *aiClient) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errPromptBuild) {
		utils.JSONError(w, http.StatusInternalServerError, "prompt_error", "Failed to build AI prompt")
		return
	}
	status, code, message := llm.StatusFor(err)
	utils.JSONError(w, status, code, message)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		return perr.Code
	}
	return "error"
}

func generateRequestID() string {
	return uuid.New().String()
}
