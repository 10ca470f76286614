package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/akashvaddapelli/Resumeiq/internal/feedback"
	"github.com/akashvaddapelli/Resumeiq/internal/middleware"
	"github.com/akashvaddapelli/Resumeiq/internal/models"
	"github.com/akashvaddapelli/Resumeiq/internal/utils"
)

type FeedbackHandler struct {
	feedbackManager *feedback.FeedbackManager
	logger          *zap.Logger
}

func NewFeedbackHandler(feedbackManager *feedback.FeedbackManager, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackManager: feedbackManager,
		logger:          logger,
	}
}

// SubmitFeedback handles POST /api/v1/feedback/{request_id}. Only the user
// who made the request can rate it.
func (fh *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	requestID := chi.URLParam(r, "request_id")
	if requestID == "" {
		utils.JSONError(w, http.StatusBadRequest, "missing_request_id", "request_id is required")
		return
	}
	req := middleware.GetValidatedRequest[*models.SubmitFeedbackRequest](r)

	err := fh.feedbackManager.SubmitFeedback(r.Context(), userID, requestID, *req.IsPositive)
	switch {
	case errors.Is(err, feedback.ErrContextNotFound):
		utils.JSONError(w, http.StatusNotFound, "request_not_found", "request not found or expired")
		return
	case errors.Is(err, feedback.ErrAlreadyRated):
		utils.JSONError(w, http.StatusConflict, "feedback_exists", "feedback already submitted for this request")
		return
	case err != nil:
		fh.logger.Error("Failed to submit feedback", zap.Error(err), zap.String("request_id", requestID))
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to submit feedback")
		return
	}

	utils.JSON(w, http.StatusOK, models.Resp{OK: true, Info: "feedback submitted successfully"})
}
