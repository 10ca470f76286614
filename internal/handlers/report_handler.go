package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/akashvaddapelli/Resumeiq/internal/middleware"
	"github.com/akashvaddapelli/Resumeiq/internal/report"
	"github.com/akashvaddapelli/Resumeiq/internal/repositories"
	"github.com/akashvaddapelli/Resumeiq/internal/utils"
)

type ReportHandler struct {
	store  *repositories.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewReportHandler(store *repositories.Store, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{store: store, logger: logger, now: time.Now}
}

// SessionReport handles GET /api/v1/sessions/{session_id}/report.pdf
func (h *ReportHandler) SessionReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	sessionID := chi.URLParam(r, "session_id")

	detail, err := h.store.SessionDetail(r.Context(), userID, sessionID)
	if errors.Is(err, repositories.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "session_not_found", "session not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to load session for report", zap.Error(err), zap.String("session_id", sessionID))
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to build report")
		return
	}

	var name string
	if profile, err := h.store.Profiles.Get(r.Context(), userID); err == nil {
		name = profile.FullName
	}

	generatedAt := h.now()
	pdf, err := report.RenderPDF(report.BuildMarkdown(report.Input{
		UserName:    name,
		GeneratedAt: generatedAt,
		Session:     detail.Session,
		Questions:   detail.Questions,
		Answers:     detail.Answers,
		MCQResult:   detail.MCQResult,
	}))
	if err != nil {
		h.logger.Error("Failed to render report", zap.Error(err), zap.String("session_id", sessionID))
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to build report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(generatedAt)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
