package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akashvaddapelli/Resumeiq/internal/middleware"
	"github.com/akashvaddapelli/Resumeiq/internal/models"
	"github.com/akashvaddapelli/Resumeiq/internal/resume"
	"github.com/akashvaddapelli/Resumeiq/internal/utils"
)

// Uploader archives raw résumé files; satisfied by *objectstore.Store.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
}

type ResumeHandler struct {
	uploader Uploader
	logger   *zap.Logger
}

// NewResumeHandler creates the handler. uploader may be nil.
func NewResumeHandler(uploader Uploader, logger *zap.Logger) *ResumeHandler {
	return &ResumeHandler{uploader: uploader, logger: logger}
}

// ParseResume handles POST /api/v1/resumes/parse
func (h *ResumeHandler) ParseResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	// multipart framing needs a little room above the file cap
	r.Body = http.MaxBytesReader(w, r.Body, models.MaxResumeUploadBytes+64*1024)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.JSONError(w, http.StatusRequestEntityTooLarge, "file_too_large", "file must be 5 MB or smaller")
			return
		}
		utils.JSONError(w, http.StatusBadRequest, "missing_file", "multipart field file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, models.MaxResumeUploadBytes+1))
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid_file", "failed to read file")
		return
	}
	if len(data) > models.MaxResumeUploadBytes {
		utils.JSONError(w, http.StatusRequestEntityTooLarge, "file_too_large", "file must be 5 MB or smaller")
		return
	}

	mimeType := resume.DetectMimeType(header.Filename, header.Header.Get("Content-Type"), data)
	text, err := resume.ExtractText(mimeType, data)
	switch {
	case errors.Is(err, resume.ErrUnsupportedType):
		utils.JSONError(w, http.StatusUnsupportedMediaType, "unsupported_file_type", "upload a PDF, DOCX or plain text file")
		return
	case errors.Is(err, resume.ErrNoText):
		utils.JSONError(w, http.StatusUnprocessableEntity, "no_text", "no text could be extracted from the file")
		return
	case err != nil:
		h.logger.Warn("Failed to extract resume text", zap.Error(err), zap.String("mime_type", mimeType))
		utils.JSONError(w, http.StatusUnprocessableEntity, "unreadable_file", "the file could not be read")
		return
	}

	out := models.ResumeParseResponse{Text: text, MimeType: mimeType}
	if h.uploader != nil {
		key := "resumes/" + userID + "/" + uuid.NewString() + resume.Extension(mimeType)
		if err := h.uploader.Upload(r.Context(), key, mimeType, data); err != nil {
			h.logger.Error("Failed to archive resume", zap.Error(err), zap.String("key", key))
		} else {
			out.ObjectKey = key
		}
	}

	h.logger.Info("Resume parsed",
		zap.String("user_id", userID),
		zap.String("mime_type", mimeType),
		zap.Int("bytes", len(data)),
		zap.Int("chars", len([]rune(text))))

	utils.JSON(w, http.StatusOK, out)
}
