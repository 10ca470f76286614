package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/akashvaddapelli/Resumeiq/internal/feedback"
	"github.com/akashvaddapelli/Resumeiq/internal/generation"
	"github.com/akashvaddapelli/Resumeiq/internal/llm"
	"github.com/akashvaddapelli/Resumeiq/internal/metrics"
	"github.com/akashvaddapelli/Resumeiq/internal/middleware"
	"github.com/akashvaddapelli/Resumeiq/internal/models"
	"github.com/akashvaddapelli/Resumeiq/internal/prompts"
	"github.com/akashvaddapelli/Resumeiq/internal/repositories"
	"github.com/akashvaddapelli/Resumeiq/internal/utils"
)

// AIHandler serves the three model-backed endpoints: question generation,
// answer evaluation and transcription.
type AIHandler struct {
	aiClient
	store *repositories.Store
	now   func() time.Time
}

func NewAIHandler(provider llm.Provider, promptManager prompts.PromptProvider, logger *zap.Logger) *AIHandler {
	return &AIHandler{
		aiClient: aiClient{
			provider:      provider,
			promptManager: promptManager,
			logger:        logger,
		},
		now: time.Now,
	}
}

func (h *AIHandler) SetFeedbackManager(fm *feedback.FeedbackManager) {
	h.feedbackManager = fm
}

// SetStore enables persisting generated sessions.
func (h *AIHandler) SetStore(store *repositories.Store) {
	h.store = store
}

func (h *AIHandler) GenerateQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.GenerateQuestionsRequest](r)
	req.RequestID = generateRequestID()
	userID, _ := middleware.UserIDFromContext(r.Context())

	variant, data := prompts.NewGenerateData(req)
	prompt, resp, err := h.call(r.Context(), prompts.ModeGenerate, variant, data, req.RequestID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out, rejections, err := generation.DecodeQuestions(resp.Content, req.FocusedSkills)
	for _, rej := range rejections {
		metrics.ObserveRejectedQuestion(rej.Kind)
		h.logger.Warn("Dropped generated question",
			zap.String("request_id", req.RequestID),
			zap.String("kind", rej.Kind),
			zap.Int("index", rej.Index),
			zap.String("reason", rej.Reason))
	}
	if err != nil {
		h.logger.Error("Failed to decode generated questions", zap.Error(err), zap.String("request_id", req.RequestID))
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", llm.MsgGeneric)
		return
	}
	out.RequestID = req.RequestID
	out.Metadata = resp.Metadata

	if userID != "" && h.store != nil {
		h.persistSession(r, userID, req, out)
	}

	h.logger.Info("Questions generated",
		zap.String("request_id", req.RequestID),
		zap.String("provider", h.provider.GetProviderName()),
		zap.Int("processing_time_ms", resp.Metadata.ProcessingTime),
		zap.Int("open_ended", len(out.OpenEnded)),
		zap.Int("mcq", len(out.MCQ)))

	h.remember(r.Context(), userID, models.RequestTypeGenerate, req.RequestID, prompt, resp)
	utils.JSON(w, http.StatusOK, out)
}

// persistSession stores the session and its questions and rewrites the
// question IDs to the stored ones. A storage failure is logged and the
// questions are still returned.
func (h *AIHandler) persistSession(r *http.Request, userID string, req *models.GenerateQuestionsRequest, out *models.GenerateQuestionsResponse) {
	ctx := r.Context()
	session := &models.Session{
		UserID:          userID,
		JobDescription:  req.JobDescription,
		InterpretedJD:   out.InterpretedJD,
		ResumeText:      req.ResumeText,
		ExperienceLevel: req.Experience,
		InterviewTypes:  req.InterviewTypes,
		Company:         req.Company,
		FocusedSkills:   req.FocusedSkills,
		ATSFeedback:     out.ATS,
		SchemaVersion:   models.SchemaVersion,
	}
	if out.ATS != nil {
		score := out.ATS.Score
		session.ATSScore = &score
	}

	questions := make([]models.Question, 0, len(out.OpenEnded)+len(out.MCQ))
	for _, q := range out.OpenEnded {
		questions = append(questions, models.Question{
			Position:     len(questions),
			Category:     q.Category,
			QuestionText: q.Question,
			Difficulty:   q.Difficulty,
			QuestionType: models.QuestionTypeOpenEnded,
		})
	}
	for _, q := range out.MCQ {
		questions = append(questions, models.Question{
			Position:      len(questions),
			Category:      q.Category,
			QuestionText:  q.Question,
			Difficulty:    q.Difficulty,
			QuestionType:  models.QuestionTypeMCQ,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}

	if err := h.store.Sessions.Create(ctx, session, questions); err != nil {
		h.logger.Error("Failed to persist session",
			zap.Error(err),
			zap.String("request_id", out.RequestID),
			zap.String("user_id", userID))
		return
	}

	out.SessionID = session.ID
	for i := range out.OpenEnded {
		out.OpenEnded[i].ID = questions[i].ID
	}
	for i := range out.MCQ {
		out.MCQ[i].ID = questions[len(out.OpenEnded)+i].ID
	}

	if _, err := h.store.Streaks.Touch(ctx, userID, h.now()); err != nil {
		h.logger.Warn("Failed to update streak", zap.Error(err), zap.String("user_id", userID))
	}
}

func (h *AIHandler) EvaluateAnswerHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.EvaluateAnswerRequest](r)
	req.RequestID = generateRequestID()
	userID, _ := middleware.UserIDFromContext(r.Context())

	out, err := h.evaluate(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, out)
}

func (h *AIHandler) TranscribeAudioHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.TranscribeAudioRequest](r)
	req.RequestID = generateRequestID()

	instruction, err := h.promptManager.BuildPrompt(prompts.ModeTranscribe, prompts.VariantDefault, prompts.TranscribeData{MimeType: req.MimeType})
	if err != nil {
		h.logger.Error("Failed to build prompt", zap.Error(err), zap.String("request_id", req.RequestID))
		utils.JSONError(w, http.StatusInternalServerError, "prompt_error", "Failed to build AI prompt")
		return
	}

	start := time.Now()
	text, err := h.provider.Transcribe(r.Context(), req.AudioBytes(), req.MimeType, instruction.Text())
	metrics.ObserveLLMCall(h.provider.GetProviderName(), prompts.ModeTranscribe, outcome(err), time.Since(start))
	if err != nil {
		h.logger.Error("Transcription failed",
			zap.Error(err),
			zap.String("request_id", req.RequestID),
			zap.String("provider", h.provider.GetProviderName()))
		h.writeError(w, err)
		return
	}

	h.logger.Info("Audio transcribed",
		zap.String("request_id", req.RequestID),
		zap.String("provider", h.provider.GetProviderName()),
		zap.Int("audio_bytes", len(req.AudioBytes())),
		zap.Int64("processing_time_ms", time.Since(start).Milliseconds()))

	utils.JSON(w, http.StatusOK, models.TranscribeAudioResponse{
		Text:      strings.TrimSpace(text),
		RequestID: req.RequestID,
	})
}
