package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/akashvaddapelli/Resumeiq/internal/feedback"
	"github.com/akashvaddapelli/Resumeiq/internal/llm"
	"github.com/akashvaddapelli/Resumeiq/internal/middleware"
	"github.com/akashvaddapelli/Resumeiq/internal/models"
	"github.com/akashvaddapelli/Resumeiq/internal/practice"
	"github.com/akashvaddapelli/Resumeiq/internal/prompts"
	"github.com/akashvaddapelli/Resumeiq/internal/repositories"
	"github.com/akashvaddapelli/Resumeiq/internal/utils"
)

// number of confidence scores plotted on the dashboard
const recentConfidenceLimit = 10

// SessionHandler serves history, practice and dashboard routes. Every query
// is scoped to the authenticated user.
type SessionHandler struct {
	aiClient
	store *repositories.Store
}

func NewSessionHandler(store *repositories.Store, provider llm.Provider, promptManager prompts.PromptProvider, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		aiClient: aiClient{
			provider:      provider,
			promptManager: promptManager,
			logger:        logger,
		},
		store: store,
	}
}

func (h *SessionHandler) SetFeedbackManager(fm *feedback.FeedbackManager) {
	h.feedbackManager = fm
}

// userID reads the caller set by the auth middleware.
func (h *SessionHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	}
	return userID, ok
}

func (h *SessionHandler) storeError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, repositories.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, what+"_not_found", what+" not found")
		return
	}
	h.logger.Error("Store error", zap.Error(err), zap.String("entity", what))
	utils.JSONError(w, http.StatusInternalServerError, "internal_error", llm.MsgGeneric)
}

// ListSessions handles GET /api/v1/sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	summaries, err := h.store.Sessions.ListSummaries(r.Context(), userID)
	if err != nil {
		h.storeError(w, err, "session")
		return
	}
	utils.JSON(w, http.StatusOK, summaries)
}

// GetSession handles GET /api/v1/sessions/{session_id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	detail, err := h.store.SessionDetail(r.Context(), userID, chi.URLParam(r, "session_id"))
	if err != nil {
		h.storeError(w, err, "session")
		return
	}
	utils.JSON(w, http.StatusOK, detail)
}

// UpdatePracticed handles PUT /api/v1/questions/{question_id}/practiced
func (h *SessionHandler) UpdatePracticed(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	req := middleware.GetValidatedRequest[*models.UpdatePracticedRequest](r)

	question, err := h.store.Questions.SetPracticed(r.Context(), userID, chi.URLParam(r, "question_id"), *req.IsPracticed)
	if err != nil {
		h.storeError(w, err, "question")
		return
	}
	utils.JSON(w, http.StatusOK, question)
}

// SubmitAnswer handles POST /api/v1/questions/{question_id}/answers
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	req := middleware.GetValidatedRequest[*models.SubmitAnswerRequest](r)
	ctx := r.Context()

	question, err := h.store.Questions.GetForUser(ctx, userID, chi.URLParam(r, "question_id"))
	if err != nil {
		h.storeError(w, err, "question")
		return
	}
	if question.QuestionType != models.QuestionTypeOpenEnded {
		utils.JSONError(w, http.StatusBadRequest, "not_open_ended", "only open-ended questions accept written answers")
		return
	}

	exists, err := h.store.Answers.Exists(ctx, userID, question.ID)
	if err != nil {
		h.storeError(w, err, "answer")
		return
	}
	if exists {
		utils.JSONError(w, http.StatusConflict, "answer_exists", "question already answered")
		return
	}

	flow := practice.NewFlow()
	if err := fillFlow(flow, req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid_answer", err.Error())
		return
	}
	if err := flow.Submit(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "missing_answer", "answer is required")
		return
	}

	evaluation, err := h.evaluate(ctx, userID, &models.EvaluateAnswerRequest{
		Question:  question.QuestionText,
		Answer:    flow.Text(),
		Category:  question.Category,
		IsVoice:   flow.IsVoice(),
		RequestID: generateRequestID(),
	})
	if err != nil {
		flow.EvaluationFailed()
		h.writeError(w, err)
		return
	}
	flow.Evaluated()

	answer := &models.Answer{
		QuestionID:      question.ID,
		UserID:          userID,
		AnswerText:      flow.Text(),
		ConfidenceScore: evaluation.ConfidenceScore,
		FeedbackText:    evaluation.Feedback,
		SampleAnswer:    evaluation.SampleAnswer,
		WeakAreas:       evaluation.WeakAreas,
		ClarityNote:     evaluation.ClarityNote,
		IsVoice:         flow.IsVoice(),
	}
	if err := h.store.Answers.Create(ctx, answer); err != nil {
		if errors.Is(err, repositories.ErrAnswerExists) {
			utils.JSONError(w, http.StatusConflict, "answer_exists", "question already answered")
			return
		}
		h.storeError(w, err, "answer")
		return
	}

	if _, err := h.store.Questions.SetPracticed(ctx, userID, question.ID, true); err != nil {
		h.logger.Warn("Failed to mark question practiced", zap.Error(err), zap.String("question_id", question.ID))
	}

	utils.JSON(w, http.StatusCreated, models.AnswerResponse{Answer: *answer, RequestID: evaluation.RequestID})
}

// fillFlow replays the submitted answer through the practice flow. A voice
// answer arrives as an already transcribed text.
func fillFlow(flow *practice.Flow, req *models.SubmitAnswerRequest) error {
	if !req.IsVoice {
		return flow.Type(req.Answer)
	}
	if err := flow.StartRecording(); err != nil {
		return err
	}
	if err := flow.StopRecording(); err != nil {
		return err
	}
	return flow.TranscriptReady(req.Answer)
}

// SubmitMCQResults handles POST /api/v1/sessions/{session_id}/mcq-results
func (h *SessionHandler) SubmitMCQResults(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	req := middleware.GetValidatedRequest[*models.SubmitMCQRequest](r)
	ctx := r.Context()

	session, err := h.store.Sessions.GetForUser(ctx, userID, chi.URLParam(r, "session_id"))
	if err != nil {
		h.storeError(w, err, "session")
		return
	}
	questions, err := h.store.Questions.ListBySession(ctx, session.ID)
	if err != nil {
		h.storeError(w, err, "question")
		return
	}

	var quizQuestions []practice.QuizQuestion
	known := make(map[string]bool)
	for _, q := range questions {
		if q.QuestionType != models.QuestionTypeMCQ {
			continue
		}
		known[q.ID] = true
		quizQuestions = append(quizQuestions, practice.QuizQuestion{
			ID:            q.ID,
			Category:      q.Category,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	for id := range req.Selections {
		if !known[id] {
			utils.JSONError(w, http.StatusBadRequest, "unknown_question", "selection for unknown question "+id)
			return
		}
	}

	quiz, err := practice.NewQuiz(quizQuestions)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "no_mcq_questions", "session has no multiple-choice questions")
		return
	}
	for _, q := range quizQuestions {
		if letter := req.Selections[q.ID]; letter != "" {
			quiz.Answer(letter)
		} else {
			quiz.Expire()
		}
		quiz.Next()
	}
	score := quiz.Result()

	result := &models.MCQResult{
		SessionID:       session.ID,
		UserID:          userID,
		TotalQuestions:  score.Total,
		CorrectAnswers:  score.Correct,
		ScorePercentage: score.ScorePercentage,
	}
	if score.WeakestCategory != "" {
		weakest := score.WeakestCategory
		result.WeakestTopic = &weakest
	}
	if err := h.store.MCQResults.Create(ctx, result); err != nil {
		h.storeError(w, err, "mcq_result")
		return
	}

	selected := make([]string, len(score.Answers))
	for i, a := range score.Answers {
		selected[i] = a.Selected
	}

	h.logger.Info("MCQ results stored",
		zap.String("session_id", session.ID),
		zap.Int("correct", score.Correct),
		zap.Int("total", score.Total))

	utils.JSON(w, http.StatusCreated, models.MCQResultResponse{
		Result:     *result,
		Percentage: score.Percentage,
		Answers:    selected,
	})
}

// Dashboard handles GET /api/v1/dashboard
func (h *SessionHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	var (
		out models.Dashboard
		err error
	)

	profile, err := h.store.Profiles.Get(ctx, userID)
	switch {
	case err == nil:
		out.DisplayName = profile.FullName
	case !errors.Is(err, repositories.ErrNotFound):
		h.storeError(w, err, "profile")
		return
	}

	streak, err := h.store.Streaks.Get(ctx, userID)
	if err != nil {
		h.storeError(w, err, "streak")
		return
	}
	out.CurrentStreak = streak.CurrentStreak
	out.LongestStreak = streak.LongestStreak

	if out.SessionCount, err = h.store.Sessions.CountByUser(ctx, userID); err != nil {
		h.storeError(w, err, "session")
		return
	}
	if out.AverageATSScore, err = h.store.Sessions.AverageATS(ctx, userID); err != nil {
		h.storeError(w, err, "session")
		return
	}
	if out.AverageConfidence, err = h.store.Answers.AverageConfidence(ctx, userID); err != nil {
		h.storeError(w, err, "answer")
		return
	}
	if out.RecentConfidence, err = h.store.Answers.RecentConfidence(ctx, userID, recentConfidenceLimit); err != nil {
		h.storeError(w, err, "answer")
		return
	}
	if out.CategoryCounts, err = h.store.Questions.PracticedCategoryCounts(ctx, userID); err != nil {
		h.storeError(w, err, "question")
		return
	}
	if out.WeakestTopic, err = h.store.MCQResults.LatestWeakestTopic(ctx, userID); err != nil {
		h.storeError(w, err, "mcq_result")
		return
	}

	utils.JSON(w, http.StatusOK, out)
}

// GetProfile handles GET /api/v1/profile
func (h *SessionHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	profile, err := h.store.Profiles.Get(r.Context(), userID)
	if errors.Is(err, repositories.ErrNotFound) {
		utils.JSON(w, http.StatusOK, models.Profile{UserID: userID})
		return
	}
	if err != nil {
		h.storeError(w, err, "profile")
		return
	}
	utils.JSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/v1/profile
func (h *SessionHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	req := middleware.GetValidatedRequest[*models.UpdateProfileRequest](r)

	profile, err := h.store.Profiles.Upsert(r.Context(), userID, req.FullName)
	if err != nil {
		h.storeError(w, err, "profile")
		return
	}
	utils.JSON(w, http.StatusOK, profile)
}
