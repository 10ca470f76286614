package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akashvaddapelli/Resumeiq/internal/llm"
	"github.com/akashvaddapelli/Resumeiq/internal/middleware"
	"github.com/akashvaddapelli/Resumeiq/internal/models"
	"github.com/akashvaddapelli/Resumeiq/internal/repositories"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// sessionRouter mounts the session routes the way the API router does, with
// the caller taken from the X-Test-User header.
func sessionRouter(h *SessionHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if user := req.Header.Get("X-Test-User"); user != "" {
				req = req.WithContext(middleware.WithUserID(req.Context(), user))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/sessions", h.ListSessions)
	r.Get("/sessions/{session_id}", h.GetSession)
	r.With(middleware.ValidateRequest[*models.SubmitMCQRequest]()).Post("/sessions/{session_id}/mcq-results", h.SubmitMCQResults)
	r.With(middleware.ValidateRequest[*models.UpdatePracticedRequest]()).Put("/questions/{question_id}/practiced", h.UpdatePracticed)
	r.With(middleware.ValidateRequest[*models.SubmitAnswerRequest]()).Post("/questions/{question_id}/answers", h.SubmitAnswer)
	r.Get("/dashboard", h.Dashboard)
	r.Get("/profile", h.GetProfile)
	r.With(middleware.ValidateRequest[*models.UpdateProfileRequest]()).Put("/profile", h.UpdateProfile)
	return r
}

func call(t *testing.T, handler http.Handler, method, target, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

type sessionFixture struct {
	session   *models.Session
	openEnded models.Question
	mcqs      []models.Question
}

func seedSession(t *testing.T, store *repositories.Store, userID string) sessionFixture {
	t.Helper()
	score := 70
	session := &models.Session{
		UserID:         userID,
		JobDescription: "Backend engineer",
		InterpretedJD:  "Go backend engineer",
		ATSScore:       &score,
		SchemaVersion:  models.SchemaVersion,
	}
	options := map[string]string{"A": "a", "B": "b", "C": "c", "D": "d"}
	questions := []models.Question{
		{Position: 0, Category: "Technical", QuestionText: "Explain channels.", Difficulty: "Medium", QuestionType: models.QuestionTypeOpenEnded},
		{Position: 1, Category: "Go", QuestionText: "Map zero value?", QuestionType: models.QuestionTypeMCQ, Options: options, CorrectAnswer: "A"},
		{Position: 2, Category: "SQL", QuestionText: "Primary key?", QuestionType: models.QuestionTypeMCQ, Options: options, CorrectAnswer: "B"},
		{Position: 3, Category: "SQL", QuestionText: "Index type?", QuestionType: models.QuestionTypeMCQ, Options: options, CorrectAnswer: "C"},
	}
	require.NoError(t, store.Sessions.Create(context.Background(), session, questions))
	return sessionFixture{session: session, openEnded: questions[0], mcqs: questions[1:]}
}

func newTestSessionHandler(t *testing.T, provider llm.Provider) (*SessionHandler, *repositories.Store) {
	t.Helper()
	store := newTestStore(t)
	return NewSessionHandler(store, provider, &mockPromptManager{}, zap.NewNop()), store
}

func TestSessionHandlerRequiresUser(t *testing.T) {
	h, _ := newTestSessionHandler(t, &mockProvider{})
	rec := call(t, sessionRouter(h), http.MethodGet, "/sessions", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListAndGetSession(t *testing.T) {
	h, store := newTestSessionHandler(t, &mockProvider{})
	fx := seedSession(t, store, testUserID)
	router := sessionRouter(h)

	rec := call(t, router, http.MethodGet, "/sessions", "", testUserID)
	require.Equal(t, http.StatusOK, rec.Code)
	var summaries []models.SessionSummary
	decodeJSON(t, rec.Body.String(), &summaries)
	require.Len(t, summaries, 1)
	assert.Equal(t, 4, summaries[0].TotalQuestions)

	rec = call(t, router, http.MethodGet, "/sessions", "", "someone-else")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = call(t, router, http.MethodGet, "/sessions/"+fx.session.ID, "", testUserID)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail models.SessionDetail
	decodeJSON(t, rec.Body.String(), &detail)
	assert.Len(t, detail.Questions, 4)
	assert.Nil(t, detail.MCQResult)

	rec = call(t, router, http.MethodGet, "/sessions/"+fx.session.ID, "", "someone-else")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePracticed(t *testing.T) {
	h, store := newTestSessionHandler(t, &mockProvider{})
	fx := seedSession(t, store, testUserID)
	router := sessionRouter(h)

	rec := call(t, router, http.MethodPut, "/questions/"+fx.openEnded.ID+"/practiced", `{"is_practiced":true}`, testUserID)
	require.Equal(t, http.StatusOK, rec.Code)
	var q models.Question
	decodeJSON(t, rec.Body.String(), &q)
	assert.True(t, q.IsPracticed)

	rec = call(t, router, http.MethodPut, "/questions/"+fx.openEnded.ID+"/practiced", `{}`, testUserID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, router, http.MethodPut, "/questions/missing/practiced", `{"is_practiced":true}`, testUserID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitAnswer(t *testing.T) {
	var gotVariant string
	h, store := newTestSessionHandler(t, replyWith(evaluationReply))
	h.promptManager = &mockPromptManager{
		buildPromptFn: func(mode, variant string, data interface{}) (*models.Prompt, error) {
			gotVariant = variant
			return &models.Prompt{User: "prompt"}, nil
		},
	}
	fm := newTestFeedbackManager(t, store)
	h.SetFeedbackManager(fm)
	fx := seedSession(t, store, testUserID)
	router := sessionRouter(h)
	target := "/questions/" + fx.openEnded.ID + "/answers"

	rec := call(t, router, http.MethodPost, target, `{"answer":"  Channels pass values. ","isVoice":true}`, testUserID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "voice", gotVariant)

	var resp models.AnswerResponse
	decodeJSON(t, rec.Body.String(), &resp)
	assert.Equal(t, "Channels pass values.", resp.Answer.AnswerText)
	assert.Equal(t, 8, resp.Answer.ConfidenceScore)
	assert.True(t, resp.Answer.IsVoice)
	assert.Equal(t, "Fewer fillers.", resp.Answer.ClarityNote)
	assert.NotEmpty(t, resp.RequestID)

	q, err := store.Questions.GetForUser(context.Background(), testUserID, fx.openEnded.ID)
	require.NoError(t, err)
	assert.True(t, q.IsPracticed)

	stats, err := fm.GetFeedbackStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CachedContexts)

	rec = call(t, router, http.MethodPost, target, `{"answer":"again"}`, testUserID)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubmitAnswerRejections(t *testing.T) {
	h, store := newTestSessionHandler(t, replyWith(evaluationReply))
	fx := seedSession(t, store, testUserID)
	router := sessionRouter(h)

	rec := call(t, router, http.MethodPost, "/questions/"+fx.mcqs[0].ID+"/answers", `{"answer":"A"}`, testUserID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, router, http.MethodPost, "/questions/"+fx.openEnded.ID+"/answers", `{"answer":"   "}`, testUserID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, router, http.MethodPost, "/questions/"+fx.openEnded.ID+"/answers", `{"answer":"hi"}`, "someone-else")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitAnswerEvaluationFailureStoresNothing(t *testing.T) {
	provider := &mockProvider{
		generateContentFn: func(ctx context.Context, prompt *models.Prompt, requestID string) (*models.GenerationResponse, error) {
			return nil, &llm.ProviderError{Provider: "mock", Code: llm.ErrCodeRateLimit}
		},
	}
	h, store := newTestSessionHandler(t, provider)
	fx := seedSession(t, store, testUserID)

	rec := call(t, sessionRouter(h), http.MethodPost, "/questions/"+fx.openEnded.ID+"/answers", `{"answer":"Channels."}`, testUserID)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	exists, err := store.Answers.Exists(context.Background(), testUserID, fx.openEnded.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSubmitMCQResults(t *testing.T) {
	h, store := newTestSessionHandler(t, &mockProvider{})
	fx := seedSession(t, store, testUserID)
	router := sessionRouter(h)
	target := "/sessions/" + fx.session.ID + "/mcq-results"

	// first correct, second wrong, third unanswered
	body := `{"selections":{"` + fx.mcqs[0].ID + `":"a","` + fx.mcqs[1].ID + `":"D"}}`
	rec := call(t, router, http.MethodPost, target, body, testUserID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp models.MCQResultResponse
	decodeJSON(t, rec.Body.String(), &resp)
	assert.Equal(t, 3, resp.Result.TotalQuestions)
	assert.Equal(t, 1, resp.Result.CorrectAnswers)
	assert.Equal(t, 33, resp.Percentage)
	assert.Equal(t, []string{"A", "D", "X"}, resp.Answers)
	require.NotNil(t, resp.Result.WeakestTopic)
	assert.Equal(t, "SQL", *resp.Result.WeakestTopic)

	rec = call(t, router, http.MethodGet, "/sessions/"+fx.session.ID, "", testUserID)
	var detail models.SessionDetail
	decodeJSON(t, rec.Body.String(), &detail)
	require.NotNil(t, detail.MCQResult)
	assert.Equal(t, resp.Result.ID, detail.MCQResult.ID)

	rec = call(t, router, http.MethodPost, target, `{"selections":{"unknown":"A"}}`, testUserID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPracticeDoesNotMoveStreak(t *testing.T) {
	h, store := newTestSessionHandler(t, replyWith(evaluationReply))
	fx := seedSession(t, store, testUserID)
	router := sessionRouter(h)

	rec := call(t, router, http.MethodPut, "/questions/"+fx.openEnded.ID+"/practiced", `{"is_practiced":true}`, testUserID)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = call(t, router, http.MethodPost, "/questions/"+fx.openEnded.ID+"/answers", `{"answer":"Channels."}`, testUserID)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = call(t, router, http.MethodPost, "/sessions/"+fx.session.ID+"/mcq-results", `{"selections":{}}`, testUserID)
	require.Equal(t, http.StatusCreated, rec.Code)

	streak, err := store.Streaks.Get(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, 0, streak.CurrentStreak)
	assert.Empty(t, streak.LastActiveDate)
}

func TestSubmitMCQResultsWithoutMCQs(t *testing.T) {
	h, store := newTestSessionHandler(t, &mockProvider{})
	session := &models.Session{UserID: testUserID, JobDescription: "x", SchemaVersion: models.SchemaVersion}
	require.NoError(t, store.Sessions.Create(context.Background(), session, []models.Question{
		{Category: "HR", QuestionText: "Why us?", QuestionType: models.QuestionTypeOpenEnded},
	}))

	rec := call(t, sessionRouter(h), http.MethodPost, "/sessions/"+session.ID+"/mcq-results", `{}`, testUserID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardAndProfile(t *testing.T) {
	h, store := newTestSessionHandler(t, replyWith(evaluationReply))
	fx := seedSession(t, store, testUserID)
	router := sessionRouter(h)

	rec := call(t, router, http.MethodGet, "/profile", "", testUserID)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile models.Profile
	decodeJSON(t, rec.Body.String(), &profile)
	assert.Empty(t, profile.FullName)

	rec = call(t, router, http.MethodPut, "/profile", `{"full_name":" Ada Lovelace "}`, testUserID)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec.Body.String(), &profile)
	assert.Equal(t, "Ada Lovelace", profile.FullName)

	rec = call(t, router, http.MethodPost, "/questions/"+fx.openEnded.ID+"/answers", `{"answer":"Channels."}`, testUserID)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(t, router, http.MethodGet, "/dashboard", "", testUserID)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash models.Dashboard
	decodeJSON(t, rec.Body.String(), &dash)
	assert.Equal(t, "Ada Lovelace", dash.DisplayName)
	assert.Equal(t, int64(1), dash.SessionCount)
	assert.Equal(t, 0, dash.CurrentStreak)
	require.NotNil(t, dash.AverageATSScore)
	assert.InDelta(t, 70, *dash.AverageATSScore, 0.001)
	assert.Equal(t, []int{8}, dash.RecentConfidence)
	assert.Equal(t, map[string]int{"Technical": 1}, dash.CategoryCounts)
	assert.Nil(t, dash.WeakestTopic)
}

func TestDashboardEmpty(t *testing.T) {
	h, _ := newTestSessionHandler(t, &mockProvider{})

	rec := call(t, sessionRouter(h), http.MethodGet, "/dashboard", "", testUserID)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash models.Dashboard
	decodeJSON(t, rec.Body.String(), &dash)
	assert.Equal(t, int64(0), dash.SessionCount)
	assert.Nil(t, dash.AverageATSScore)
	assert.Nil(t, dash.AverageConfidence)
	assert.Empty(t, dash.RecentConfidence)
}
