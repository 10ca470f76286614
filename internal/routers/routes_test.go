package routers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"text/template"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/akashvaddapelli/Resumeiq/internal/config"
	"github.com/akashvaddapelli/Resumeiq/internal/handlers"
	"github.com/akashvaddapelli/Resumeiq/internal/llm"
	"github.com/akashvaddapelli/Resumeiq/internal/middleware"
	"github.com/akashvaddapelli/Resumeiq/internal/models"
	"github.com/akashvaddapelli/Resumeiq/internal/prompts"
	"github.com/akashvaddapelli/Resumeiq/internal/repositories"
	"github.com/akashvaddapelli/Resumeiq/internal/testhelpers"
)

type stubProvider struct{}

func (stubProvider) GenerateContent(context.Context, *models.Prompt, string) (*models.GenerationResponse, error) {
	return &models.GenerationResponse{}, nil
}

func (stubProvider) Transcribe(context.Context, []byte, string, string) (string, error) {
	return "", nil
}

func (stubProvider) GetProviderName() string { return "stub" }

// countingProvider records how often the model is reached and answers every
// generate call with reply.
type countingProvider struct {
	reply       string
	generations atomic.Int32
	transcripts atomic.Int32
}

func (p *countingProvider) GenerateContent(context.Context, *models.Prompt, string) (*models.GenerationResponse, error) {
	p.generations.Add(1)
	return &models.GenerationResponse{Content: p.reply, Metadata: models.GenerationMetadata{Model: "counting"}}, nil
}

func (p *countingProvider) Transcribe(context.Context, []byte, string, string) (string, error) {
	p.transcripts.Add(1)
	return "transcript", nil
}

func (p *countingProvider) GetProviderName() string { return "counting" }

type stubPromptManager struct{}

func (stubPromptManager) BuildPrompt(string, string, interface{}) (*models.Prompt, error) {
	return &models.Prompt{User: "prompt"}, nil
}

func (stubPromptManager) GetTemplates() map[string]map[string]*template.Template {
	return map[string]map[string]*template.Template{}
}

var (
	_ llm.Provider           = (*stubProvider)(nil)
	_ llm.Provider           = (*countingProvider)(nil)
	_ prompts.PromptProvider = (*stubPromptManager)(nil)
)

// allowAll authenticates every request as the same user.
func allowAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), "user-1")))
	})
}

func denyAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
}

func registeredRoutes(t *testing.T, router *chi.Mux) map[string]bool {
	t.Helper()
	paths := map[string]bool{}
	if err := chi.Walk(router, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		paths[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("failed walking routes: %v", err)
	}
	return paths
}

func fullHandlers(t *testing.T) APIHandlers {
	logger := zap.NewNop()
	store := repositories.NewStore(testhelpers.SetupTestDB(t))
	return APIHandlers{
		AI:       handlers.NewAIHandler(stubProvider{}, stubPromptManager{}, logger),
		Sessions: handlers.NewSessionHandler(store, stubProvider{}, stubPromptManager{}, logger),
		Reports:  handlers.NewReportHandler(store, logger),
		Resumes:  handlers.NewResumeHandler(nil, logger),
		Feedback: handlers.NewFeedbackHandler(nil, logger),
	}
}

func TestHealthRoutes(t *testing.T) {
	router := chi.NewRouter()
	handler := handlers.NewHealthHandler(nil, nil, &config.Config{Provider: "gemini"})

	HealthRoutes(router, handler)

	for _, path := range []string{"/healthz", "/metrics"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s route not registered correctly, got status %d", path, rec.Code)
		}
	}
}

func TestAPIRoutesRegistersEndpoints(t *testing.T) {
	router := chi.NewRouter()
	APIRoutes(router, allowAll, fullHandlers(t))

	paths := registeredRoutes(t, router)
	expected := []string{
		"POST /api/v1/generate-questions",
		"POST /api/v1/evaluate-answer",
		"POST /api/v1/transcribe-audio",
		"POST /api/v1/resumes/parse",
		"GET /api/v1/sessions",
		"GET /api/v1/sessions/{session_id}",
		"POST /api/v1/sessions/{session_id}/mcq-results",
		"GET /api/v1/sessions/{session_id}/report.pdf",
		"PUT /api/v1/questions/{question_id}/practiced",
		"POST /api/v1/questions/{question_id}/answers",
		"GET /api/v1/dashboard",
		"GET /api/v1/profile",
		"PUT /api/v1/profile",
		"POST /api/v1/feedback/{request_id}",
	}
	for _, route := range expected {
		if !paths[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
	for _, route := range []string{"GET /api/v1/feedback/stats", "GET /api/v1/feedback/export"} {
		if paths[route] {
			t.Fatalf("route %s must not be exposed over HTTP", route)
		}
	}
}

func TestAPIRoutesWithoutDatabase(t *testing.T) {
	router := chi.NewRouter()
	APIRoutes(router, allowAll, APIHandlers{
		AI:      handlers.NewAIHandler(stubProvider{}, stubPromptManager{}, zap.NewNop()),
		Resumes: handlers.NewResumeHandler(nil, zap.NewNop()),
	})

	paths := registeredRoutes(t, router)
	if !paths["POST /api/v1/generate-questions"] {
		t.Fatalf("expected AI routes to be registered")
	}
	if paths["GET /api/v1/sessions"] || paths["POST /api/v1/feedback/{request_id}"] {
		t.Fatalf("database routes should be skipped: %v", paths)
	}
}

func TestAPIRoutesRequireAuthentication(t *testing.T) {
	router := chi.NewRouter()
	APIRoutes(router, denyAll, fullHandlers(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate-questions", strings.NewReader(`{"jobDescription":"Go"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAPIRoutesValidateBodies(t *testing.T) {
	router := chi.NewRouter()
	APIRoutes(router, allowAll, fullHandlers(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate-answer", strings.NewReader(`{"question":"Why?"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing_answer") {
		t.Fatalf("expected missing_answer code, got %s", rec.Body.String())
	}

	big := `{"question":"Why?","answer":"` + strings.Repeat("a", int(maxJSONBody)) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/evaluate-answer", strings.NewReader(big))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), "request_too_large") {
		t.Fatalf("expected request_too_large, got %s", rec.Body.String())
	}
}

func countingRouter(provider *countingProvider) *chi.Mux {
	router := chi.NewRouter()
	APIRoutes(router, allowAll, APIHandlers{
		AI: handlers.NewAIHandler(provider, stubPromptManager{}, zap.NewNop()),
	})
	return router
}

func post(router http.Handler, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return resp.Code
}

func TestEvaluateAnswerTooLongNeverReachesModel(t *testing.T) {
	provider := &countingProvider{}
	router := countingRouter(provider)

	body := `{"question":"Why Go?","answer":"` + strings.Repeat("a", 10001) + `"}`
	rec := post(router, "/api/v1/evaluate-answer", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "answer_too_long" {
		t.Fatalf("expected answer_too_long, got %s", code)
	}
	if n := provider.generations.Load(); n != 0 {
		t.Fatalf("expected no model calls, got %d", n)
	}
}

func TestTranscribeAudioWrongTypeNeverReachesModel(t *testing.T) {
	provider := &countingProvider{}
	router := countingRouter(provider)

	rec := post(router, "/api/v1/transcribe-audio", `{"audio":123}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "invalid_audio" {
		t.Fatalf("expected invalid_audio, got %s", code)
	}
	if n := provider.transcripts.Load(); n != 0 {
		t.Fatalf("expected no transcription calls, got %d", n)
	}
}

// focusedReply builds a model reply with the requested number of questions
// per kind, all in category.
func focusedReply(t *testing.T, category string, openEnded, mcq int) string {
	t.Helper()
	type question struct {
		Category      string            `json:"category"`
		Question      string            `json:"question"`
		Difficulty    string            `json:"difficulty,omitempty"`
		Options       map[string]string `json:"options,omitempty"`
		CorrectAnswer string            `json:"correct_answer,omitempty"`
	}
	payload := struct {
		SchemaVersion int        `json:"schema_version"`
		OpenEnded     []question `json:"open_ended"`
		MCQ           []question `json:"mcq"`
	}{SchemaVersion: models.SchemaVersion}

	for i := 0; i < openEnded; i++ {
		payload.OpenEnded = append(payload.OpenEnded, question{
			Category:   category,
			Question:   fmt.Sprintf("%s open question %d?", category, i+1),
			Difficulty: "medium",
		})
	}
	for i := 0; i < mcq; i++ {
		payload.MCQ = append(payload.MCQ, question{
			Category:      strings.ToLower(category),
			Question:      fmt.Sprintf("%s multiple choice %d?", category, i+1),
			Options:       map[string]string{"A": "one", "B": "two", "C": "three", "D": "four"},
			CorrectAnswer: models.OptionLetters[i%len(models.OptionLetters)],
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to build reply: %v", err)
	}
	return "```json\n" + string(data) + "\n```"
}

func TestGenerateQuestionsFocusedEndToEnd(t *testing.T) {
	provider := &countingProvider{reply: focusedReply(t, "React", models.FocusedOpenEndedCount, models.FocusedMCQCount)}
	router := countingRouter(provider)

	rec := post(router, "/api/v1/generate-questions", `{"jobDescription":"Frontend engineer","focusedSkills":["React"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if n := provider.generations.Load(); n != 1 {
		t.Fatalf("expected exactly one model call, got %d", n)
	}

	var resp models.GenerateQuestionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.OpenEnded) != 20 || len(resp.MCQ) != 20 {
		t.Fatalf("expected 20/20 questions, got %d/%d", len(resp.OpenEnded), len(resp.MCQ))
	}
	if resp.ATS != nil || resp.InterpretedJD != "" {
		t.Fatalf("focused mode must not carry ATS data: %+v", resp.ATS)
	}
	for _, q := range resp.OpenEnded {
		if q.Category != "React" {
			t.Fatalf("expected React category, got %q", q.Category)
		}
	}
	for _, q := range resp.MCQ {
		if q.Category != "React" {
			t.Fatalf("expected React category, got %q", q.Category)
		}
		if len(q.Options) != 4 {
			t.Fatalf("expected 4 options, got %v", q.Options)
		}
		if !strings.Contains("ABCD", q.CorrectAnswer) || len(q.CorrectAnswer) != 1 {
			t.Fatalf("expected a letter in A-D, got %q", q.CorrectAnswer)
		}
	}
}
