package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/akashvaddapelli/Resumeiq/internal/feedback"
	"github.com/akashvaddapelli/Resumeiq/internal/middleware"
	"github.com/akashvaddapelli/Resumeiq/internal/models"
	"github.com/akashvaddapelli/Resumeiq/internal/repositories"
	"github.com/akashvaddapelli/Resumeiq/internal/testhelpers"
)

const testUserID = "user-1"

type mockProvider struct {
	generateContentFn func(ctx context.Context, prompt *models.Prompt, requestID string) (*models.GenerationResponse, error)
	transcribeFn      func(ctx context.Context, audio []byte, mimeType, instruction string) (string, error)
	getProviderNameFn func() string
}

func (m *mockProvider) GenerateContent(ctx context.Context, prompt *models.Prompt, requestID string) (*models.GenerationResponse, error) {
	if m.generateContentFn == nil {
		return &models.GenerationResponse{}, nil
	}
	return m.generateContentFn(ctx, prompt, requestID)
}

func (m *mockProvider) Transcribe(ctx context.Context, audio []byte, mimeType, instruction string) (string, error) {
	if m.transcribeFn == nil {
		return "", nil
	}
	return m.transcribeFn(ctx, audio, mimeType, instruction)
}

func (m *mockProvider) GetProviderName() string {
	if m.getProviderNameFn == nil {
		return "mock"
	}
	return m.getProviderNameFn()
}

// replyWith returns a provider that answers every prompt with content.
func replyWith(content string) *mockProvider {
	return &mockProvider{
		generateContentFn: func(ctx context.Context, prompt *models.Prompt, requestID string) (*models.GenerationResponse, error) {
			return &models.GenerationResponse{
				Content:  content,
				Metadata: models.GenerationMetadata{Provider: "mock", Model: "test-model", ProcessingTime: 12},
			}, nil
		},
	}
}

type mockPromptManager struct {
	buildPromptFn  func(mode, variant string, data interface{}) (*models.Prompt, error)
	getTemplatesFn func() map[string]map[string]*template.Template
}

func (m *mockPromptManager) BuildPrompt(mode, variant string, data interface{}) (*models.Prompt, error) {
	if m.buildPromptFn == nil {
		return &models.Prompt{System: "system", User: mode + "/" + variant}, nil
	}
	return m.buildPromptFn(mode, variant, data)
}

func (m *mockPromptManager) GetTemplates() map[string]map[string]*template.Template {
	if m.getTemplatesFn == nil {
		return map[string]map[string]*template.Template{
			"generate_questions": {
				"full": template.Must(template.New("test").Parse("test")),
			},
		}
	}
	return m.getTemplatesFn()
}

func newTestStore(t *testing.T) *repositories.Store {
	t.Helper()
	return repositories.NewStore(testhelpers.SetupTestDB(t))
}

func newTestFeedbackManager(t *testing.T, store *repositories.Store) *feedback.FeedbackManager {
	t.Helper()
	cache := feedback.NewContextCache(time.Minute)
	t.Cleanup(cache.Close)
	return feedback.NewFeedbackManager(store.Sessions.DB, cache, zap.NewNop())
}

// serve runs handler behind request validation for T, as the router does.
func serve[T middleware.Validator](handler http.HandlerFunc, method, target, body, userID string) *httptest.ResponseRecorder {
	return serveRaw(middleware.ValidateRequest[T]()(handler), method, target, body, userID)
}

func serveRaw(handler http.Handler, method, target, body, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
