package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akashvaddapelli/Resumeiq/internal/handlers"
	"github.com/akashvaddapelli/Resumeiq/internal/middleware"
	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

// body caps for JSON routes
const (
	maxJSONBody  int64 = 1 << 20
	maxAudioBody int64 = models.MaxAudioBase64Length + maxJSONBody
)

// APIHandlers groups the handlers mounted under /api/v1. Handlers that need
// the database are nil when it is disabled and their routes are skipped.
type APIHandlers struct {
	AI       *handlers.AIHandler
	Sessions *handlers.SessionHandler
	Reports  *handlers.ReportHandler
	Resumes  *handlers.ResumeHandler
	Feedback *handlers.FeedbackHandler
}

// APIRoutes mounts every authenticated route. authenticate resolves the
// caller for each request.
func APIRoutes(router *chi.Mux, authenticate func(http.Handler) http.Handler, h APIHandlers) {
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authenticate)

		AIRoutes(r, h.AI)
		if h.Resumes != nil {
			r.Post("/resumes/parse", h.Resumes.ParseResume)
		}
		if h.Sessions != nil {
			SessionRoutes(r, h.Sessions, h.Reports)
		}
		if h.Feedback != nil {
			FeedbackRoutes(r, h.Feedback)
		}
	})
}

func AIRoutes(r chi.Router, aiHandler *handlers.AIHandler) {
	limited := r.With(middleware.LimitBody(maxJSONBody))
	limited.With(middleware.ValidateRequest[*models.GenerateQuestionsRequest]()).Post("/generate-questions", aiHandler.GenerateQuestionsHandler)
	limited.With(middleware.ValidateRequest[*models.EvaluateAnswerRequest]()).Post("/evaluate-answer", aiHandler.EvaluateAnswerHandler)
	r.With(middleware.LimitBody(maxAudioBody), middleware.ValidateRequest[*models.TranscribeAudioRequest]()).Post("/transcribe-audio", aiHandler.TranscribeAudioHandler)
}

func SessionRoutes(r chi.Router, sessionHandler *handlers.SessionHandler, reportHandler *handlers.ReportHandler) {
	limited := r.With(middleware.LimitBody(maxJSONBody))

	r.Get("/sessions", sessionHandler.ListSessions)
	r.Get("/sessions/{session_id}", sessionHandler.GetSession)
	limited.With(middleware.ValidateRequest[*models.SubmitMCQRequest]()).Post("/sessions/{session_id}/mcq-results", sessionHandler.SubmitMCQResults)
	if reportHandler != nil {
		r.Get("/sessions/{session_id}/report.pdf", reportHandler.SessionReport)
	}

	limited.With(middleware.ValidateRequest[*models.UpdatePracticedRequest]()).Put("/questions/{question_id}/practiced", sessionHandler.UpdatePracticed)
	limited.With(middleware.ValidateRequest[*models.SubmitAnswerRequest]()).Post("/questions/{question_id}/answers", sessionHandler.SubmitAnswer)

	r.Get("/dashboard", sessionHandler.Dashboard)
	r.Get("/profile", sessionHandler.GetProfile)
	limited.With(middleware.ValidateRequest[*models.UpdateProfileRequest]()).Put("/profile", sessionHandler.UpdateProfile)
}

// FeedbackRoutes only accepts ratings. Exports and stats span every user and
// are served by the exporter job and resumiqctl.
func FeedbackRoutes(r chi.Router, feedbackHandler *handlers.FeedbackHandler) {
	r.With(middleware.LimitBody(maxJSONBody), middleware.ValidateRequest[*models.SubmitFeedbackRequest]()).Post("/feedback/{request_id}", feedbackHandler.SubmitFeedback)
}
