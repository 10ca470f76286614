package handlers

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionReport(t *testing.T) {
	store := newTestStore(t)
	fx := seedSession(t, store, testUserID)
	handler := NewReportHandler(store, zap.NewNop())
	handler.now = func() time.Time { return fixedNow }

	r := chi.NewRouter()
	r.Get("/sessions/{session_id}/report.pdf", handler.SessionReport)

	rec := serveRaw(r, http.MethodGet, "/sessions/"+fx.session.ID+"/report.pdf", "", testUserID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Resumiq-Session-2025-03-10.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = serveRaw(r, http.MethodGet, "/sessions/"+fx.session.ID+"/report.pdf", "", "someone-else")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
