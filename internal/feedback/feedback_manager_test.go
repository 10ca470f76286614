package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
	"github.com/akashvaddapelli/Resumeiq/internal/testhelpers"
)

func newTestFeedbackManager(t *testing.T) *FeedbackManager {
	t.Helper()
	cache := NewContextCache(time.Minute)
	t.Cleanup(cache.Close)
	return NewFeedbackManager(testhelpers.SetupTestDB(t), cache, zap.NewNop())
}

func TestSubmitFeedbackSuccess(t *testing.T) {
	ctx := context.Background()
	fm := newTestFeedbackManager(t)

	err := fm.StoreRequestContext(ctx, &models.RequestContext{
		RequestID:    "req-1",
		UserID:       "user-1",
		RequestType:  models.RequestTypeGenerate,
		Prompt:       "prompt",
		Response:     "response",
		ModelVersion: "gemini-2.5-flash",
	})
	if err != nil {
		t.Fatalf("StoreRequestContext returned error: %v", err)
	}

	if err := fm.SubmitFeedback(ctx, "user-1", "req-1", true); err != nil {
		t.Fatalf("SubmitFeedback returned error: %v", err)
	}

	var stored models.AIFeedback
	if err := fm.db.First(&stored, "request_id = ?", "req-1").Error; err != nil {
		t.Fatalf("expected stored feedback, got error: %v", err)
	}
	if !stored.IsPositive || stored.ModelVersion != "gemini-2.5-flash" || stored.UserID != "user-1" {
		t.Fatalf("unexpected stored feedback: %+v", stored)
	}

	if size, _ := fm.cache.Size(ctx); size != 0 {
		t.Fatalf("expected context cache to be cleared after storing feedback")
	}

	if err := fm.SubmitFeedback(ctx, "user-1", "req-1", false); !errors.Is(err, ErrContextNotFound) {
		t.Fatalf("expected second rating to miss the cache, got %v", err)
	}
}

func TestSubmitFeedbackMissingContext(t *testing.T) {
	fm := newTestFeedbackManager(t)
	if err := fm.SubmitFeedback(context.Background(), "user-1", "missing", false); !errors.Is(err, ErrContextNotFound) {
		t.Fatalf("expected ErrContextNotFound, got %v", err)
	}
}

func TestSubmitFeedbackOtherUsersRequest(t *testing.T) {
	ctx := context.Background()
	fm := newTestFeedbackManager(t)
	_ = fm.StoreRequestContext(ctx, &models.RequestContext{RequestID: "owned", UserID: "user-1", RequestType: models.RequestTypeGenerate})

	for _, userID := range []string{"user-2", ""} {
		if err := fm.SubmitFeedback(ctx, userID, "owned", true); !errors.Is(err, ErrContextNotFound) {
			t.Fatalf("expected ErrContextNotFound for %q, got %v", userID, err)
		}
	}

	var count int64
	fm.db.Model(&models.AIFeedback{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no feedback stored, got %d", count)
	}
	if err := fm.SubmitFeedback(ctx, "user-1", "owned", true); err != nil {
		t.Fatalf("owner should still be able to rate, got %v", err)
	}
}

func TestSubmitFeedbackDuplicate(t *testing.T) {
	ctx := context.Background()
	fm := newTestFeedbackManager(t)
	seedFeedback(t, fm, "dup", false, true, time.Now())

	_ = fm.StoreRequestContext(ctx, &models.RequestContext{RequestID: "dup", UserID: "user-1", RequestType: models.RequestTypeEvaluate})
	if err := fm.SubmitFeedback(ctx, "user-1", "dup", true); !errors.Is(err, ErrAlreadyRated) {
		t.Fatalf("expected ErrAlreadyRated, got %v", err)
	}
}

func seedFeedback(t *testing.T, fm *FeedbackManager, requestID string, exported bool, positive bool, ts time.Time) models.AIFeedback {
	t.Helper()
	if requestID == "" {
		requestID = ts.Format(time.RFC3339Nano)
	}
	fb := models.AIFeedback{
		RequestID:    requestID,
		RequestType:  models.RequestTypeEvaluate,
		Prompt:       "prompt",
		Response:     "response",
		IsPositive:   positive,
		ModelVersion: "v1",
		FeedbackAt:   ts,
		Exported:     exported,
	}
	if err := fm.db.Create(&fb).Error; err != nil {
		t.Fatalf("failed seeding feedback: %v", err)
	}
	return fb
}

func TestGetUnexportedFeedback(t *testing.T) {
	fm := newTestFeedbackManager(t)
	older := seedFeedback(t, fm, "", false, true, time.Now().Add(-time.Hour))
	seedFeedback(t, fm, "", false, false, time.Now())
	seedFeedback(t, fm, "", true, true, time.Now().Add(time.Second))

	results, err := fm.GetUnexportedFeedback(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetUnexportedFeedback error: %v", err)
	}
	if len(results) != 1 || results[0].ID != older.ID {
		t.Fatalf("expected oldest unexported feedback first, got %+v", results)
	}
}

func TestMarkAsExported(t *testing.T) {
	fm := newTestFeedbackManager(t)
	fb := seedFeedback(t, fm, "", false, true, time.Now())

	if err := fm.MarkAsExported(context.Background(), []uint{fb.ID}); err != nil {
		t.Fatalf("MarkAsExported error: %v", err)
	}
	if err := fm.MarkAsExported(context.Background(), nil); err != nil {
		t.Fatalf("MarkAsExported with no ids should be a no-op, got %v", err)
	}

	var updated models.AIFeedback
	if err := fm.db.First(&updated, fb.ID).Error; err != nil {
		t.Fatalf("failed to fetch feedback: %v", err)
	}
	if !updated.Exported || updated.ExportedAt == nil {
		t.Fatalf("expected feedback to be marked exported with timestamp, got %+v", updated)
	}
}

func TestExportToJSONL(t *testing.T) {
	fm := newTestFeedbackManager(t)

	feedback := []models.AIFeedback{
		{Prompt: "prompt1", Response: "resp1", IsPositive: true},
		{Prompt: "prompt2", Response: "resp2", IsPositive: false},
		{Prompt: "prompt3", Response: "resp3", IsPositive: true},
	}

	data, count, err := fm.ExportToJSONL(feedback)
	if err != nil {
		t.Fatalf("ExportToJSONL error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 exported samples, got %d", count)
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected only positive feedback exported, got %d lines", len(lines))
	}

	var parsed models.TrainingDataPoint
	if err := json.Unmarshal([]byte(lines[0]), &parsed); err != nil {
		t.Fatalf("failed to unmarshal exported line: %v", err)
	}
	if parsed.Contents[0].Parts[0].Text != "prompt1" || parsed.Contents[1].Role != "model" {
		t.Fatalf("unexpected export line: %+v", parsed)
	}
}

func TestGetFeedbackStats(t *testing.T) {
	ctx := context.Background()
	fm := newTestFeedbackManager(t)
	seedFeedback(t, fm, "", false, true, time.Now())
	seedFeedback(t, fm, "", false, false, time.Now().Add(time.Second))
	seedFeedback(t, fm, "", true, true, time.Now().Add(2*time.Second))

	stats, err := fm.GetFeedbackStats(ctx)
	if err != nil {
		t.Fatalf("GetFeedbackStats error: %v", err)
	}
	if stats.Total != 3 || stats.Positive != 2 || stats.Negative != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.Unexported != 1 {
		t.Fatalf("expected 1 unexported positive, got %d", stats.Unexported)
	}
	if stats.ByType[models.RequestTypeEvaluate] != 3 {
		t.Fatalf("unexpected by-type counts: %+v", stats.ByType)
	}

	_ = fm.StoreRequestContext(ctx, &models.RequestContext{RequestID: "cache"})
	if stats, err = fm.GetFeedbackStats(ctx); err != nil {
		t.Fatalf("GetFeedbackStats error: %v", err)
	}
	if stats.CachedContexts != 1 {
		t.Fatalf("expected 1 cached context, got %d", stats.CachedContexts)
	}
}
