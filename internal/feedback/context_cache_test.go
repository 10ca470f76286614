package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

func newTestContext() *models.RequestContext {
	return &models.RequestContext{
		RequestID:   "abc",
		RequestType: models.RequestTypeEvaluate,
		Prompt:      "prompt",
		Response:    "response",
	}
}

func TestContextCacheSetGet(t *testing.T) {
	ctx := context.Background()
	cache := NewContextCache(time.Hour)
	defer cache.Close()

	rc := newTestContext()
	if err := cache.Set(ctx, rc); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	got, err := cache.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("expected to retrieve cached context, got %v", err)
	}
	if got != rc {
		t.Fatal("expected same pointer from cache")
	}
	if size, _ := cache.Size(ctx); size != 1 {
		t.Fatalf("expected size 1, got %d", size)
	}
}

func TestContextCacheExpiration(t *testing.T) {
	ctx := context.Background()
	cache := NewContextCache(10 * time.Millisecond)
	defer cache.Close()

	_ = cache.Set(ctx, newTestContext())
	time.Sleep(20 * time.Millisecond)

	if _, err := cache.Get(ctx, "abc"); !errors.Is(err, ErrContextNotFound) {
		t.Fatalf("expected cache entry to expire, got %v", err)
	}
}

func TestContextCacheDeleteAndCleanup(t *testing.T) {
	ctx := context.Background()
	cache := NewContextCache(time.Hour)
	_ = cache.Set(ctx, newTestContext())
	_ = cache.Delete(ctx, "abc")

	if size, _ := cache.Size(ctx); size != 0 {
		t.Fatalf("expected empty cache after delete, got %d", size)
	}
	cache.Close()
	cache.Close()

	cache = NewContextCache(-time.Second)
	defer cache.Close()
	_ = cache.Set(ctx, newTestContext())
	cache.cleanup()

	if size, _ := cache.Size(ctx); size != 0 {
		t.Fatalf("expected cleanup to remove expired entry, got %d", size)
	}
}
