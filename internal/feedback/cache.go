package feedback

import (
	"context"
	"errors"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

var ErrContextNotFound = errors.New("request context not found or expired")

// Cache holds request contexts until the user rates the response.
type Cache interface {
	Set(ctx context.Context, rc *models.RequestContext) error
	Get(ctx context.Context, requestID string) (*models.RequestContext, error)
	Delete(ctx context.Context, requestID string) error
	Size(ctx context.Context) (int, error)
}
