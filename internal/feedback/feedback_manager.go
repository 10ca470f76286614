package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

var ErrAlreadyRated = errors.New("feedback already submitted for this request")

// FeedbackManager stores user ratings of AI responses and exports the
// positive ones as training data.
type FeedbackManager struct {
	db     *gorm.DB
	cache  Cache
	logger *zap.Logger
}

func NewFeedbackManager(db *gorm.DB, cache Cache, logger *zap.Logger) *FeedbackManager {
	return &FeedbackManager{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// StoreRequestContext caches a prompt/response pair so it can be rated later.
func (fm *FeedbackManager) StoreRequestContext(ctx context.Context, rc *models.RequestContext) error {
	if rc.Timestamp.IsZero() {
		rc.Timestamp = time.Now()
	}
	if err := fm.cache.Set(ctx, rc); err != nil {
		return fmt.Errorf("failed to cache request context: %w", err)
	}
	fm.logger.Debug("Stored request context",
		zap.String("request_id", rc.RequestID),
		zap.String("request_type", rc.RequestType))
	return nil
}

// SubmitFeedback persists userID's rating for a cached request. A request
// made by someone else is reported as not found. The cached context is
// dropped once stored.
func (fm *FeedbackManager) SubmitFeedback(ctx context.Context, userID, requestID string, isPositive bool) error {
	rc, err := fm.cache.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, ErrContextNotFound) {
			return fmt.Errorf("%w: %s", ErrContextNotFound, requestID)
		}
		return err
	}
	if userID == "" || rc.UserID != userID {
		fm.logger.Warn("Feedback rejected for request owned by another user",
			zap.String("request_id", requestID),
			zap.String("user_id", userID))
		return fmt.Errorf("%w: %s", ErrContextNotFound, requestID)
	}

	feedback := &models.AIFeedback{
		RequestID:    requestID,
		UserID:       userID,
		RequestType:  rc.RequestType,
		Prompt:       rc.Prompt,
		Response:     rc.Response,
		IsPositive:   isPositive,
		ModelVersion: rc.ModelVersion,
		FeedbackAt:   time.Now(),
	}

	if err := fm.db.WithContext(ctx).Create(feedback).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyRated
		}
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	if err := fm.cache.Delete(ctx, requestID); err != nil {
		fm.logger.Warn("Failed to drop cached request context", zap.String("request_id", requestID), zap.Error(err))
	}

	fm.logger.Info("Stored feedback",
		zap.String("request_id", requestID),
		zap.Bool("positive", isPositive),
		zap.String("request_type", rc.RequestType))
	return nil
}

// GetUnexportedFeedback returns the oldest unexported ratings first. A
// limit of zero means no limit.
func (fm *FeedbackManager) GetUnexportedFeedback(ctx context.Context, limit int) ([]models.AIFeedback, error) {
	var feedback []models.AIFeedback

	query := fm.db.WithContext(ctx).Where("exported = ?", false).Order("feedback_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to get unexported feedback: %w", err)
	}
	return feedback, nil
}

func (fm *FeedbackManager) MarkAsExported(ctx context.Context, feedbackIDs []uint) error {
	if len(feedbackIDs) == 0 {
		return nil
	}

	result := fm.db.WithContext(ctx).Model(&models.AIFeedback{}).
		Where("id IN ?", feedbackIDs).
		Updates(map[string]interface{}{
			"exported":    true,
			"exported_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark feedback as exported: %w", result.Error)
	}

	fm.logger.Info("Marked feedback as exported", zap.Int64("count", result.RowsAffected))
	return nil
}

// ExportToJSONL renders positive feedback as one user/model exchange per
// line. Negative ratings are skipped.
func (fm *FeedbackManager) ExportToJSONL(feedback []models.AIFeedback) ([]byte, int, error) {
	var buf bytes.Buffer
	exported := 0

	for _, fb := range feedback {
		if !fb.IsPositive {
			continue
		}

		line, err := json.Marshal(models.TrainingDataPoint{
			Contents: []models.TrainingContent{
				{Role: "user", Parts: []models.TrainingPart{{Text: fb.Prompt}}},
				{Role: "model", Parts: []models.TrainingPart{{Text: fb.Response}}},
			},
		})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal training data: %w", err)
		}

		if exported > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(line)
		exported++
	}

	fm.logger.Info("Exported positive feedback to JSONL",
		zap.Int("exported", exported),
		zap.Int("total", len(feedback)))
	return buf.Bytes(), exported, nil
}

type typeCount struct {
	RequestType string
	Count       int64
}

func (fm *FeedbackManager) GetFeedbackStats(ctx context.Context) (*models.FeedbackStats, error) {
	db := fm.db.WithContext(ctx)
	stats := &models.FeedbackStats{ByType: map[string]int64{}}

	if err := db.Model(&models.AIFeedback{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.AIFeedback{}).Where("is_positive = ?", true).Count(&stats.Positive).Error; err != nil {
		return nil, err
	}
	stats.Negative = stats.Total - stats.Positive

	err := db.Model(&models.AIFeedback{}).
		Where("is_positive = ? AND exported = ?", true, false).
		Count(&stats.Unexported).Error
	if err != nil {
		return nil, err
	}

	var rows []typeCount
	err = db.Model(&models.AIFeedback{}).
		Select("request_type, COUNT(*) AS count").
		Group("request_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByType[row.RequestType] = row.Count
	}

	cached, err := fm.cache.Size(ctx)
	if err != nil {
		fm.logger.Warn("Failed to size request context cache", zap.Error(err))
	}
	stats.CachedContexts = cached

	return stats, nil
}
