package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
	"github.com/akashvaddapelli/Resumeiq/internal/practice"
)

type MCQResultRepository struct {
	DB *gorm.DB
}

func (r *MCQResultRepository) Create(ctx context.Context, result *models.MCQResult) error {
	if err := r.DB.WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("create mcq result: %w", err)
	}
	return nil
}

func (r *MCQResultRepository) LatestForSession(ctx context.Context, userID, sessionID string) (*models.MCQResult, error) {
	var result models.MCQResult
	err := r.DB.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Order("created_at DESC").
		First(&result).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &result, nil
}

// LatestWeakestTopic is nil when no quiz of the user had a wrong answer.
func (r *MCQResultRepository) LatestWeakestTopic(ctx context.Context, userID string) (*string, error) {
	var result models.MCQResult
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND weakest_topic IS NOT NULL", userID).
		Order("created_at DESC").
		First(&result).Error
	if err != nil {
		if notFound(err) == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return result.WeakestTopic, nil
}

type StreakRepository struct {
	DB *gorm.DB
}

// Get returns a zero streak for users who never practised.
func (r *StreakRepository) Get(ctx context.Context, userID string) (*models.Streak, error) {
	var streak models.Streak
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&streak).Error
	if err != nil {
		if notFound(err) == ErrNotFound {
			return &models.Streak{UserID: userID}, nil
		}
		return nil, err
	}
	return &streak, nil
}

// Touch records activity at now and returns the updated streak.
func (r *StreakRepository) Touch(ctx context.Context, userID string, now time.Time) (*models.Streak, error) {
	var out models.Streak
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		streak := models.Streak{UserID: userID}
		if err := tx.Where("user_id = ?", userID).First(&streak).Error; err != nil && notFound(err) != ErrNotFound {
			return err
		}

		next, changed := practice.NextStreak(practice.StreakState{
			Current:        streak.CurrentStreak,
			Longest:        streak.LongestStreak,
			LastActiveDate: streak.LastActiveDate,
		}, now)
		if !changed {
			out = streak
			return nil
		}

		streak.CurrentStreak = next.Current
		streak.LongestStreak = next.Longest
		streak.LastActiveDate = next.LastActiveDate
		if err := tx.Save(&streak).Error; err != nil {
			return err
		}
		out = streak
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("touch streak: %w", err)
	}
	return &out, nil
}

type ProfileRepository struct {
	DB *gorm.DB
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, userID, fullName string) (*models.Profile, error) {
	profile := &models.Profile{UserID: userID, FullName: fullName}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return r.Get(ctx, userID)
}
