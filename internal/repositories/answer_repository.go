package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

type AnswerRepository struct {
	DB *gorm.DB
}

// Exists reports whether userID already answered questionID.
func (r *AnswerRepository) Exists(ctx context.Context, userID, questionID string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Answer{}).
		Where("question_id = ? AND user_id = ?", questionID, userID).
		Count(&count).Error
	return count > 0, err
}

// Create stores an answer once; a second answer for the same question and
// user returns ErrAnswerExists.
func (r *AnswerRepository) Create(ctx context.Context, answer *models.Answer) error {
	exists, err := r.Exists(ctx, answer.UserID, answer.QuestionID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAnswerExists
	}

	if err := r.DB.WithContext(ctx).Create(answer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAnswerExists
		}
		return fmt.Errorf("create answer: %w", err)
	}
	return nil
}

func (r *AnswerRepository) ListForSession(ctx context.Context, userID, sessionID string) ([]models.Answer, error) {
	answers := []models.Answer{}
	err := r.DB.WithContext(ctx).
		Select("answers.*").
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("questions.session_id = ? AND answers.user_id = ?", sessionID, userID).
		Order("answers.created_at ASC").
		Find(&answers).Error
	return answers, err
}

// RecentConfidence returns up to limit confidence scores, oldest first.
func (r *AnswerRepository) RecentConfidence(ctx context.Context, userID string, limit int) ([]int, error) {
	var scores []int
	err := r.DB.WithContext(ctx).Model(&models.Answer{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Pluck("confidence_score", &scores).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(scores)-1; i < j; i, j = i+1, j-1 {
		scores[i], scores[j] = scores[j], scores[i]
	}
	if scores == nil {
		scores = []int{}
	}
	return scores, nil
}

func (r *AnswerRepository) AverageConfidence(ctx context.Context, userID string) (*float64, error) {
	var avg sql.NullFloat64
	err := r.DB.WithContext(ctx).Model(&models.Answer{}).
		Select("AVG(confidence_score)").
		Where("user_id = ?", userID).
		Row().Scan(&avg)
	if err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}
