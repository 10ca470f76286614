package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func (r *QuestionRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Question, error) {
	questions := []models.Question{}
	err := r.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("position ASC").
		Find(&questions).Error
	return questions, err
}

// GetForUser resolves a question through its session so only the owner
// can see it.
func (r *QuestionRepository) GetForUser(ctx context.Context, userID, questionID string) (*models.Question, error) {
	var question models.Question
	err := r.DB.WithContext(ctx).
		Select("questions.*").
		Joins("JOIN sessions ON sessions.id = questions.session_id").
		Where("questions.id = ? AND sessions.user_id = ?", questionID, userID).
		First(&question).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &question, nil
}

func (r *QuestionRepository) SetPracticed(ctx context.Context, userID, questionID string, practiced bool) (*models.Question, error) {
	question, err := r.GetForUser(ctx, userID, questionID)
	if err != nil {
		return nil, err
	}
	err = r.DB.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", question.ID).
		Update("is_practiced", practiced).Error
	if err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	question.IsPracticed = practiced
	return question, nil
}

type categoryCount struct {
	Category string
	Count    int
}

// PracticedCategoryCounts counts the user's practiced questions per category.
func (r *QuestionRepository) PracticedCategoryCounts(ctx context.Context, userID string) (map[string]int, error) {
	var rows []categoryCount
	err := r.DB.WithContext(ctx).Model(&models.Question{}).
		Select("questions.category AS category, COUNT(*) AS count").
		Joins("JOIN sessions ON sessions.id = questions.session_id").
		Where("sessions.user_id = ? AND questions.is_practiced = ?", userID, true).
		Group("questions.category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}
