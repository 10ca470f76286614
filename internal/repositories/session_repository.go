package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

type SessionRepository struct {
	DB *gorm.DB
}

// Create stores a session and its questions in one transaction. Question
// session IDs are filled in from the created session.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session, questions []models.Question) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		if len(questions) == 0 {
			return nil
		}
		for i := range questions {
			questions[i].SessionID = session.ID
		}
		if err := tx.Create(&questions).Error; err != nil {
			return fmt.Errorf("create questions: %w", err)
		}
		return nil
	})
}

// GetForUser returns the session only when userID owns it.
func (r *SessionRepository) GetForUser(ctx context.Context, userID, sessionID string) (*models.Session, error) {
	var session models.Session
	err := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

type questionCounts struct {
	SessionID string
	Total     int
	Practiced int
}

// ListSummaries returns the user's sessions newest first with their total
// and practiced question counts.
func (r *SessionRepository) ListSummaries(ctx context.Context, userID string) ([]models.SessionSummary, error) {
	db := r.DB.WithContext(ctx)

	var sessions []models.Session
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	summaries := make([]models.SessionSummary, 0, len(sessions))
	if len(sessions) == 0 {
		return summaries, nil
	}

	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}

	var counts []questionCounts
	err := db.Model(&models.Question{}).
		Select("session_id, COUNT(*) AS total, SUM(CASE WHEN is_practiced THEN 1 ELSE 0 END) AS practiced").
		Where("session_id IN ?", ids).
		Group("session_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}

	bySession := make(map[string]questionCounts, len(counts))
	for _, c := range counts {
		bySession[c.SessionID] = c
	}

	for _, s := range sessions {
		c := bySession[s.ID]
		summaries = append(summaries, models.SessionSummary{
			ID:              s.ID,
			JobDescription:  s.JobDescription,
			InterpretedJD:   s.InterpretedJD,
			ExperienceLevel: s.ExperienceLevel,
			InterviewTypes:  s.InterviewTypes,
			Company:         s.Company,
			ATSScore:        s.ATSScore,
			CreatedAt:       s.CreatedAt.UTC().Format(time.RFC3339),
			TotalQuestions:  c.Total,
			Practiced:       c.Practiced,
		})
	}
	return summaries, nil
}

func (r *SessionRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Session{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// AverageATS is nil when the user has no scored session.
func (r *SessionRepository) AverageATS(ctx context.Context, userID string) (*float64, error) {
	var avg sql.NullFloat64
	err := r.DB.WithContext(ctx).Model(&models.Session{}).
		Select("AVG(ats_score)").
		Where("user_id = ? AND ats_score IS NOT NULL", userID).
		Row().Scan(&avg)
	if err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}
