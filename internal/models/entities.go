package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is one generation run: the inputs and the ATS verdict.
type Session struct {
	ID              string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID          string       `gorm:"type:varchar(64);not null;index" json:"user_id"`
	JobDescription  string       `gorm:"type:text;not null" json:"job_description"`
	InterpretedJD   string       `gorm:"type:text" json:"interpreted_jd"`
	ResumeText      string       `gorm:"type:text" json:"resume_text,omitempty"`
	ExperienceLevel string       `json:"experience_level"`
	InterviewTypes  []string     `gorm:"type:text;serializer:json" json:"interview_types"`
	Company         string       `json:"company"`
	FocusedSkills   []string     `gorm:"type:text;serializer:json" json:"focused_skills,omitempty"`
	ATSScore        *int         `json:"ats_score"`
	ATSFeedback     *ATSFeedback `gorm:"type:text;serializer:json" json:"ats_feedback,omitempty"`
	SchemaVersion   int          `gorm:"not null;default:2" json:"schema_version"`
	CreatedAt       time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

type Question struct {
	ID            string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SessionID     string            `gorm:"type:varchar(36);not null;index" json:"session_id"`
	Position      int               `gorm:"not null" json:"position"`
	Category      string            `gorm:"not null" json:"category"`
	QuestionText  string            `gorm:"type:text;not null" json:"question_text"`
	Difficulty    string            `json:"difficulty"`
	QuestionType  string            `gorm:"type:varchar(16);not null;index" json:"question_type"`
	Options       map[string]string `gorm:"type:text;serializer:json" json:"options,omitempty"`
	CorrectAnswer string            `json:"correct_answer,omitempty"`
	Explanation   string            `gorm:"type:text" json:"explanation,omitempty"`
	IsPracticed   bool              `gorm:"not null;default:false" json:"is_practiced"`
	CreatedAt     time.Time         `json:"created_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// Answer is written once per question and user.
type Answer struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	QuestionID      string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_answer_question_user" json:"question_id"`
	UserID          string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_answer_question_user" json:"user_id"`
	AnswerText      string    `gorm:"type:text;not null" json:"answer_text"`
	ConfidenceScore int       `json:"confidence_score"`
	FeedbackText    string    `gorm:"type:text" json:"feedback_text"`
	SampleAnswer    string    `gorm:"type:text" json:"sample_answer"`
	WeakAreas       []string  `gorm:"type:text;serializer:json" json:"weak_areas"`
	ClarityNote     string    `gorm:"type:text" json:"clarity_note,omitempty"`
	IsVoice         bool      `gorm:"not null;default:false" json:"is_voice"`
	CreatedAt       time.Time `json:"created_at"`
}

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type MCQResult struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SessionID       string    `gorm:"type:varchar(36);not null;index" json:"session_id"`
	UserID          string    `gorm:"type:varchar(64);not null;index" json:"user_id"`
	TotalQuestions  int       `gorm:"not null" json:"total_questions"`
	CorrectAnswers  int       `gorm:"not null" json:"correct_answers"`
	ScorePercentage float64   `gorm:"not null" json:"score_percentage"`
	WeakestTopic    *string   `json:"weakest_topic"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

func (m *MCQResult) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type Streak struct {
	UserID         string    `gorm:"primaryKey;type:varchar(64)" json:"user_id"`
	CurrentStreak  int       `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak  int       `gorm:"not null;default:0" json:"longest_streak"`
	LastActiveDate string    `gorm:"type:varchar(10)" json:"last_active_date"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Profile struct {
	UserID    string    `gorm:"primaryKey;type:varchar(64)" json:"user_id"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AllModels lists every table owned by the service, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&Session{},
		&Question{},
		&Answer{},
		&MCQResult{},
		&Streak{},
		&Profile{},
		&AIFeedback{},
	}
}
