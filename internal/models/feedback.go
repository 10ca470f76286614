package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RequestTypeGenerate   = "generate_questions"
	RequestTypeEvaluate   = "evaluate_answer"
	RequestTypeTranscribe = "transcribe_audio"
)

// AIFeedback stores a thumbs up/down on a generated question set or evaluation.
type AIFeedback struct {
	gorm.Model
	RequestID    string     `gorm:"uniqueIndex;not null" json:"request_id"`
	UserID       string     `gorm:"type:varchar(64);index" json:"user_id"`
	RequestType  string     `gorm:"not null" json:"request_type"`
	Prompt       string     `gorm:"type:text;not null" json:"prompt"`
	Response     string     `gorm:"type:text;not null" json:"response"`
	IsPositive   bool       `gorm:"not null" json:"is_positive"`
	ModelVersion string     `gorm:"not null" json:"model_version"`
	FeedbackAt   time.Time  `gorm:"not null" json:"feedback_at"`
	Exported     bool       `gorm:"not null;default:false;index" json:"exported"`
	ExportedAt   *time.Time `json:"exported_at"`
}

// one line of the JSONL export
type TrainingDataPoint struct {
	Contents []TrainingContent `json:"contents"`
}

type TrainingContent struct {
	Role  string         `json:"role"` // "user" or "model"
	Parts []TrainingPart `json:"parts"`
}

type TrainingPart struct {
	Text string `json:"text"`
}

// RequestContext is the prompt/response pair kept around until the user who
// made the request rates it.
type RequestContext struct {
	RequestID    string    `json:"request_id"`
	UserID       string    `json:"user_id"`
	RequestType  string    `json:"request_type"`
	Prompt       string    `json:"prompt"`
	Response     string    `json:"response"`
	ModelVersion string    `json:"model_version"`
	Timestamp    time.Time `json:"timestamp"`
}

type FeedbackStats struct {
	Total          int64            `json:"total"`
	Positive       int64            `json:"positive"`
	Negative       int64            `json:"negative"`
	Unexported     int64            `json:"unexported_positive"`
	ByType         map[string]int64 `json:"by_type"`
	CachedContexts int              `json:"cached_contexts"`
}
