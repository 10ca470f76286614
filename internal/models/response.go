package models

// canonical generate-questions payload
type GenerateQuestionsResponse struct {
	SchemaVersion int                 `json:"schema_version"`
	RequestID     string              `json:"request_id"`
	SessionID     string              `json:"session_id,omitempty"`
	InterpretedJD string              `json:"interpreted_jd,omitempty"`
	OpenEnded     []OpenEndedQuestion `json:"open_ended"`
	MCQ           []MCQQuestion       `json:"mcq"`
	ATS           *ATSFeedback        `json:"ats,omitempty"`
	Metadata      GenerationMetadata  `json:"metadata"`
}

type OpenEndedQuestion struct {
	ID         string `json:"id,omitempty"`
	Category   string `json:"category"`
	Question   string `json:"question"`
	Difficulty string `json:"difficulty"`
}

type MCQQuestion struct {
	ID            string            `json:"id,omitempty"`
	Category      string            `json:"category"`
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
	Difficulty    string            `json:"difficulty"`
}

type ATSFeedback struct {
	Score          int      `json:"score"`
	SkillsFound    []string `json:"skills_found"`
	SkillsMissing  []string `json:"skills_missing"`
	Recommendation string   `json:"recommendation"`
}

type EvaluateAnswerResponse struct {
	ConfidenceScore int      `json:"confidence_score"`
	Feedback        string   `json:"feedback"`
	SampleAnswer    string   `json:"sample_answer"`
	WeakAreas       []string `json:"weak_areas"`
	ClarityNote     string   `json:"clarity_note,omitempty"`
	RequestID       string   `json:"request_id,omitempty"`
}

type TranscribeAudioResponse struct {
	Text      string `json:"text"`
	RequestID string `json:"request_id,omitempty"`
}

// raw model output plus bookkeeping
type GenerationResponse struct {
	Content  string
	Metadata GenerationMetadata
}

type GenerationMetadata struct {
	ProcessingTime int    `json:"processing_time_ms"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
}

type ResumeParseResponse struct {
	Text      string `json:"text"`
	MimeType  string `json:"mime_type"`
	ObjectKey string `json:"object_key,omitempty"`
}

type SessionSummary struct {
	ID              string   `json:"id"`
	JobDescription  string   `json:"job_description"`
	InterpretedJD   string   `json:"interpreted_jd"`
	ExperienceLevel string   `json:"experience_level"`
	InterviewTypes  []string `json:"interview_types"`
	Company         string   `json:"company"`
	ATSScore        *int     `json:"ats_score"`
	CreatedAt       string   `json:"created_at"`
	TotalQuestions  int      `json:"total_questions"`
	Practiced       int      `json:"practiced_questions"`
}

type SessionDetail struct {
	Session   Session    `json:"session"`
	Questions []Question `json:"questions"`
	Answers   []Answer   `json:"answers"`
	MCQResult *MCQResult `json:"mcq_result,omitempty"`
}

type MCQResultResponse struct {
	Result     MCQResult `json:"result"`
	Percentage int       `json:"percentage"`
	Answers    []string  `json:"answers"`
}

type Dashboard struct {
	DisplayName       string         `json:"display_name"`
	CurrentStreak     int            `json:"current_streak"`
	LongestStreak     int            `json:"longest_streak"`
	SessionCount      int64          `json:"session_count"`
	AverageATSScore   *float64       `json:"average_ats_score"`
	AverageConfidence *float64       `json:"average_confidence"`
	RecentConfidence  []int          `json:"recent_confidence"`
	CategoryCounts    map[string]int `json:"category_counts"`
	WeakestTopic      *string        `json:"weakest_topic"`
}

type AnswerResponse struct {
	Answer    Answer `json:"answer"`
	RequestID string `json:"request_id"`
}

// generic acknowledgement
type Resp struct {
	OK   bool   `json:"ok"`
	Info string `json:"info,omitempty"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"error"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
