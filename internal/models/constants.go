package models

// current version of the generate-questions response schema
const SchemaVersion = 2

// input caps, counted in characters
const (
	MaxJobDescriptionLength = 20000
	MaxResumeTextLength     = 50000
	MaxQuestionLength       = 2000
	MaxAnswerLength         = 10000
	MaxCategoryLength       = 100
	MaxSkillLength          = 100
	MaxFocusedSkills        = 20
	MaxAudioBase64Length    = 10 * 1024 * 1024
	MaxResumeUploadBytes    = 5 * 1024 * 1024
)

// quotas requested from the model
const (
	FocusedOpenEndedCount = 20
	FocusedMCQCount       = 20
	FullMCQCount          = 20
)

// open-ended split for full mode
var FullOpenEndedSplit = map[string]int{
	"Behavioral":  8,
	"Technical":   16,
	"Situational": 8,
	"HR":          8,
}

const (
	QuestionTypeOpenEnded = "open_ended"
	QuestionTypeMCQ       = "mcq"
)

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// contains all valid difficulty labels
var ValidDifficulties = map[string]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

// lettered MCQ options, in display order
var OptionLetters = []string{"A", "B", "C", "D"}

// contains all experience levels offered by the setup form
var ExperienceLevels = map[string]bool{
	"Fresher":   true,
	"Mid-Level": true,
	"Senior":    true,
}

// used when the caller selects no interview types
var DefaultInterviewTypes = []string{"Technical", "Behavioral"}

const DefaultCategory = "General"

const DefaultAudioMimeType = "audio/webm"

func DifficultiesList() []string {
	return []string{DifficultyEasy, DifficultyMedium, DifficultyHard}
}
