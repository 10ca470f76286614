package prompts

import "github.com/akashvaddapelli/Resumeiq/internal/models"

// GenerateData feeds the generate_questions templates.
type GenerateData struct {
	JobDescription string
	ResumeText     string
	Experience     string
	InterviewTypes []string
	Company        string
	FocusedSkills  []string

	Behavioral     int
	Technical      int
	Situational    int
	HR             int
	OpenEndedCount int
	MCQCount       int
}

// NewGenerateData picks the variant and fills in the question quotas.
func NewGenerateData(req *models.GenerateQuestionsRequest) (string, GenerateData) {
	data := GenerateData{
		JobDescription: req.JobDescription,
		ResumeText:     req.ResumeText,
		Experience:     req.Experience,
		InterviewTypes: req.InterviewTypes,
		Company:        req.Company,
		FocusedSkills:  req.FocusedSkills,
	}

	if req.Focused() {
		data.OpenEndedCount = models.FocusedOpenEndedCount
		data.MCQCount = models.FocusedMCQCount
		return VariantFocused, data
	}

	data.Behavioral = models.FullOpenEndedSplit["Behavioral"]
	data.Technical = models.FullOpenEndedSplit["Technical"]
	data.Situational = models.FullOpenEndedSplit["Situational"]
	data.HR = models.FullOpenEndedSplit["HR"]
	data.OpenEndedCount = data.Behavioral + data.Technical + data.Situational + data.HR
	data.MCQCount = models.FullMCQCount
	return VariantFull, data
}

type EvaluateData struct {
	Question string
	Answer   string
	Category string
}

func NewEvaluateData(req *models.EvaluateAnswerRequest) (string, EvaluateData) {
	variant := VariantTyped
	if req.IsVoice {
		variant = VariantVoice
	}
	return variant, EvaluateData{
		Question: req.Question,
		Answer:   req.Answer,
		Category: req.Category,
	}
}

type TranscribeData struct {
	MimeType string
}
