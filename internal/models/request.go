package models

import (
	"encoding/base64"
	"strings"
)

type GenerateQuestionsRequest struct {
	JobDescription string   `json:"jobDescription" validate:"required,max=20000"`
	ResumeText     string   `json:"resumeText" validate:"max=50000"`
	Experience     string   `json:"experience" validate:"max=50"`
	InterviewTypes []string `json:"interviewTypes" validate:"max=10,dive,max=50"`
	Company        string   `json:"company" validate:"max=200"`
	FocusedSkills  []string `json:"focusedSkills" validate:"max=20,dive,required,max=100"`

	// assigned by the server
	RequestID string `json:"-"`
}

// implements the Validator interface
func (r *GenerateQuestionsRequest) Validate() error {
	r.JobDescription = strings.TrimSpace(r.JobDescription)
	r.Experience = strings.TrimSpace(r.Experience)
	r.Company = strings.TrimSpace(r.Company)

	skills := r.FocusedSkills[:0]
	for _, s := range r.FocusedSkills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	r.FocusedSkills = skills

	if err := validateStruct(r); err != nil {
		return err
	}

	if len(r.InterviewTypes) == 0 {
		r.InterviewTypes = append([]string(nil), DefaultInterviewTypes...)
	}
	return nil
}

// Focused reports whether the request targets specific skills only.
func (r *GenerateQuestionsRequest) Focused() bool {
	return len(r.FocusedSkills) > 0
}

type EvaluateAnswerRequest struct {
	Question  string `json:"question" validate:"required,max=2000"`
	Answer    string `json:"answer" validate:"required,max=10000"`
	Category  string `json:"category" validate:"max=100"`
	IsVoice   bool   `json:"isVoice"`
	RequestID string `json:"-"`
}

func (r *EvaluateAnswerRequest) Validate() error {
	r.Question = strings.TrimSpace(r.Question)
	r.Answer = strings.TrimSpace(r.Answer)
	r.Category = strings.TrimSpace(r.Category)

	if err := validateStruct(r); err != nil {
		return err
	}
	if r.Category == "" {
		r.Category = DefaultCategory
	}
	return nil
}

type TranscribeAudioRequest struct {
	Audio     string `json:"audio" validate:"required,max=10485760"`
	MimeType  string `json:"mimeType" validate:"omitempty,max=100,startswith=audio/"`
	RequestID string `json:"-"`

	decoded []byte
}

func (r *TranscribeAudioRequest) Validate() error {
	r.MimeType = strings.TrimSpace(r.MimeType)

	if err := validateStruct(r); err != nil {
		return err
	}

	data, err := base64.StdEncoding.DecodeString(r.Audio)
	if err != nil || len(data) == 0 {
		return &ErrorResponse{
			Code:    "invalid_audio",
			Message: "audio must be a non-empty base64 string",
		}
	}
	r.decoded = data

	if r.MimeType == "" {
		r.MimeType = DefaultAudioMimeType
	}
	return nil
}

// AudioBytes returns the decoded audio; only populated after Validate.
func (r *TranscribeAudioRequest) AudioBytes() []byte {
	return r.decoded
}

type SubmitAnswerRequest struct {
	Answer  string `json:"answer" validate:"required,max=10000"`
	IsVoice bool   `json:"isVoice"`
}

func (r *SubmitAnswerRequest) Validate() error {
	r.Answer = strings.TrimSpace(r.Answer)
	return validateStruct(r)
}

type UpdatePracticedRequest struct {
	IsPracticed *bool `json:"is_practiced" validate:"required"`
}

func (r *UpdatePracticedRequest) Validate() error {
	return validateStruct(r)
}

type SubmitMCQRequest struct {
	Selections map[string]string `json:"selections" validate:"max=200,dive,keys,required,max=64,endkeys,max=1"`
}

func (r *SubmitMCQRequest) Validate() error {
	if r.Selections == nil {
		r.Selections = map[string]string{}
	}
	for id, letter := range r.Selections {
		r.Selections[id] = strings.ToUpper(strings.TrimSpace(letter))
	}
	return validateStruct(r)
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"required,max=100"`
}

func (r *UpdateProfileRequest) Validate() error {
	r.FullName = strings.TrimSpace(r.FullName)
	return validateStruct(r)
}

type SubmitFeedbackRequest struct {
	IsPositive *bool `json:"is_positive" validate:"required"`
}

func (r *SubmitFeedbackRequest) Validate() error {
	return validateStruct(r)
}
