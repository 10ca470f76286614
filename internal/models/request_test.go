package models

import (
	"encoding/base64"
	"strings"
	"testing"
)

func expectErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code %s but got nil", code)
	}
	resp, ok := err.(*ErrorResponse)
	if !ok {
		t.Fatalf("expected ErrorResponse, got %T", err)
	}
	if resp.Code != code {
		t.Fatalf("expected error code %s, got %s (%s)", code, resp.Code, resp.Message)
	}
}

func TestErrorResponse_Error(t *testing.T) {
	err := &ErrorResponse{Message: "failed"}
	if err.Error() != "failed" {
		t.Fatalf("expected message to be returned, got %s", err.Error())
	}
}

func TestDifficultiesList(t *testing.T) {
	if got := strings.Join(DifficultiesList(), ","); got != "Easy,Medium,Hard" {
		t.Fatalf("unexpected difficulties: %s", got)
	}
	for _, d := range DifficultiesList() {
		if !ValidDifficulties[d] {
			t.Fatalf("%s missing from ValidDifficulties", d)
		}
	}
}

func TestGenerateQuestionsRequestValidate(t *testing.T) {
	t.Run("missing job description", func(t *testing.T) {
		req := &GenerateQuestionsRequest{JobDescription: "   "}
		expectErrCode(t, req.Validate(), "missing_job_description")
	})

	t.Run("job description too long", func(t *testing.T) {
		req := &GenerateQuestionsRequest{JobDescription: strings.Repeat("a", MaxJobDescriptionLength+1)}
		expectErrCode(t, req.Validate(), "job_description_too_long")
	})

	t.Run("too many focused skills", func(t *testing.T) {
		skills := make([]string, MaxFocusedSkills+1)
		for i := range skills {
			skills[i] = "skill"
		}
		req := &GenerateQuestionsRequest{JobDescription: "Go developer", FocusedSkills: skills}
		expectErrCode(t, req.Validate(), "focused_skills_too_long")
	})

	t.Run("skill too long", func(t *testing.T) {
		req := &GenerateQuestionsRequest{
			JobDescription: "Go developer",
			FocusedSkills:  []string{strings.Repeat("k", MaxSkillLength+1)},
		}
		expectErrCode(t, req.Validate(), "focused_skills_too_long")
	})

	t.Run("blank skills are dropped and defaults applied", func(t *testing.T) {
		req := &GenerateQuestionsRequest{
			JobDescription: "  Backend engineer  ",
			FocusedSkills:  []string{" ", "Go", ""},
		}
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.JobDescription != "Backend engineer" {
			t.Fatalf("expected trimmed job description, got %q", req.JobDescription)
		}
		if len(req.FocusedSkills) != 1 || req.FocusedSkills[0] != "Go" {
			t.Fatalf("unexpected skills: %v", req.FocusedSkills)
		}
		if !req.Focused() {
			t.Fatalf("expected focused mode")
		}
		if strings.Join(req.InterviewTypes, ",") != "Technical,Behavioral" {
			t.Fatalf("unexpected default interview types: %v", req.InterviewTypes)
		}
	})
}

func TestEvaluateAnswerRequestValidate(t *testing.T) {
	t.Run("missing question", func(t *testing.T) {
		req := &EvaluateAnswerRequest{Answer: "x"}
		expectErrCode(t, req.Validate(), "missing_question")
	})

	t.Run("missing answer", func(t *testing.T) {
		req := &EvaluateAnswerRequest{Question: "Why Go?", Answer: " "}
		expectErrCode(t, req.Validate(), "missing_answer")
	})

	t.Run("question too long", func(t *testing.T) {
		req := &EvaluateAnswerRequest{Question: strings.Repeat("q", MaxQuestionLength+1), Answer: "x"}
		expectErrCode(t, req.Validate(), "question_too_long")
	})

	t.Run("answer too long", func(t *testing.T) {
		req := &EvaluateAnswerRequest{Question: "q", Answer: strings.Repeat("a", MaxAnswerLength+1)}
		expectErrCode(t, req.Validate(), "answer_too_long")
	})

	t.Run("category too long", func(t *testing.T) {
		req := &EvaluateAnswerRequest{Question: "q", Answer: "a", Category: strings.Repeat("c", MaxCategoryLength+1)}
		err := req.Validate()
		expectErrCode(t, err, "category_too_long")
		if !strings.Contains(err.Error(), "category") {
			t.Fatalf("expected message to name the field, got %q", err.Error())
		}
	})

	t.Run("limits are inclusive", func(t *testing.T) {
		req := &EvaluateAnswerRequest{
			Question: strings.Repeat("q", MaxQuestionLength),
			Answer:   strings.Repeat("a", MaxAnswerLength),
		}
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.Category != DefaultCategory {
			t.Fatalf("expected default category, got %q", req.Category)
		}
	})
}

func TestTranscribeAudioRequestValidate(t *testing.T) {
	t.Run("missing audio", func(t *testing.T) {
		req := &TranscribeAudioRequest{}
		expectErrCode(t, req.Validate(), "missing_audio")
	})

	t.Run("not base64", func(t *testing.T) {
		req := &TranscribeAudioRequest{Audio: "not base64!!"}
		expectErrCode(t, req.Validate(), "invalid_audio")
	})

	t.Run("oversized", func(t *testing.T) {
		req := &TranscribeAudioRequest{Audio: strings.Repeat("A", MaxAudioBase64Length+4)}
		expectErrCode(t, req.Validate(), "audio_too_long")
	})

	t.Run("bad mime type", func(t *testing.T) {
		req := &TranscribeAudioRequest{Audio: base64.StdEncoding.EncodeToString([]byte("abc")), MimeType: "text/plain"}
		expectErrCode(t, req.Validate(), "invalid_mime_type")
	})

	t.Run("valid", func(t *testing.T) {
		req := &TranscribeAudioRequest{Audio: base64.StdEncoding.EncodeToString([]byte("voice"))}
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(req.AudioBytes()) != "voice" {
			t.Fatalf("unexpected decoded audio %q", req.AudioBytes())
		}
		if req.MimeType != DefaultAudioMimeType {
			t.Fatalf("expected default mime type, got %s", req.MimeType)
		}
	})
}

func TestSessionRequestsValidate(t *testing.T) {
	expectErrCode(t, (&SubmitAnswerRequest{Answer: "  "}).Validate(), "missing_answer")
	expectErrCode(t, (&UpdatePracticedRequest{}).Validate(), "missing_is_practiced")
	expectErrCode(t, (&UpdateProfileRequest{FullName: " "}).Validate(), "missing_full_name")
	expectErrCode(t, (&SubmitFeedbackRequest{}).Validate(), "missing_is_positive")

	req := &SubmitMCQRequest{Selections: map[string]string{"q1": " b "}}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Selections["q1"] != "B" {
		t.Fatalf("expected normalised letter, got %q", req.Selections["q1"])
	}

	empty := &SubmitMCQRequest{}
	if err := empty.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty.Selections == nil {
		t.Fatalf("expected selections map to be initialised")
	}
}
