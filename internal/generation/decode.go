// Package generation turns raw model output into the canonical response
// payloads. Older output shapes are converted by MigrateV1 before validation.
package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
	"github.com/akashvaddapelli/Resumeiq/internal/utils"
)

var (
	ErrMalformed   = errors.New("model output is not valid JSON")
	ErrNoQuestions = errors.New("model output contains no usable questions")
)

// Rejection records a question dropped during validation.
type Rejection struct {
	Kind   string // models.QuestionTypeOpenEnded or models.QuestionTypeMCQ
	Index  int
	Reason string
}

type rawOpenEnded struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Question   string `json:"question"`
	Difficulty string `json:"difficulty"`
}

type rawMCQ struct {
	ID            string          `json:"id"`
	Category      string          `json:"category"`
	Question      string          `json:"question"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer string          `json:"correct_answer"`
	Explanation   string          `json:"explanation"`
	Difficulty    string          `json:"difficulty"`
}

type rawV2 struct {
	SchemaVersion int            `json:"schema_version"`
	InterpretedJD string         `json:"interpreted_jd"`
	OpenEnded     []rawOpenEnded `json:"open_ended"`
	MCQ           []rawMCQ       `json:"mcq"`
	ATS           *rawATS        `json:"ats"`
}

type rawATS struct {
	Score          float64  `json:"score"`
	SkillsFound    []string `json:"skills_found"`
	SkillsMissing  []string `json:"skills_missing"`
	Recommendation string   `json:"recommendation"`
}

// DecodeQuestions parses the model's reply to a generate prompt. Invalid
// entries are dropped and reported. When focusedSkills is non-empty every
// question must belong to one of those skills and no ATS data is returned.
func DecodeQuestions(content string, focusedSkills []string) (*models.GenerateQuestionsResponse, []Rejection, error) {
	body := []byte(utils.ExtractJSONObject(content))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var raw rawV2
	if isLegacy(fields) {
		migrated, err := MigrateV1(body)
		if err != nil {
			return nil, nil, err
		}
		raw = *migrated
	} else if err := json.Unmarshal(body, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	resp := &models.GenerateQuestionsResponse{
		SchemaVersion: models.SchemaVersion,
		InterpretedJD: strings.TrimSpace(raw.InterpretedJD),
		OpenEnded:     make([]models.OpenEndedQuestion, 0, len(raw.OpenEnded)),
		MCQ:           make([]models.MCQQuestion, 0, len(raw.MCQ)),
	}

	skills := newSkillSet(focusedSkills)

	var rejected []Rejection
	for i, q := range raw.OpenEnded {
		text := strings.TrimSpace(q.Question)
		if text == "" {
			rejected = append(rejected, Rejection{Kind: models.QuestionTypeOpenEnded, Index: i, Reason: "empty question text"})
			continue
		}
		category, reason := skills.category(q.Category)
		if reason != "" {
			rejected = append(rejected, Rejection{Kind: models.QuestionTypeOpenEnded, Index: i, Reason: reason})
			continue
		}
		resp.OpenEnded = append(resp.OpenEnded, models.OpenEndedQuestion{
			ID:         idOr(q.ID, "q", len(resp.OpenEnded)+1),
			Category:   category,
			Question:   text,
			Difficulty: utils.NormalizeDifficulty(q.Difficulty),
		})
	}

	for i, q := range raw.MCQ {
		mcq, reason := validateMCQ(q)
		if reason == "" {
			mcq.Category, reason = skills.category(q.Category)
		}
		if reason != "" {
			rejected = append(rejected, Rejection{Kind: models.QuestionTypeMCQ, Index: i, Reason: reason})
			continue
		}
		mcq.ID = idOr(q.ID, "m", len(resp.MCQ)+1)
		resp.MCQ = append(resp.MCQ, mcq)
	}

	if skills.focused() {
		resp.InterpretedJD = ""
	} else if raw.ATS != nil {
		resp.ATS = &models.ATSFeedback{
			Score:          int(math.Round(raw.ATS.Score)),
			SkillsFound:    nonNil(raw.ATS.SkillsFound),
			SkillsMissing:  nonNil(raw.ATS.SkillsMissing),
			Recommendation: strings.TrimSpace(raw.ATS.Recommendation),
		}
	}

	if len(resp.OpenEnded) == 0 && len(resp.MCQ) == 0 {
		return nil, rejected, ErrNoQuestions
	}
	return resp, rejected, nil
}

func validateMCQ(q rawMCQ) (models.MCQQuestion, string) {
	text := strings.TrimSpace(q.Question)
	if text == "" {
		return models.MCQQuestion{}, "empty question text"
	}

	options, err := decodeOptions(q.Options)
	if err != nil {
		return models.MCQQuestion{}, err.Error()
	}

	correct := utils.NormalizeLetter(q.CorrectAnswer)
	if _, ok := options[correct]; !ok {
		return models.MCQQuestion{}, fmt.Sprintf("correct answer %q is not one of A-D", q.CorrectAnswer)
	}

	return models.MCQQuestion{
		Category:      categoryOr(q.Category),
		Question:      text,
		Options:       options,
		CorrectAnswer: correct,
		Explanation:   strings.TrimSpace(q.Explanation),
		Difficulty:    utils.NormalizeDifficulty(q.Difficulty),
	}, ""
}

// decodeOptions accepts {"A": "...", ...} or a four element array and
// requires exactly the letters A-D, each non-empty.
func decodeOptions(raw json.RawMessage) (map[string]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.New("missing options")
	}

	byLetter := map[string]string{}
	var asMap map[string]string
	var asList []string
	switch {
	case json.Unmarshal(raw, &asMap) == nil:
		for k, v := range asMap {
			byLetter[utils.NormalizeLetter(k)] = strings.TrimSpace(v)
		}
	case json.Unmarshal(raw, &asList) == nil:
		if len(asList) != len(models.OptionLetters) {
			return nil, fmt.Errorf("expected 4 options, got %d", len(asList))
		}
		for i, v := range asList {
			byLetter[models.OptionLetters[i]] = strings.TrimSpace(v)
		}
	default:
		return nil, errors.New("options are neither an object nor a list")
	}

	if len(byLetter) != len(models.OptionLetters) {
		return nil, fmt.Errorf("expected 4 options, got %d", len(byLetter))
	}
	for _, letter := range models.OptionLetters {
		if byLetter[letter] == "" {
			return nil, fmt.Errorf("option %s is missing or empty", letter)
		}
	}
	return byLetter, nil
}

func idOr(id, prefix string, n int) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return fmt.Sprintf("%s%d", prefix, n)
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func categoryOr(category string) string {
	if c := utils.NormalizeCategory(category); c != "" {
		return c
	}
	return models.DefaultCategory
}

// skillSet maps a lower-cased skill to the spelling the user asked for.
type skillSet map[string]string

func newSkillSet(skills []string) skillSet {
	set := skillSet{}
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			set[strings.ToLower(s)] = s
		}
	}
	return set
}

func (s skillSet) focused() bool {
	return len(s) > 0
}

// category resolves a question's category. Outside focused mode any
// category is accepted. In focused mode it must name a requested skill, and
// a blank category is only filled in when a single skill was requested.
func (s skillSet) category(raw string) (string, string) {
	if !s.focused() {
		return categoryOr(raw), ""
	}
	c := utils.NormalizeCategory(raw)
	if c == "" && len(s) == 1 {
		for _, skill := range s {
			return skill, ""
		}
	}
	if skill, ok := s[strings.ToLower(c)]; ok {
		return skill, ""
	}
	return "", fmt.Sprintf("category %q is not a requested skill", raw)
}

type rawEvaluation struct {
	ConfidenceScore float64  `json:"confidence_score"`
	Feedback        string   `json:"feedback"`
	SampleAnswer    string   `json:"sample_answer"`
	WeakAreas       []string `json:"weak_areas"`
	ClarityNote     string   `json:"clarity_note"`
}

// DecodeEvaluation parses the model's reply to an evaluate prompt.
func DecodeEvaluation(content string, isVoice bool) (*models.EvaluateAnswerResponse, error) {
	var raw rawEvaluation
	if err := json.Unmarshal([]byte(utils.ExtractJSONObject(content)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	resp := &models.EvaluateAnswerResponse{
		ConfidenceScore: int(math.Round(raw.ConfidenceScore)),
		Feedback:        strings.TrimSpace(raw.Feedback),
		SampleAnswer:    strings.TrimSpace(raw.SampleAnswer),
		WeakAreas:       nonNil(raw.WeakAreas),
	}
	if isVoice {
		resp.ClarityNote = strings.TrimSpace(raw.ClarityNote)
	}
	return resp, nil
}
