package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

// v1 payloads: one mixed "questions" list plus "atsScore", either as an
// object or as a bare number next to matchedKeywords/missingKeywords.
type rawV1 struct {
	InterpretedJD   string          `json:"interpreted_jd"`
	InterpretedJob  string          `json:"interpretedJd"`
	Questions       []rawV1Question `json:"questions"`
	MCQs            []rawV1Question `json:"mcqs"`
	ATSScore        json.RawMessage `json:"atsScore"`
	MatchedKeywords []string        `json:"matchedKeywords"`
	MissingKeywords []string        `json:"missingKeywords"`
	Recommendation  string          `json:"recommendation"`
}

type rawV1Question struct {
	ID            string          `json:"id"`
	Category      string          `json:"category"`
	Question      string          `json:"question"`
	Difficulty    string          `json:"difficulty"`
	Type          string          `json:"type"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer string          `json:"correct_answer"`
	CorrectCamel  string          `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
}

var legacyKeys = []string{"questions", "atsScore", "matchedKeywords", "missingKeywords", "mcqs"}

func isLegacy(fields map[string]json.RawMessage) bool {
	if _, ok := fields["open_ended"]; ok {
		return false
	}
	if _, ok := fields["mcq"]; ok {
		return false
	}
	for _, key := range legacyKeys {
		if _, ok := fields[key]; ok {
			return true
		}
	}
	return false
}

// MigrateV1 converts a legacy payload into the v2 layout. Entries with
// options become MCQs; everything else is open-ended.
func MigrateV1(body []byte) (*rawV2, error) {
	var v1 rawV1
	if err := json.Unmarshal(body, &v1); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	out := &rawV2{
		SchemaVersion: models.SchemaVersion,
		InterpretedJD: v1.InterpretedJD,
	}
	if out.InterpretedJD == "" {
		out.InterpretedJD = v1.InterpretedJob
	}

	all := append(append([]rawV1Question{}, v1.Questions...), v1.MCQs...)
	for _, q := range all {
		if isLegacyMCQ(q) {
			correct := q.CorrectAnswer
			if correct == "" {
				correct = q.CorrectCamel
			}
			out.MCQ = append(out.MCQ, rawMCQ{
				ID:            q.ID,
				Category:      q.Category,
				Question:      q.Question,
				Options:       q.Options,
				CorrectAnswer: correct,
				Explanation:   q.Explanation,
				Difficulty:    q.Difficulty,
			})
			continue
		}
		out.OpenEnded = append(out.OpenEnded, rawOpenEnded{
			ID:         q.ID,
			Category:   q.Category,
			Question:   q.Question,
			Difficulty: q.Difficulty,
		})
	}

	ats, err := migrateATS(v1)
	if err != nil {
		return nil, err
	}
	out.ATS = ats
	return out, nil
}

func isLegacyMCQ(q rawV1Question) bool {
	t := strings.ToLower(strings.TrimSpace(q.Type))
	if t == "mcq" || t == "multiple_choice" || t == "multiple-choice" {
		return true
	}
	return len(q.Options) > 0 && string(q.Options) != "null"
}

func migrateATS(v1 rawV1) (*rawATS, error) {
	if len(v1.ATSScore) == 0 || string(v1.ATSScore) == "null" {
		return nil, nil
	}

	var obj rawATS
	if err := json.Unmarshal(v1.ATSScore, &obj); err == nil {
		return &obj, nil
	}

	var score float64
	if err := json.Unmarshal(v1.ATSScore, &score); err != nil {
		return nil, fmt.Errorf("%w: atsScore: %v", ErrMalformed, err)
	}
	return &rawATS{
		Score:          score,
		SkillsFound:    v1.MatchedKeywords,
		SkillsMissing:  v1.MissingKeywords,
		Recommendation: v1.Recommendation,
	}, nil
}
