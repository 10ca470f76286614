// Package report renders a practice session as a PDF.
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mandolyte/mdtopdf"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

// shown for users without a profile name
const DefaultUserName = "Candidate"

type Input struct {
	UserName    string
	GeneratedAt time.Time
	Session     models.Session
	Questions   []models.Question
	Answers     []models.Answer
	MCQResult   *models.MCQResult
}

// Filename is the download name offered for a report generated at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("Resumiq-Session-%s.pdf", t.Format("2006-01-02"))
}

// BuildMarkdown lays out the report: ATS verdict, open-ended questions
// grouped by category with the user's answers, MCQ results, then a summary
// of weak areas.
func BuildMarkdown(in Input) string {
	var b strings.Builder

	answers := make(map[string]models.Answer, len(in.Answers))
	for _, a := range in.Answers {
		answers[a.QuestionID] = a
	}

	role := in.Session.InterpretedJD
	if role == "" {
		role = firstLine(in.Session.JobDescription)
	}

	b.WriteString("# Resumiq Session Report\n\n")
	name := strings.TrimSpace(in.UserName)
	if name == "" {
		name = DefaultUserName
	}
	fmt.Fprintf(&b, "%s, %s\n\n", escape(name), in.GeneratedAt.Format("January 2, 2006"))
	fmt.Fprintf(&b, "Role: %s\n\n", escape(role))

	if in.Session.ATSScore != nil {
		fmt.Fprintf(&b, "## ATS Match Score: %d/100\n\n", *in.Session.ATSScore)
	}
	if ats := in.Session.ATSFeedback; ats != nil {
		if len(ats.SkillsFound) > 0 {
			fmt.Fprintf(&b, "**Skills Found:** %s\n\n", escape(strings.Join(ats.SkillsFound, ", ")))
		}
		if len(ats.SkillsMissing) > 0 {
			fmt.Fprintf(&b, "**Skills to Add:** %s\n\n", escape(strings.Join(ats.SkillsMissing, ", ")))
		}
		if ats.Recommendation != "" {
			fmt.Fprintf(&b, "**Recommendation:** %s\n\n", escape(ats.Recommendation))
		}
	}

	var openEnded, mcqs []models.Question
	for _, q := range in.Questions {
		if q.QuestionType == models.QuestionTypeMCQ {
			mcqs = append(mcqs, q)
		} else {
			openEnded = append(openEnded, q)
		}
	}

	var weakAreas []string
	seenWeak := map[string]bool{}

	if len(openEnded) > 0 {
		b.WriteString("---\n\n## Interview Questions\n\n")
		for _, category := range categoriesInOrder(openEnded) {
			fmt.Fprintf(&b, "### %s\n\n", escape(category))
			n := 0
			for _, q := range openEnded {
				if q.Category != category {
					continue
				}
				n++
				fmt.Fprintf(&b, "%d. **[%s]** %s\n\n", n, q.Difficulty, escape(q.QuestionText))

				a, ok := answers[q.ID]
				if !ok {
					continue
				}
				fmt.Fprintf(&b, "> Your Answer: %s\n>\n", escape(a.AnswerText))
				fmt.Fprintf(&b, "> Confidence: %d/100\n", a.ConfidenceScore)
				if a.FeedbackText != "" {
					fmt.Fprintf(&b, ">\n> Feedback: %s\n", escape(a.FeedbackText))
				}
				if a.SampleAnswer != "" {
					fmt.Fprintf(&b, ">\n> Strong Answer: %s\n", escape(a.SampleAnswer))
				}
				if len(a.WeakAreas) > 0 {
					fmt.Fprintf(&b, ">\n> Weak Areas: %s\n", escape(strings.Join(a.WeakAreas, ", ")))
				}
				b.WriteString("\n")

				for _, w := range a.WeakAreas {
					if !seenWeak[w] {
						seenWeak[w] = true
						weakAreas = append(weakAreas, w)
					}
				}
			}
		}
	}

	if len(mcqs) > 0 {
		b.WriteString("---\n\n## MCQ Quiz Results\n\n")
		if r := in.MCQResult; r != nil {
			fmt.Fprintf(&b, "**Score: %d/%d (%d%%)**\n\n", r.CorrectAnswers, r.TotalQuestions, int(math.Round(r.ScorePercentage)))
			if r.WeakestTopic != nil {
				fmt.Fprintf(&b, "Weakest Topic: %s\n\n", escape(*r.WeakestTopic))
			}
		}
		for i, q := range mcqs {
			fmt.Fprintf(&b, "%d. %s\n\n", i+1, escape(q.QuestionText))
			for _, letter := range models.OptionLetters {
				text, ok := q.Options[letter]
				if !ok || text == "" {
					continue
				}
				if letter == q.CorrectAnswer {
					fmt.Fprintf(&b, "    - **%s) %s (correct)**\n", letter, escape(text))
				} else {
					fmt.Fprintf(&b, "    - %s) %s\n", letter, escape(text))
				}
			}
			b.WriteString("\n")
		}
	}

	if len(weakAreas) > 0 {
		b.WriteString("---\n\n## Weak Areas Summary\n\n")
		for _, w := range weakAreas {
			fmt.Fprintf(&b, "- %s\n", escape(w))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderPDF converts markdown to PDF bytes through a scratch directory.
func RenderPDF(markdown string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "resumiq-report-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	pdfPath := filepath.Join(dir, "report.pdf")
	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process([]byte(latin1(markdown))); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered pdf: %w", err)
	}
	return data, nil
}

func categoriesInOrder(questions []models.Question) []string {
	seen := map[string]bool{}
	var out []string
	for _, q := range questions {
		if !seen[q.Category] {
			seen[q.Category] = true
			out = append(out, q.Category)
		}
	}
	return out
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len([]rune(s)) > 120 {
		s = string([]rune(s)[:120]) + "..."
	}
	return s
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"\n", " ",
)

func escape(s string) string {
	return markdownEscaper.Replace(strings.TrimSpace(s))
}

// the PDF core fonts only cover Latin-1
var typographic = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
	"–", "-", "—", "-",
	"•", "-", "…", "...",
)

func latin1(s string) string {
	s = typographic.Replace(s)
	return strings.Map(func(r rune) rune {
		if r > 0xff {
			return '?'
		}
		return r
	}, s)
}
