package practice

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"
)

// SentinelAnswer is recorded when the timer runs out. It never matches an
// option letter so it always scores as wrong.
const SentinelAnswer = "X"

var (
	ErrEmptyQuiz       = errors.New("quiz has no questions")
	ErrQuizFinished    = errors.New("quiz is finished")
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrNotAnswered     = errors.New("current question has not been answered")
	ErrInvalidTotal    = errors.New("total must be positive")
)

type QuizQuestion struct {
	ID            string
	Category      string
	CorrectAnswer string
}

type QuizAnswer struct {
	QuestionID string
	Category   string
	Selected   string
	Correct    bool
}

type QuizResult struct {
	Total           int
	Correct         int
	Percentage      int
	ScorePercentage float64
	WeakestCategory string
	Answers         []QuizAnswer
}

// Quiz walks a fixed list of questions one at a time.
type Quiz struct {
	mu        sync.Mutex
	questions []QuizQuestion
	answers   []QuizAnswer
	current   int
	answered  bool
	timer     *Countdown
}

func NewQuiz(questions []QuizQuestion) (*Quiz, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuiz
	}
	return &Quiz{
		questions: append([]QuizQuestion(nil), questions...),
		answers:   make([]QuizAnswer, 0, len(questions)),
	}, nil
}

// Current returns the question awaiting an answer, or false once finished.
func (q *Quiz) Current() (QuizQuestion, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current >= len(q.questions) {
		return QuizQuestion{}, false
	}
	return q.questions[q.current], true
}

// Answer records the selection for the current question and stops any armed
// timer. It reports whether the selection was correct.
func (q *Quiz) Answer(letter string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.answerLocked(letter)
}

func (q *Quiz) answerLocked(letter string) (bool, error) {
	if q.current >= len(q.questions) {
		return false, ErrQuizFinished
	}
	if q.answered {
		return false, ErrAlreadyAnswered
	}

	question := q.questions[q.current]
	correct := letter != SentinelAnswer && letter == question.CorrectAnswer
	q.answers = append(q.answers, QuizAnswer{
		QuestionID: question.ID,
		Category:   question.Category,
		Selected:   letter,
		Correct:    correct,
	})
	q.answered = true

	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	return correct, nil
}

// Expire answers the current question with the sentinel. It is a no-op when
// the question was already answered.
func (q *Quiz) Expire() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.answered || q.current >= len(q.questions) {
		return
	}
	q.answerLocked(SentinelAnswer)
}

// Next moves past an answered question. It reports whether another
// question remains.
func (q *Quiz) Next() (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current >= len(q.questions) {
		return false, ErrQuizFinished
	}
	if !q.answered {
		return false, ErrNotAnswered
	}
	q.current++
	q.answered = false
	return q.current < len(q.questions), nil
}

// ArmTimer starts a countdown for the current question. On expiry the
// question is answered with the sentinel. A zero duration disables the timer.
func (q *Quiz) ArmTimer(ctx context.Context, total time.Duration, opts ...CountdownOption) (*Countdown, error) {
	if total == TimerOff {
		return nil, nil
	}
	cd, err := NewCountdown(total, q.Expire, opts...)
	if err != nil {
		return nil, err
	}

	q.mu.Lock()
	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = cd
	q.mu.Unlock()

	cd.Start(ctx)
	return cd, nil
}

// Result scores the answers recorded so far.
func (q *Quiz) Result() QuizResult {
	q.mu.Lock()
	answers := append([]QuizAnswer(nil), q.answers...)
	total := len(q.questions)
	timer := q.timer
	q.timer = nil
	q.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}

	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
	}

	pct, _ := Percentage(correct, total)
	return QuizResult{
		Total:           total,
		Correct:         correct,
		Percentage:      pct,
		ScorePercentage: float64(correct) * 100 / float64(total),
		WeakestCategory: WeakestCategory(answers),
		Answers:         answers,
	}
}

// Restart clears every answer and returns to the first question.
func (q *Quiz) Restart() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.answers = q.answers[:0]
	q.current = 0
	q.answered = false
}

// Percentage is round(100 * correct / total).
func Percentage(correct, total int) (int, error) {
	if total <= 0 {
		return 0, ErrInvalidTotal
	}
	return int(math.Round(float64(correct) * 100 / float64(total))), nil
}

// WeakestCategory returns the category with the most wrong answers. Ties go
// to the category whose first wrong answer came first. Empty when nothing
// was wrong.
func WeakestCategory(answers []QuizAnswer) string {
	counts := make(map[string]int)
	var order []string
	for _, a := range answers {
		if a.Correct {
			continue
		}
		if _, seen := counts[a.Category]; !seen {
			order = append(order, a.Category)
		}
		counts[a.Category]++
	}

	weakest, best := "", 0
	for _, category := range order {
		if counts[category] > best {
			weakest, best = category, counts[category]
		}
	}
	return weakest
}
