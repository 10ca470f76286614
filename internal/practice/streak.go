package practice

import "time"

const DateLayout = "2006-01-02"

type StreakState struct {
	Current        int
	Longest        int
	LastActiveDate string // DateLayout, empty before the first activity
}

// NextStreak applies one practice activity on the calendar day of now.
// It reports whether the state changed. A last active date in the future
// (clock skew) leaves the state untouched.
func NextStreak(s StreakState, now time.Time) (StreakState, bool) {
	today := civilDate(now)
	next := s

	last, err := time.Parse(DateLayout, s.LastActiveDate)
	switch {
	case s.LastActiveDate == "" || err != nil:
		next.Current = 1
	default:
		days := int(today.Sub(last).Hours() / 24)
		switch {
		case days <= 0:
			return s, false
		case days == 1:
			next.Current = s.Current + 1
		default:
			next.Current = 1
		}
	}

	next.LastActiveDate = today.Format(DateLayout)
	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	return next, true
}

// civilDate drops the clock and zone of t, keeping its calendar day.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
