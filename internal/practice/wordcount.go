// Package practice holds the client-independent rules of a practice run:
// answer word counts, quiz scoring, countdowns, streaks and the answer flow.
package practice

import "strings"

// WordCount returns the number of maximal non-whitespace runs in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
