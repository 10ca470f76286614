package models

// Prompt is a rendered template split into the system instruction and the
// user turn.
type Prompt struct {
	System string
	User   string
}

// Text flattens the prompt for providers and logs that take a single string.
func (p *Prompt) Text() string {
	if p.System == "" {
		return p.User
	}
	return p.System + "\n\n" + p.User
}
