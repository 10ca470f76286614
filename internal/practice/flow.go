package practice

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

type State string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateTranscribing State = "transcribing"
	StateAnswering    State = "answering"
	StateSubmitting   State = "submitting"
	StateReviewed     State = "reviewed"
)

type Event string

const (
	EventStartRecording   Event = "start_recording"
	EventStopRecording    Event = "stop_recording"
	EventCancelRecording  Event = "cancel_recording"
	EventTranscriptReady  Event = "transcript_ready"
	EventTranscriptFailed Event = "transcript_failed"
	EventType             Event = "type"
	EventSubmit           Event = "submit"
	EventEvaluated        Event = "evaluated"
	EventEvaluationFailed Event = "evaluation_failed"
	EventNext             Event = "next"
)

var ErrEmptyAnswer = errors.New("answer text is empty")

// TransitionError is returned for an event the current state does not accept.
type TransitionError struct {
	From  State
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Event, e.From)
}

var transitions = map[State]map[Event]State{
	StateIdle: {
		EventStartRecording: StateRecording,
		EventType:           StateAnswering,
	},
	StateRecording: {
		EventStopRecording:   StateTranscribing,
		EventCancelRecording: StateIdle,
	},
	StateTranscribing: {
		EventTranscriptReady:  StateAnswering,
		EventTranscriptFailed: StateAnswering,
	},
	StateAnswering: {
		EventStartRecording: StateRecording,
		EventType:           StateAnswering,
		EventSubmit:         StateSubmitting,
	},
	StateSubmitting: {
		EventEvaluated:        StateReviewed,
		EventEvaluationFailed: StateAnswering,
	},
	StateReviewed: {
		EventNext: StateIdle,
	},
}

// Flow is the answer lifecycle of one practice question. Transcripts are
// appended to the typed text; the timer never submits on its own.
type Flow struct {
	mu    sync.Mutex
	state State
	text  string
	voice bool
}

func NewFlow() *Flow {
	return &Flow{state: StateIdle}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

// IsVoice reports whether any part of the answer came from a recording.
func (f *Flow) IsVoice() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.voice
}

func (f *Flow) fire(ev Event) error {
	next, ok := transitions[f.state][ev]
	if !ok {
		return &TransitionError{From: f.state, Event: ev}
	}
	f.state = next
	return nil
}

func (f *Flow) StartRecording() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fire(EventStartRecording)
}

func (f *Flow) StopRecording() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fire(EventStopRecording)
}

func (f *Flow) CancelRecording() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fire(EventCancelRecording)
}

// TranscriptReady appends transcript to the answer text.
func (f *Flow) TranscriptReady(transcript string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fire(EventTranscriptReady); err != nil {
		return err
	}
	if t := strings.TrimSpace(transcript); t != "" {
		if f.text != "" {
			f.text += " "
		}
		f.text += t
		f.voice = true
	}
	return nil
}

// TranscriptFailed keeps whatever was typed so the user can carry on.
func (f *Flow) TranscriptFailed() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fire(EventTranscriptFailed)
}

// Type replaces the answer text.
func (f *Flow) Type(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fire(EventType); err != nil {
		return err
	}
	f.text = text
	return nil
}

// Submit is only accepted while answering with non-blank text.
func (f *Flow) Submit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateAnswering && strings.TrimSpace(f.text) == "" {
		return ErrEmptyAnswer
	}
	return f.fire(EventSubmit)
}

func (f *Flow) Evaluated() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fire(EventEvaluated)
}

// EvaluationFailed returns to Answering with the text intact for a manual retry.
func (f *Flow) EvaluationFailed() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fire(EventEvaluationFailed)
}

// Next clears the answer for the following question.
func (f *Flow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fire(EventNext); err != nil {
		return err
	}
	f.text = ""
	f.voice = false
	return nil
}
