package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"timed-quiz-platform/internal/domain"
)

var (
	ErrInvalidLetter = errors.New("answer must be one of A, B, C, D")
	ErrOutOfRange    = errors.New("question index out of range")
	ErrSubmitted     = errors.New("attempt already submitted")
)

// PendingAnswer is one selection that still has to be sent to the server.
type PendingAnswer struct {
	QuestionID int64
	Letter     string
}

// Stats summarizes an attempt for the navigation panel.
type Stats struct {
	Answered   int
	Marked     int
	Unanswered int
}

// Attempt holds one participant's in-memory quiz state: the question list,
// one QuestionState per question, the cursor and the unsaved selection.
type Attempt struct {
	mu sync.Mutex

	id          string
	channelName string
	channelCode string
	username    string

	questions []domain.Question
	states    []domain.QuestionState
	current   int
	selected  string

	startedAt  time.Time
	deadline   time.Time
	submitting bool
	submitted  bool
}

func NewAttempt(username, channelCode, channelName string) *Attempt {
	return &Attempt{
		id:          uuid.NewString(),
		username:    username,
		channelCode: channelCode,
		channelName: channelName,
	}
}

func (a *Attempt) ID() string          { return a.id }
func (a *Attempt) Username() string    { return a.username }
func (a *Attempt) ChannelCode() string { return a.channelCode }
func (a *Attempt) ChannelName() string { return a.channelName }

// Load installs the question set and resets every state.
func (a *Attempt) Load(questions []domain.Question) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.questions = append([]domain.Question(nil), questions...)
	a.states = make([]domain.QuestionState, len(questions))
	a.current = 0
	a.selected = ""
}

// Start records the start time and deadline.
func (a *Attempt) Start(now time.Time, duration time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.startedAt = now
	a.deadline = now.Add(duration)
}

func (a *Attempt) Started() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.startedAt.IsZero()
}

func (a *Attempt) Deadline() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deadline
}

func (a *Attempt) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.questions)
}

func (a *Attempt) Current() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Question returns the question under the cursor.
func (a *Attempt) Question() (domain.Question, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current >= len(a.questions) {
		return domain.Question{}, false
	}
	return a.questions[a.current], true
}

// Selected returns the displayed selection for the current question.
func (a *Attempt) Selected() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected
}

// States returns a copy of every QuestionState.
func (a *Attempt) States() []domain.QuestionState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.QuestionState(nil), a.states...)
}

// Select sets the displayed selection without persisting it.
func (a *Attempt) Select(letter string) error {
	if !domain.ValidLetter(letter) {
		return ErrInvalidLetter
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.submitted || a.submitting {
		return ErrSubmitted
	}
	a.selected = letter
	return nil
}

// saveLocked writes the displayed selection into the current state.
func (a *Attempt) saveLocked() {
	if a.selected == "" || a.current >= len(a.states) {
		return
	}
	st := &a.states[a.current]
	st.Answered = true
	st.SelectedAnswer = a.selected
}

func (a *Attempt) moveLocked(index int) {
	a.current = index
	a.selected = a.states[index].SelectedAnswer
}

// Goto saves the current selection and jumps to index.
func (a *Attempt) Goto(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.questions) {
		return ErrOutOfRange
	}
	a.saveLocked()
	a.moveLocked(index)
	return nil
}

// Next saves the current selection and advances; it stays put on the last question.
func (a *Attempt) Next() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saveLocked()
	if a.current < len(a.questions)-1 {
		a.moveLocked(a.current + 1)
	}
}

// Previous saves the current selection and steps back; it stays put on the first question.
func (a *Attempt) Previous() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saveLocked()
	if a.current > 0 {
		a.moveLocked(a.current - 1)
	}
}

// ToggleMark flips the review flag of the current question.
func (a *Attempt) ToggleMark() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current >= len(a.states) {
		return false
	}
	a.states[a.current].Marked = !a.states[a.current].Marked
	return a.states[a.current].Marked
}

func (a *Attempt) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	var s Stats
	for _, st := range a.states {
		if st.Answered {
			s.Answered++
		}
		if st.Marked {
			s.Marked++
		}
	}
	s.Unanswered = len(a.questions) - s.Answered
	return s
}

// BeginSubmit claims the single submit slot. It returns false when a submit
// is already running or done. On success it returns every selection to send,
// including the unsaved one on screen, in question order.
func (a *Attempt) BeginSubmit() ([]PendingAnswer, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.submitting || a.submitted {
		return nil, false
	}
	a.submitting = true
	a.saveLocked()

	pending := make([]PendingAnswer, 0, len(a.states))
	for i, st := range a.states {
		if st.SelectedAnswer == "" {
			continue
		}
		pending = append(pending, PendingAnswer{QuestionID: a.questions[i].ID, Letter: st.SelectedAnswer})
	}
	return pending, true
}

// FinishSubmit marks the attempt submitted and discards its state.
func (a *Attempt) FinishSubmit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.submitting = false
	a.submitted = true
	a.questions = nil
	a.states = nil
	a.current = 0
	a.selected = ""
}

func (a *Attempt) Submitted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.submitted
}

func (a *Attempt) Submitting() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.submitting
}
