// Package frontend is the quiz client's view state: which screen is shown,
// the participant's running attempt with its countdown, and the admin
// dashboard lists. Remote calls go through API; failures become
// notifications and are never retried.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"timed-quiz-platform/internal/client"
	"timed-quiz-platform/internal/domain"
	"timed-quiz-platform/internal/report"
	"timed-quiz-platform/internal/session"
)

type Mode string

const (
	ModeHome           Mode = "home"
	ModeJoin           Mode = "join"
	ModeQuiz           Mode = "quiz"
	ModeAdmin          Mode = "admin"
	ModeAdminDashboard Mode = "admin-dashboard"
	ModeAddQuestion    Mode = "add-question"
	ModeViewQuestions  Mode = "view-questions"
	ModeManageChannels Mode = "manage-channels"
	ModeManageUsers    Mode = "manage-users"
	ModeViewResults    Mode = "view-results"
	ModeCreateChannel  Mode = "create-channel"
)

// Confirmation literals gating destructive actions.
const (
	ConfirmSubmit = "SUBMIT"
	ConfirmDelete = "DELETE"
)

var (
	ErrNotConfirmed   = errors.New("confirmation text does not match")
	ErrNoAttempt      = errors.New("no quiz attempt in progress")
	ErrAlreadyStarted = errors.New("quiz already started")
	ErrNotStarted     = errors.New("quiz not started")
	ErrNothingPending = errors.New("nothing to delete")
	ErrAttemptRunning = errors.New("a quiz attempt is already running")
)

// API is the remote collaborator. *client.Client satisfies it.
type API interface {
	JoinChannel(ctx context.Context, code, username string) (domain.JoinResult, error)
	RandomQuestions(ctx context.Context, count int) ([]domain.Question, error)
	SubmitAnswer(ctx context.Context, username, channelCode string, questionID int64, letter string) (domain.AnswerOutcome, error)
	SubmitQuiz(ctx context.Context, username, channelCode string) (domain.SubmitOutcome, error)

	Login(ctx context.Context, username, password string) error
	Logout()
	ListChannels(ctx context.Context) ([]domain.Channel, error)
	CreateChannel(ctx context.Context, in client.ChannelInput) (domain.Channel, error)
	DeleteChannel(ctx context.Context, id int64) error
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	AddQuestion(ctx context.Context, in client.QuestionInput) (domain.Question, error)
	UpdateQuestion(ctx context.Context, id int64, in client.QuestionInput) (domain.Question, error)
	DeleteQuestion(ctx context.Context, id int64) error
	Results(ctx context.Context) ([]domain.ResultSummary, error)
	ParticipantReport(ctx context.Context, username, channelCode string) (domain.ParticipantReport, error)
	ClearResults(ctx context.Context) error
	ListAdmins(ctx context.Context) ([]domain.AdminAccount, error)
	CreateAdmin(ctx context.Context, in client.AdminInput) (domain.AdminAccount, error)
	ChangePassword(ctx context.Context, username string, in client.PasswordInput) error
	DeleteAdmin(ctx context.Context, id int64) error
}

// Notifier shows one-shot messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// TickSource yields countdown ticks and a func that releases them.
type TickSource func() (<-chan time.Time, func())

// Options configures a View. Zero values fall back to the production defaults.
type Options struct {
	QuestionCount int
	Duration      time.Duration
	Ticks         TickSource
	// OnTick is called with the remaining time after every countdown tick.
	OnTick func(time.Duration)
}

const (
	DefaultQuestionCount = 70
	DefaultDuration      = 70 * time.Minute
)

// View owns every piece of client state. Its mutex is never held across a
// remote call.
type View struct {
	api    API
	notify Notifier
	opts   Options

	mu        sync.Mutex
	mode      Mode
	admin     string
	attempt   *session.Attempt
	countdown *session.Countdown
	stopTicks func()
	// timed is the attempt the countdown belongs to.
	timed *session.Attempt
	confirm   bool

	pendingDelete *DeleteTarget
	createdCode   string
	channels      []domain.Channel
	questions     []domain.Question
	results       []domain.ResultSummary
	admins        []domain.AdminAccount
}

func NewView(api API, notify Notifier, opts Options) *View {
	if opts.QuestionCount <= 0 {
		opts.QuestionCount = DefaultQuestionCount
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.Ticks == nil {
		opts.Ticks = session.NewTicker
	}
	return &View{api: api, notify: notify, opts: opts, mode: ModeHome}
}

func (v *View) Mode() Mode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mode
}

// Show switches to a screen that needs no remote data, such as the join
// form, the login form or the dashboard.
func (v *View) Show(mode Mode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if mode != ModeCreateChannel {
		v.createdCode = ""
	}
	v.mode = mode
}

// Attempt returns the running attempt, or nil.
func (v *View) Attempt() *session.Attempt {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.attempt
}

// Remaining returns the countdown's remaining time.
func (v *View) Remaining() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.countdown == nil {
		return v.opts.Duration
	}
	return v.countdown.Remaining()
}

// Join registers the participant in a channel and enters the pre-start quiz
// screen. A user who already completed the channel gets no attempt, and a
// started attempt must be submitted or abandoned before joining again.
func (v *View) Join(ctx context.Context, code, username string) error {
	if v.attemptRunning() {
		return ErrAttemptRunning
	}
	res, err := v.api.JoinChannel(ctx, code, username)
	if err != nil {
		switch {
		case errors.Is(err, client.ErrConflict):
			v.notify.Error(msgAlreadyTaken)
		case errors.Is(err, client.ErrNotFound):
			v.notify.Error(msgInvalidCode)
		default:
			v.notify.Error(msgJoinFailed)
		}
		return err
	}

	v.mu.Lock()
	if v.attempt != nil && v.attempt.Started() {
		v.mu.Unlock()
		return ErrAttemptRunning
	}
	v.attempt = session.NewAttempt(username, code, res.Channel)
	v.confirm = false
	v.mode = ModeQuiz
	v.mu.Unlock()
	return nil
}

func (v *View) attemptRunning() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.attempt != nil && v.attempt.Started()
}

// Start loads the question sample and starts the countdown.
func (v *View) Start(ctx context.Context) error {
	v.mu.Lock()
	a := v.attempt
	v.mu.Unlock()
	if a == nil {
		return ErrNoAttempt
	}
	if a.Started() {
		return ErrAlreadyStarted
	}

	questions, err := v.api.RandomQuestions(ctx, v.opts.QuestionCount)
	if err != nil {
		v.notify.Error(msgLoadQuizFailed)
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.attempt != a || a.Started() {
		return ErrAlreadyStarted
	}
	a.Load(questions)
	a.Start(time.Now(), v.opts.Duration)

	ticks, stop := v.opts.Ticks()
	v.stopTicks = stop
	v.timed = a
	v.countdown = session.StartCountdown(v.opts.Duration, time.Second, ticks, v.opts.OnTick, func() {
		v.submit(context.Background(), a)
	})
	return nil
}

func (v *View) running() (*session.Attempt, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.attempt == nil {
		return nil, ErrNoAttempt
	}
	if !v.attempt.Started() {
		return nil, ErrNotStarted
	}
	return v.attempt, nil
}

func (v *View) Select(letter string) error {
	a, err := v.running()
	if err != nil {
		return err
	}
	return a.Select(letter)
}

func (v *View) Goto(index int) error {
	a, err := v.running()
	if err != nil {
		return err
	}
	return a.Goto(index)
}

func (v *View) Next() error {
	a, err := v.running()
	if err != nil {
		return err
	}
	a.Next()
	return nil
}

func (v *View) Previous() error {
	a, err := v.running()
	if err != nil {
		return err
	}
	a.Previous()
	return nil
}

func (v *View) ToggleMark() (bool, error) {
	a, err := v.running()
	if err != nil {
		return false, err
	}
	return a.ToggleMark(), nil
}

func (v *View) Stats() (session.Stats, error) {
	a, err := v.running()
	if err != nil {
		return session.Stats{}, err
	}
	return a.Stats(), nil
}

// RequestSubmit opens the submit confirmation.
func (v *View) RequestSubmit() error {
	if _, err := v.running(); err != nil {
		return err
	}
	v.mu.Lock()
	v.confirm = true
	v.mu.Unlock()
	return nil
}

func (v *View) SubmitPending() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.confirm
}

// SubmitEnabled reports whether text unlocks the submit action.
func SubmitEnabled(text string) bool { return text == ConfirmSubmit }

// DeleteEnabled reports whether text unlocks a delete action.
func DeleteEnabled(text string) bool { return text == ConfirmDelete }

func (v *View) CancelSubmit() {
	v.mu.Lock()
	v.confirm = false
	v.mu.Unlock()
}

// ConfirmSubmit runs the submission when text is the literal SUBMIT. It
// returns once every answer and the finalize call were sent.
func (v *View) ConfirmSubmit(ctx context.Context, text string) error {
	if !SubmitEnabled(text) {
		return ErrNotConfirmed
	}
	a, err := v.running()
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.confirm = false
	v.mu.Unlock()
	v.submit(ctx, a)
	return nil
}

// submit sends every buffered answer, finalizes the attempt and returns to
// home. Only the first caller per attempt gets past BeginSubmit.
func (v *View) submit(ctx context.Context, a *session.Attempt) {
	pending, ok := a.BeginSubmit()
	if !ok {
		return
	}

	v.mu.Lock()
	if v.timed == a {
		v.stopCountdownLocked()
	}
	v.mu.Unlock()

	for _, p := range pending {
		if _, err := v.api.SubmitAnswer(ctx, a.Username(), a.ChannelCode(), p.QuestionID, p.Letter); err != nil {
			log.Printf("submit answer for question %d: %v", p.QuestionID, err)
		}
	}
	if _, err := v.api.SubmitQuiz(ctx, a.Username(), a.ChannelCode()); err != nil {
		log.Printf("finalize attempt %s: %v", a.ID(), err)
	}
	a.FinishSubmit()

	v.mu.Lock()
	if v.attempt == a {
		v.attempt = nil
		v.confirm = false
		v.mode = ModeHome
	}
	v.mu.Unlock()
	v.notify.Success(msgQuizSubmitted)
}

// Abandon drops the attempt without submitting it.
func (v *View) Abandon() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopCountdownLocked()
	v.attempt = nil
	v.confirm = false
	v.mode = ModeHome
}

func (v *View) stopCountdownLocked() {
	if v.countdown != nil {
		v.countdown.Stop()
	}
	if v.stopTicks != nil {
		v.stopTicks()
	}
	v.countdown = nil
	v.stopTicks = nil
	v.timed = nil
}

// ExportReport renders one participant's result as PDF into w.
func (v *View) ExportReport(ctx context.Context, username, channelCode string, w io.Writer) error {
	r, err := v.api.ParticipantReport(ctx, username, channelCode)
	if err == nil {
		err = report.WritePDF(w, r)
	}
	if err != nil {
		v.notify.Error(msgReportFailed)
		return fmt.Errorf("export report: %w", err)
	}
	return nil
}
