package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"timed-quiz-platform/internal/domain"
)

const (
	codeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeAttempts = 8
	bcryptCost   = 12
)

var channelNamePattern = regexp.MustCompile(`^[A-Za-z0-9 ]+$`)

// ChannelInput is the payload for creating a channel.
type ChannelInput struct {
	Name string `json:"name" validate:"required,max=100,channelname"`
}

// QuestionInput is the payload for creating or updating a question.
type QuestionInput struct {
	Text          string `json:"text" yaml:"text" validate:"required"`
	OptionA       string `json:"option_a" yaml:"option_a" validate:"required"`
	OptionB       string `json:"option_b" yaml:"option_b" validate:"required"`
	OptionC       string `json:"option_c" yaml:"option_c" validate:"required"`
	OptionD       string `json:"option_d" yaml:"option_d" validate:"required"`
	CorrectAnswer string `json:"correct_answer" yaml:"correct_answer" validate:"required,oneof=A B C D"`
}

// AdminInput is the payload for creating an administrator.
type AdminInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

// PasswordInput is the payload for changing an administrator's password.
type PasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("channelname", func(fl validator.FieldLevel) bool {
		return channelNamePattern.MatchString(fl.Field().String())
	})
	return v
}

// PlatformService contains the quiz platform use cases behind the REST API.
type PlatformService struct {
	store    Store
	bank     QuestionBank
	boards   BoardRepository
	validate *validator.Validate
	now      func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewPlatformService(store Store, bank QuestionBank, boards BoardRepository) *PlatformService {
	return &PlatformService{
		store:    store,
		bank:     bank,
		boards:   boards,
		validate: newValidator(),
		now:      time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *PlatformService) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %s", domain.ErrInvalidInput, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// EnsureAdmin creates the bootstrap administrator if it does not exist yet.
func (s *PlatformService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.store.UserByName(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	_, err = s.CreateAdmin(ctx, AdminInput{Username: username, Password: password})
	if errors.Is(err, domain.ErrUsernameTaken) {
		return nil
	}
	return err
}

// AuthenticateAdmin checks administrator credentials.
func (s *PlatformService) AuthenticateAdmin(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.store.UserByName(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if !user.IsAdmin || user.PasswordHash == "" {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

// CreateChannel creates a channel owned by adminUsername with a fresh join code.
func (s *PlatformService) CreateChannel(ctx context.Context, adminUsername string, in ChannelInput) (domain.Channel, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return domain.Channel{}, err
	}
	admin, err := s.store.UserByName(ctx, adminUsername)
	if err != nil {
		return domain.Channel{}, err
	}
	if !admin.IsAdmin {
		return domain.Channel{}, domain.ErrUserNotFound
	}

	for i := 0; i < codeAttempts; i++ {
		ch, err := s.store.CreateChannel(ctx, domain.Channel{
			Name:      in.Name,
			Code:      s.generateCode(),
			AdminID:   admin.ID,
			CreatedAt: s.now().UTC(),
		})
		if errors.Is(err, domain.ErrCodeTaken) {
			continue
		}
		return ch, err
	}
	return domain.Channel{}, fmt.Errorf("create channel: %w", domain.ErrCodeTaken)
}

func (s *PlatformService) generateCode() string {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[s.rnd.Intn(len(codeAlphabet))]
	}
	return string(b)
}

func (s *PlatformService) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	return s.store.ListChannels(ctx)
}

// DeleteChannel removes a channel with its attempts and closes its live board.
func (s *PlatformService) DeleteChannel(ctx context.Context, id int64) error {
	ch, err := s.store.DeleteChannel(ctx, id)
	if err != nil {
		return err
	}
	s.dropBoard(ch.Code)
	return nil
}

func (s *PlatformService) dropBoard(code string) {
	if board, ok := s.boards.Get(code); ok {
		board.Close()
	}
	s.boards.Delete(code)
}

// JoinChannel registers username in the channel behind code. Joining again
// before submitting restarts the attempt clock; joining after submitting fails.
func (s *PlatformService) JoinChannel(ctx context.Context, code, username string) (domain.JoinResult, error) {
	code = strings.TrimSpace(code)
	username = strings.TrimSpace(username)
	if code == "" || username == "" {
		return domain.JoinResult{}, fmt.Errorf("%w: code and username are required", domain.ErrInvalidInput)
	}

	ch, err := s.store.ChannelByCode(ctx, code)
	if err != nil {
		return domain.JoinResult{}, err
	}
	user, err := s.userOrCreate(ctx, username)
	if err != nil {
		return domain.JoinResult{}, err
	}

	now := s.now().UTC()
	participant, err := s.store.Participant(ctx, user.ID, ch.ID)
	switch {
	case errors.Is(err, domain.ErrParticipantNotFound):
		participant = domain.Participant{UserID: user.ID, ChannelID: ch.ID, QuizStartedAt: now}
	case err != nil:
		return domain.JoinResult{}, err
	case participant.QuizSubmitted:
		return domain.JoinResult{}, domain.ErrAlreadySubmitted
	default:
		participant.QuizStartedAt = now
	}
	participant, err = s.store.SaveParticipant(ctx, participant)
	if err != nil {
		return domain.JoinResult{}, err
	}

	s.boards.GetOrCreate(ch.Code).join(user.Username)
	return domain.JoinResult{
		Message:       "Joined successfully",
		Channel:       ch.Name,
		QuizStartedAt: participant.QuizStartedAt,
	}, nil
}

func (s *PlatformService) userOrCreate(ctx context.Context, username string) (domain.User, error) {
	user, err := s.store.UserByName(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, err
	}
	user, err = s.store.CreateUser(ctx, domain.User{Username: username, CreatedAt: s.now().UTC()})
	if errors.Is(err, domain.ErrUsernameTaken) {
		return s.store.UserByName(ctx, username)
	}
	return user, err
}

// RandomQuestions returns up to count questions in random order.
func (s *PlatformService) RandomQuestions(ctx context.Context, count int) ([]domain.Question, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", domain.ErrInvalidInput)
	}
	all, err := s.bank.Questions(ctx)
	if err != nil {
		return nil, err
	}
	shuffled := make([]domain.Question, len(all))
	copy(shuffled, all)

	s.rndMu.Lock()
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	s.rndMu.Unlock()

	if count < len(shuffled) {
		shuffled = shuffled[:count]
	}
	return shuffled, nil
}

func (s *PlatformService) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	return s.store.ListQuestions(ctx)
}

func (s *PlatformService) AddQuestion(ctx context.Context, in QuestionInput) (domain.Question, error) {
	if err := s.check(in); err != nil {
		return domain.Question{}, err
	}
	q, err := s.store.CreateQuestion(ctx, questionFromInput(0, in))
	if err != nil {
		return domain.Question{}, err
	}
	s.bank.Invalidate(ctx)
	return q, nil
}

func (s *PlatformService) UpdateQuestion(ctx context.Context, id int64, in QuestionInput) (domain.Question, error) {
	if err := s.check(in); err != nil {
		return domain.Question{}, err
	}
	q, err := s.store.UpdateQuestion(ctx, questionFromInput(id, in))
	if err != nil {
		return domain.Question{}, err
	}
	s.bank.Invalidate(ctx)
	return q, nil
}

func (s *PlatformService) DeleteQuestion(ctx context.Context, id int64) error {
	if err := s.store.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	s.bank.Invalidate(ctx)
	return nil
}

func questionFromInput(id int64, in QuestionInput) domain.Question {
	return domain.Question{
		ID:            id,
		Text:          strings.TrimSpace(in.Text),
		OptionA:       in.OptionA,
		OptionB:       in.OptionB,
		OptionC:       in.OptionC,
		OptionD:       in.OptionD,
		CorrectAnswer: in.CorrectAnswer,
	}
}

func (s *PlatformService) attempt(ctx context.Context, username, code string) (domain.Channel, domain.Participant, error) {
	user, err := s.store.UserByName(ctx, username)
	if err != nil {
		return domain.Channel{}, domain.Participant{}, err
	}
	ch, err := s.store.ChannelByCode(ctx, code)
	if err != nil {
		return domain.Channel{}, domain.Participant{}, err
	}
	p, err := s.store.Participant(ctx, user.ID, ch.ID)
	if err != nil {
		return domain.Channel{}, domain.Participant{}, err
	}
	return ch, p, nil
}

// SubmitAnswer records (or replaces) one answer of a participant's attempt.
func (s *PlatformService) SubmitAnswer(ctx context.Context, username, code string, questionID int64, letter string) (domain.AnswerOutcome, error) {
	if !domain.ValidLetter(letter) {
		return domain.AnswerOutcome{}, fmt.Errorf("%w: selected answer must be A-D", domain.ErrInvalidInput)
	}
	ch, p, err := s.attempt(ctx, username, code)
	if err != nil {
		return domain.AnswerOutcome{}, err
	}
	if p.QuizSubmitted {
		return domain.AnswerOutcome{}, domain.ErrAlreadySubmitted
	}
	q, err := s.store.QuestionByID(ctx, questionID)
	if err != nil {
		return domain.AnswerOutcome{}, err
	}

	correct := q.CorrectAnswer == letter
	score, err := s.store.RecordAnswer(ctx, domain.Answer{
		ParticipantID:  p.ID,
		QuestionID:     questionID,
		SelectedAnswer: letter,
		IsCorrect:      correct,
	})
	if err != nil {
		return domain.AnswerOutcome{}, err
	}
	s.boards.GetOrCreate(ch.Code).setScore(username, score, false)
	return domain.AnswerOutcome{Correct: correct, Score: score}, nil
}

// SubmitQuiz finalizes a participant's attempt.
func (s *PlatformService) SubmitQuiz(ctx context.Context, username, code string) (domain.SubmitOutcome, error) {
	ch, p, err := s.attempt(ctx, username, code)
	if err != nil {
		return domain.SubmitOutcome{}, err
	}
	if !p.QuizSubmitted {
		p.QuizSubmitted = true
		if p, err = s.store.SaveParticipant(ctx, p); err != nil {
			return domain.SubmitOutcome{}, err
		}
	}
	s.boards.GetOrCreate(ch.Code).setScore(username, p.Score, true)
	return domain.SubmitOutcome{Message: "Quiz submitted successfully", FinalScore: p.Score}, nil
}

// Results lists every participant with their answers.
func (s *PlatformService) Results(ctx context.Context) ([]domain.ResultSummary, error) {
	records, err := s.store.ListParticipants(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ResultSummary, 0, len(records))
	for _, rec := range records {
		answers, err := s.store.ListAnswers(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		summary := domain.ResultSummary{
			Username:       rec.Username,
			Channel:        rec.ChannelName,
			Score:          rec.Score,
			TotalQuestions: len(answers),
			Answers:        make([]domain.AnswerSummary, 0, len(answers)),
		}
		for _, a := range answers {
			summary.Answers = append(summary.Answers, domain.AnswerSummary{
				QuestionID:     a.QuestionID,
				SelectedAnswer: a.SelectedAnswer,
				IsCorrect:      a.IsCorrect,
			})
		}
		out = append(out, summary)
	}
	return out, nil
}

// ParticipantReport returns the detailed result of username. With an empty
// channelCode the user's most recent attempt is used.
func (s *PlatformService) ParticipantReport(ctx context.Context, username, channelCode string) (domain.ParticipantReport, error) {
	user, err := s.store.UserByName(ctx, username)
	if err != nil {
		return domain.ParticipantReport{}, err
	}

	var rec domain.ParticipantRecord
	if channelCode == "" {
		rec, err = s.store.LatestParticipant(ctx, user.ID)
		if err != nil {
			return domain.ParticipantReport{}, err
		}
	} else {
		ch, err := s.store.ChannelByCode(ctx, channelCode)
		if err != nil {
			return domain.ParticipantReport{}, err
		}
		p, err := s.store.Participant(ctx, user.ID, ch.ID)
		if err != nil {
			return domain.ParticipantReport{}, err
		}
		rec = domain.ParticipantRecord{Participant: p, Username: user.Username, ChannelName: ch.Name, ChannelCode: ch.Code}
	}

	answers, err := s.store.ListAnswers(ctx, rec.ID)
	if err != nil {
		return domain.ParticipantReport{}, err
	}
	report := domain.ParticipantReport{
		Username: user.Username,
		Channel:  rec.ChannelName,
		Score:    rec.Score,
		Answers:  make([]domain.AnswerDetail, 0, len(answers)),
	}
	for _, a := range answers {
		q, err := s.store.QuestionByID(ctx, a.QuestionID)
		if errors.Is(err, domain.ErrQuestionNotFound) {
			continue
		}
		if err != nil {
			return domain.ParticipantReport{}, err
		}
		report.Answers = append(report.Answers, domain.AnswerDetail{
			QuestionText:   q.Text,
			OptionA:        q.OptionA,
			OptionB:        q.OptionB,
			OptionC:        q.OptionC,
			OptionD:        q.OptionD,
			CorrectAnswer:  q.CorrectAnswer,
			SelectedAnswer: a.SelectedAnswer,
			IsCorrect:      a.IsCorrect,
		})
	}
	report.TotalQuestions = len(report.Answers)
	return report, nil
}

// ClearResults deletes all answers, participants and channels.
func (s *PlatformService) ClearResults(ctx context.Context) error {
	channels, err := s.store.ListChannels(ctx)
	if err != nil {
		return err
	}
	if err := s.store.ClearResults(ctx); err != nil {
		return err
	}
	for _, ch := range channels {
		s.dropBoard(ch.Code)
	}
	return nil
}

func (s *PlatformService) ListAdmins(ctx context.Context) ([]domain.AdminAccount, error) {
	users, err := s.store.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AdminAccount, 0, len(users))
	for _, u := range users {
		out = append(out, adminAccount(u))
	}
	return out, nil
}

func (s *PlatformService) CreateAdmin(ctx context.Context, in AdminInput) (domain.AdminAccount, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := s.check(in); err != nil {
		return domain.AdminAccount{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return domain.AdminAccount{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.store.CreateUser(ctx, domain.User{
		Username:     in.Username,
		PasswordHash: string(hash),
		IsAdmin:      true,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return domain.AdminAccount{}, err
	}
	return adminAccount(u), nil
}

// ChangePassword replaces an administrator's password after checking the current one.
func (s *PlatformService) ChangePassword(ctx context.Context, username string, in PasswordInput) error {
	if err := s.check(in); err != nil {
		return err
	}
	user, err := s.store.UserByName(ctx, username)
	if err != nil {
		return err
	}
	if !user.IsAdmin {
		return domain.ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)) != nil {
		return domain.ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.UpdatePassword(ctx, user.ID, string(hash))
}

// DeleteAdmin removes administrator id on behalf of currentUsername.
func (s *PlatformService) DeleteAdmin(ctx context.Context, id int64, currentUsername string) error {
	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		return err
	}
	if !user.IsAdmin {
		return domain.ErrUserNotFound
	}
	if user.Username == currentUsername {
		return domain.ErrSelfDelete
	}
	owned, err := s.store.CountChannelsByAdmin(ctx, id)
	if err != nil {
		return err
	}
	if owned > 0 {
		return domain.ErrUserOwnsChannels
	}
	return s.store.DeleteUser(ctx, id)
}

func adminAccount(u domain.User) domain.AdminAccount {
	return domain.AdminAccount{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

// Subscribe returns a channel that receives standings updates for a channel.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *PlatformService) Subscribe(ctx context.Context, channelCode string) (<-chan domain.Standings, func(), error) {
	if _, err := s.store.ChannelByCode(ctx, channelCode); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.boards.GetOrCreate(channelCode).subscribe()
	return ch, cancel, nil
}

// Standings returns the current standings of a channel.
func (s *PlatformService) Standings(ctx context.Context, channelCode string) (domain.Standings, error) {
	if _, err := s.store.ChannelByCode(ctx, channelCode); err != nil {
		return domain.Standings{}, err
	}
	board, ok := s.boards.Get(channelCode)
	if !ok {
		return domain.Standings{ChannelCode: channelCode, Entries: []domain.StandingsEntry{}, UpdatedAt: s.now()}, nil
	}
	return board.Snapshot(), nil
}
