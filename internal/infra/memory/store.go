package memory

import (
	"context"
	"sort"
	"sync"

	"timed-quiz-platform/internal/domain"
)

type answerKey struct {
	participantID int64
	questionID    int64
}

// Store is an in-memory implementation of app.Store, useful for tests and
// single-process demos.
type Store struct {
	mu     sync.RWMutex
	nextID int64

	users        map[int64]domain.User
	channels     map[int64]domain.Channel
	questions    map[int64]domain.Question
	participants map[int64]domain.Participant
	answers      map[answerKey]domain.Answer
}

func NewStore() *Store {
	return &Store{
		users:        make(map[int64]domain.User),
		channels:     make(map[int64]domain.Channel),
		questions:    make(map[int64]domain.Question),
		participants: make(map[int64]domain.Participant),
		answers:      make(map[answerKey]domain.Answer),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateChannel(_ context.Context, ch domain.Channel) (domain.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.channels {
		if existing.Name == ch.Name {
			return domain.Channel{}, domain.ErrChannelExists
		}
		if existing.Code == ch.Code {
			return domain.Channel{}, domain.ErrCodeTaken
		}
	}
	ch.ID = s.id()
	s.channels[ch.ID] = ch
	return ch, nil
}

func (s *Store) ChannelByCode(_ context.Context, code string) (domain.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.channels {
		if ch.Code == code {
			return ch, nil
		}
	}
	return domain.Channel{}, domain.ErrChannelNotFound
}

func (s *Store) ListChannels(_ context.Context) ([]domain.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteChannel(_ context.Context, id int64) (domain.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[id]
	if !ok {
		return domain.Channel{}, domain.ErrChannelNotFound
	}
	for pid, p := range s.participants {
		if p.ChannelID == id {
			s.deleteParticipantLocked(pid)
		}
	}
	delete(s.channels, id)
	return ch, nil
}

func (s *Store) deleteParticipantLocked(pid int64) {
	for key := range s.answers {
		if key.participantID == pid {
			delete(s.answers, key)
		}
	}
	delete(s.participants, pid)
}

func (s *Store) CountChannelsByAdmin(_ context.Context, adminID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, ch := range s.channels {
		if ch.AdminID == adminID {
			n++
		}
	}
	return n, nil
}

func (s *Store) UserByName(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) UserByID(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return domain.User{}, domain.ErrUsernameTaken
		}
	}
	u.ID = s.id()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) ListAdmins(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0)
	for _, u := range s.users {
		if u.IsAdmin {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdatePassword(_ context.Context, id int64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	for pid, p := range s.participants {
		if p.UserID == id {
			s.deleteParticipantLocked(pid)
		}
	}
	delete(s.users, id)
	return nil
}

func (s *Store) ListQuestions(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) QuestionByID(_ context.Context, id int64) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (s *Store) textTakenLocked(text string, exceptID int64) bool {
	for _, q := range s.questions {
		if q.Text == text && q.ID != exceptID {
			return true
		}
	}
	return false
}

func (s *Store) CreateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.textTakenLocked(q.Text, 0) {
		return domain.Question{}, domain.ErrQuestionExists
	}
	q.ID = s.id()
	s.questions[q.ID] = q
	return q, nil
}

func (s *Store) UpdateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.ID]; !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if s.textTakenLocked(q.Text, q.ID) {
		return domain.Question{}, domain.ErrQuestionExists
	}
	s.questions[q.ID] = q
	return q, nil
}

func (s *Store) DeleteQuestion(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.answers {
		if key.questionID == id {
			return domain.ErrQuestionAnswered
		}
	}
	if _, ok := s.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, id)
	return nil
}

func (s *Store) Participant(_ context.Context, userID, channelID int64) (domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.participants {
		if p.UserID == userID && p.ChannelID == channelID {
			return p, nil
		}
	}
	return domain.Participant{}, domain.ErrParticipantNotFound
}

func (s *Store) SaveParticipant(_ context.Context, p domain.Participant) (domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
		s.participants[p.ID] = p
		return p, nil
	}
	existing, ok := s.participants[p.ID]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	existing.QuizStartedAt = p.QuizStartedAt
	existing.QuizSubmitted = p.QuizSubmitted
	s.participants[p.ID] = existing
	return existing, nil
}

func (s *Store) RecordAnswer(_ context.Context, a domain.Answer) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[a.ParticipantID]
	if !ok {
		return 0, domain.ErrParticipantNotFound
	}
	key := answerKey{participantID: a.ParticipantID, questionID: a.QuestionID}
	if existing, ok := s.answers[key]; ok {
		a.ID = existing.ID
	} else {
		a.ID = s.id()
	}
	s.answers[key] = a

	score := 0
	for k, stored := range s.answers {
		if k.participantID == p.ID && stored.IsCorrect {
			score++
		}
	}
	p.Score = score
	s.participants[p.ID] = p
	return score, nil
}

func (s *Store) recordLocked(p domain.Participant) domain.ParticipantRecord {
	rec := domain.ParticipantRecord{Participant: p}
	if u, ok := s.users[p.UserID]; ok {
		rec.Username = u.Username
	}
	if ch, ok := s.channels[p.ChannelID]; ok {
		rec.ChannelName = ch.Name
		rec.ChannelCode = ch.Code
	}
	return rec
}

func (s *Store) ListParticipants(_ context.Context) ([]domain.ParticipantRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ParticipantRecord, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, s.recordLocked(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) LatestParticipant(_ context.Context, userID int64) (domain.ParticipantRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *domain.Participant
	for _, p := range s.participants {
		if p.UserID != userID {
			continue
		}
		if latest == nil || p.ID > latest.ID {
			p := p
			latest = &p
		}
	}
	if latest == nil {
		return domain.ParticipantRecord{}, domain.ErrParticipantNotFound
	}
	return s.recordLocked(*latest), nil
}

func (s *Store) ListAnswers(_ context.Context, participantID int64) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Answer, 0)
	for key, a := range s.answers {
		if key.participantID == participantID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ClearResults(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = make(map[answerKey]domain.Answer)
	s.participants = make(map[int64]domain.Participant)
	s.channels = make(map[int64]domain.Channel)
	return nil
}
