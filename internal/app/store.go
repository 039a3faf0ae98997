package app

import (
	"context"

	"timed-quiz-platform/internal/domain"
)

// ChannelStore persists channels. DeleteChannel removes the channel's
// participants and answers with it.
type ChannelStore interface {
	CreateChannel(ctx context.Context, ch domain.Channel) (domain.Channel, error)
	ChannelByCode(ctx context.Context, code string) (domain.Channel, error)
	ListChannels(ctx context.Context) ([]domain.Channel, error)
	DeleteChannel(ctx context.Context, id int64) (domain.Channel, error)
	CountChannelsByAdmin(ctx context.Context, adminID int64) (int, error)
}

// UserStore persists participants and administrators.
type UserStore interface {
	UserByName(ctx context.Context, username string) (domain.User, error)
	UserByID(ctx context.Context, id int64) (domain.User, error)
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	ListAdmins(ctx context.Context) ([]domain.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	DeleteUser(ctx context.Context, id int64) error
}

// QuestionStore persists the question bank.
type QuestionStore interface {
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	QuestionByID(ctx context.Context, id int64) (domain.Question, error)
	CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	UpdateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	DeleteQuestion(ctx context.Context, id int64) error
}

// AttemptStore persists participants and their answers.
type AttemptStore interface {
	Participant(ctx context.Context, userID, channelID int64) (domain.Participant, error)
	// SaveParticipant inserts when p.ID is zero, otherwise updates the start
	// time and submitted flag.
	SaveParticipant(ctx context.Context, p domain.Participant) (domain.Participant, error)
	// RecordAnswer upserts the answer and returns the participant's score
	// recounted from correct answers.
	RecordAnswer(ctx context.Context, a domain.Answer) (int, error)
	ListParticipants(ctx context.Context) ([]domain.ParticipantRecord, error)
	LatestParticipant(ctx context.Context, userID int64) (domain.ParticipantRecord, error)
	ListAnswers(ctx context.Context, participantID int64) ([]domain.Answer, error)
	ClearResults(ctx context.Context) error
}

// Store is the full persistence surface of the platform.
type Store interface {
	ChannelStore
	UserStore
	QuestionStore
	AttemptStore
}

// QuestionBank serves the question list from a cache in front of the store.
type QuestionBank interface {
	Questions(ctx context.Context) ([]domain.Question, error)
	Invalidate(ctx context.Context)
}

// BoardRepository abstracts where channel standings live (in-memory, Redis, etc).
type BoardRepository interface {
	GetOrCreate(channelCode string) *Board
	Get(channelCode string) (*Board, bool)
	Delete(channelCode string)
}
