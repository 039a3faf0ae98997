package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"timed-quiz-platform/internal/app"
)

// BoardStore is a Redis-aware implementation of app.BoardRepository.
// Boards still live in process so subscribers share the in-memory broadcast;
// Redis only marks which channels have live standings.
type BoardStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	boards map[string]*app.Board
}

func NewBoardStore(client *redis.Client, ttl time.Duration) *BoardStore {
	return &BoardStore{
		client: client,
		ttl:    ttl,
		boards: make(map[string]*app.Board),
	}
}

func (s *BoardStore) GetOrCreate(channelCode string) *app.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if board, ok := s.boards[channelCode]; ok {
		// refresh liveness while the channel is active
		_ = s.client.Expire(context.Background(), s.key(channelCode), s.ttl).Err()
		return board
	}
	board := app.NewBoard(channelCode)
	s.boards[channelCode] = board
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(channelCode), "1", s.ttl).Err()
	return board
}

func (s *BoardStore) Get(channelCode string) (*app.Board, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.boards[channelCode]
	return board, ok
}

func (s *BoardStore) Delete(channelCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.boards, channelCode)
	_ = s.client.Del(context.Background(), s.key(channelCode)).Err()
}

func (s *BoardStore) key(channelCode string) string {
	return "quiz:board:" + channelCode
}
