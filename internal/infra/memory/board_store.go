package memory

import (
	"sync"

	"timed-quiz-platform/internal/app"
)

// BoardStore is an in-memory implementation of app.BoardRepository.
type BoardStore struct {
	mu     sync.RWMutex
	boards map[string]*app.Board
}

func NewBoardStore() *BoardStore {
	return &BoardStore{
		boards: make(map[string]*app.Board),
	}
}

func (s *BoardStore) GetOrCreate(channelCode string) *app.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if board, ok := s.boards[channelCode]; ok {
		return board
	}
	board := app.NewBoard(channelCode)
	s.boards[channelCode] = board
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
}
