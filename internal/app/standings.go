package app

import (
	"sort"
	"sync"
	"time"

	"timed-quiz-platform/internal/domain"
)

// NewBoard is exported for infrastructure layers that need to seed boards.
func NewBoard(channelCode string) *Board {
	return newBoardWithClock(channelCode, time.Now)
}

// NewBoardWithClock is test-only for deterministic timestamps.
func NewBoardWithClock(channelCode string, now func() time.Time) *Board {
	return newBoardWithClock(channelCode, now)
}

// Board holds the live standings of one channel and fans updates out to
// subscribers.
type Board struct {
	code        string
	now         func() time.Time
	mu          sync.RWMutex
	entries     map[string]*boardEntry
	subscribers map[chan domain.Standings]struct{}
}

type boardEntry struct {
	username    string
	score       int
	submitted   bool
	lastUpdated time.Time
}

func newBoardWithClock(code string, now func() time.Time) *Board {
	return &Board{
		code:        code,
		now:         now,
		entries:     make(map[string]*boardEntry),
		subscribers: make(map[chan domain.Standings]struct{}),
	}
}

func (b *Board) join(username string) domain.Standings {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if entry, ok := b.entries[username]; ok {
		entry.lastUpdated = now
	} else {
		b.entries[username] = &boardEntry{username: username, lastUpdated: now}
	}
	return b.broadcastLocked()
}

func (b *Board) setScore(username string, score int, submitted bool) domain.Standings {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.entries[username]
	if !ok {
		entry = &boardEntry{username: username}
		b.entries[username] = entry
	}
	if entry.score != score {
		entry.lastUpdated = b.now()
	}
	entry.score = score
	entry.submitted = entry.submitted || submitted
	return b.broadcastLocked()
}

// Snapshot returns the current standings.
func (b *Board) Snapshot() domain.Standings {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

// IsEmpty reports whether nobody has joined the board.
func (b *Board) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries) == 0
}

// Close drops all subscribers; their channels are closed.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		delete(b.subscribers, ch)
		close(ch)
	}
}

func (b *Board) subscribe() (<-chan domain.Standings, func()) {
	ch := make(chan domain.Standings, 8)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	ch <- b.snapshotLocked()
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Board) broadcastLocked() domain.Standings {
	st := b.snapshotLocked()
	for ch := range b.subscribers {
		select {
		case ch <- st:
		default:
			// Slow subscriber: drop its oldest pending snapshot.
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
	return st
}

func (b *Board) snapshotLocked() domain.Standings {
	entries := make([]domain.StandingsEntry, 0, len(b.entries))
	for _, e := range b.entries {
		entries = append(entries, domain.StandingsEntry{
			Username:  e.username,
			Score:     e.score,
			Submitted: e.submitted,
		})
	}

	// Score desc, then whoever reached the score first, then name.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		ei := b.entries[entries[i].Username]
		ej := b.entries[entries[j].Username]
		if !ei.lastUpdated.Equal(ej.lastUpdated) {
			return ei.lastUpdated.Before(ej.lastUpdated)
		}
		return entries[i].Username < entries[j].Username
	})

	return domain.Standings{
		ChannelCode: b.code,
		Entries:     entries,
		UpdatedAt:   b.now(),
	}
}
