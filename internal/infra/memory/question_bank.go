package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"timed-quiz-platform/internal/domain"
)

// QuestionLoader fetches the question list from a backing store.
type QuestionLoader interface {
	ListQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionBank caches the question list with TTL to avoid repeated DB hits.
type QuestionBank struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	questions []domain.Question
	expiresAt time.Time
	loaded    bool
}

func NewQuestionBank(loader QuestionLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *QuestionBank) fresh(now time.Time) ([]domain.Question, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.loaded && b.expiresAt.After(now) {
		return b.questions, true
	}
	return nil, false
}

func (b *QuestionBank) Questions(ctx context.Context) ([]domain.Question, error) {
	if qs, ok := b.fresh(b.clock()); ok {
		return qs, nil
	}

	result, err, _ := b.sf.Do("questions", func() (interface{}, error) {
		now := b.clock()
		if qs, ok := b.fresh(now); ok {
			return qs, nil
		}

		qs, err := b.loader.ListQuestions(ctx)
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		b.questions = qs
		b.expiresAt = now.Add(b.ttlWithJitter())
		b.loaded = true
		b.mu.Unlock()
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate forces the next Questions call to reload.
func (b *QuestionBank) Invalidate(_ context.Context) {
	b.mu.Lock()
	b.loaded = false
	b.questions = nil
	b.mu.Unlock()
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
