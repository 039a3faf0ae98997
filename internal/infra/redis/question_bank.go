package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"timed-quiz-platform/internal/domain"
)

// QuestionLoader fetches the question list from a backing store.
type QuestionLoader interface {
	ListQuestions(ctx context.Context) ([]domain.Question, error)
}

const questionsKey = "quiz:questions"

// QuestionBank caches the question bank in Redis (one hash field per question)
// and falls back to a loader on cache miss.
// Questions are stored as: HSET quiz:questions {questionID} {question JSON}
type QuestionBank struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionBank(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *QuestionBank) Questions(ctx context.Context) ([]domain.Question, error) {
	if qs, ok := b.cached(ctx); ok {
		return qs, nil
	}

	result, err, _ := b.sf.Do(questionsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if qs, ok := b.cached(ctx); ok {
			return qs, nil
		}

		qs, err := b.loader.ListQuestions(ctx)
		if err != nil {
			return nil, err
		}
		if len(qs) == 0 {
			return qs, nil
		}

		pipe := b.client.TxPipeline()
		pipe.Del(ctx, questionsKey)
		for _, q := range qs {
			raw, err := json.Marshal(q)
			if err != nil {
				return nil, err
			}
			pipe.HSet(ctx, questionsKey, strconv.FormatInt(q.ID, 10), raw)
		}
		if ttl := b.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, questionsKey, ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("cache question bank: %v", err)
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (b *QuestionBank) cached(ctx context.Context) ([]domain.Question, bool) {
	fields, err := b.client.HGetAll(ctx, questionsKey).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}
	qs := make([]domain.Question, 0, len(fields))
	for _, raw := range fields {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, false
		}
		qs = append(qs, q)
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })
	return qs, true
}

// Invalidate drops the cached bank so the next read reloads it.
func (b *QuestionBank) Invalidate(ctx context.Context) {
	if err := b.client.Del(ctx, questionsKey).Err(); err != nil {
		log.Printf("invalidate question bank: %v", err)
	}
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	b.rndMu.Lock()
	defer b.rndMu.Unlock()
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
