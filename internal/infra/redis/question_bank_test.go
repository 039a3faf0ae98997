package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"timed-quiz-platform/internal/domain"
	"timed-quiz-platform/internal/infra/memory"
)

func TestQuestionBankCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{QuestionLoader: seededStore(t)}
	bank := NewQuestionBank(newClient(mr), loader, time.Minute)

	qs, err := bank.Questions(context.Background())
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(qs) != 2 || loader.calls != 1 {
		t.Fatalf("expected 2 questions from one load, got %d (calls=%d)", len(qs), loader.calls)
	}
	if !mr.Exists(questionsKey) {
		t.Fatalf("expected questions hash to be cached")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := bank.Questions(context.Background())
	if err != nil {
		t.Fatalf("questions 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached[0].ID != qs[0].ID || cached[1].CorrectAnswer != "B" {
		t.Fatalf("cached questions differ: %+v", cached)
	}
}

func TestQuestionBankInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{QuestionLoader: seededStore(t)}
	bank := NewQuestionBank(newClient(mr), loader, time.Minute)

	_, _ = bank.Questions(context.Background())
	bank.Invalidate(context.Background())
	if mr.Exists(questionsKey) {
		t.Fatalf("expected questions hash removed")
	}
	_, _ = bank.Questions(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls int
}

func (l *countingLoader) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.ListQuestions(ctx)
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	questions := []domain.Question{
		{Text: "What does AWS stand for?", OptionA: "Amazon Web Services", OptionB: "Amazon World Services", OptionC: "Amazon Wide Services", OptionD: "Amazon Web Solutions", CorrectAnswer: "A"},
		{Text: "Which AWS service is used for object storage?", OptionA: "EC2", OptionB: "S3", OptionC: "RDS", OptionD: "Lambda", CorrectAnswer: "B"},
	}
	for _, q := range questions {
		if _, err := store.CreateQuestion(context.Background(), q); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return store
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
