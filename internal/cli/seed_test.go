package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"timed-quiz-platform/internal/config"
)

const sampleQuestions = `questions:
  - text: "What is 2 + 2?"
    option_a: "3"
    option_b: "4"
    option_c: "5"
    option_d: "22"
    correct_answer: B
  - text: "Capital of France?"
    option_a: Paris
    option_b: Rome
    option_c: Madrid
    option_d: Berlin
    correct_answer: A
`

func TestSeedQuestionsSkipsExisting(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "questions.yaml")
	if err := os.WriteFile(path, []byte(sampleQuestions), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	questions, err := readQuestionFile(path)
	if err != nil {
		t.Fatalf("read questions: %v", err)
	}
	if len(questions) != 2 || questions[0].CorrectAnswer != "B" {
		t.Fatalf("unexpected questions %+v", questions)
	}

	b, err := buildBackend(ctx, config.Config{})
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	defer b.Close()

	added, skipped, err := seedQuestions(ctx, b.service, questions)
	if err != nil || added != 2 || skipped != 0 {
		t.Fatalf("first seed: added=%d skipped=%d err=%v", added, skipped, err)
	}
	added, skipped, err = seedQuestions(ctx, b.service, questions)
	if err != nil || added != 0 || skipped != 2 {
		t.Fatalf("second seed: added=%d skipped=%d err=%v", added, skipped, err)
	}
}

func TestReadQuestionFileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("questions: [\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := readQuestionFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
