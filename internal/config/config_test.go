package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Quiz.QuestionCount != DefaultQuestionCount {
		t.Fatalf("expected %d questions, got %d", DefaultQuestionCount, cfg.Quiz.QuestionCount)
	}
	if got := TTLDuration(cfg.Quiz.Duration, 0); got != DefaultQuizDuration {
		t.Fatalf("expected %s, got %s", DefaultQuizDuration, got)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("quiz:\n  question_count: 5\n  duration: 90s\nclient:\n  api_url: http://quiz.internal\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("QUIZ_API_URL", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Quiz.QuestionCount != 5 {
		t.Fatalf("expected 5 questions, got %d", cfg.Quiz.QuestionCount)
	}
	if TTLDuration(cfg.Quiz.Duration, time.Hour) != 90*time.Second {
		t.Fatalf("unexpected duration %q", cfg.Quiz.Duration)
	}
	if cfg.Client.APIURL != "http://quiz.internal" {
		t.Fatalf("unexpected api url %q", cfg.Client.APIURL)
	}
	if cfg.Auth.AdminUsername != DefaultAdminUsername {
		t.Fatalf("expected default admin to survive partial file, got %q", cfg.Auth.AdminUsername)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if TTLDuration("nonsense", time.Minute) != time.Minute {
		t.Fatalf("expected fallback on parse error")
	}
	if TTLDuration("", 2*time.Minute) != 2*time.Minute {
		t.Fatalf("expected fallback on empty")
	}
}
