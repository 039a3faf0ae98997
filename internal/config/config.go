package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		QuestionCount int    `yaml:"question_count"`
		Duration      string `yaml:"duration"`
		BankTTL       string `yaml:"bank_ttl"`
	} `yaml:"quiz"`
	Auth struct {
		JWTSecret     string `yaml:"jwt_secret"`
		TokenTTL      string `yaml:"token_ttl"`
		AdminUsername string `yaml:"admin_username"`
		AdminPassword string `yaml:"admin_password"`
	} `yaml:"auth"`
	Client struct {
		APIURL  string `yaml:"api_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"client"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// Defaults: 70 questions, 70 minutes, a local
// API on :8000 and a browser origin on :3000.
const (
	DefaultQuestionCount = 70
	DefaultQuizDuration  = 70 * time.Minute
	DefaultAPIURL        = "http://localhost:8000"
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

// Default returns a config usable without a file.
func Default() Config {
	cfg := Config{}
	cfg.Quiz.QuestionCount = DefaultQuestionCount
	cfg.Quiz.Duration = DefaultQuizDuration.String()
	cfg.Auth.JWTSecret = "dev-secret-change-me"
	cfg.Auth.AdminUsername = DefaultAdminUsername
	cfg.Auth.AdminPassword = DefaultAdminPassword
	cfg.Client.APIURL = DefaultAPIURL
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file yields
// the defaults; environment variables (optionally from .env) override both.
func Load(path string) (Config, error) {
	cfg := Default()
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	if cfg.Quiz.QuestionCount <= 0 {
		cfg.Quiz.QuestionCount = DefaultQuestionCount
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("QUIZ_API_URL"); v != "" {
		cfg.Client.APIURL = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORS.AllowedOrigins = strings.Split(v, ",")
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
