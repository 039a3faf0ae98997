package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"timed-quiz-platform/internal/app"
	"timed-quiz-platform/internal/auth"
	"timed-quiz-platform/internal/config"
	"timed-quiz-platform/internal/infra/memory"
	pgstore "timed-quiz-platform/internal/infra/postgres"
	infraredis "timed-quiz-platform/internal/infra/redis"
	transport "timed-quiz-platform/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// backend is the wired service with whatever connections it opened.
type backend struct {
	service *app.PlatformService
	pool    *pgxpool.Pool
	redis   *redis.Client
}

func (b *backend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}

// buildBackend picks Postgres or the in-memory store, and Redis or in-process
// caches, based on what the config provides.
func buildBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}

	var store app.Store = memory.NewStore()
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		b.pool = pool
		store = pgstore.NewStore(pool)
	} else {
		log.Printf("postgres url not set, using in-memory store")
	}

	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	bankTTL := config.TTLDuration(cfg.Quiz.BankTTL, 5*time.Minute)
	var bank app.QuestionBank
	var boards app.BoardRepository
	if b.redis != nil {
		bank = infraredis.NewQuestionBank(b.redis, store, bankTTL)
		boards = infraredis.NewBoardStore(b.redis, config.TTLDuration(cfg.Redis.TTL, 80*time.Minute))
	} else {
		bank = memory.NewQuestionBank(store, bankTTL)
		boards = memory.NewBoardStore()
	}

	b.service = app.NewPlatformService(store, bank, boards)
	return b, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8000"
	}

	b, err := buildBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.service.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		return err
	}
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, 8*time.Hour))

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(b.service, tokens, cfg.CORS.AllowedOrigins),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz platform on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
