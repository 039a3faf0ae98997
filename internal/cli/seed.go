package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"timed-quiz-platform/internal/app"
	"timed-quiz-platform/internal/config"
	"timed-quiz-platform/internal/domain"
)

type questionFile struct {
	Questions []app.QuestionInput `yaml:"questions"`
}

// NewSeedCmd loads questions from a YAML file into the configured database.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert questions from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			questions, err := readQuestionFile(file)
			if err != nil {
				return err
			}
			b, err := buildBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			added, skipped, err := seedQuestions(cmd.Context(), b.service, questions)
			if err != nil {
				return err
			}
			log.Printf("seeded %d questions (%d already present)", added, skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "config/questions.yaml", "YAML file with a questions list")
	return cmd
}

func readQuestionFile(path string) ([]app.QuestionInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f questionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f.Questions, nil
}

// seedQuestions adds each question, skipping ones whose text already exists.
func seedQuestions(ctx context.Context, service *app.PlatformService, questions []app.QuestionInput) (int, int, error) {
	added, skipped := 0, 0
	for i, q := range questions {
		_, err := service.AddQuestion(ctx, q)
		switch {
		case errors.Is(err, domain.ErrQuestionExists):
			skipped++
		case err != nil:
			return added, skipped, fmt.Errorf("question %d: %w", i+1, err)
		default:
			added++
		}
	}
	return added, skipped, nil
}
