package app_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"timed-quiz-platform/internal/app"
	"timed-quiz-platform/internal/domain"
	"timed-quiz-platform/internal/infra/memory"
)

func TestCreateChannelGeneratesCode(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	ch, err := service.CreateChannel(ctx, "admin", app.ChannelInput{Name: "Cloud Cohort 7"})
	if err != nil {
		t.Fatalf("create channel: %v", err)
	}
	if !regexp.MustCompile(`^[A-Z0-9]{6}$`).MatchString(ch.Code) {
		t.Fatalf("unexpected code %q", ch.Code)
	}

	_, err = service.CreateChannel(ctx, "admin", app.ChannelInput{Name: "Cloud Cohort 7"})
	if !errors.Is(err, domain.ErrChannelExists) {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
	channels, _ := service.ListChannels(ctx)
	if len(channels) != 1 {
		t.Fatalf("expected one channel after duplicate, got %d", len(channels))
	}
}

func TestCreateChannelRejectsPunctuation(t *testing.T) {
	service, _ := newTestService(t)
	_, err := service.CreateChannel(context.Background(), "admin", app.ChannelInput{Name: "drop;table"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestJoinAfterSubmitIsRefused(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	ch := mustChannel(t, service, "Evening")

	joined, err := service.JoinChannel(ctx, ch.Code, "alice")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.Channel != "Evening" {
		t.Fatalf("expected channel name in join result, got %q", joined.Channel)
	}
	if _, err := service.SubmitQuiz(ctx, "alice", ch.Code); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err = service.JoinChannel(ctx, ch.Code, "alice")
	if !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected already submitted, got %v", err)
	}
}

func TestRejoinRestartsClock(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	ch := mustChannel(t, service, "Evening")

	first, _ := service.JoinChannel(ctx, ch.Code, "alice")
	time.Sleep(5 * time.Millisecond)
	second, err := service.JoinChannel(ctx, ch.Code, "alice")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if !second.QuizStartedAt.After(first.QuizStartedAt) {
		t.Fatalf("expected start time reset, first=%s second=%s", first.QuizStartedAt, second.QuizStartedAt)
	}
}

func TestJoinUnknownCode(t *testing.T) {
	service, _ := newTestService(t)
	_, err := service.JoinChannel(context.Background(), "NOPE00", "alice")
	if !errors.Is(err, domain.ErrChannelNotFound) {
		t.Fatalf("expected channel not found, got %v", err)
	}
}

func TestSubmitAnswerScoresAndReplaces(t *testing.T) {
	ctx := context.Background()
	service, questions := newTestService(t)
	ch := mustChannel(t, service, "Morning")
	_, _ = service.JoinChannel(ctx, ch.Code, "bob")

	q := questions[0]
	out, err := service.SubmitAnswer(ctx, "bob", ch.Code, q.ID, q.CorrectAnswer)
	if err != nil {
		t.Fatalf("submit answer: %v", err)
	}
	if !out.Correct || out.Score != 1 {
		t.Fatalf("expected correct with score 1, got %+v", out)
	}

	wrong := "A"
	if q.CorrectAnswer == "A" {
		wrong = "B"
	}
	out, err = service.SubmitAnswer(ctx, "bob", ch.Code, q.ID, wrong)
	if err != nil {
		t.Fatalf("resubmit answer: %v", err)
	}
	if out.Correct || out.Score != 0 {
		t.Fatalf("expected replacement to drop score, got %+v", out)
	}

	if _, err := service.SubmitAnswer(ctx, "bob", ch.Code, q.ID, "E"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid letter error, got %v", err)
	}
	final, err := service.SubmitQuiz(ctx, "bob", ch.Code)
	if err != nil {
		t.Fatalf("submit quiz: %v", err)
	}
	if final.FinalScore != 0 {
		t.Fatalf("expected final score 0, got %d", final.FinalScore)
	}
	if _, err := service.SubmitAnswer(ctx, "bob", ch.Code, q.ID, q.CorrectAnswer); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected answers refused after submit, got %v", err)
	}
}

func TestRandomQuestionsSamples(t *testing.T) {
	ctx := context.Background()
	service, questions := newTestService(t)

	sample, err := service.RandomQuestions(ctx, 3)
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	if len(sample) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(sample))
	}
	seen := map[int64]bool{}
	for _, q := range sample {
		if seen[q.ID] {
			t.Fatalf("duplicate question %d in sample", q.ID)
		}
		seen[q.ID] = true
	}

	all, _ := service.RandomQuestions(ctx, 70)
	if len(all) != len(questions) {
		t.Fatalf("expected whole bank when smaller than count, got %d", len(all))
	}
}

func TestQuestionMutationsInvalidateBank(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	before, _ := service.RandomQuestions(ctx, 100)
	if _, err := service.AddQuestion(ctx, app.QuestionInput{
		Text: "Which service runs code without servers?", OptionA: "EC2", OptionB: "Lambda", OptionC: "EBS", OptionD: "VPC", CorrectAnswer: "B",
	}); err != nil {
		t.Fatalf("add question: %v", err)
	}
	after, _ := service.RandomQuestions(ctx, 100)
	if len(after) != len(before)+1 {
		t.Fatalf("expected bank to grow by one, before=%d after=%d", len(before), len(after))
	}

	_, err := service.AddQuestion(ctx, app.QuestionInput{
		Text: "Which service runs code without servers?", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectAnswer: "A",
	})
	if !errors.Is(err, domain.ErrQuestionExists) {
		t.Fatalf("expected duplicate question error, got %v", err)
	}
	_, err = service.AddQuestion(ctx, app.QuestionInput{Text: "x", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectAnswer: "E"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid correct answer, got %v", err)
	}
}

func TestAdminAccounts(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	if _, err := service.AuthenticateAdmin(ctx, "admin", "admin123"); err != nil {
		t.Fatalf("bootstrap admin login: %v", err)
	}
	if _, err := service.AuthenticateAdmin(ctx, "admin", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	acct, err := service.CreateAdmin(ctx, app.AdminInput{Username: "carol", Password: "s3cret"})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if _, err := service.CreateAdmin(ctx, app.AdminInput{Username: "carol", Password: "x"}); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected duplicate admin, got %v", err)
	}

	err = service.ChangePassword(ctx, "carol", app.PasswordInput{CurrentPassword: "nope", NewPassword: "n3w"})
	if !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("expected wrong password, got %v", err)
	}
	if err := service.ChangePassword(ctx, "carol", app.PasswordInput{CurrentPassword: "s3cret", NewPassword: "n3w"}); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := service.AuthenticateAdmin(ctx, "carol", "n3w"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	if err := service.DeleteAdmin(ctx, acct.ID, "carol"); !errors.Is(err, domain.ErrSelfDelete) {
		t.Fatalf("expected self delete refusal, got %v", err)
	}
	if _, err := service.CreateChannel(ctx, "carol", app.ChannelInput{Name: "Owned"}); err != nil {
		t.Fatalf("create channel: %v", err)
	}
	if err := service.DeleteAdmin(ctx, acct.ID, "admin"); !errors.Is(err, domain.ErrUserOwnsChannels) {
		t.Fatalf("expected owner refusal, got %v", err)
	}
}

func TestResultsAndReport(t *testing.T) {
	ctx := context.Background()
	service, questions := newTestService(t)
	ch := mustChannel(t, service, "Finals")
	_, _ = service.JoinChannel(ctx, ch.Code, "dana")
	for _, q := range questions[:2] {
		if _, err := service.SubmitAnswer(ctx, "dana", ch.Code, q.ID, q.CorrectAnswer); err != nil {
			t.Fatalf("answer: %v", err)
		}
	}
	_, _ = service.SubmitQuiz(ctx, "dana", ch.Code)

	results, err := service.Results(ctx)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 1 || results[0].Score != 2 || results[0].TotalQuestions != 2 || results[0].Channel != "Finals" {
		t.Fatalf("unexpected results %+v", results)
	}

	report, err := service.ParticipantReport(ctx, "dana", "")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Score != 2 || len(report.Answers) != 2 || report.Answers[0].QuestionText != questions[0].Text {
		t.Fatalf("unexpected report %+v", report)
	}

	if err := service.ClearResults(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if results, _ := service.Results(ctx); len(results) != 0 {
		t.Fatalf("expected no results after clear, got %d", len(results))
	}
	if channels, _ := service.ListChannels(ctx); len(channels) != 0 {
		t.Fatalf("expected channels cleared, got %d", len(channels))
	}
	if _, err := service.ParticipantReport(ctx, "dana", ""); !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("expected no report after clear, got %v", err)
	}
}

func TestDeleteQuestionGuards(t *testing.T) {
	ctx := context.Background()
	service, questions := newTestService(t)
	ch := mustChannel(t, service, "Guards")
	_, _ = service.JoinChannel(ctx, ch.Code, "erin")
	_, _ = service.SubmitAnswer(ctx, "erin", ch.Code, questions[0].ID, "A")

	if err := service.DeleteQuestion(ctx, questions[0].ID); !errors.Is(err, domain.ErrQuestionAnswered) {
		t.Fatalf("expected answered refusal, got %v", err)
	}
	if err := service.DeleteQuestion(ctx, questions[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := service.DeleteQuestion(ctx, 9999); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func newTestService(t *testing.T) (*app.PlatformService, []domain.Question) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	service := app.NewPlatformService(store, memory.NewQuestionBank(store, time.Minute), memory.NewBoardStore())
	if err := service.EnsureAdmin(ctx, "admin", "admin123"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	var questions []domain.Question
	for i, letter := range []string{"A", "B", "C", "D", "A"} {
		q, err := service.AddQuestion(ctx, app.QuestionInput{
			Text:          fmt.Sprintf("Question %d", i+1),
			OptionA:       "first",
			OptionB:       "second",
			OptionC:       "third",
			OptionD:       "fourth",
			CorrectAnswer: letter,
		})
		if err != nil {
			t.Fatalf("seed question: %v", err)
		}
		questions = append(questions, q)
	}
	return service, questions
}

func mustChannel(t *testing.T, service *app.PlatformService, name string) domain.Channel {
	t.Helper()
	ch, err := service.CreateChannel(context.Background(), "admin", app.ChannelInput{Name: name})
	if err != nil {
		t.Fatalf("create channel: %v", err)
	}
	return ch
}
