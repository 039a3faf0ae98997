package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"timed-quiz-platform/internal/app"
	"timed-quiz-platform/internal/auth"
	"timed-quiz-platform/internal/domain"
	"timed-quiz-platform/internal/infra/memory"
)

type fixture struct {
	server  *httptest.Server
	service *app.PlatformService
	tokens  *auth.TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	service := app.NewPlatformService(store, memory.NewQuestionBank(store, time.Minute), memory.NewBoardStore())
	if err := service.EnsureAdmin(ctx, "admin", "admin123"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	for i, letter := range []string{"A", "B", "C"} {
		_, err := service.AddQuestion(ctx, app.QuestionInput{
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
	}
	tokens := auth.NewTokenService("test-secret", time.Hour)
	server := httptest.NewServer(NewRouter(service, tokens, []string{"*"}))
	t.Cleanup(server.Close)
	return &fixture{server: server, service: service, tokens: tokens}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (f *fixture) login(t *testing.T) string {
	t.Helper()
	var res loginResponse
	status := f.do(t, http.MethodPost, "/admin/login", "", loginRequest{Username: "admin", Password: "admin123"}, &res)
	if status != http.StatusOK || !res.Success || res.Token == "" {
		t.Fatalf("login failed: status=%d body=%+v", status, res)
	}
	return res.Token
}

func TestParticipantFlow(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	var ch domain.Channel
	if status := f.do(t, http.MethodPost, "/admin/channels", token, app.ChannelInput{Name: "Morning"}, &ch); status != http.StatusOK {
		t.Fatalf("create channel status %d", status)
	}

	var joined domain.JoinResult
	if status := f.do(t, http.MethodPost, "/join-channel/", "", joinRequest{Code: ch.Code, Username: "alice"}, &joined); status != http.StatusOK {
		t.Fatalf("join status %d", status)
	}
	if joined.Channel != "Morning" {
		t.Fatalf("expected channel name, got %+v", joined)
	}

	var questions []domain.Question
	if status := f.do(t, http.MethodGet, "/questions/random/70", "", nil, &questions); status != http.StatusOK {
		t.Fatalf("questions status %d", status)
	}
	if len(questions) != 3 {
		t.Fatalf("expected all 3 questions, got %d", len(questions))
	}

	q := questions[0]
	var outcome domain.AnswerOutcome
	path := "/submit-answer/?username=alice&channel_code=" + ch.Code
	if status := f.do(t, http.MethodPost, path, "", answerRequest{QuestionID: q.ID, SelectedAnswer: q.CorrectAnswer}, &outcome); status != http.StatusOK {
		t.Fatalf("answer status %d", status)
	}
	if !outcome.Correct || outcome.Score != 1 {
		t.Fatalf("expected correct answer, got %+v", outcome)
	}

	var submitted domain.SubmitOutcome
	if status := f.do(t, http.MethodPost, "/submit-quiz/?username=alice&channel_code="+ch.Code, "", nil, &submitted); status != http.StatusOK {
		t.Fatalf("submit status %d", status)
	}
	if submitted.FinalScore != 1 {
		t.Fatalf("expected final score 1, got %+v", submitted)
	}

	var body errorBody
	if status := f.do(t, http.MethodPost, "/join-channel/", "", joinRequest{Code: ch.Code, Username: "alice"}, &body); status != http.StatusConflict {
		t.Fatalf("expected 409 on rejoin, got %d", status)
	}
	if body.Detail == "" {
		t.Fatalf("expected detail in error body")
	}

	if status := f.do(t, http.MethodPost, "/join-channel/", "", joinRequest{Code: "NOPE00", Username: "bob"}, &body); status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown code, got %d", status)
	}
}

func TestSubmitAnswerRejectsBadLetter(t *testing.T) {
	f := newFixture(t)
	ch, _ := f.service.CreateChannel(context.Background(), "admin", app.ChannelInput{Name: "Letters"})
	if _, err := f.service.JoinChannel(context.Background(), ch.Code, "alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	var body errorBody
	path := "/submit-answer/?username=alice&channel_code=" + ch.Code
	if status := f.do(t, http.MethodPost, path, "", answerRequest{QuestionID: 2, SelectedAnswer: "E"}, &body); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	f := newFixture(t)
	var body errorBody
	if status := f.do(t, http.MethodGet, "/admin/channels", "", nil, &body); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
	if status := f.do(t, http.MethodGet, "/admin/results", "garbage", nil, &body); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", status)
	}

	var res loginResponse
	if status := f.do(t, http.MethodPost, "/admin/login", "", loginRequest{Username: "admin", Password: "wrong"}, &res); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", status)
	}
}

func TestQuestionCRUD(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	in := app.QuestionInput{Text: "Capital of France?", OptionA: "Paris", OptionB: "Rome", OptionC: "Berlin", OptionD: "Madrid", CorrectAnswer: "A"}
	var q domain.Question
	if status := f.do(t, http.MethodPost, "/admin/questions", token, in, &q); status != http.StatusOK {
		t.Fatalf("add status %d", status)
	}
	var body errorBody
	if status := f.do(t, http.MethodPost, "/admin/questions", token, in, &body); status != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate text, got %d", status)
	}

	in.CorrectAnswer = "B"
	var updated domain.Question
	if status := f.do(t, http.MethodPut, fmt.Sprintf("/admin/questions/%d", q.ID), token, in, &updated); status != http.StatusOK {
		t.Fatalf("update status %d", status)
	}
	if updated.CorrectAnswer != "B" {
		t.Fatalf("expected updated answer, got %+v", updated)
	}

	var msg messageBody
	if status := f.do(t, http.MethodDelete, fmt.Sprintf("/admin/questions/%d", q.ID), token, nil, &msg); status != http.StatusOK {
		t.Fatalf("delete status %d", status)
	}
	if status := f.do(t, http.MethodDelete, "/admin/questions/abc", token, nil, &body); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", status)
	}

	var list []domain.Question
	f.do(t, http.MethodGet, "/admin/questions", token, nil, &list)
	if len(list) != 3 {
		t.Fatalf("expected seeded questions only, got %d", len(list))
	}
}

func TestResultsAndReport(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)
	ctx := context.Background()

	ch, _ := f.service.CreateChannel(ctx, "admin", app.ChannelInput{Name: "Reports"})
	if _, err := f.service.JoinChannel(ctx, ch.Code, "alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	questions, _ := f.service.ListQuestions(ctx)
	if _, err := f.service.SubmitAnswer(ctx, "alice", ch.Code, questions[0].ID, "A"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	var results []domain.ResultSummary
	f.do(t, http.MethodGet, "/admin/results", token, nil, &results)
	if len(results) != 1 || results[0].Score != 1 || results[0].TotalQuestions != 1 {
		t.Fatalf("unexpected results %+v", results)
	}

	var report domain.ParticipantReport
	if status := f.do(t, http.MethodGet, "/admin/results/alice?channel="+ch.Code, token, nil, &report); status != http.StatusOK {
		t.Fatalf("report status %d", status)
	}
	if len(report.Answers) != 1 || report.Answers[0].QuestionText != "Question 1" {
		t.Fatalf("unexpected report %+v", report)
	}

	var msg messageBody
	f.do(t, http.MethodDelete, "/admin/results", token, nil, &msg)
	f.do(t, http.MethodGet, "/admin/results", token, nil, &results)
	if len(results) != 0 {
		t.Fatalf("expected results cleared, got %d", len(results))
	}
}

func TestAdminUserManagement(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	var acct domain.AdminAccount
	if status := f.do(t, http.MethodPost, "/admin/users", token, app.AdminInput{Username: "second", Password: "pw"}, &acct); status != http.StatusOK {
		t.Fatalf("create admin status %d", status)
	}

	var body errorBody
	pw := app.PasswordInput{CurrentPassword: "nope", NewPassword: "new"}
	if status := f.do(t, http.MethodPut, "/admin/users/second/password", token, pw, &body); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong current password, got %d", status)
	}

	var admins []domain.AdminAccount
	f.do(t, http.MethodGet, "/admin/users", token, nil, &admins)
	var selfID int64
	for _, a := range admins {
		if a.Username == "admin" {
			selfID = a.ID
		}
	}
	if status := f.do(t, http.MethodDelete, fmt.Sprintf("/admin/users/%d", selfID), token, nil, &body); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for self delete, got %d", status)
	}

	var msg messageBody
	if status := f.do(t, http.MethodDelete, fmt.Sprintf("/admin/users/%d", acct.ID), token, nil, &msg); status != http.StatusOK {
		t.Fatalf("delete admin status %d", status)
	}
}
