package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"timed-quiz-platform/internal/domain"
)

// Client talks to the quiz REST API. It is safe for concurrent use once
// Login has returned.
type Client struct {
	http *resty.Client
}

type errorBody struct {
	Detail string `json:"detail"`
}

type messageBody struct {
	Message string `json:"message"`
}

// ChannelInput, QuestionInput, AdminInput and PasswordInput mirror the
// request bodies the server accepts.
type ChannelInput struct {
	Name string `json:"name"`
}

type QuestionInput struct {
	Text          string `json:"text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer"`
}

type AdminInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type PasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetError(&errorBody{})
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &Client{http: c}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode()}
		if eb, ok := resp.Error().(*errorBody); ok {
			apiErr.Detail = eb.Detail
		}
		return apiErr
	}
	return nil
}

func attemptQuery(username, channelCode string) string {
	q := url.Values{}
	q.Set("username", username)
	q.Set("channel_code", channelCode)
	return q.Encode()
}

func (c *Client) JoinChannel(ctx context.Context, code, username string) (domain.JoinResult, error) {
	var out domain.JoinResult
	err := c.do(ctx, "POST", "/join-channel/", map[string]string{"code": code, "username": username}, &out)
	return out, err
}

func (c *Client) RandomQuestions(ctx context.Context, count int) ([]domain.Question, error) {
	var out []domain.Question
	err := c.do(ctx, "GET", "/questions/random/"+strconv.Itoa(count), nil, &out)
	return out, err
}

func (c *Client) SubmitAnswer(ctx context.Context, username, channelCode string, questionID int64, letter string) (domain.AnswerOutcome, error) {
	var out domain.AnswerOutcome
	body := map[string]any{"question_id": questionID, "selected_answer": letter}
	err := c.do(ctx, "POST", "/submit-answer/?"+attemptQuery(username, channelCode), body, &out)
	return out, err
}

func (c *Client) SubmitQuiz(ctx context.Context, username, channelCode string) (domain.SubmitOutcome, error) {
	var out domain.SubmitOutcome
	err := c.do(ctx, "POST", "/submit-quiz/?"+attemptQuery(username, channelCode), nil, &out)
	return out, err
}

// Login authenticates an administrator and attaches the issued token to
// every later request.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	if err := c.do(ctx, "POST", "/admin/login", AdminInput{Username: username, Password: password}, &out); err != nil {
		return err
	}
	c.http.SetAuthToken(out.Token)
	return nil
}

// Logout drops the stored token.
func (c *Client) Logout() {
	c.http.SetAuthToken("")
}

func (c *Client) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	var out []domain.Channel
	err := c.do(ctx, "GET", "/admin/channels", nil, &out)
	return out, err
}

func (c *Client) CreateChannel(ctx context.Context, in ChannelInput) (domain.Channel, error) {
	var out domain.Channel
	err := c.do(ctx, "POST", "/admin/channels", in, &out)
	return out, err
}

func (c *Client) DeleteChannel(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", "/admin/channels/"+strconv.FormatInt(id, 10), nil, &messageBody{})
}

func (c *Client) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	var out []domain.Question
	err := c.do(ctx, "GET", "/admin/questions", nil, &out)
	return out, err
}

func (c *Client) AddQuestion(ctx context.Context, in QuestionInput) (domain.Question, error) {
	var out domain.Question
	err := c.do(ctx, "POST", "/admin/questions", in, &out)
	return out, err
}

func (c *Client) UpdateQuestion(ctx context.Context, id int64, in QuestionInput) (domain.Question, error) {
	var out domain.Question
	err := c.do(ctx, "PUT", "/admin/questions/"+strconv.FormatInt(id, 10), in, &out)
	return out, err
}

func (c *Client) DeleteQuestion(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", "/admin/questions/"+strconv.FormatInt(id, 10), nil, &messageBody{})
}

func (c *Client) Results(ctx context.Context) ([]domain.ResultSummary, error) {
	var out []domain.ResultSummary
	err := c.do(ctx, "GET", "/admin/results", nil, &out)
	return out, err
}

// ParticipantReport fetches one participant's detailed result. An empty
// channelCode selects the participant's latest attempt.
func (c *Client) ParticipantReport(ctx context.Context, username, channelCode string) (domain.ParticipantReport, error) {
	var out domain.ParticipantReport
	path := "/admin/results/" + url.PathEscape(username)
	if channelCode != "" {
		path += "?channel=" + url.QueryEscape(channelCode)
	}
	err := c.do(ctx, "GET", path, nil, &out)
	return out, err
}

func (c *Client) ClearResults(ctx context.Context) error {
	return c.do(ctx, "DELETE", "/admin/results", nil, &messageBody{})
}

func (c *Client) ListAdmins(ctx context.Context) ([]domain.AdminAccount, error) {
	var out []domain.AdminAccount
	err := c.do(ctx, "GET", "/admin/users", nil, &out)
	return out, err
}

func (c *Client) CreateAdmin(ctx context.Context, in AdminInput) (domain.AdminAccount, error) {
	var out domain.AdminAccount
	err := c.do(ctx, "POST", "/admin/users", in, &out)
	return out, err
}

func (c *Client) ChangePassword(ctx context.Context, username string, in PasswordInput) error {
	return c.do(ctx, "PUT", "/admin/users/"+url.PathEscape(username)+"/password", in, &messageBody{})
}

func (c *Client) DeleteAdmin(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", "/admin/users/"+strconv.FormatInt(id, 10), nil, &messageBody{})
}
