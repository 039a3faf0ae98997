package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"timed-quiz-platform/internal/app"
	"timed-quiz-platform/internal/auth"
)

// APIHandler serves the REST endpoints the quiz client talks to.
type APIHandler struct {
	service *app.PlatformService
	tokens  *auth.TokenService
}

func NewAPIHandler(service *app.PlatformService, tokens *auth.TokenService) *APIHandler {
	return &APIHandler{service: service, tokens: tokens}
}

type joinRequest struct {
	Code     string `json:"code"`
	Username string `json:"username"`
}

type answerRequest struct {
	QuestionID     int64  `json:"question_id"`
	SelectedAnswer string `json:"selected_answer"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeDetail(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *APIHandler) joinChannel(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.service.JoinChannel(r.Context(), req.Code, req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandler) randomQuestions(w http.ResponseWriter, r *http.Request) {
	count, err := strconv.Atoi(chi.URLParam(r, "count"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid count")
		return
	}
	qs, err := h.service.RandomQuestions(r.Context(), count)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, qs)
}

func (h *APIHandler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	q := r.URL.Query()
	out, err := h.service.SubmitAnswer(r.Context(), q.Get("username"), q.Get("channel_code"), req.QuestionID, req.SelectedAnswer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *APIHandler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.service.SubmitQuiz(r.Context(), q.Get("username"), q.Get("channel_code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *APIHandler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.service.AuthenticateAdmin(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tok, err := h.tokens.Issue(user.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Message: "Login successful", Token: tok})
}

func (h *APIHandler) listChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.service.ListChannels(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, channels)
}

func (h *APIHandler) createChannel(w http.ResponseWriter, r *http.Request) {
	var req app.ChannelInput
	if !decode(w, r, &req) {
		return
	}
	ch, err := h.service.CreateChannel(r.Context(), auth.AdminFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (h *APIHandler) deleteChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteChannel(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Channel deleted successfully"})
}

func (h *APIHandler) listQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := h.service.ListQuestions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, qs)
}

func (h *APIHandler) addQuestion(w http.ResponseWriter, r *http.Request) {
	var req app.QuestionInput
	if !decode(w, r, &req) {
		return
	}
	q, err := h.service.AddQuestion(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *APIHandler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.QuestionInput
	if !decode(w, r, &req) {
		return
	}
	q, err := h.service.UpdateQuestion(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *APIHandler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteQuestion(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Question deleted successfully"})
}

func (h *APIHandler) listResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Results(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *APIHandler) participantReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ParticipantReport(r.Context(), chi.URLParam(r, "username"), r.URL.Query().Get("channel"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *APIHandler) clearResults(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearResults(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "All results cleared successfully"})
}

func (h *APIHandler) listAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.ListAdmins(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

func (h *APIHandler) createAdmin(w http.ResponseWriter, r *http.Request) {
	var req app.AdminInput
	if !decode(w, r, &req) {
		return
	}
	acct, err := h.service.CreateAdmin(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *APIHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req app.PasswordInput
	if !decode(w, r, &req) {
		return
	}
	if err := h.service.ChangePassword(r.Context(), chi.URLParam(r, "username"), req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Password updated successfully"})
}

func (h *APIHandler) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteAdmin(r.Context(), id, auth.AdminFromContext(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "User deleted successfully"})
}
