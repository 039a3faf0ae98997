package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"timed-quiz-platform/internal/domain"
)

type errorBody struct {
	Detail string `json:"detail"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeDetail(w, http.StatusUnauthorized, "not authenticated")
}

// statusFor maps domain errors onto the status codes clients distinguish.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrQuestionAnswered),
		errors.Is(err, domain.ErrWrongPassword),
		errors.Is(err, domain.ErrSelfDelete),
		errors.Is(err, domain.ErrUserOwnsChannels):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrChannelNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrParticipantNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrBoardNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrChannelExists),
		errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrQuestionExists),
		errors.Is(err, domain.ErrAlreadySubmitted),
		errors.Is(err, domain.ErrCodeTaken):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeDetail(w, status, "internal server error")
		return
	}
	writeDetail(w, status, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}
