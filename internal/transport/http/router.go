package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"timed-quiz-platform/internal/app"
	"timed-quiz-platform/internal/auth"
)

// NewRouter wires the REST API and the standings websocket.
func NewRouter(service *app.PlatformService, tokens *auth.TokenService, allowedOrigins []string) http.Handler {
	api := NewAPIHandler(service, tokens)
	ws := NewWSHandler(service, tokens)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws/channels/{code}", ws.ServeWS)

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.Timeout(30 * time.Second))
		pr.Post("/join-channel", api.joinChannel)
		pr.Get("/questions/random/{count}", api.randomQuestions)
		pr.Post("/submit-answer", api.submitAnswer)
		pr.Post("/submit-quiz", api.submitQuiz)
		pr.Post("/admin/login", api.adminLogin)
	})

	r.Route("/admin", func(ar chi.Router) {
		ar.Use(middleware.Timeout(30 * time.Second))
		ar.Use(tokens.Middleware(writeUnauthorized))

		ar.Get("/channels", api.listChannels)
		ar.Post("/channels", api.createChannel)
		ar.Delete("/channels/{id}", api.deleteChannel)

		ar.Get("/questions", api.listQuestions)
		ar.Post("/questions", api.addQuestion)
		ar.Put("/questions/{id}", api.updateQuestion)
		ar.Delete("/questions/{id}", api.deleteQuestion)

		ar.Get("/results", api.listResults)
		ar.Get("/results/{username}", api.participantReport)
		ar.Delete("/results", api.clearResults)

		ar.Get("/users", api.listAdmins)
		ar.Post("/users", api.createAdmin)
		ar.Put("/users/{username}/password", api.changePassword)
		ar.Delete("/users/{id}", api.deleteAdmin)
	})
	return r
}
