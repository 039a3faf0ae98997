package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"timed-quiz-platform/internal/app"
	"timed-quiz-platform/internal/auth"
)

// WSHandler streams live channel standings to administrators.
type WSHandler struct {
	service  *app.PlatformService
	tokens   *auth.TokenService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.PlatformService, tokens *auth.TokenService) *WSHandler {
	return &WSHandler{
		service: service,
		tokens:  tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type string `json:"type"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and pushes a "standings" message on every
// change in the channel. Clients may send {"type":"snapshot"} to get the
// current standings on demand.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if _, err := h.tokens.Parse(r.URL.Query().Get("token")); err != nil {
		writeUnauthorized(w)
		return
	}

	updates, cancel, err := h.service.Subscribe(r.Context(), code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					// channel deleted; unblock the reader
					_ = conn.Close()
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "standings", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var inbound inboundMessage
		if err := json.Unmarshal(raw, &inbound); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid message"}}
			continue
		}
		switch inbound.Type {
		case "snapshot":
			st, err := h.service.Standings(r.Context(), code)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "standings", Payload: st}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
