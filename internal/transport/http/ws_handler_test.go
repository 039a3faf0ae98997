package http

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"timed-quiz-platform/internal/app"
)

func TestWebSocketStandingsFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ch, err := f.service.CreateChannel(ctx, "admin", app.ChannelInput{Name: "Live"})
	if err != nil {
		t.Fatalf("create channel: %v", err)
	}
	token, _ := f.tokens.Issue("admin")

	u := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/channels/" + ch.Code + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot is empty.
	_, payload := readNext(conn, t, "standings")
	if entries, _ := payload["entries"].([]any); len(entries) != 0 {
		t.Fatalf("expected empty standings, got %v", payload)
	}

	if _, err := f.service.JoinChannel(ctx, ch.Code, "alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	_, payload = readNext(conn, t, "standings")
	entries, _ := payload["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("expected alice in standings, got %v", payload)
	}

	if err := conn.WriteJSON(map[string]string{"type": "snapshot"}); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	readNext(conn, t, "standings")

	if err := conn.WriteJSON(map[string]string{"type": "answer"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, payload = readNext(conn, t, "error")
	if payload["message"] != "unsupported message type" {
		t.Fatalf("unexpected error payload %v", payload)
	}
}

func TestWebSocketRequiresToken(t *testing.T) {
	f := newFixture(t)
	ch, _ := f.service.CreateChannel(context.Background(), "admin", app.ChannelInput{Name: "Locked"})

	u := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/channels/" + ch.Code
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail without token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}
}

func TestWebSocketClosedWhenChannelDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ch, _ := f.service.CreateChannel(ctx, "admin", app.ChannelInput{Name: "Doomed"})
	token, _ := f.tokens.Issue("admin")

	u := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/channels/" + ch.Code + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readNext(conn, t, "standings")

	if err := f.service.DeleteChannel(ctx, ch.ID); err != nil {
		t.Fatalf("delete channel: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected connection to close after channel deletion")
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
