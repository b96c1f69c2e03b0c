package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"talentflow-assessments/internal/app"
	"talentflow-assessments/internal/infra/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.NewSeededStore()
	service := app.NewAssessmentService(memory.NewWorkspaceStore(), store, store)
	server := httptest.NewServer(NewRouter(service, nil, true))
	t.Cleanup(server.Close)
	return server, store
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketEditFlow(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dial(t, server, "workspaceId=ws-1&jobId=j3")

	// Expect the initial snapshot first.
	_, payload := readNext(conn, t, "snapshot")
	if payload["jobId"] != "j3" {
		t.Fatalf("expected snapshot for j3, got %v", payload["jobId"])
	}

	edit := map[string]any{
		"type": "edit",
		"payload": map[string]any{
			"op":      "addQuestion",
			"section": 0,
		},
	}
	if err := conn.WriteJSON(edit); err != nil {
		t.Fatalf("write edit: %v", err)
	}

	_, payload = readNext(conn, t, "snapshot")
	if payload["dirty"] != true {
		t.Fatalf("expected dirty snapshot, got %v", payload["dirty"])
	}
	sections := payload["assessment"].(map[string]any)["sections"].([]any)
	questions := sections[0].(map[string]any)["questions"].([]any)
	if len(questions) != 1 {
		t.Fatalf("expected one question after edit, got %d", len(questions))
	}

	if err := conn.WriteJSON(map[string]any{"type": "save"}); err != nil {
		t.Fatalf("write save: %v", err)
	}
	if !readUntil(conn, t, "saved") {
		t.Fatalf("expected saved message")
	}
}

func TestWebSocketSubmitValidation(t *testing.T) {
	server, store := newTestServer(t)
	conn := dial(t, server, "workspaceId=ws-2&jobId=j2")
	readNext(conn, t, "snapshot")

	if err := conn.WriteJSON(map[string]any{
		"type":    "response",
		"payload": map[string]any{"questionId": "q8", "value": "many"},
	}); err != nil {
		t.Fatalf("write response: %v", err)
	}
	readNext(conn, t, "snapshot")

	if err := conn.WriteJSON(map[string]any{"type": "submit"}); err != nil {
		t.Fatalf("write submit: %v", err)
	}
	var payload map[string]any
	for i := 0; i < 4; i++ {
		typ, p := readNext(conn, t, "")
		if typ == "validationError" {
			payload = p
			break
		}
	}
	if payload == nil {
		t.Fatalf("expected validationError message")
	}
	if payload["code"] != "NotANumber" || payload["questionId"] != "q8" {
		t.Fatalf("unexpected validation payload %v", payload)
	}
	if len(store.Submissions("j2")) != 0 {
		t.Fatalf("invalid responses must not be stored")
	}
}

func TestWebSocketRejectsUnknownType(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dial(t, server, "workspaceId=ws-3")
	readNext(conn, t, "snapshot")

	if err := conn.WriteJSON(map[string]any{"type": "explode"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, payload := readNext(conn, t, "error")
	if payload["message"] != "unsupported message type" {
		t.Fatalf("unexpected error payload %v", payload)
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

func readUntil(conn *websocket.Conn, t *testing.T, want string) bool {
	t.Helper()
	for i := 0; i < 5; i++ {
		typ, _ := readNext(conn, t, "")
		if typ == want {
			return true
		}
	}
	return false
}
