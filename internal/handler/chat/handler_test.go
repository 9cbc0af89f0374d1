package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/jaidee/backend/internal/service/chat"
	"github.com/jaidee/backend/internal/testutil"
	"github.com/jaidee/backend/pkg/utils"
)

func setupRouter(gw *testutil.Gateway) (*chi.Mux, *chatservice.Service) {
	chatSvc := chatservice.NewService(gw, chatservice.NewMemoryStore(), chatservice.Options{})
	handler := New(chatSvc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func postJSON(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeChat(t *testing.T, resp *httptest.ResponseRecorder) chatResponse {
	t.Helper()
	var out chatResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, resp.Body.String())
	}
	return out
}

func TestChatCreatesSessionWhenMissing(t *testing.T) {
	r, _ := setupRouter(testutil.NewGateway("สวัสดีจ้า\n\nวันนี้เป็นไงบ้าง"))

	resp := postJSON(r, "/chat", map[string]string{"message": "สวัสดี"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	out := decodeChat(t, resp)
	if out.SessionID == "" {
		t.Fatal("expected a new session id")
	}
	if len(out.Parts) != 2 || out.Parts[0] != "สวัสดีจ้า" {
		t.Fatalf("unexpected parts: %q", out.Parts)
	}
}

func TestChatContinuesSession(t *testing.T) {
	gw := testutil.NewGateway("หนึ่ง", "สอง")
	r, _ := setupRouter(gw)

	first := decodeChat(t, postJSON(r, "/chat", map[string]string{"message": "a"}))
	resp := postJSON(r, "/chat", map[string]string{"message": "b", "sessionId": first.SessionID})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	second := decodeChat(t, resp)
	if second.SessionID != first.SessionID || second.Reply != "สอง" {
		t.Fatalf("unexpected second reply: %+v", second)
	}
	if got := len(gw.LastRequest().History); got != 2 {
		t.Fatalf("expected 2 prior turns, got %d", got)
	}
}

func TestChatEmptyMessage(t *testing.T) {
	gw := testutil.NewGateway("ok")
	r, _ := setupRouter(gw)

	resp := postJSON(r, "/chat", map[string]string{"message": "   "})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	var body map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &body)
	if body["error"] != utils.MessageRequired {
		t.Fatalf("unexpected error message %q", body["error"])
	}
	if gw.Calls() != 0 {
		t.Fatalf("gateway must not be called, got %d calls", gw.Calls())
	}
}

func TestChatInvalidBody(t *testing.T) {
	r, _ := setupRouter(testutil.NewGateway("ok"))

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString("{"))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatUnknownSession(t *testing.T) {
	r, _ := setupRouter(testutil.NewGateway("ok"))

	resp := postJSON(r, "/chat", map[string]string{"message": "hi", "sessionId": "missing"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestChatGatewayFailureReturnsFallback(t *testing.T) {
	gw := testutil.NewGateway("ok")
	r, chatSvc := setupRouter(gw)

	first := decodeChat(t, postJSON(r, "/chat", map[string]string{"message": "a"}))

	gw.SetError(testutil.NetworkError())
	resp := postJSON(r, "/chat", map[string]string{"message": "b", "sessionId": first.SessionID})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if out := decodeChat(t, resp); out.Reply != chatservice.FallbackReply {
		t.Fatalf("expected fallback reply, got %q", out.Reply)
	}

	history, err := chatSvc.History(context.Background(), first.SessionID)
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history must be unchanged, got %d turns", len(history))
	}
}

func TestSessionLifecycle(t *testing.T) {
	r, _ := setupRouter(testutil.NewGateway("ok"))

	resp := postJSON(r, "/chat/session", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var session struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &session); err != nil || session.ID == "" {
		t.Fatalf("unexpected session body: %s", resp.Body.String())
	}

	postJSON(r, "/chat", map[string]string{"message": "hello", "sessionId": session.ID})

	historyReq := httptest.NewRequest(http.MethodGet, "/chat/session/"+session.ID+"/history", nil)
	historyResp := httptest.NewRecorder()
	r.ServeHTTP(historyResp, historyReq)
	if historyResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", historyResp.Code)
	}
	var history struct {
		Turns []map[string]any `json:"turns"`
	}
	_ = json.Unmarshal(historyResp.Body.Bytes(), &history)
	if len(history.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(history.Turns))
	}

	if resp := postJSON(r, "/chat/session/"+session.ID+"/reset", nil); resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on reset, got %d", resp.Code)
	}

	deleteReq := httptest.NewRequest(http.MethodDelete, "/chat/session/"+session.ID, nil)
	deleteResp := httptest.NewRecorder()
	r.ServeHTTP(deleteResp, deleteReq)
	if deleteResp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", deleteResp.Code)
	}

	missingReq := httptest.NewRequest(http.MethodGet, "/chat/session/"+session.ID+"/history", nil)
	missingResp := httptest.NewRecorder()
	r.ServeHTTP(missingResp, missingReq)
	if missingResp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", missingResp.Code)
	}
}
