package activity

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	activityService "github.com/jaidee/backend/internal/service/activity"
	"github.com/jaidee/backend/internal/testutil"
)

func setupRouter(gw *testutil.Gateway) *chi.Mux {
	handler := New(activityService.NewService(gw, activityService.Config{}))
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postPont(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/pont", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRecommendAcceptsStringAndNumber(t *testing.T) {
	gw := testutil.NewGateway("ลองวาดรูปดูนะ")
	r := setupRouter(gw)

	for _, body := range []string{`{"message":"2.5"}`, `{"message":2.5}`} {
		resp := postPont(r, body)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", body, resp.Code)
		}

		var out recommendResponse
		if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if out.Score != 2.5 || out.Band != "2.1–3" || out.Reply != "ลองวาดรูปดูนะ" {
			t.Fatalf("%s: unexpected response %+v", body, out)
		}
	}
}

func TestRecommendClampsOutOfRange(t *testing.T) {
	gw := testutil.NewGateway("ok")
	r := setupRouter(gw)

	var out recommendResponse
	_ = json.Unmarshal(postPont(r, `{"message":"-3"}`).Body.Bytes(), &out)
	if out.Score != 0 || out.Band != "0–1" {
		t.Fatalf("-3 should clamp to 0, got %+v", out)
	}

	_ = json.Unmarshal(postPont(r, `{"message":9.9}`).Body.Bytes(), &out)
	if out.Score != 5 || out.Band != "4.1–5" {
		t.Fatalf("9.9 should clamp to 5, got %+v", out)
	}
	if !strings.Contains(gw.LastRequest().Prompt, "คือ 5 จาก 5") {
		t.Fatalf("prompt should carry the clamped score")
	}
}

func TestRecommendRejectsNonNumeric(t *testing.T) {
	gw := testutil.NewGateway("ok")
	r := setupRouter(gw)

	for _, body := range []string{`{"message":"abc"}`, `{"message":null}`, `{}`, `{"message":true}`, `not json`} {
		if resp := postPont(r, body); resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, resp.Code)
		}
	}
	if gw.Calls() != 0 {
		t.Fatalf("expected no gateway calls, got %d", gw.Calls())
	}
}

func TestRecommendGatewayFailure(t *testing.T) {
	r := setupRouter(testutil.FailingGateway(testutil.NetworkError()))

	resp := postPont(r, `{"message":"4.5"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var out recommendResponse
	_ = json.Unmarshal(resp.Body.Bytes(), &out)
	if out.Reply != activityService.Bands[4].Fallback {
		t.Fatalf("expected band fallback text, got %q", out.Reply)
	}
}
