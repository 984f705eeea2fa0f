package web

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/conorfennell/flashreview/internal/controls"
	"github.com/conorfennell/flashreview/internal/deck"
	"github.com/conorfennell/flashreview/internal/domain"
	"github.com/conorfennell/flashreview/internal/review"
	"github.com/conorfennell/flashreview/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *review.Manager) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m, err := review.NewManager(deck.Starter()[:3], storage.NewMemory(), review.WithLogger(logger))
	if err != nil {
		t.Fatalf("NewManager() returned an unexpected error: %v", err)
	}
	s, err := NewServer(m, logger)
	if err != nil {
		t.Fatalf("NewServer() returned an unexpected error: %v", err)
	}
	return s, m
}

func post(s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestGetCard(t *testing.T) {
	s, _ := newTestServer(t)

	rr := get(s, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, but got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"What does supervised learning mean?",
		"Card 1 / 3",
		"0 / 3 reviewed",
		"Show answer",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
	if strings.Contains(body, "Learning from labeled data") {
		t.Error("Expected the answer to be hidden before it is revealed")
	}
}

func TestToggleRevealsAnswer(t *testing.T) {
	s, m := newTestServer(t)

	rr := post(s, "/action/toggle", nil)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("Expected a redirect to /, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if !m.Revealed() {
		t.Fatal("Expected the answer to be revealed")
	}
	if body := get(s, "/").Body.String(); !strings.Contains(body, "Learning from labeled data") {
		t.Error("Expected the revealed answer on the page")
	}
}

func TestMarkAndNavigate(t *testing.T) {
	s, m := newTestServer(t)

	for _, path := range []string{"/action/known", "/action/unknown", "/action/next", "/action/prev", "/action/prev"} {
		if rr := post(s, path, nil); rr.Code != http.StatusSeeOther {
			t.Fatalf("%s: expected 303, got %d", path, rr.Code)
		}
	}

	sess := m.Session()
	if sess.Deck[0].Status != domain.Known || sess.Deck[1].Status != domain.Unknown {
		t.Errorf("Unexpected statuses: %+v", sess.Deck)
	}
	if sess.Cursor != 1 {
		t.Errorf("Expected cursor 1, but got %d", sess.Cursor)
	}
	if body := get(s, "/").Body.String(); !strings.Contains(body, "2 / 3 reviewed") {
		t.Error("Expected progress to show two reviewed cards")
	}
}

func TestResetNeedsConfirmation(t *testing.T) {
	s, m := newTestServer(t)
	post(s, "/action/known", nil)

	post(s, "/action/reset", nil)
	if m.Stats().Reviewed != 1 {
		t.Fatal("Expected an unconfirmed reset to be ignored")
	}

	post(s, "/action/reset", url.Values{"confirm": {"yes"}})
	if m.Stats().Reviewed != 0 {
		t.Errorf("Expected a confirmed reset to clear progress, got %+v", m.Stats())
	}
}

func TestShuffleWithRNG(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m, err := review.NewManager(deck.Starter()[:3], storage.NewMemory(), review.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewServer(m, logger, controls.WithRNG(zeroRNG{}))
	if err != nil {
		t.Fatal(err)
	}

	post(s, "/action/shuffle", nil)
	order := m.Session().Order
	if order[0] != 1 || order[1] != 2 || order[2] != 0 {
		t.Errorf("Expected order [1 2 0], but got %v", order)
	}
}

type zeroRNG struct{}

func (zeroRNG) IntN(int) int { return 0 }

func TestExportDownload(t *testing.T) {
	s, _ := newTestServer(t)
	post(s, "/action/known", nil)

	rr := get(s, "/export")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, but got %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "flash_progress.json") {
		t.Errorf("Expected an attachment named flash_progress.json, got %q", cd)
	}
	sess, ok := review.Decode(rr.Body.String())
	if !ok {
		t.Fatalf("Expected the export to decode, got:\n%s", rr.Body.String())
	}
	if sess.Deck[0].Status != domain.Known || sess.Cursor != 1 {
		t.Errorf("Unexpected exported session: %+v", sess)
	}
	if !strings.Contains(rr.Body.String(), `"exportedAt"`) {
		t.Error("Expected the export to carry exportedAt")
	}

	if rr := post(s, "/action/export", nil); rr.Header().Get("Location") != "/export" {
		t.Errorf("Expected the export action to redirect to /export, got %q", rr.Header().Get("Location"))
	}
}

func TestGetState(t *testing.T) {
	s, _ := newTestServer(t)
	post(s, "/action/toggle", nil)

	rr := get(s, "/state")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, but got %d", rr.Code)
	}
	var resp stateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode state: %v", err)
	}
	if !resp.Revealed || resp.Stats.Total != 3 || resp.Current.ID != 0 {
		t.Errorf("Unexpected state: %+v", resp)
	}
}

func TestUnknownRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	if rr := post(s, "/action/fly", nil); rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown action, got %d", rr.Code)
	}
	if rr := get(s, "/action/next"); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET on an action, got %d", rr.Code)
	}
	if rr := get(s, "/static/app.js"); rr.Code != http.StatusOK {
		t.Errorf("Expected static assets to be served, got %d", rr.Code)
	}
}

func TestKeyBindingsMatchControls(t *testing.T) {
	s, _ := newTestServer(t)
	script := get(s, "/static/app.js").Body.String()
	page := get(s, "/").Body.String()

	for _, key := range []string{" ", "ArrowRight", "ArrowLeft", "n", "p", "k", "d", "s", "r", "e"} {
		action, ok := controls.ForKey(key)
		if !ok {
			t.Fatalf("Expected %q to be bound in controls", key)
		}
		if binding := fmt.Sprintf("'%s': '%s'", key, action); !strings.Contains(script, binding) {
			t.Errorf("Expected app.js to bind %s", binding)
		}
		if !strings.Contains(page, fmt.Sprintf(`data-action="%s"`, action)) {
			t.Errorf("Expected the page to have a %s control", action)
		}
	}
}
