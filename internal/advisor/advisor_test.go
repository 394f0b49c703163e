package advisor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-model", WithTimeout(2*time.Second))
}

func TestSuggestParsesPlainJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		w.Write([]byte(`{"bestMove":"e2-e4","alternativeMoves":["d2-d4"],"hint":"take the center","positionSummary":"opening"}`))
	})
	s, err := c.Suggest(context.Background(), "start fen w", nil, 2)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if s.BestMove != "e2-e4" {
		t.Errorf("BestMove = %q", s.BestMove)
	}
	if len(s.AlternativeMoves) != 1 || s.AlternativeMoves[0] != "d2-d4" {
		t.Errorf("AlternativeMoves = %v", s.AlternativeMoves)
	}
}

func TestSuggestUnwrapsEnvelopeAndFences(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output":"Here you go:\n` + "```json\\n" +
			`{\"bestMove\": \"g1-f3\", \"hint\": \"develop\", \"positionSummary\": \"calm\"}\n` +
			"```" + `"}`))
	})
	s, err := c.Suggest(context.Background(), "fen", []string{"e4", "e5"}, 1)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if s.BestMove != "g1-f3" {
		t.Errorf("BestMove = %q", s.BestMove)
	}
	if s.AlternativeMoves == nil {
		t.Error("AlternativeMoves should be non-nil")
	}
}

func TestSuggestGarbageFallsBack(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("I cannot analyze this position, sorry."))
	})
	s, err := c.Suggest(context.Background(), "fen", nil, 2)
	if err != nil {
		t.Fatalf("garbage output must not be an error: %v", err)
	}
	if s.BestMove != "" {
		t.Errorf("fallback BestMove = %q", s.BestMove)
	}
	if s.Hint == "" {
		t.Error("fallback hint should be set")
	}
}

func TestSuggestTransportErrorReturnsFallbackAndError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "test-model", WithTimeout(200*time.Millisecond))
	s, err := c.Suggest(context.Background(), "fen", nil, 2)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if s.Hint == "" {
		t.Error("fallback hint should be set alongside the error")
	}
}

func TestSuggestNon2xxIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})
	if _, err := c.Suggest(context.Background(), "fen", nil, 2); err == nil {
		t.Fatal("expected status error")
	}
}

func TestSuggestMoveEmptyBestMove(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bestMove":"","hint":"?"}`))
	})
	if _, err := c.SuggestMove(context.Background(), "fen", nil, 2); err != ErrNoSuggestion {
		t.Fatalf("err = %v, want ErrNoSuggestion", err)
	}
}

func TestMineSuggestionSurroundingProse(t *testing.T) {
	s, ok := MineSuggestion("Sure! Best is: {\"bestMove\":\"d7-d5\",\"hint\":\"counter\"} good luck")
	if !ok {
		t.Fatal("expected a parse")
	}
	if s.BestMove != "d7-d5" {
		t.Errorf("BestMove = %q", s.BestMove)
	}
}

func TestMineSuggestionRejectsNoObject(t *testing.T) {
	if _, ok := MineSuggestion("no braces here"); ok {
		t.Error("expected failure")
	}
	if _, ok := MineSuggestion(`{"hint":"no move"}`); ok {
		t.Error("object without bestMove must be rejected")
	}
}
