// Package advisor calls the opaque text-generation service for move
// suggestions and hints. The service is best-effort: whatever comes back is
// mined for a JSON object, and anything unusable degrades to a neutral
// fallback instead of an error that could break a game.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sabca0328/chess-ai-game/internal/obslog"
	"github.com/sabca0328/chess-ai-game/pkg/roomdto"
)

// ErrNoSuggestion is returned by SuggestMove when the service produced no
// usable move. Callers fall back to their own move selection.
var ErrNoSuggestion = errors.New("advisor returned no usable move")

const (
	defaultTimeout  = 25 * time.Second
	historyTailPlys = 16
)

type Client struct {
	endpoint string
	model    string
	http     *fasthttp.Client
	timeout  time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func NewClient(endpoint, model string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		http: &fasthttp.Client{
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    10 * time.Second,
			MaxConnsPerHost: 16,
		},
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// generateResponse covers the response shapes the service is known to emit:
// a plain text field under one of several names, or raw JSON in the body.
type generateResponse struct {
	Output   string `json:"output"`
	Response string `json:"response"`
	Text     string `json:"text"`
}

// Suggest asks the service for an analysis of the position. It never returns
// an error for malformed service output, only for transport-level failure;
// garbage degrades to Fallback().
func (c *Client) Suggest(ctx context.Context, fen string, history []string, level int) (roomdto.Suggestion, error) {
	if level < 1 || level > 3 {
		level = 2
	}
	body, err := json.Marshal(generateRequest{Model: c.model, Input: buildPrompt(fen, history, level)})
	if err != nil {
		return Fallback(), err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()
	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(c.endpoint)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		return Fallback(), fmt.Errorf("advisor request: %w", err)
	}
	if status := resp.StatusCode(); status < 200 || status >= 300 {
		return Fallback(), fmt.Errorf("advisor status %d", status)
	}

	suggestion, ok := MineSuggestion(string(resp.Body()))
	if !ok {
		obslog.L().Warn("advisor_fallback", zap.String("fen", fen))
		return Fallback(), nil
	}
	return suggestion, nil
}

// SuggestMove implements the room advisor interface: just the move text.
func (c *Client) SuggestMove(ctx context.Context, fen string, history []string, level int) (string, error) {
	s, err := c.Suggest(ctx, fen, history, level)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s.BestMove) == "" {
		return "", ErrNoSuggestion
	}
	return s.BestMove, nil
}

// Fallback is the fixed neutral suggestion used whenever the service output
// is unusable.
func Fallback() roomdto.Suggestion {
	return roomdto.Suggestion{
		Hint:            "analysis unavailable, try again",
		PositionSummary: "the advisory service returned no usable analysis",
	}
}

// MineSuggestion digs a suggestion JSON object out of free-form service
// output: unwraps known envelope fields, strips markdown fences, then
// parses the first balanced object mentioning bestMove.
func MineSuggestion(raw string) (roomdto.Suggestion, bool) {
	text := raw
	var env generateResponse
	if err := json.Unmarshal([]byte(raw), &env); err == nil {
		for _, cand := range []string{env.Output, env.Response, env.Text} {
			if strings.TrimSpace(cand) != "" {
				text = cand
				break
			}
		}
	}
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return roomdto.Suggestion{}, false
	}
	var s roomdto.Suggestion
	if err := json.Unmarshal([]byte(text[start:end+1]), &s); err != nil {
		return roomdto.Suggestion{}, false
	}
	if strings.TrimSpace(s.BestMove) == "" {
		return roomdto.Suggestion{}, false
	}
	if s.AlternativeMoves == nil {
		s.AlternativeMoves = []string{}
	}
	return s, true
}

func (c *Client) deadline(ctx context.Context) time.Time {
	own := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(own) {
		return dl
	}
	return own
}

func buildPrompt(fen string, history []string, level int) string {
	if len(history) > historyTailPlys {
		history = history[len(history)-historyTailPlys:]
	}
	var b strings.Builder
	b.WriteString("You are a chess assistant. Analyze the position and reply with ONLY a JSON object, no markdown and no extra text:\n")
	b.WriteString(`{"bestMove": "coordinate move such as e2-e4 or e4xd5", "alternativeMoves": ["..."], "hint": "...", "positionSummary": "..."}` + "\n\n")
	fmt.Fprintf(&b, "Position (FEN, board and side to move): %s\n", fen)
	if len(history) > 0 {
		fmt.Fprintf(&b, "Recent moves: %s\n", strings.Join(history, " "))
	}
	fmt.Fprintf(&b, "Analysis level: %d (1 = best move only, 2 = a few candidates, 3 = deep positional analysis)\n", level)
	b.WriteString("Moves use coordinate notation: from-to, x for captures, =Q style promotions, castling as the king move (e1-g1). Every move must be legal.\n")
	return b.String()
}
