package room

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sabca0328/chess-ai-game/pkg/roomdto"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

// newFakeClock starts at the real current time so registry sweeps comparing
// against time.Now keep sane deltas.
func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Now()}
}

func (f *fakeClock) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestSession(t *testing.T, advisor Advisor, hooks Hooks) (*Session, *fakeClock) {
	t.Helper()
	s := NewSession("room-test", Options{
		Name:            "test room",
		AllowSpectators: true,
		AllowAI:         true,
	}, advisor, hooks)
	clk := newFakeClock()
	s.nowFn = clk.now
	t.Cleanup(s.Close)
	return s, clk
}

func mustJoin(t *testing.T, s *Session, id, name string, role Role) roomdto.RoomView {
	t.Helper()
	v, err := s.Join(context.Background(), id, name, role)
	if err != nil {
		t.Fatalf("Join(%s): %v", id, err)
	}
	return v
}

// seatAndStart joins alice (white) and bob (black) and starts the game.
func seatAndStart(t *testing.T, s *Session) {
	t.Helper()
	mustJoin(t, s, "alice", "Alice", RolePlayer)
	mustJoin(t, s, "bob", "Bob", RolePlayer)
	if _, err := s.Start(context.Background(), "alice"); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func mustMove(t *testing.T, s *Session, userID, text string) roomdto.MoveResult {
	t.Helper()
	res, err := s.Move(context.Background(), userID, text)
	if err != nil {
		t.Fatalf("Move(%s, %q): %v", userID, text, err)
	}
	return res
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestJoinSeatsAndSpectators(t *testing.T) {
	s, _ := newTestSession(t, nil, Hooks{})
	ctx := context.Background()

	v := mustJoin(t, s, "alice", "Alice", RolePlayer)
	if v.Players[0].Color != "white" || v.Players[0].Role != "host" {
		t.Fatalf("first joiner = %+v, want white host", v.Players[0])
	}
	if v.HostID != "alice" {
		t.Fatalf("host = %q, want alice", v.HostID)
	}

	v = mustJoin(t, s, "bob", "Bob", RolePlayer)
	if v.Players[1].Color != "black" || v.Players[1].Role != "player" {
		t.Fatalf("second joiner = %+v, want black player", v.Players[1])
	}

	if _, err := s.Join(ctx, "carol", "Carol", RolePlayer); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("third seat err = %v, want ErrRoomFull", err)
	}
	v = mustJoin(t, s, "carol", "Carol", RoleSpectator)
	if len(v.Spectators) != 1 {
		t.Fatalf("spectators = %d, want 1", len(v.Spectators))
	}

	if _, err := s.Join(ctx, "", "Nameless", RolePlayer); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty id err = %v, want ErrValidation", err)
	}
	if _, err := s.Join(ctx, "dave", "Dave", Role("referee")); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("bad role err = %v, want ErrInvalidRole", err)
	}
}

func TestSpectatingDisabled(t *testing.T) {
	s := NewSession("room-nospec", Options{Name: "closed"}, nil, Hooks{})
	t.Cleanup(s.Close)
	if _, err := s.Join(context.Background(), "x", "X", RoleSpectator); !errors.Is(err, ErrSpectatingDisabled) {
		t.Fatalf("err = %v, want ErrSpectatingDisabled", err)
	}
}

func TestRejoinKeepsSeatAndColor(t *testing.T) {
	s, _ := newTestSession(t, nil, Hooks{})
	ctx := context.Background()
	mustJoin(t, s, "alice", "Alice", RolePlayer)
	mustJoin(t, s, "bob", "Bob", RolePlayer)

	if _, err := s.Leave(ctx, "bob"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	v := mustJoin(t, s, "bob", "Bob", RolePlayer)
	if len(v.Players) != 2 {
		t.Fatalf("players = %d after rejoin, want 2", len(v.Players))
	}
	if v.Players[1].Color != "black" || !v.Players[1].IsActive {
		t.Fatalf("rejoined seat = %+v, want active black", v.Players[1])
	}
}

func TestStartPreconditions(t *testing.T) {
	s, _ := newTestSession(t, nil, Hooks{})
	ctx := context.Background()
	mustJoin(t, s, "alice", "Alice", RolePlayer)

	if _, err := s.Start(ctx, "alice"); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("solo start err = %v, want ErrNotEnoughPlayers", err)
	}
	mustJoin(t, s, "bob", "Bob", RolePlayer)
	if _, err := s.Start(ctx, "ghost"); !errors.Is(err, ErrNotAPlayer) {
		t.Fatalf("stranger start err = %v, want ErrNotAPlayer", err)
	}
	if _, err := s.Start(ctx, "alice"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.Start(ctx, "alice"); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("double start err = %v, want ErrAlreadyStarted", err)
	}
}

func TestFirstMoveFlipsTurn(t *testing.T) {
	s, _ := newTestSession(t, nil, Hooks{})
	seatAndStart(t, s)

	res := mustMove(t, s, "alice", "e2-e4")
	if res.SAN != "e4" {
		t.Fatalf("SAN = %q, want e4", res.SAN)
	}
	parts := strings.Fields(res.FEN)
	if len(parts) != 2 || parts[1] != "b" {
		t.Fatalf("FEN after first move = %q, want side-to-move b", res.FEN)
	}
	if len(res.Room.MoveHistory) != 1 {
		t.Fatalf("history = %d, want 1", len(res.Room.MoveHistory))
	}
	if res.Room.Clock.ActiveColor != "black" {
		t.Fatalf("clock active = %s, want black", res.Room.Clock.ActiveColor)
	}
}

func TestMoveGatekeeping(t *testing.T) {
	s, _ := newTestSession(t, nil, Hooks{})
	ctx := context.Background()
	mustJoin(t, s, "alice", "Alice", RolePlayer)
	mustJoin(t, s, "bob", "Bob", RolePlayer)

	if _, err := s.Move(ctx, "alice", "e2-e4"); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("move before start err = %v, want ErrNotStarted", err)
	}
	if _, err := s.Start(ctx, "alice"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.Move(ctx, "ghost", "e2-e4"); !errors.Is(err, ErrNotAPlayer) {
		t.Fatalf("stranger move err = %v, want ErrNotAPlayer", err)
	}
	if _, err := s.Move(ctx, "bob", "e7-e5"); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("out-of-turn err = %v, want ErrNotYourTurn", err)
	}
}

// Two different legal moves for the same position submitted concurrently:
// exactly one may win the ply.
func TestConcurrentMovesSerialize(t *testing.T) {
	s, _ := newTestSession(t, nil, Hooks{})
	seatAndStart(t, s)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, text := range []string{"e2-e4", "d2-d4"} {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			_, errs[i] = s.Move(context.Background(), "alice", text)
		}(i, text)
	}
	wg.Wait()

	okCount := 0
	for _, err := range errs {
		if err == nil {
			okCount++
		} else if !errors.Is(err, ErrNotYourTurn) {
			t.Fatalf("loser err = %v, want ErrNotYourTurn", err)
		}
	}
	if okCount != 1 {
		t.Fatalf("%d moves succeeded, want exactly 1", okCount)
	}
	v, err := s.View(context.Background())
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(v.MoveHistory) != 1 {
		t.Fatalf("history = %d, want 1", len(v.MoveHistory))
	}
}

func TestCheckmateFinishesRoom(t *testing.T) {
	s, _ := newTestSession(t, nil, Hooks{})
	seatAndStart(t, s)

	mustMove(t, s, "alice", "f2-f3")
	mustMove(t, s, "bob", "e7-e5")
	mustMove(t, s, "alice", "g2-g4")
	res := mustMove(t, s, "bob", "Qh4")

	if res.SAN != "Qh4#" {
		t.Fatalf("SAN = %q, want Qh4#", res.SAN)
	}
	if res.GameStatus != "checkmate" {
		t.Fatalf("game status = %q, want checkmate", res.GameStatus)
	}
	room := res.Room
	if room.Status != string(StatusFinished) || room.Winner != "black" || room.EndReason != EndCheckmate {
		t.Fatalf("room = %s/%s/%s, want finished/black/checkmate", room.Status, room.Winner, room.EndReason)
	}
	if room.Clock.IsRunning {
		t.Fatal("finished room still has a running clock")
	}
	if _, err := s.Move(context.Background(), "alice", "e2-e4"); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("move after mate err = %v, want ErrGameFinished", err)
	}
}

func TestResign(t *testing.T) {
	s, _ := newTestSession(t, nil, Hooks{})
	seatAndStart(t, s)

	v, err := s.Resign(context.Background(), "bob")
	if err != nil {
		t.Fatalf("Resign: %v", err)
	}
	if v.Status != string(StatusFinished) || v.Winner != "white" || v.EndReason != EndResignation {
		t.Fatalf("room = %s/%s/%s, want finished/white/resignation", v.Status, v.Winner, v.EndReason)
	}
}

func TestDrawOfferProtocol(t *testing.T) {
	s, _ := newTestSession(t, nil, Hooks{})
	ctx := context.Background()
	seatAndStart(t, s)

	if _, err := s.AcceptDraw(ctx, "bob", ""); !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("accept without offer err = %v, want ErrOfferNotFound", err)
	}
	v, err := s.OfferDraw(ctx, "alice")
	if err != nil {
		t.Fatalf("OfferDraw: %v", err)
	}
	if len(v.DrawOffers) != 1 || v.DrawOffers[0].Status != string(OfferPending) {
		t.Fatalf("offers = %+v, want one pending", v.DrawOffers)
	}
	if _, err := s.AcceptDraw(ctx, "alice", v.DrawOffers[0].ID); !errors.Is(err, ErrOwnOffer) {
		t.Fatalf("self-accept err = %v, want ErrOwnOffer", err)
	}
	v, err = s.AcceptDraw(ctx, "bob", v.DrawOffers[0].ID)
	if err != nil {
		t.Fatalf("AcceptDraw: %v", err)
	}
	if v.Status != string(StatusFinished) || v.Winner != "" || v.EndReason != EndDraw {
		t.Fatalf("room = %s/%q/%s, want finished//draw", v.Status, v.Winner, v.EndReason)
	}
	if v.Clock.IsRunning {
		t.Fatal("finished room still has a running clock")
	}
}

func TestFlagFallOnMove(t *testing.T) {
	s, clk := newTestSession(t, nil, Hooks{})
	seatAndStart(t, s)

	clk.advance(DefaultClockSeconds*time.Second + time.Second)
	if _, err := s.Move(context.Background(), "alice", "e2-e4"); !errors.Is(err, ErrClockExpired) {
		t.Fatalf("flagged move err = %v, want ErrClockExpired", err)
	}
	v, err := s.View(context.Background())
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if v.Status != string(StatusFinished) || v.Winner != "black" || v.EndReason != EndTimeout {
		t.Fatalf("room = %s/%s/%s, want finished/black/timeout", v.Status, v.Winner, v.EndReason)
	}
	if v.Clock.IsRunning || v.Clock.White != 0 {
		t.Fatalf("clock = %+v, want stopped at zero", v.Clock)
	}
}

func TestFlagFallByInjectedTimeout(t *testing.T) {
	s, clk := newTestSession(t, nil, Hooks{})
	seatAndStart(t, s)
	mustMove(t, s, "alice", "e2-e4")

	// black sits on its full budget until the sweep notices
	clk.advance(DefaultClockSeconds*time.Second + time.Second)
	if err := s.CheckClock(context.Background()); err != nil {
		t.Fatalf("CheckClock: %v", err)
	}
	v, err := s.View(context.Background())
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if v.Status != string(StatusFinished) || v.Winner != "white" || v.EndReason != EndTimeout {
		t.Fatalf("room = %s/%s/%s, want finished/white/timeout", v.Status, v.Winner, v.EndReason)
	}
}

func TestClockChargesTheMover(t *testing.T) {
	s, clk := newTestSession(t, nil, Hooks{})
	seatAndStart(t, s)

	clk.advance(30 * time.Second)
	res := mustMove(t, s, "alice", "e2-e4")
	if res.Room.Clock.White != DefaultClockSeconds-30 {
		t.Fatalf("white clock = %d, want %d", res.Room.Clock.White, DefaultClockSeconds-30)
	}
	if res.Room.Clock.Black != DefaultClockSeconds {
		t.Fatalf("black clock = %d, want untouched %d", res.Room.Clock.Black, DefaultClockSeconds)
	}
}

func TestRematchResetsRoom(t *testing.T) {
	s, _ := newTestSession(t, nil, Hooks{})
	ctx := context.Background()
	seatAndStart(t, s)
	mustMove(t, s, "alice", "e2-e4")

	if _, err := s.RequestRematch(ctx, "alice"); !errors.Is(err, ErrGameNotFinished) {
		t.Fatalf("rematch mid-game err = %v, want ErrGameNotFinished", err)
	}
	if _, err := s.Resign(ctx, "bob"); err != nil {
		t.Fatalf("Resign: %v", err)
	}
	v, err := s.RequestRematch(ctx, "alice")
	if err != nil {
		t.Fatalf("RequestRematch: %v", err)
	}
	reqID := v.RematchRequests[0].ID
	if _, err := s.AcceptRematch(ctx, "alice", reqID); !errors.Is(err, ErrOwnOffer) {
		t.Fatalf("self-accept err = %v, want ErrOwnOffer", err)
	}
	v, err = s.AcceptRematch(ctx, "bob", reqID)
	if err != nil {
		t.Fatalf("AcceptRematch: %v", err)
	}
	if v.Status != string(StatusWaiting) {
		t.Fatalf("status = %s, want waiting", v.Status)
	}
	if v.FEN != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w" {
		t.Fatalf("FEN not reset: %q", v.FEN)
	}
	if len(v.MoveHistory) != 0 || len(v.DrawOffers) != 0 || len(v.RematchRequests) != 0 {
		t.Fatal("history or offer queues not cleared by rematch")
	}
	if v.Winner != "" || v.EndReason != "" {
		t.Fatalf("result not cleared: %q/%q", v.Winner, v.EndReason)
	}
	if v.Clock.White != DefaultClockSeconds || v.Clock.Black != DefaultClockSeconds {
		t.Fatalf("clock = %d/%d, want %d/%d", v.Clock.White, v.Clock.Black, DefaultClockSeconds, DefaultClockSeconds)
	}

	// moves need a fresh explicit start
	if _, err := s.Move(ctx, "alice", "e2-e4"); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("move before restart err = %v, want ErrNotStarted", err)
	}
	if _, err := s.Start(ctx, "alice"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	mustMove(t, s, "alice", "e2-e4")
}

func TestRematchRestoresConfiguredClock(t *testing.T) {
	s := NewSession("room-control", Options{Name: "blitz", InitialSeconds: 300}, nil, Hooks{})
	clk := newFakeClock()
	s.nowFn = clk.now
	t.Cleanup(s.Close)
	ctx := context.Background()
	seatAndStart(t, s)

	clk.advance(100 * time.Second)
	mustMove(t, s, "alice", "e2-e4")
	if _, err := s.Resign(ctx, "bob"); err != nil {
		t.Fatalf("Resign: %v", err)
	}
	v, err := s.RequestRematch(ctx, "alice")
	if err != nil {
		t.Fatalf("RequestRematch: %v", err)
	}
	v, err = s.AcceptRematch(ctx, "bob", v.RematchRequests[0].ID)
	if err != nil {
		t.Fatalf("AcceptRematch: %v", err)
	}
	if v.Clock.White != 300 || v.Clock.Black != 300 {
		t.Fatalf("clock = %d/%d, want the configured 300/300", v.Clock.White, v.Clock.Black)
	}
	if v.Clock.IsRunning {
		t.Fatal("clock must not run before the next start")
	}
}

func TestChangeHooksArriveInOrder(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []int
	)
	hooks := Hooks{OnChange: func(v roomdto.RoomView) {
		mu.Lock()
		seen = append(seen, len(v.MoveHistory))
		mu.Unlock()
	}}
	s, _ := newTestSession(t, nil, hooks)
	ctx := context.Background()
	seatAndStart(t, s)

	moves := []struct{ who, mv string }{
		{"alice", "e2-e4"}, {"bob", "e7-e5"}, {"alice", "g1-f3"}, {"bob", "b8-c6"},
	}
	for _, m := range moves {
		if _, err := s.Move(ctx, m.who, m.mv); err != nil {
			t.Fatalf("Move(%s, %s): %v", m.who, m.mv, err)
		}
	}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == len(moves)
	}, "last snapshot to arrive")

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Fatalf("snapshots delivered out of order: %v", seen)
		}
	}
}

func TestChatBoundedAndGated(t *testing.T) {
	s, _ := newTestSession(t, nil, Hooks{})
	ctx := context.Background()
	mustJoin(t, s, "alice", "Alice", RolePlayer)
	mustJoin(t, s, "carol", "Carol", RoleSpectator)

	if _, err := s.Chat(ctx, "ghost", "hi"); !errors.Is(err, ErrNotOccupant) {
		t.Fatalf("stranger chat err = %v, want ErrNotOccupant", err)
	}
	if _, err := s.Chat(ctx, "alice", "   "); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank chat err = %v, want ErrValidation", err)
	}
	var v roomdto.RoomView
	var err error
	for i := 0; i < chatCap+5; i++ {
		v, err = s.Chat(ctx, "carol", fmt.Sprintf("msg %d", i))
		if err != nil {
			t.Fatalf("Chat %d: %v", i, err)
		}
	}
	if len(v.Chat) != chatCap {
		t.Fatalf("chat length = %d, want %d", len(v.Chat), chatCap)
	}
	if v.Chat[0].Text != "msg 5" {
		t.Fatalf("oldest retained = %q, want msg 5", v.Chat[0].Text)
	}
}

func TestLeaveTransfersHostThenTearsDown(t *testing.T) {
	emptied := make(chan string, 1)
	s, _ := newTestSession(t, nil, Hooks{
		OnEmpty: func(id string) { emptied <- id },
	})
	ctx := context.Background()
	seatAndStart(t, s)

	v, err := s.Leave(ctx, "alice")
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if v.HostID != "bob" {
		t.Fatalf("host after leave = %q, want bob", v.HostID)
	}
	select {
	case <-emptied:
		t.Fatal("OnEmpty fired while a human is still seated")
	default:
	}

	v, err = s.Leave(ctx, "bob")
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if v.Status != string(StatusFinished) || v.EndReason != EndAbandoned {
		t.Fatalf("room = %s/%s, want finished/abandoned", v.Status, v.EndReason)
	}
	select {
	case id := <-emptied:
		if id != s.ID() {
			t.Fatalf("OnEmpty room = %q, want %q", id, s.ID())
		}
	case <-time.After(time.Second):
		t.Fatal("OnEmpty not invoked after last human left")
	}
}

func TestHeartbeat(t *testing.T) {
	s, clk := newTestSession(t, nil, Hooks{})
	ctx := context.Background()
	mustJoin(t, s, "alice", "Alice", RolePlayer)

	if err := s.Heartbeat(ctx, "ghost"); !errors.Is(err, ErrNotOccupant) {
		t.Fatalf("stranger heartbeat err = %v, want ErrNotOccupant", err)
	}
	clk.advance(time.Minute)
	if err := s.Heartbeat(ctx, "alice"); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	v, err := s.View(ctx)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if !v.Players[0].LastSeen.Equal(clk.now()) {
		t.Fatalf("lastSeen = %v, want %v", v.Players[0].LastSeen, clk.now())
	}
}

type scriptedAdvisor struct {
	moves []string
	mu    sync.Mutex
	calls int
}

func (a *scriptedAdvisor) SuggestMove(context.Context, string, []string, int) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.calls < len(a.moves) {
		a.calls++
		return a.moves[a.calls-1], nil
	}
	a.calls++
	return "", ErrValidation
}

func TestAIOpponentReplies(t *testing.T) {
	s, _ := newTestSession(t, &scriptedAdvisor{moves: []string{"e7-e5"}}, Hooks{})
	ctx := context.Background()
	mustJoin(t, s, "alice", "Alice", RolePlayer)
	if _, err := s.AddAI(ctx, "alice"); err != nil {
		t.Fatalf("AddAI: %v", err)
	}
	if _, err := s.Start(ctx, "alice"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	mustMove(t, s, "alice", "e2-e4")

	waitFor(t, func() bool {
		v, err := s.View(ctx)
		return err == nil && len(v.MoveHistory) == 2
	}, "the AI reply")
	v, err := s.View(ctx)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if v.MoveHistory[1].PlayerID != AIOccupantID || v.MoveHistory[1].SAN != "e5" {
		t.Fatalf("AI ply = %+v, want e5 by %s", v.MoveHistory[1], AIOccupantID)
	}
}

func TestAIFallsBackOnGarbageSuggestion(t *testing.T) {
	s, _ := newTestSession(t, &scriptedAdvisor{moves: []string{"not a move"}}, Hooks{})
	ctx := context.Background()
	mustJoin(t, s, "alice", "Alice", RolePlayer)
	if _, err := s.AddAI(ctx, "alice"); err != nil {
		t.Fatalf("AddAI: %v", err)
	}
	if _, err := s.Start(ctx, "alice"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	mustMove(t, s, "alice", "e2-e4")

	// the unusable suggestion degrades to the first legal reply, never an error
	waitFor(t, func() bool {
		v, err := s.View(ctx)
		return err == nil && len(v.MoveHistory) == 2
	}, "the AI fallback reply")
}

func TestAddAIOnlyWhileWaiting(t *testing.T) {
	s, _ := newTestSession(t, nil, Hooks{})
	ctx := context.Background()
	seatAndStart(t, s)
	if _, err := s.AddAI(ctx, "alice"); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("AddAI mid-game err = %v, want ErrAlreadyStarted", err)
	}
}

func TestClosedSessionRejectsCommands(t *testing.T) {
	s, _ := newTestSession(t, nil, Hooks{})
	s.Close()
	if _, err := s.Join(context.Background(), "alice", "Alice", RolePlayer); !errors.Is(err, ErrRoomClosed) {
		t.Fatalf("err = %v, want ErrRoomClosed", err)
	}
}

func TestEventsReachSubscribers(t *testing.T) {
	s, _ := newTestSession(t, nil, Hooks{})
	events, cancel := s.Subscribe()
	defer cancel()

	mustJoin(t, s, "alice", "Alice", RolePlayer)
	select {
	case evt := <-events:
		if evt.Type != roomdto.EventJoin || evt.Actor != "alice" {
			t.Fatalf("event = %+v, want join by alice", evt)
		}
		if evt.Room == nil || len(evt.Room.Players) != 1 {
			t.Fatalf("event snapshot missing or stale: %+v", evt.Room)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}
