// Package room implements the per-room game session: a single-writer state
// machine that sequences joins, moves, clock accounting and the draw,
// resignation and rematch protocols.
package room

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sabca0328/chess-ai-game/internal/engine"
	"github.com/sabca0328/chess-ai-game/internal/obslog"
	"github.com/sabca0328/chess-ai-game/pkg/roomdto"
)

// Advisor produces a move suggestion for the AI occupant. Implementations
// must be safe for concurrent use; calls happen outside the room's command
// loop so a slow advisor can never stall play.
type Advisor interface {
	SuggestMove(ctx context.Context, fen string, history []string, level int) (string, error)
}

// Hooks let the registry react to room lifecycle without the session knowing
// about storage. Hooks never run inside the command loop and only see deep
// copies. OnChange snapshots are delivered one at a time in mutation order;
// a backlog drops the oldest snapshots, never the newest.
type Hooks struct {
	OnChange func(roomdto.RoomView)
	OnFinish func(roomdto.RoomView)
	OnEmpty  func(roomID string)
}

const advisorTurnTimeout = 30 * time.Second

// Session owns one room. Every public method funnels into a single command
// loop goroutine, so no two operations on the same room ever interleave and
// no command observes a partially applied prior command.
type Session struct {
	id        string
	cmds      chan command
	done      chan struct{}
	closeOnce sync.Once

	advisor Advisor
	aiLevel int
	hooks   Hooks
	changes chan roomdto.RoomView
	nowFn   func() time.Time

	subMu   sync.Mutex
	subs    map[int]chan roomdto.Event
	nextSub int

	st roomState
}

type command struct {
	fn   func(*roomState)
	done chan struct{}
}

// NewSession creates a room in the waiting state and starts its command
// loop. The creator joins separately.
func NewSession(id string, opts Options, advisor Advisor, hooks Hooks) *Session {
	now := time.Now()
	seconds := opts.InitialSeconds
	if seconds <= 0 {
		seconds = DefaultClockSeconds
	}
	s := &Session{
		id:      id,
		cmds:    make(chan command),
		done:    make(chan struct{}),
		advisor: advisor,
		aiLevel: 2,
		hooks:   hooks,
		nowFn:   time.Now,
		subs:    make(map[int]chan roomdto.Event),
		st: roomState{
			id:              id,
			name:            opts.Name,
			rules:           opts.Rules,
			allowSpectators: opts.AllowSpectators,
			allowAI:         opts.AllowAI,
			status:          StatusWaiting,
			pos:             engine.Initial(),
			clock:           newClock(seconds),
			initialSeconds:  seconds,
			createdAt:       now,
			updatedAt:       now,
		},
	}
	if hooks.OnChange != nil {
		s.changes = make(chan roomdto.RoomView, 32)
		go s.changeLoop()
	}
	go s.loop()
	return s
}

// ID returns the room id.
func (s *Session) ID() string { return s.id }

// Done is closed when the session shuts down.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close stops the command loop. Pending and future calls fail with
// ErrRoomClosed.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Session) loop() {
	for {
		select {
		case cmd := <-s.cmds:
			cmd.fn(&s.st)
			close(cmd.done)
		case <-s.done:
			return
		}
	}
}

// exec runs fn inside the command loop and waits for it to complete.
func (s *Session) exec(ctx context.Context, fn func(*roomState)) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case s.cmds <- cmd:
	case <-s.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-cmd.done:
		return nil
	case <-s.done:
		return ErrRoomClosed
	}
}

// run is exec plus the common result shape: a fresh snapshot on success.
func (s *Session) run(ctx context.Context, fn func(*roomState) error) (roomdto.RoomView, error) {
	var (
		view  roomdto.RoomView
		opErr error
	)
	if err := s.exec(ctx, func(st *roomState) {
		opErr = fn(st)
		if opErr == nil {
			view = st.snapshot()
		}
	}); err != nil {
		return roomdto.RoomView{}, err
	}
	return view, opErr
}

// Subscribe registers an event listener. The returned cancel func must be
// called when the listener goes away. Slow listeners drop events rather than
// back-pressuring the room.
func (s *Session) Subscribe() (<-chan roomdto.Event, func()) {
	ch := make(chan roomdto.Event, 16)
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()
	return ch, func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Session) publish(evt roomdto.Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// emit publishes an event and hands the snapshot to the OnChange hook.
func (s *Session) emit(st *roomState, evt roomdto.Event) {
	evt.RoomID = s.id
	evt.At = st.updatedAt
	if evt.Room == nil {
		v := st.snapshot()
		evt.Room = &v
	}
	s.publish(evt)
	s.queueChange(*evt.Room)
}

// queueChange hands a snapshot to the change loop. Called only from the
// command loop, so queue order is mutation order; when the buffer is full
// the oldest pending snapshot is dropped to make room.
func (s *Session) queueChange(v roomdto.RoomView) {
	if s.changes == nil {
		return
	}
	for {
		select {
		case s.changes <- v:
			return
		default:
		}
		select {
		case <-s.changes:
		default:
		}
	}
}

func (s *Session) changeLoop() {
	for {
		select {
		case v := <-s.changes:
			s.hooks.OnChange(v)
		case <-s.done:
			return
		}
	}
}

// Join seats userID as a player or registers a spectator. A returning user
// reactivates the existing record and keeps its seat and color.
func (s *Session) Join(ctx context.Context, userID, name string, role Role) (roomdto.RoomView, error) {
	return s.run(ctx, func(st *roomState) error { return s.join(st, userID, name, role) })
}

func (s *Session) join(st *roomState, userID, name string, role Role) error {
	userID = strings.TrimSpace(userID)
	name = strings.TrimSpace(name)
	if userID == "" || name == "" {
		return ErrValidation
	}
	now := s.nowFn()
	switch role {
	case RolePlayer, RoleHost, "":
		if p := st.playerByID(userID); p != nil {
			p.IsActive = true
			p.Name = name
			p.LastSeen = now
			st.touch(now)
			s.emit(st, roomdto.Event{Type: roomdto.EventJoin, Actor: userID})
			return nil
		}
		if len(st.players) >= 2 {
			return ErrRoomFull
		}
		p := &Player{
			ID:       userID,
			Name:     name,
			Color:    engine.White,
			Role:     RolePlayer,
			IsActive: true,
			JoinedAt: now,
			LastSeen: now,
		}
		if len(st.players) == 1 {
			p.Color = st.players[0].Color.Other()
		}
		if st.hostID == "" {
			st.hostID = userID
			p.Role = RoleHost
		}
		st.players = append(st.players, p)
	case RoleSpectator:
		if !st.allowSpectators {
			return ErrSpectatingDisabled
		}
		if sp := st.spectatorByID(userID); sp != nil {
			sp.IsActive = true
			sp.Name = name
			sp.LastSeen = now
		} else {
			st.specs = append(st.specs, &Spectator{
				ID:       userID,
				Name:     name,
				IsActive: true,
				JoinedAt: now,
				LastSeen: now,
			})
		}
	default:
		return ErrInvalidRole
	}
	st.touch(now)
	obslog.L().Info("room_join",
		zap.String("room_id", s.id),
		zap.String("user_id", userID),
		zap.String("role", string(role)),
	)
	s.emit(st, roomdto.Event{Type: roomdto.EventJoin, Actor: userID})
	return nil
}

// AddAI seats the AI opponent on the free seat. Only possible while the room
// is waiting, on request of a seated player.
func (s *Session) AddAI(ctx context.Context, userID string) (roomdto.RoomView, error) {
	return s.run(ctx, func(st *roomState) error {
		if !st.allowAI {
			return ErrAIDisabled
		}
		if err := st.requireWaiting(); err != nil {
			return err
		}
		requester := st.playerByID(userID)
		if requester == nil || !requester.IsActive {
			return ErrNotAPlayer
		}
		now := s.nowFn()
		if ai := st.playerByID(AIOccupantID); ai != nil {
			ai.IsActive = true
			ai.LastSeen = now
			st.touch(now)
			return nil
		}
		if len(st.players) >= 2 {
			return ErrRoomFull
		}
		st.players = append(st.players, &Player{
			ID:       AIOccupantID,
			Name:     "AI Opponent",
			Color:    st.players[0].Color.Other(),
			Role:     RoleAI,
			IsActive: true,
			JoinedAt: now,
			LastSeen: now,
		})
		st.touch(now)
		obslog.L().Info("room_add_ai", zap.String("room_id", s.id))
		s.emit(st, roomdto.Event{Type: roomdto.EventJoin, Actor: AIOccupantID})
		return nil
	})
}

// Start begins play: both seats taken, at least one human, fresh clock.
func (s *Session) Start(ctx context.Context, userID string) (roomdto.RoomView, error) {
	return s.run(ctx, func(st *roomState) error {
		if err := st.requireWaiting(); err != nil {
			return err
		}
		p := st.playerByID(userID)
		if p == nil || !p.IsActive {
			return ErrNotAPlayer
		}
		if st.activeOccupants() < 2 || st.activeHumans() < 1 {
			return ErrNotEnoughPlayers
		}
		now := s.nowFn()
		st.status = StatusPlaying
		st.clock.start(now)
		st.touch(now)
		obslog.L().Info("room_start", zap.String("room_id", s.id))
		s.emit(st, roomdto.Event{Type: roomdto.EventStart, Actor: userID})
		s.scheduleAdvisor(st)
		return nil
	})
}

// Move applies one ply for userID. The elapsed wall time is charged to the
// mover before the move is considered; a fallen flag ends the game no matter
// what the move text says.
func (s *Session) Move(ctx context.Context, userID, text string) (roomdto.MoveResult, error) {
	var (
		res   roomdto.MoveResult
		opErr error
	)
	if err := s.exec(ctx, func(st *roomState) {
		res, opErr = s.move(st, userID, text)
	}); err != nil {
		return roomdto.MoveResult{}, err
	}
	return res, opErr
}

func (s *Session) move(st *roomState, userID, text string) (roomdto.MoveResult, error) {
	if err := st.requirePlaying(); err != nil {
		return roomdto.MoveResult{}, err
	}
	p := st.playerByID(userID)
	if p == nil {
		return roomdto.MoveResult{}, ErrNotAPlayer
	}
	if p.Color != st.pos.Turn {
		return roomdto.MoveResult{}, ErrNotYourTurn
	}

	now := s.nowFn()
	p.IsActive = true
	p.LastSeen = now
	if st.clock.charge(now) {
		s.finish(st, now, winnerColor(st.pos.Turn.Other()), EndTimeout)
		return roomdto.MoveResult{}, ErrClockExpired
	}

	m, err := engine.ParseMove(&st.pos, text)
	if err != nil {
		return roomdto.MoveResult{}, err
	}
	legal, err := engine.ResolveMove(&st.pos, m)
	if err != nil {
		return roomdto.MoveResult{}, err
	}
	san := engine.SAN(&st.pos, legal)
	coord := legal.Coord(&st.pos)
	next, err := engine.Apply(&st.pos, legal)
	if err != nil {
		return roomdto.MoveResult{}, err
	}

	st.pos = next
	st.clock.flip(now)
	rec := MoveRecord{
		SAN:      san,
		Coord:    coord,
		FEN:      engine.Encode(&next),
		PlayerID: userID,
		At:       now,
	}
	st.history = append(st.history, rec)
	st.touch(now)

	gameStatus := engine.Status(&next)
	switch gameStatus {
	case engine.StatusCheckmate:
		s.finish(st, now, winnerColor(p.Color), EndCheckmate)
	case engine.StatusStalemate:
		s.finish(st, now, nil, EndStalemate)
	case engine.StatusDraw:
		s.finish(st, now, nil, EndDraw)
	}

	obslog.L().Info("room_move",
		zap.String("room_id", s.id),
		zap.String("user_id", userID),
		zap.String("san", san),
		zap.String("status", string(gameStatus)),
	)
	mv := moveView(rec)
	s.emit(st, roomdto.Event{Type: roomdto.EventMove, Actor: userID, Move: &mv})
	s.scheduleAdvisor(st)

	return roomdto.MoveResult{
		SAN:        san,
		Coord:      coord,
		FEN:        rec.FEN,
		GameStatus: string(gameStatus),
		Room:       st.snapshot(),
	}, nil
}

// Resign ends the game in favor of the opponent.
func (s *Session) Resign(ctx context.Context, userID string) (roomdto.RoomView, error) {
	return s.run(ctx, func(st *roomState) error {
		if err := st.requirePlaying(); err != nil {
			return err
		}
		p := st.playerByID(userID)
		if p == nil || !p.IsActive {
			return ErrNotAPlayer
		}
		s.finish(st, s.nowFn(), winnerColor(p.Color.Other()), EndResignation)
		return nil
	})
}

// OfferDraw queues a draw offer from userID.
func (s *Session) OfferDraw(ctx context.Context, userID string) (roomdto.RoomView, error) {
	return s.run(ctx, func(st *roomState) error {
		if err := st.requirePlaying(); err != nil {
			return err
		}
		p := st.playerByID(userID)
		if p == nil || !p.IsActive {
			return ErrNotAPlayer
		}
		now := s.nowFn()
		st.drawOffers = append(st.drawOffers, &Offer{
			ID:          uuid.NewString(),
			RequesterID: userID,
			Status:      OfferPending,
			CreatedAt:   now,
		})
		st.touch(now)
		s.emit(st, roomdto.Event{Type: roomdto.EventDraw, Actor: userID})
		return nil
	})
}

// AcceptDraw resolves a pending draw offer. The acceptor must be a player
// other than the offerer; an empty offerID targets the latest pending offer.
func (s *Session) AcceptDraw(ctx context.Context, userID, offerID string) (roomdto.RoomView, error) {
	return s.run(ctx, func(st *roomState) error {
		if err := st.requirePlaying(); err != nil {
			return err
		}
		p := st.playerByID(userID)
		if p == nil || !p.IsActive {
			return ErrNotAPlayer
		}
		offer := findPending(st.drawOffers, offerID)
		if offer == nil {
			return ErrOfferNotFound
		}
		if offer.RequesterID == userID {
			return ErrOwnOffer
		}
		now := s.nowFn()
		offer.Status = OfferAccepted
		offer.ResolvedAt = now
		s.finish(st, now, nil, EndDraw)
		return nil
	})
}

// RequestRematch queues a rematch request on a finished game.
func (s *Session) RequestRematch(ctx context.Context, userID string) (roomdto.RoomView, error) {
	return s.run(ctx, func(st *roomState) error {
		if st.status != StatusFinished {
			return ErrGameNotFinished
		}
		p := st.playerByID(userID)
		if p == nil || !p.IsActive {
			return ErrNotAPlayer
		}
		now := s.nowFn()
		st.rematchRequests = append(st.rematchRequests, &Offer{
			ID:          uuid.NewString(),
			RequesterID: userID,
			Status:      OfferPending,
			CreatedAt:   now,
		})
		st.touch(now)
		s.emit(st, roomdto.Event{Type: roomdto.EventRematch, Actor: userID})
		return nil
	})
}

// AcceptRematch resets the room to the waiting state: initial position,
// empty history, fresh clock. Seats, colors and chat survive. Play resumes
// only after an explicit Start.
func (s *Session) AcceptRematch(ctx context.Context, userID, requestID string) (roomdto.RoomView, error) {
	return s.run(ctx, func(st *roomState) error {
		if st.status != StatusFinished {
			return ErrGameNotFinished
		}
		p := st.playerByID(userID)
		if p == nil || !p.IsActive {
			return ErrNotAPlayer
		}
		req := findPending(st.rematchRequests, requestID)
		if req == nil {
			return ErrOfferNotFound
		}
		if req.RequesterID == userID {
			return ErrOwnOffer
		}
		now := s.nowFn()
		req.Status = OfferAccepted
		req.ResolvedAt = now

		st.status = StatusWaiting
		st.pos = engine.Initial()
		st.clock = newClock(st.initialSeconds)
		st.history = nil
		st.drawOffers = nil
		st.rematchRequests = nil
		st.hasWinner = false
		st.endReason = ""
		st.finishedAt = time.Time{}
		st.touch(now)
		obslog.L().Info("room_rematch", zap.String("room_id", s.id))
		s.emit(st, roomdto.Event{Type: roomdto.EventReset, Actor: userID})
		return nil
	})
}

// Leave soft-deactivates the occupant. The seat survives for a rejoin. When
// the last active human leaves, a running game is forfeited and the room is
// reported empty for teardown.
func (s *Session) Leave(ctx context.Context, userID string) (roomdto.RoomView, error) {
	return s.run(ctx, func(st *roomState) error {
		now := s.nowFn()
		p := st.playerByID(userID)
		sp := st.spectatorByID(userID)
		switch {
		case p != nil:
			p.IsActive = false
			p.LastSeen = now
		case sp != nil:
			sp.IsActive = false
			sp.LastSeen = now
		default:
			return ErrNotOccupant
		}
		if p != nil && userID == st.hostID {
			st.transferHost()
		}
		st.touch(now)
		obslog.L().Info("room_leave", zap.String("room_id", s.id), zap.String("user_id", userID))
		s.emit(st, roomdto.Event{Type: roomdto.EventLeave, Actor: userID})

		if p != nil && st.activeHumans() == 0 {
			if st.status == StatusPlaying {
				s.finish(st, now, winnerColor(p.Color.Other()), EndAbandoned)
			}
			if s.hooks.OnEmpty != nil {
				go s.hooks.OnEmpty(s.id)
			}
		}
		return nil
	})
}

// Chat appends to the bounded room chat. Any known occupant, player or
// spectator, may write.
func (s *Session) Chat(ctx context.Context, userID, text string) (roomdto.RoomView, error) {
	return s.run(ctx, func(st *roomState) error {
		text = strings.TrimSpace(text)
		if text == "" {
			return ErrValidation
		}
		name := ""
		if p := st.playerByID(userID); p != nil {
			name = p.Name
		} else if sp := st.spectatorByID(userID); sp != nil {
			name = sp.Name
		} else {
			return ErrNotOccupant
		}
		now := s.nowFn()
		st.chat = append(st.chat, ChatEntry{
			ID:       uuid.NewString(),
			AuthorID: userID,
			Author:   name,
			Text:     text,
			At:       now,
		})
		if len(st.chat) > chatCap {
			st.chat = st.chat[len(st.chat)-chatCap:]
		}
		st.touch(now)
		entry := st.chat[len(st.chat)-1]
		msg := roomdto.ChatMessage{
			ID:        entry.ID,
			AuthorID:  entry.AuthorID,
			Author:    entry.Author,
			Text:      entry.Text,
			Timestamp: entry.At,
		}
		s.emit(st, roomdto.Event{Type: roomdto.EventChat, Actor: userID, Chat: &msg})
		return nil
	})
}

// Heartbeat refreshes the occupant's liveness without touching game state.
func (s *Session) Heartbeat(ctx context.Context, userID string) error {
	var opErr error
	if err := s.exec(ctx, func(st *roomState) {
		now := s.nowFn()
		if p := st.playerByID(userID); p != nil {
			p.IsActive = true
			p.LastSeen = now
		} else if sp := st.spectatorByID(userID); sp != nil {
			sp.IsActive = true
			sp.LastSeen = now
		} else {
			opErr = ErrNotOccupant
		}
	}); err != nil {
		return err
	}
	return opErr
}

// View charges the clock (a status poll is a state-transition point for
// timing) and returns a snapshot. A flag fall observed here finishes the
// game exactly like an injected timeout.
func (s *Session) View(ctx context.Context) (roomdto.RoomView, error) {
	return s.run(ctx, func(st *roomState) error {
		s.checkFlag(st)
		return nil
	})
}

// CheckClock is the synthetic timeout command injected by the registry
// sweep.
func (s *Session) CheckClock(ctx context.Context) error {
	return s.exec(ctx, func(st *roomState) { s.checkFlag(st) })
}

func (s *Session) checkFlag(st *roomState) {
	if st.status != StatusPlaying {
		return
	}
	now := s.nowFn()
	if st.clock.charge(now) {
		obslog.L().Info("room_flag_fall",
			zap.String("room_id", s.id),
			zap.String("color", st.clock.Active.String()),
		)
		s.finish(st, now, winnerColor(st.clock.Active.Other()), EndTimeout)
	}
}

// Summary returns the lobby listing entry.
func (s *Session) Summary(ctx context.Context) (roomdto.RoomSummary, error) {
	var sum roomdto.RoomSummary
	err := s.exec(ctx, func(st *roomState) { sum = st.summary() })
	return sum, err
}

// sweepInfo is what the registry needs to decide teardown.
type sweepInfo struct {
	status     RoomStatus
	updatedAt  time.Time
	finishedAt time.Time
}

func (s *Session) info(ctx context.Context) (sweepInfo, error) {
	var in sweepInfo
	err := s.exec(ctx, func(st *roomState) {
		in = sweepInfo{status: st.status, updatedAt: st.updatedAt, finishedAt: st.finishedAt}
	})
	return in, err
}

// finish transitions to the finished state and stops the clock. winner is
// nil for draws.
func (s *Session) finish(st *roomState, now time.Time, winner *engine.Color, reason string) {
	if st.status == StatusFinished {
		return
	}
	st.status = StatusFinished
	st.clock.stop()
	st.endReason = reason
	st.finishedAt = now
	st.hasWinner = winner != nil
	if winner != nil {
		st.winner = *winner
	}
	st.touch(now)
	obslog.L().Info("room_finish",
		zap.String("room_id", s.id),
		zap.String("reason", reason),
		zap.String("winner", winnerName(winner)),
		zap.Int("plies", len(st.history)),
	)
	v := st.snapshot()
	s.publish(roomdto.Event{Type: roomdto.EventFinish, RoomID: s.id, At: now, Room: &v})
	if s.hooks.OnFinish != nil {
		go s.hooks.OnFinish(v)
	}
	s.queueChange(v)
}

// scheduleAdvisor kicks off an AI reply when the on-turn seat belongs to the
// AI occupant. The advisor call runs outside the command loop and its result
// re-enters as an ordinary Move command.
func (s *Session) scheduleAdvisor(st *roomState) {
	if st.status != StatusPlaying {
		return
	}
	p := st.playerByColor(st.pos.Turn)
	if p == nil || p.Role != RoleAI || !p.IsActive {
		return
	}
	fen := engine.Encode(&st.pos)
	history := make([]string, 0, len(st.history))
	for _, m := range st.history {
		history = append(history, m.SAN)
	}
	go s.playAITurn(fen, history)
}

func (s *Session) playAITurn(fen string, history []string) {
	ctx, cancel := context.WithTimeout(context.Background(), advisorTurnTimeout)
	defer cancel()

	if s.advisor != nil {
		text, err := s.advisor.SuggestMove(ctx, fen, history, s.aiLevel)
		switch {
		case err != nil:
			obslog.L().Warn("advisor_fallback", zap.String("room_id", s.id), zap.Error(err))
		case strings.TrimSpace(text) != "":
			_, mvErr := s.Move(ctx, AIOccupantID, text)
			if mvErr == nil {
				return
			}
			obslog.L().Warn("advisor_fallback",
				zap.String("room_id", s.id),
				zap.String("suggestion", text),
				zap.Error(mvErr),
			)
		}
	}

	// the suggestion was unusable: play the first legal move instead
	var fallback string
	if err := s.exec(ctx, func(st *roomState) {
		if st.status != StatusPlaying {
			return
		}
		if moves := engine.LegalMoves(&st.pos); len(moves) > 0 {
			fallback = moves[0].Coord(&st.pos)
		}
	}); err != nil || fallback == "" {
		return
	}
	if _, err := s.Move(ctx, AIOccupantID, fallback); err != nil {
		obslog.L().Warn("ai_move_failed", zap.String("room_id", s.id), zap.Error(err))
	}
}

func (st *roomState) touch(now time.Time) { st.updatedAt = now }

func (st *roomState) requireWaiting() error {
	switch st.status {
	case StatusWaiting:
		return nil
	case StatusPlaying:
		return ErrAlreadyStarted
	default:
		return ErrGameFinished
	}
}

func (st *roomState) requirePlaying() error {
	switch st.status {
	case StatusPlaying:
		return nil
	case StatusWaiting:
		return ErrNotStarted
	default:
		return ErrGameFinished
	}
}

// transferHost moves the host role to the earliest-joined active human.
func (st *roomState) transferHost() {
	for _, p := range st.players {
		if p.IsActive && p.Role != RoleAI {
			if prev := st.playerByID(st.hostID); prev != nil && prev.Role == RoleHost {
				prev.Role = RolePlayer
			}
			st.hostID = p.ID
			p.Role = RoleHost
			return
		}
	}
}

func findPending(offers []*Offer, id string) *Offer {
	for i := len(offers) - 1; i >= 0; i-- {
		o := offers[i]
		if o.Status != OfferPending {
			continue
		}
		if id == "" || o.ID == id {
			return o
		}
	}
	return nil
}

func winnerColor(c engine.Color) *engine.Color { return &c }

func winnerName(c *engine.Color) string {
	if c == nil {
		return ""
	}
	return c.String()
}
