package room

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sabca0328/chess-ai-game/internal/obslog"
	"github.com/sabca0328/chess-ai-game/pkg/roomdto"
)

// SnapshotStore persists room snapshots for the lobby and for recovery
// reads. Implemented by internal/store.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, v roomdto.RoomView) error
	DeleteSnapshot(ctx context.Context, roomID string) error
}

// Archiver records final game results. Implemented by internal/archive.
type Archiver interface {
	SaveResult(ctx context.Context, v roomdto.RoomView) error
}

// RegistryOptions wire the registry's collaborators and timings. Store,
// Archive and Advisor may be nil.
type RegistryOptions struct {
	Store   SnapshotStore
	Archive Archiver
	Advisor Advisor

	SweepInterval time.Duration // clock/teardown poll cadence
	FinishedGrace time.Duration // finished room lifetime before teardown
	IdleTTL       time.Duration // max time without any accepted command
}

const (
	defaultSweepInterval = 2 * time.Second
	defaultFinishedGrace = 5 * time.Minute
	defaultIdleTTL       = time.Hour
	hookTimeout          = 5 * time.Second
)

// Registry maps room ids to live sessions. It owns the sweep goroutine that
// injects synthetic timeout commands into playing rooms and tears down
// finished or abandoned ones.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Session
	names map[string]string // room name -> id

	opts      RegistryOptions
	done      chan struct{}
	closeOnce sync.Once
}

func NewRegistry(opts RegistryOptions) *Registry {
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}
	if opts.FinishedGrace <= 0 {
		opts.FinishedGrace = defaultFinishedGrace
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = defaultIdleTTL
	}
	r := &Registry{
		rooms: make(map[string]*Session),
		names: make(map[string]string),
		opts:  opts,
		done:  make(chan struct{}),
	}
	go r.sweepLoop()
	return r
}

// Create opens a new room with a fresh id. Room names are unique among live
// rooms.
func (r *Registry) Create(opts Options) (*Session, error) {
	opts.Name = strings.TrimSpace(opts.Name)
	if opts.Name == "" {
		return nil, ErrValidation
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.names[opts.Name]; taken {
		return nil, ErrRoomNameTaken
	}
	id := uuid.NewString()
	s := NewSession(id, opts, r.opts.Advisor, Hooks{
		OnChange: r.persistSnapshot,
		OnFinish: r.archiveResult,
		OnEmpty:  func(roomID string) { r.Remove(roomID) },
	})
	r.rooms[id] = s
	r.names[opts.Name] = id
	obslog.L().Info("room_create", zap.String("room_id", id), zap.String("name", opts.Name))
	return s, nil
}

// Get resolves a room id to its live session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.rooms[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return s, nil
}

// Remove closes the session and forgets the room.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.rooms[id]
	if ok {
		delete(r.rooms, id)
		for name, rid := range r.names {
			if rid == id {
				delete(r.names, name)
				break
			}
		}
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	s.Close()
	if r.opts.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
		defer cancel()
		if err := r.opts.Store.DeleteSnapshot(ctx, id); err != nil {
			obslog.L().Warn("room_snapshot_delete_failed", zap.String("room_id", id), zap.Error(err))
		}
	}
	obslog.L().Info("room_remove", zap.String("room_id", id))
}

// List returns lobby summaries of all live rooms.
func (r *Registry) List(ctx context.Context) []roomdto.RoomSummary {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.rooms))
	for _, s := range r.rooms {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	out := make([]roomdto.RoomSummary, 0, len(sessions))
	for _, s := range sessions {
		sum, err := s.Summary(ctx)
		if err != nil {
			continue
		}
		out = append(out, sum)
	}
	return out
}

// Close stops the sweep and every live session.
func (r *Registry) Close() {
	r.closeOnce.Do(func() { close(r.done) })
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.rooms {
		s.Close()
		delete(r.rooms, id)
	}
	r.names = make(map[string]string)
}

func (r *Registry) sweepLoop() {
	ticker := time.NewTicker(r.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.done:
			return
		}
	}
}

// sweep injects flag-fall checks into playing rooms and tears down rooms
// past their finished grace period or idle TTL.
func (r *Registry) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
	defer cancel()

	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.rooms))
	for _, s := range r.rooms {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	now := time.Now()
	for _, s := range sessions {
		if err := s.CheckClock(ctx); err != nil {
			continue
		}
		in, err := s.info(ctx)
		if err != nil {
			continue
		}
		expired := in.status == StatusFinished && now.Sub(in.finishedAt) > r.opts.FinishedGrace
		idle := now.Sub(in.updatedAt) > r.opts.IdleTTL
		if expired || idle {
			r.Remove(s.ID())
		}
	}
}

func (r *Registry) persistSnapshot(v roomdto.RoomView) {
	if r.opts.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
	defer cancel()
	if err := r.opts.Store.SaveSnapshot(ctx, v); err != nil {
		obslog.L().Warn("room_snapshot_save_failed", zap.String("room_id", v.ID), zap.Error(err))
	}
}

func (r *Registry) archiveResult(v roomdto.RoomView) {
	if r.opts.Archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
	defer cancel()
	if err := r.opts.Archive.SaveResult(ctx, v); err != nil {
		obslog.L().Warn("room_archive_failed", zap.String("room_id", v.ID), zap.Error(err))
	}
}
