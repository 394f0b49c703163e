package room

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sabca0328/chess-ai-game/pkg/roomdto"
)

type memStore struct {
	mu    sync.Mutex
	saved map[string]roomdto.RoomView
}

func newMemStore() *memStore {
	return &memStore{saved: make(map[string]roomdto.RoomView)}
}

func (m *memStore) SaveSnapshot(_ context.Context, v roomdto.RoomView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[v.ID] = v
	return nil
}

func (m *memStore) DeleteSnapshot(_ context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, roomID)
	return nil
}

func (m *memStore) get(roomID string) (roomdto.RoomView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.saved[roomID]
	return v, ok
}

type memArchive struct {
	mu      sync.Mutex
	results []roomdto.RoomView
}

func (m *memArchive) SaveResult(_ context.Context, v roomdto.RoomView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, v)
	return nil
}

func (m *memArchive) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results)
}

func newTestRegistry(t *testing.T, opts RegistryOptions) *Registry {
	t.Helper()
	r := NewRegistry(opts)
	t.Cleanup(r.Close)
	return r
}

func TestRegistryCreateGetRemove(t *testing.T) {
	r := newTestRegistry(t, RegistryOptions{})

	s, err := r.Create(Options{Name: "lunch game"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := r.Create(Options{Name: "lunch game"}); !errors.Is(err, ErrRoomNameTaken) {
		t.Fatalf("duplicate name err = %v, want ErrRoomNameTaken", err)
	}
	if _, err := r.Create(Options{Name: "  "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank name err = %v, want ErrValidation", err)
	}

	got, err := r.Get(s.ID())
	if err != nil || got != s {
		t.Fatalf("Get = %v, %v", got, err)
	}

	r.Remove(s.ID())
	if _, err := r.Get(s.ID()); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("Get after remove err = %v, want ErrRoomNotFound", err)
	}
	// the name frees up with the room
	if _, err := r.Create(Options{Name: "lunch game"}); err != nil {
		t.Fatalf("recreate after remove: %v", err)
	}
}

func TestRegistryList(t *testing.T) {
	r := newTestRegistry(t, RegistryOptions{})
	ctx := context.Background()

	s, err := r.Create(Options{Name: "open"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Join(ctx, "alice", "Alice", RolePlayer); err != nil {
		t.Fatalf("Join: %v", err)
	}

	list := r.List(ctx)
	if len(list) != 1 {
		t.Fatalf("list = %d rooms, want 1", len(list))
	}
	if list[0].Name != "open" || list[0].Players != 1 || list[0].Status != string(StatusWaiting) {
		t.Fatalf("summary = %+v", list[0])
	}
}

func TestRegistryPersistsSnapshotsAndArchivesResults(t *testing.T) {
	store := newMemStore()
	archive := &memArchive{}
	r := newTestRegistry(t, RegistryOptions{Store: store, Archive: archive})
	ctx := context.Background()

	s, err := r.Create(Options{Name: "persisted"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Join(ctx, "alice", "Alice", RolePlayer); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := s.Join(ctx, "bob", "Bob", RolePlayer); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := s.Start(ctx, "alice"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, func() bool {
		v, ok := store.get(s.ID())
		return ok && v.Status == string(StatusPlaying)
	}, "the playing snapshot")

	if _, err := s.Resign(ctx, "bob"); err != nil {
		t.Fatalf("Resign: %v", err)
	}
	waitFor(t, func() bool { return archive.count() == 1 }, "the archived result")
}

func TestSweepInjectsTimeout(t *testing.T) {
	r := newTestRegistry(t, RegistryOptions{SweepInterval: 10 * time.Millisecond})
	ctx := context.Background()

	// built by hand so the fake clock is in place before the sweep sees it
	s := NewSession("room-sweep", Options{Name: "slow players"}, nil, Hooks{})
	clk := newFakeClock()
	s.nowFn = clk.now
	t.Cleanup(s.Close)
	r.mu.Lock()
	r.rooms[s.ID()] = s
	r.names["slow players"] = s.ID()
	r.mu.Unlock()

	if _, err := s.Join(ctx, "alice", "Alice", RolePlayer); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := s.Join(ctx, "bob", "Bob", RolePlayer); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := s.Start(ctx, "alice"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	clk.advance(DefaultClockSeconds*time.Second + time.Minute)
	waitFor(t, func() bool {
		v, err := s.View(ctx)
		return err == nil && v.Status == string(StatusFinished) && v.EndReason == EndTimeout
	}, "the sweep to flag the room")
}

func TestSweepTearsDownFinishedRooms(t *testing.T) {
	r := newTestRegistry(t, RegistryOptions{
		SweepInterval: 10 * time.Millisecond,
		FinishedGrace: 20 * time.Millisecond,
	})
	ctx := context.Background()

	s, err := r.Create(Options{Name: "short lived"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Join(ctx, "alice", "Alice", RolePlayer); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := s.Join(ctx, "bob", "Bob", RolePlayer); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := s.Start(ctx, "alice"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.Resign(ctx, "bob"); err != nil {
		t.Fatalf("Resign: %v", err)
	}
	waitFor(t, func() bool {
		_, err := r.Get(s.ID())
		return errors.Is(err, ErrRoomNotFound)
	}, "teardown of the finished room")
}
