// Package store persists room snapshots in Redis for the lobby listing and
// recovery reads. Writes arrive already serialized by the room actor, so
// plain SET is enough; no transactional read-modify-write is needed here.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sabca0328/chess-ai-game/internal/obslog"
	"github.com/sabca0328/chess-ai-game/pkg/roomdto"
)

// ErrNotFound marks a missing or expired snapshot.
var ErrNotFound = errors.New("room snapshot not found")

const defaultTTL = 24 * time.Hour

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to REDIS_URL-style addresses (redis:// or rediss://).
func New(redisURL string) (*Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("redis url required")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewWithClient(rdb, defaultTTL), nil
}

// NewWithClient wraps an existing client; tests pass a miniredis-backed one.
func NewWithClient(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

// SaveSnapshot upserts the room snapshot and keeps it in the lobby index.
func (s *Store) SaveSnapshot(ctx context.Context, v roomdto.RoomView) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, snapshotKey(v.ID), raw, s.ttl).Err(); err != nil {
		return err
	}
	if err := s.rdb.SAdd(ctx, lobbyIndexKey, v.ID).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, lobbyIndexKey, s.ttl).Err()
}

// LoadSnapshot fetches a snapshot by room id.
func (s *Store) LoadSnapshot(ctx context.Context, roomID string) (roomdto.RoomView, error) {
	raw, err := s.rdb.Get(ctx, snapshotKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return roomdto.RoomView{}, ErrNotFound
	}
	if err != nil {
		return roomdto.RoomView{}, err
	}
	var v roomdto.RoomView
	if err := json.Unmarshal(raw, &v); err != nil {
		return roomdto.RoomView{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return v, nil
}

// DeleteSnapshot drops the snapshot and its lobby index entry.
func (s *Store) DeleteSnapshot(ctx context.Context, roomID string) error {
	if err := s.rdb.Del(ctx, snapshotKey(roomID)).Err(); err != nil {
		return err
	}
	return s.rdb.SRem(ctx, lobbyIndexKey, roomID).Err()
}

// ListLobby returns summaries of all indexed rooms. Index entries whose
// snapshot has expired are pruned as a side effect.
func (s *Store) ListLobby(ctx context.Context) ([]roomdto.RoomSummary, error) {
	ids, err := s.rdb.SMembers(ctx, lobbyIndexKey).Result()
	if err != nil {
		return nil, err
	}
	out := make([]roomdto.RoomSummary, 0, len(ids))
	for _, id := range ids {
		v, err := s.LoadSnapshot(ctx, id)
		if errors.Is(err, ErrNotFound) {
			if remErr := s.rdb.SRem(ctx, lobbyIndexKey, id).Err(); remErr != nil {
				obslog.L().Warn("lobby_index_prune_failed", zap.String("room_id", id), zap.Error(remErr))
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(v))
	}
	return out, nil
}

func summarize(v roomdto.RoomView) roomdto.RoomSummary {
	active := 0
	for _, p := range v.Players {
		if p.IsActive {
			active++
		}
	}
	return roomdto.RoomSummary{
		ID:         v.ID,
		Name:       v.Name,
		Status:     v.Status,
		Players:    active,
		Spectators: len(v.Spectators),
		AllowAI:    v.AllowAI,
		CreatedAt:  v.CreatedAt,
	}
}

func snapshotKey(id string) string { return "room:" + id }

const lobbyIndexKey = "room:index:lobby"

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
