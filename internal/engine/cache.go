package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// Tiered cache: L1 in-memory, L2 embedded SQLite (survives restarts),
// optional L3 Redis shared across processes. Layers are addressed by
// namespaced keys ("search:", "channel:", "video:"); each namespace has its
// own default TTL. The cache is an optimization, not a correctness
// dependency: storage errors are logged and degrade to a miss (read) or a
// dropped write.

const (
	nsSearch  = "search:"
	nsChannel = "channel:"
	nsVideo   = "video:"
	nsTool    = "tool:"
)

// Entry is the persisted cache envelope.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	CachedAt  time.Time       `json:"cached_at"`
	ExpiresAt time.Time       `json:"expires_at"`
	TTL       time.Duration   `json:"ttl"`
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// Store is the tiered cache backing all three layers.
type Store struct {
	l1  sync.Map // key → *memEntry
	db  *sql.DB
	rdb *redis.Client // nil if Redis unavailable
}

var (
	store     *Store
	storeOnce sync.Once
	storeErr  error
)

// InitStore opens (or creates) the cache store under Cfg.CacheDir and
// connects the optional Redis tier. Call after Init().
func InitStore() (*Store, error) {
	storeOnce.Do(func() {
		store, storeErr = openStore(cfg.CacheDir, cfg.RedisURL)
	})
	return store, storeErr
}

// CacheStore returns the process-wide store, initializing it on first use.
func CacheStore() (*Store, error) { return InitStore() }

// OpenStoreAt opens a standalone store rooted at dir. Used by tests and
// offline tooling; production code goes through InitStore.
func OpenStoreAt(dir, redisURL string) (*Store, error) {
	return openStore(dir, redisURL)
}

// Close releases the durable tier.
func (s *Store) Close() error {
	if s.rdb != nil {
		s.rdb.Close()
	}
	return s.db.Close()
}

func openStore(dir, redisURL string) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".go_scout")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("cache: mkdir %s: %w", dir, err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "cache.db"))
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		key        TEXT PRIMARY KEY,
		data       BLOB NOT NULL,
		cached_at  INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		ttl_ms     INTEGER NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("cache: init schema: %w", err)
	}

	s := &Store{db: db}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("cache: invalid redis URL, redis tier disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("cache: redis unreachable, redis tier disabled", slog.Any("error", err))
			} else {
				s.rdb = rdb
				slog.Info("cache: redis tier connected", slog.String("addr", opts.Addr))
			}
		}
	}

	slog.Info("cache: store opened", slog.String("dir", dir), slog.Bool("redis", s.rdb != nil))
	return s, nil
}

// Get returns the raw entry payload if present and unexpired. Expired
// entries are evicted as a side effect and reported as absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	now := time.Now()

	if val, ok := s.l1.Load(key); ok {
		me := val.(*memEntry)
		if now.Before(me.expiresAt) {
			IncrCacheHit()
			return me.data, true
		}
		s.l1.Delete(key)
	}

	if s.rdb != nil {
		if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var e Entry
			if json.Unmarshal(data, &e) == nil && now.Before(e.ExpiresAt) {
				s.l1.Store(key, &memEntry{data: e.Data, expiresAt: e.ExpiresAt})
				IncrCacheHit()
				return e.Data, true
			}
		}
	}

	var blob []byte
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT data, expires_at FROM entries WHERE key = ?`, key).Scan(&blob, &expiresAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		slog.Warn("cache: read failed, treating as miss", slog.String("key", key), slog.Any("error", err))
	case now.UnixMilli() > expiresAt:
		if _, derr := s.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key); derr != nil {
			slog.Debug("cache: evict failed", slog.String("key", key), slog.Any("error", derr))
		}
	default:
		exp := time.UnixMilli(expiresAt)
		s.l1.Store(key, &memEntry{data: blob, expiresAt: exp})
		IncrCacheHit()
		return blob, true
	}

	IncrCacheMiss()
	return nil, false
}

// Set writes the entry to every available tier. Writes are best-effort.
func (s *Store) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	now := time.Now()
	exp := now.Add(ttl)

	s.l1.Store(key, &memEntry{data: data, expiresAt: exp})

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (key, data, cached_at, expires_at, ttl_ms)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   data = excluded.data, cached_at = excluded.cached_at,
		   expires_at = excluded.expires_at, ttl_ms = excluded.ttl_ms`,
		key, data, now.UnixMilli(), exp.UnixMilli(), ttl.Milliseconds()); err != nil {
		slog.Warn("cache: write failed, entry dropped", slog.String("key", key), slog.Any("error", err))
	}

	if s.rdb != nil {
		e := Entry{Data: data, CachedAt: now, ExpiresAt: exp, TTL: ttl}
		if blob, err := json.Marshal(e); err == nil {
			if err := s.rdb.Set(ctx, key, blob, ttl).Err(); err != nil {
				slog.Debug("cache: redis set failed", slog.Any("error", err))
			}
		}
	}
}

// Delete removes a key from every tier.
func (s *Store) Delete(ctx context.Context, key string) {
	s.l1.Delete(key)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key); err != nil {
		slog.Debug("cache: delete failed", slog.String("key", key), slog.Any("error", err))
	}
	if s.rdb != nil {
		s.rdb.Del(ctx, key)
	}
}

// ClearNamespace drops every entry under the given prefix ("" = all).
func (s *Store) ClearNamespace(ctx context.Context, prefix string) int {
	var cleared int
	s.l1.Range(func(key, _ any) bool {
		if k := key.(string); prefix == "" || len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			s.l1.Delete(key)
		}
		return true
	})
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE key LIKE ?`, prefix+"%")
	if err != nil {
		slog.Warn("cache: clear failed", slog.String("prefix", prefix), slog.Any("error", err))
		return 0
	}
	if n, err := res.RowsAffected(); err == nil {
		cleared = int(n)
	}
	return cleared
}

// NamespaceStats reports entry counts and payload bytes per namespace from
// the durable tier.
type NamespaceStats struct {
	Count     int   `json:"count"`
	SizeBytes int64 `json:"size_bytes"`
}

// Stats returns per-namespace counts from the durable tier.
func (s *Store) Stats(ctx context.Context) map[string]NamespaceStats {
	out := make(map[string]NamespaceStats, 4)
	for _, ns := range []string{nsSearch, nsChannel, nsVideo, nsTool} {
		var st NamespaceStats
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*), COALESCE(SUM(LENGTH(data)), 0) FROM entries WHERE key LIKE ?`,
			ns+"%").Scan(&st.Count, &st.SizeBytes)
		if err != nil {
			slog.Debug("cache: stats query failed", slog.String("ns", ns), slog.Any("error", err))
			continue
		}
		out[ns[:len(ns)-1]] = st
	}
	return out
}

// CacheLoadJSON tries to load a cached value of type T under the tool
// namespace. Returns the decoded value and true on hit.
func CacheLoadJSON[T any](ctx context.Context, key string) (T, bool) {
	var zero T
	s, err := CacheStore()
	if err != nil {
		return zero, false
	}
	data, ok := s.Get(ctx, nsTool+key)
	if !ok {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, false
	}
	return out, true
}

// CacheStoreJSON marshals v and stores it under the tool namespace with the
// search-layer TTL.
func CacheStoreJSON[T any](ctx context.Context, key string, v T) {
	s, err := CacheStore()
	if err != nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.Set(ctx, nsTool+key, data, cfg.SearchCacheTTL)
}
