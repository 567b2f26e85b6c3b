// Package httpapi serves the read-only budget API: current metrics from
// the latest export, plus history, alerts and trends from the store.
package httpapi

import (
	"container/list"
	"context"
	"net/http"
	"sync"
	"time"

	"budgetwatch/internal/core"
	"budgetwatch/internal/log"
	"budgetwatch/internal/storage"
	"budgetwatch/internal/trend"
)

// LRU cache with TTL and size-based eviction
type lruCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func newLRUCache[T any](maxSize int, ttl time.Duration) *lruCache[T] {
	return &lruCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *lruCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return item.data, true
}

func (c *lruCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *lruCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries
func (c *lruCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element

	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		item := elem.Value.(*cacheItem[T])
		if now.After(item.expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}

	for _, elem := range toRemove {
		c.removeElement(elem)
	}

	return len(toRemove)
}

// Store is the read surface the API needs from storage.
type Store interface {
	SpendingSince(ctx context.Context, since time.Time) map[string][]core.DailySnapshot
	AlertsSince(ctx context.Context, since time.Time, limit int) []core.Alert
}

type Server struct {
	http.Server

	store      Store
	trends     *trend.Engine
	latestPath string
	logger     *log.Logger
	startedAt  time.Time
	now        func() time.Time

	currentCache *lruCache[[]byte]
	historyCache *lruCache[map[string][]core.DailySnapshot]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

var _ Store = (*storage.HistoryStore)(nil)

// NewServer configures routes and caches, returning a ready-to-run server.
// latestPath is the live JSON export the current endpoint serves.
func NewServer(addr string, store Store, latestPath string, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:      store,
		trends:     trend.NewEngine(),
		latestPath: latestPath,
		logger:     logger.WithComponent(log.ComponentAPI),
		startedAt:  time.Now(),
		now:        time.Now,

		// Responses change at most once per run, so a short TTL keeps the
		// store quiet without serving stale data for long.
		currentCache:     newLRUCache[[]byte](4, time.Minute),
		historyCache:     newLRUCache[map[string][]core.DailySnapshot](32, time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/current", s.handleCurrent)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/alerts", s.handleAlerts)
	mux.HandleFunc("GET /api/trends", s.handleTrends)

	return s
}

// startCacheCleanup runs periodic cleanup for both caches
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := s.currentCache.CleanExpired() + s.historyCache.CleanExpired()
			if cleaned > 0 {
				s.logger.Debug("Cache cleanup completed", log.FieldCount, cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
