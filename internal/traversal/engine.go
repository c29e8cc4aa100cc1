package traversal

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"mysteryweb/internal/logger"
)

// Engine runs BFS and DFS style queries over edge lists. Its only state is
// an adjacency cache, which is safe to clear at any time.
type Engine struct {
	mu    sync.RWMutex
	cache map[string]Adjacency
	order []string
	limit int
	group singleflight.Group
	log   logger.Logger
}

// DefaultCacheLimit bounds the adjacency cache of engines built by New.
const DefaultCacheLimit = 64

type Option func(*Engine)

// WithCacheLimit caps the number of cached adjacency lists. The oldest
// entry is evicted first. n <= 0 disables caching.
func WithCacheLimit(n int) Option {
	return func(e *Engine) {
		e.limit = n
	}
}

func New(log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		cache: make(map[string]Adjacency),
		limit: DefaultCacheLimit,
		log:   logger.OrNop(log),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildAdjacencyList returns the adjacency of links. With bidirectional set
// every edge is followed both ways; otherwise only edges flagged
// bidirectional are.
func (e *Engine) BuildAdjacencyList(links []Link, bidirectional bool) Adjacency {
	mode := modeDirected
	if bidirectional {
		mode = modeBidirectional
	}
	return e.adjacency(links, mode)
}

func (e *Engine) adjacency(links []Link, mode adjacencyMode) Adjacency {
	key := cacheKey(links, mode)

	e.mu.RLock()
	adj, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		return adj
	}

	v, _, _ := e.group.Do(key, func() (any, error) {
		e.mu.RLock()
		cached, ok := e.cache[key]
		e.mu.RUnlock()
		if ok {
			return cached, nil
		}
		built := buildAdjacency(links, mode)
		e.store(key, built)
		e.log.Debug("built adjacency list", "edges", len(links), "nodes", len(built), "mode", mode)
		return built, nil
	})
	return v.(Adjacency)
}

func (e *Engine) store(key string, adj Adjacency) {
	if e.limit <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.cache[key]; ok {
		return
	}
	for len(e.order) >= e.limit {
		delete(e.cache, e.order[0])
		e.order = e.order[1:]
	}
	e.cache[key] = adj
	e.order = append(e.order, key)
}

// ClearCache drops every cached adjacency list.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	e.cache = make(map[string]Adjacency)
	e.order = nil
	e.mu.Unlock()
}

// CacheSize is the number of cached adjacency lists.
func (e *Engine) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}
