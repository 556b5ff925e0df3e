package searcher

import (
	"crypto/sha256"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/symdex-mcp/internal/index"
	"github.com/dshills/symdex-mcp/pkg/types"
)

// DefaultCacheTTL bounds how long a cached response may be served
const DefaultCacheTTL = 30 * time.Second

// SearchRequest contains parameters for a symbol search
type SearchRequest struct {
	Query    string
	Limit    int
	Exact    bool // Exact name lookup instead of fuzzy matching
	UseCache bool
	CacheTTL time.Duration
}

// SearchResponse contains search results and metadata
type SearchResponse struct {
	Symbols    []types.Symbol
	Duration   time.Duration
	CacheHit   bool
	Generation uint64 // Snapshot generation the results came from
}

// cacheEntry represents a cached search response with expiration time
type cacheEntry struct {
	response  *SearchResponse
	expiresAt time.Time
}

// Searcher serves point and fuzzy symbol lookups against the currently
// published index snapshot. Queries never block on an in-progress rebuild;
// they read whatever snapshot is current when they start.
type Searcher struct {
	idx   *index.SwapIndex
	cache *lru.Cache[[32]byte, *cacheEntry]
}

// NewSearcher creates a new Searcher instance
func NewSearcher(idx *index.SwapIndex) *Searcher {
	// Create LRU cache with 1000 entry limit; least recently used entries
	// are evicted automatically.
	cache, err := lru.New[[32]byte, *cacheEntry](1000)
	if err != nil {
		// This should never happen with a valid size parameter
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	return &Searcher{
		idx:   idx,
		cache: cache,
	}
}

// Search runs a symbol query against the published snapshot
func (s *Searcher) Search(req SearchRequest) (*SearchResponse, error) {
	if req.Query == "" {
		return nil, types.ErrEmptyQuery
	}
	if req.Limit < 0 {
		return nil, types.ErrInvalidLimit
	}
	if req.Limit == 0 {
		req.Limit = 20
	}
	if req.CacheTTL <= 0 {
		req.CacheTTL = DefaultCacheTTL
	}

	start := time.Now()
	snap := s.idx.Load()

	// The snapshot generation is part of the key, so a rebuild naturally
	// misses the cache instead of serving stale results.
	key := s.cacheKey(req, snap.Generation())
	if req.UseCache {
		if entry, ok := s.cache.Get(key); ok && time.Now().Before(entry.expiresAt) {
			resp := *entry.response
			resp.CacheHit = true
			resp.Duration = time.Since(start)
			return &resp, nil
		}
	}

	var symbols []types.Symbol
	if req.Exact {
		symbols = snap.Lookup(req.Query)
		if len(symbols) > req.Limit {
			symbols = symbols[:req.Limit]
		}
	} else {
		symbols = snap.FuzzyFind(req.Query, req.Limit)
	}

	resp := &SearchResponse{
		Symbols:    symbols,
		Duration:   time.Since(start),
		Generation: snap.Generation(),
	}

	if req.UseCache {
		s.cache.Add(key, &cacheEntry{
			response:  resp,
			expiresAt: time.Now().Add(req.CacheTTL),
		})
	}
	return resp, nil
}

// References returns all recorded references to a symbol name
func (s *Searcher) References(name string) ([]types.Reference, error) {
	if name == "" {
		return nil, types.ErrEmptyQuery
	}
	return s.idx.Load().References(name), nil
}

// cacheKey hashes the request parameters and snapshot generation
func (s *Searcher) cacheKey(req SearchRequest, generation uint64) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%t|%d", req.Query, req.Limit, req.Exact, generation)))
}
