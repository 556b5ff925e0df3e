// Package searcher provides the read API over the published index snapshot.
//
// Lookups are served from whatever snapshot is current when the query
// starts; a rebuild in progress is never waited on. Responses are cached in
// an LRU keyed by query parameters plus the snapshot generation, so a newly
// published snapshot invalidates the cache implicitly rather than through
// explicit eviction.
//
//	srch := searcher.NewSearcher(idx.Index())
//	resp, err := srch.Search(searcher.SearchRequest{
//	    Query:    "ParseFile",
//	    Limit:    10,
//	    UseCache: true,
//	})
package searcher
