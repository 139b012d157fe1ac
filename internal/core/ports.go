package core

import (
	"context"
	"time"
)

// SearchTool is the web-search port handed to the research agent.
// Implementations return a plain-text digest of the top results.
type SearchTool interface {
	Search(ctx context.Context, query string) (string, error)
}

// CacheEntry is one stored classification result, keyed by lead identity.
type CacheEntry struct {
	LeadID    string
	Kind      ResultKind
	Payload   []byte
	Decision  Decision
	Score     int
	CreatedAt time.Time
	ExpiresAt time.Time
}

// CacheRepository is the dedup-cache port. A Get error of any kind is
// treated as a miss by the pipeline.
type CacheRepository interface {
	// Get retrieves the cached entry for a lead identity
	Get(ctx context.Context, leadID string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, leadID string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
