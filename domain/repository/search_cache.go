package repository

import "context"

// ISearchCache maps a normalized query to the ordered keys it produced
type ISearchCache interface {
	// Get returns the newest entry for query. found is false when there is
	// no entry or the newest one is older than the TTL.
	Get(ctx context.Context, query string) (ids []string, found bool, err error)
	// Put always appends a new entry.
	Put(ctx context.Context, query string, ids []string) error
}
