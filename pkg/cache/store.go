// Package cache defines the shared key-value store that holds rendered
// global user pages and resolved source URLs. Keys are global, not
// per-wiki: a rendering for a given username, freshness token and locale
// is identical on every participant wiki, so one entry serves the fleet.
package cache

import "time"

// Store is a shared TTL'd key-value store.
type Store interface {
	// Get returns the value for key and whether a live entry was found.
	Get(key string) (string, bool, error)

	// Set stores a value. A ttl <= 0 means the entry never expires and
	// must be removed by an explicit Delete.
	Set(key, value string, ttl time.Duration) error

	// Delete removes an entry. Deleting a missing key is not an error.
	Delete(key string) error
}
