// Package timeouts provides centralized timeout values for handler
// operations. Handlers wrap r.Context() with one of these for every
// database or storage call so a slow backend cannot pin a request.
//
// Guidelines:
//   - Ping: health checks
//   - Short: single-document reads and lookups
//   - Medium: list queries, simple creates/updates
//   - Long: multi-step writes (course delete with enrollment cleanup,
//     object-storage uploads done inline with the request)
package timeouts

import "time"

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
	long   = 30 * time.Second
)

// Ping returns the timeout for connectivity checks.
func Ping() time.Duration { return ping }

// Short returns the timeout for single-document operations.
func Short() time.Duration { return short }

// Medium returns the timeout for list queries and simple writes.
func Medium() time.Duration { return medium }

// Long returns the timeout for multi-step writes and storage uploads.
func Long() time.Duration { return long }
