// Package storage abstracts object storage for course cover images and
// lecture attachments. The S3 backend is used in production; the Local
// backend serves dev and tests. Uploads are synchronous calls made inline
// with the request; failures surface directly to the caller.
package storage

import (
	"context"
	"io"
	"time"
)

// PutOptions carries optional metadata for an upload.
type PutOptions struct {
	ContentType string
}

// PresignOptions controls signed download URLs.
type PresignOptions struct {
	Expires            time.Duration
	ContentDisposition string
}

// DefaultPresignExpiry matches the original platform's one-hour signed
// GET URLs.
const DefaultPresignExpiry = time.Hour

// Store is the object-storage interface the app programs against.
type Store interface {
	// Put stores the object under key.
	Put(ctx context.Context, key string, r io.Reader, opts *PutOptions) error
	// Delete removes the object. No flow currently calls this on course
	// or attachment deletion; cleanup is logged only.
	Delete(ctx context.Context, key string) error
	// PresignedURL returns a time-limited download URL for the object.
	PresignedURL(ctx context.Context, key string, opts *PresignOptions) (string, error)
	// URL returns a non-expiring URL for the object where the backend
	// supports one (local file serving); otherwise the bare key.
	URL(key string) string
}
