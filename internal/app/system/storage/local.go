// internal/app/system/storage/local.go
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local stores objects on the filesystem under a base directory and
// serves them under a URL prefix. Used for dev and tests.
type Local struct {
	basePath string
	baseURL  string
}

// NewLocal builds a Local store rooted at basePath.
func NewLocal(basePath, baseURL string) (*Local, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, err
	}
	return &Local{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// GetFullPath resolves key to an absolute filesystem path, rejecting
// keys that escape the base directory.
func (l *Local) GetFullPath(key string) (string, error) {
	full := filepath.Join(l.basePath, filepath.FromSlash(key))
	rel, err := filepath.Rel(l.basePath, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return full, nil
}

// Put writes the object under basePath/key.
func (l *Local) Put(ctx context.Context, key string, r io.Reader, opts *PutOptions) error {
	full, err := l.GetFullPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	f, err := os.Create(full)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return err
	}
	return f.Sync()
}

// Delete removes the object file.
func (l *Local) Delete(ctx context.Context, key string) error {
	full, err := l.GetFullPath(key)
	if err != nil {
		return err
	}
	err = os.Remove(full)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// PresignedURL returns the plain serving URL; local files are not signed.
func (l *Local) PresignedURL(ctx context.Context, key string, opts *PresignOptions) (string, error) {
	return l.URL(key), nil
}

// URL returns the serving URL for the object.
func (l *Local) URL(key string) string {
	return l.baseURL + "/" + strings.TrimLeft(key, "/")
}
