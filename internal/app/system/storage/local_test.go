package storage

import (
	"context"
	"os"
	"strings"
	"testing"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	l, err := NewLocal(t.TempDir(), "/files")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return l
}

func TestLocalPutWritesFile(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	key := "courses/abc/lectures/l1/attachments/notes.pdf"
	if err := l.Put(ctx, key, strings.NewReader("hello"), nil); err != nil {
		t.Fatalf("Put: %v", err)
	}

	full, err := l.GetFullPath(key)
	if err != nil {
		t.Fatalf("GetFullPath: %v", err)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q", data)
	}
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	l := newTestLocal(t)
	if _, err := l.GetFullPath("../outside"); err == nil {
		t.Error("GetFullPath accepted a key escaping the base directory")
	}
	if err := l.Put(context.Background(), "../../etc/passwd", strings.NewReader("x"), nil); err == nil {
		t.Error("Put accepted a key escaping the base directory")
	}
}

func TestLocalDeleteIsIdempotent(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	if err := l.Put(ctx, "a/b", strings.NewReader("x"), nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := l.Delete(ctx, "a/b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := l.Delete(ctx, "a/b"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
	full, _ := l.GetFullPath("a/b")
	if _, err := os.Stat(full); !os.IsNotExist(err) {
		t.Error("object still exists after Delete")
	}
}

func TestLocalURL(t *testing.T) {
	l := newTestLocal(t)
	if got := l.URL("courses/abc"); got != "/files/courses/abc" {
		t.Errorf("URL = %q", got)
	}
	url, err := l.PresignedURL(context.Background(), "courses/abc", nil)
	if err != nil {
		t.Fatalf("PresignedURL: %v", err)
	}
	if url != "/files/courses/abc" {
		t.Errorf("PresignedURL = %q", url)
	}
}
