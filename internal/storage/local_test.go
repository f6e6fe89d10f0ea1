package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeMediaFile(t *testing.T, root, name, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestNewLocalStore_RootMustBeDirectory(t *testing.T) {
	root := t.TempDir()
	writeMediaFile(t, root, "file.txt", "x")

	if _, err := NewLocalStore(filepath.Join(root, "file.txt")); err == nil {
		t.Error("expected error for non-directory root")
	}
	if _, err := NewLocalStore(filepath.Join(root, "missing")); err == nil {
		t.Error("expected error for missing root")
	}
	if _, err := NewLocalStore(root); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLocalStore_Open_ReadsFile(t *testing.T) {
	root := t.TempDir()
	writeMediaFile(t, root, "drops/guide.pdf", "%PDF-1.4 hello")

	store, err := NewLocalStore(root)
	if err != nil {
		t.Fatalf("NewLocalStore returned error: %v", err)
	}

	obj, err := store.Open(context.Background(), "drops/guide.pdf")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer obj.Close()

	if obj.Size() != int64(len("%PDF-1.4 hello")) {
		t.Errorf("Size() = %d, want %d", obj.Size(), len("%PDF-1.4 hello"))
	}
	if obj.ModTime().IsZero() {
		t.Error("ModTime() should not be zero")
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if string(data) != "%PDF-1.4 hello" {
		t.Errorf("content = %q", data)
	}
}

func TestLocalStore_Open_NotExist(t *testing.T) {
	root := t.TempDir()
	writeMediaFile(t, root, "drops/a.txt", "a")
	store, err := NewLocalStore(root)
	if err != nil {
		t.Fatalf("NewLocalStore returned error: %v", err)
	}

	tests := []struct {
		name string
		file string
	}{
		{"存在しないファイル", "drops/missing.pdf"},
		{"空の名前", ""},
		{"ディレクトリ", "drops"},
		{"親ディレクトリへの脱出", "../etc/passwd"},
		{"絶対パス", "/etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := store.Open(context.Background(), tt.file)
			if obj != nil {
				obj.Close()
			}
			if !errors.Is(err, ErrNotExist) {
				t.Errorf("Open(%q) err = %v, want ErrNotExist", tt.file, err)
			}
		})
	}
}

func TestLocalStore_Open_SymlinkEscapeRejected(t *testing.T) {
	outside := t.TempDir()
	writeMediaFile(t, outside, "secret.txt", "secret")

	root := t.TempDir()
	if err := os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}

	store, err := NewLocalStore(root)
	if err != nil {
		t.Fatalf("NewLocalStore returned error: %v", err)
	}

	obj, err := store.Open(context.Background(), "link.txt")
	if err == nil {
		obj.Close()
		t.Fatal("expected error for symlink escaping root")
	}
}
