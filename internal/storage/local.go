package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// LocalStore はMEDIA_ROOT配下のファイルを提供するFileStore。
type LocalStore struct {
	root string
}

// NewLocalStore はLocalStoreを生成する。rootはディレクトリでなければならない。
func NewLocalStore(root string) (*LocalStore, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat media root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("media root is not a directory: %s", root)
	}
	return &LocalStore{root: root}, nil
}

// Open はroot配下のファイルを開く。
// rootの外を指す名前やディレクトリはErrNotExistとして扱う。
func (s *LocalStore) Open(_ context.Context, name string) (Object, error) {
	name = filepath.FromSlash(name)
	if name == "" || !filepath.IsLocal(name) {
		return nil, fmt.Errorf("open %q: %w", name, ErrNotExist)
	}

	f, err := os.OpenInRoot(s.root, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %q: %w", name, ErrNotExist)
		}
		return nil, fmt.Errorf("failed to open %q: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %q: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("open %q: %w", name, ErrNotExist)
	}

	return &localObject{File: f, info: info}, nil
}

type localObject struct {
	*os.File
	info fs.FileInfo
}

func (o *localObject) Size() int64        { return o.info.Size() }
func (o *localObject) ModTime() time.Time { return o.info.ModTime() }

var _ FileStore = (*LocalStore)(nil)
