// Package storage はドロップに添付されたファイルの読み出しを提供する。
// ローカルディスクとS3互換オブジェクトストレージ（MinIO）の2種類のバックエンドを持つ。
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotExist は指定したファイルがストレージ上に存在しないことを表す。
var ErrNotExist = errors.New("storage: object does not exist")

// Object はストレージから開いたファイル。
// http.ServeContentに渡せるようSeekをサポートする。
type Object interface {
	io.ReadSeekCloser
	Size() int64
	ModTime() time.Time
}

// FileStore はファイル名（例: "drops/guide.pdf"）でファイルを開くストレージ。
type FileStore interface {
	// Open は指定名のファイルを開く。存在しない場合はErrNotExistをラップしたエラーを返す。
	Open(ctx context.Context, name string) (Object, error)
}
