package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig はS3互換ストレージへの接続設定。
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore はS3互換バケット上のオブジェクトを提供するFileStore。
// ドロップのファイル名をそのままオブジェクトキーとして使う。
type MinioStore struct {
	client *minio.Client
	bucket string
}

// normaliseEndpoint は "minio:9000" と "https://minio:9000" の両形式を受け付ける。
// スキームがある場合はそれに従ってTLSの有無を決める。
func normaliseEndpoint(raw string, defaultSecure bool) (string, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}
	if !strings.Contains(raw, "://") {
		return raw, defaultSecure, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false, err
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("invalid endpoint: %q", raw)
	}
	if u.Path != "" && u.Path != "/" {
		return "", false, fmt.Errorf("endpoint must not contain a path: %q", raw)
	}
	return u.Host, u.Scheme == "https", nil
}

// NewMinioStore はMinIOクライアントを生成し、バケットの存在を確認する。
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	endpoint, secure, err := normaliseEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("invalid S3 endpoint: %w", err)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket does not exist: %s", cfg.Bucket)
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// Open はオブジェクトを取得する。GetObjectは遅延評価のため、
// Statで存在確認してから返す。
func (s *MinioStore) Open(ctx context.Context, name string) (Object, error) {
	key := strings.TrimPrefix(name, "/")
	if key == "" {
		return nil, fmt.Errorf("open %q: %w", name, ErrNotExist)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrapError(key, err)
	}

	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, s.wrapError(key, err)
	}

	return &minioObject{Object: obj, info: info}, nil
}

func (s *MinioStore) wrapError(key string, err error) error {
	if isNoSuchKey(err) {
		return fmt.Errorf("open %q: %w", key, ErrNotExist)
	}
	return fmt.Errorf("failed to get object %q from bucket %q: %w", key, s.bucket, err)
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchObject"
}

type minioObject struct {
	*minio.Object
	info minio.ObjectInfo
}

func (o *minioObject) Size() int64        { return o.info.Size }
func (o *minioObject) ModTime() time.Time { return o.info.LastModified }

var _ FileStore = (*MinioStore)(nil)
