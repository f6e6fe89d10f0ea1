// Package drop はドロップの一覧、詳細、ブックマーク、ダウンロードを提供する。
// 公開判定は release_time のみで行う（is_free は参照しない）。
package drop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/dropzone/internal/metrics"
	"github.com/hitoshi/dropzone/internal/model"
	"github.com/hitoshi/dropzone/internal/repository"
	"github.com/hitoshi/dropzone/internal/security"
	"github.com/hitoshi/dropzone/internal/storage"
)

// Download はダウンロード可能なファイルを表す。
// 呼び出し側はBodyを必ずCloseすること。
type Download struct {
	Name        string // Content-Dispositionに使うファイル名
	ContentType string
	Size        int64
	ModTime     time.Time
	Body        storage.Object
}

// Service はドロップに関するビジネスロジックを提供する。
type Service struct {
	dropRepo      repository.DropRepository
	bookmarkRepo  repository.BookmarkRepository
	accessLogRepo repository.AccessLogRepository
	store         storage.FileStore
	sanitizer     security.DescriptionSanitizer
	metrics       metrics.MetricsCollector
	now           func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	dropRepo repository.DropRepository,
	bookmarkRepo repository.BookmarkRepository,
	accessLogRepo repository.AccessLogRepository,
	store storage.FileStore,
	sanitizer security.DescriptionSanitizer,
	mc metrics.MetricsCollector,
) *Service {
	return &Service{
		dropRepo:      dropRepo,
		bookmarkRepo:  bookmarkRepo,
		accessLogRepo: accessLogRepo,
		store:         store,
		sanitizer:     sanitizer,
		metrics:       mc,
		now:           time.Now,
	}
}

// WithClock は現在時刻の取得関数を差し替える。テスト用。
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ListReleased は公開済みドロップを公開日時の新しい順で返す。
func (s *Service) ListReleased(ctx context.Context, userID string) ([]model.DropWithState, error) {
	drops, err := s.dropRepo.ListReleased(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	return s.sanitizeAll(drops), nil
}

// ListUpcoming は公開前のドロップを公開日時の近い順で返す。
func (s *Service) ListUpcoming(ctx context.Context, userID string) ([]model.DropWithState, error) {
	drops, err := s.dropRepo.ListUpcoming(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	return s.sanitizeAll(drops), nil
}

// ListBookmarked はユーザーがブックマークしたドロップを返す。
// 公開前のドロップも含む。
func (s *Service) ListBookmarked(ctx context.Context, userID string) ([]model.DropWithState, error) {
	drops, err := s.dropRepo.ListBookmarked(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.sanitizeAll(drops), nil
}

// Get はドロップの詳細を返し、閲覧をアクセスログに記録する。
// 公開前のドロップも詳細は閲覧できる。
func (s *Service) Get(ctx context.Context, userID string, dropID int64) (*model.DropWithState, error) {
	drop, err := s.dropRepo.FindByIDWithState(ctx, userID, dropID)
	if err != nil {
		return nil, err
	}
	if drop == nil {
		return nil, model.NewDropNotFoundError()
	}

	s.recordAccess(ctx, userID, dropID)

	drop.Description = s.sanitizer.Sanitize(drop.Description)
	return drop, nil
}

// ToggleBookmark はブックマークを切り替える。2回呼ぶと元の状態に戻る。
func (s *Service) ToggleBookmark(ctx context.Context, userID string, dropID int64) (model.BookmarkToggleResult, error) {
	drop, err := s.dropRepo.FindByID(ctx, dropID)
	if err != nil {
		return "", err
	}
	if drop == nil {
		return "", model.NewDropNotFoundError()
	}

	result, err := s.bookmarkRepo.Toggle(ctx, userID, dropID, s.now())
	if err != nil {
		return "", err
	}

	s.metrics.RecordBookmarkToggle(string(result))
	slog.Info("bookmark toggled",
		slog.String("user_id", userID),
		slog.Int64("drop_id", dropID),
		slog.String("result", string(result)),
	)
	return result, nil
}

// OpenDownload はダウンロード対象のファイルを開く。
// 判定は次の順で行い、最初に失敗した時点でエラーを返す。
//  1. ドロップが存在する（なければDROP_NOT_FOUND）
//  2. 公開済みである（でなければDROP_NOT_RELEASED）
//  3. ファイルが添付されている（なければFILE_NOT_FOUND）
//  4. ストレージ上にファイルが存在する（なければFILE_NOT_FOUND）
func (s *Service) OpenDownload(ctx context.Context, userID string, dropID int64) (*Download, error) {
	drop, err := s.dropRepo.FindByID(ctx, dropID)
	if err != nil {
		s.metrics.RecordDownload(metrics.DownloadError)
		return nil, err
	}
	if drop == nil {
		s.metrics.RecordDownload(metrics.DownloadNotFound)
		return nil, model.NewDropNotFoundError()
	}

	if !drop.IsReleased(s.now()) {
		s.metrics.RecordDownload(metrics.DownloadNotReleased)
		return nil, model.NewDropNotReleasedError()
	}

	if !drop.HasFile() {
		s.metrics.RecordDownload(metrics.DownloadNoFile)
		return nil, model.NewNoFileAttachedError()
	}

	obj, err := s.store.Open(ctx, drop.FileName)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			s.metrics.RecordDownload(metrics.DownloadMissing)
			slog.Warn("drop file missing from storage",
				slog.Int64("drop_id", dropID),
				slog.String("file", drop.FileName),
			)
			return nil, model.NewFileMissingError()
		}
		s.metrics.RecordDownload(metrics.DownloadError)
		return nil, fmt.Errorf("failed to open file for drop %d: %w", dropID, err)
	}

	download := &Download{
		Name:        storage.AttachmentName(drop.FileName),
		ContentType: storage.DetectContentType(drop.FileName, obj),
		Size:        obj.Size(),
		ModTime:     obj.ModTime(),
		Body:        obj,
	}

	s.recordAccess(ctx, userID, dropID)
	s.metrics.RecordDownload(metrics.DownloadServed)
	slog.Info("download started",
		slog.String("user_id", userID),
		slog.Int64("drop_id", dropID),
		slog.String("file", download.Name),
		slog.Int64("size", download.Size),
	)

	return download, nil
}

// recordAccess はアクセスログを追記する。
// 失敗しても本来の処理は継続し、ログにのみ残す。
func (s *Service) recordAccess(ctx context.Context, userID string, dropID int64) {
	if err := s.accessLogRepo.Append(ctx, userID, dropID, s.now()); err != nil {
		slog.Warn("failed to append access log",
			slog.String("user_id", userID),
			slog.Int64("drop_id", dropID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) sanitizeAll(drops []model.DropWithState) []model.DropWithState {
	for i := range drops {
		drops[i].Description = s.sanitizer.Sanitize(drops[i].Description)
	}
	return drops
}
