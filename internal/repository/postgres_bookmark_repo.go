package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/dropzone/internal/model"
)

// PostgresBookmarkRepo はPostgreSQLを使用したブックマークリポジトリ。
type PostgresBookmarkRepo struct {
	db *sql.DB
}

// NewPostgresBookmarkRepo はPostgresBookmarkRepoを生成する。
func NewPostgresBookmarkRepo(db *sql.DB) *PostgresBookmarkRepo {
	return &PostgresBookmarkRepo{db: db}
}

// toggleBookmarkSQL は削除と作成を1文で行う。
// 既存行があればDELETEし、なければINSERTする。
// 同一ユーザーからの同時実行で両方がINSERTに進んだ場合は
// UNIQUE(user_id, drop_id) とON CONFLICT DO NOTHINGにより1行のみ残る。
const toggleBookmarkSQL = `
WITH deleted AS (
    DELETE FROM bookmarks
    WHERE user_id = $1::uuid AND drop_id = $2::bigint
    RETURNING drop_id
), inserted AS (
    INSERT INTO bookmarks (user_id, drop_id, bookmarked_at)
    SELECT $1::uuid, $2::bigint, $3::timestamptz
    WHERE NOT EXISTS (SELECT 1 FROM deleted)
    ON CONFLICT (user_id, drop_id) DO NOTHING
    RETURNING drop_id
)
SELECT (SELECT count(*) FROM deleted), (SELECT count(*) FROM inserted)`

// Toggle はブックマークが存在すれば削除し、存在しなければ作成する。
func (r *PostgresBookmarkRepo) Toggle(ctx context.Context, userID string, dropID int64, now time.Time) (model.BookmarkToggleResult, error) {
	var deleted, inserted int
	if err := r.db.QueryRowContext(ctx, toggleBookmarkSQL, userID, dropID, now).Scan(&deleted, &inserted); err != nil {
		return "", fmt.Errorf("ブックマークの切り替えに失敗しました: %w", err)
	}

	if deleted > 0 {
		return model.BookmarkRemoved, nil
	}
	// inserted == 0 は同時実行の別リクエストが先に作成したケース。
	// いずれにせよ結果の状態は「ブックマーク済み」。
	return model.BookmarkCreated, nil
}

// Exists はブックマークの有無を返す。
func (r *PostgresBookmarkRepo) Exists(ctx context.Context, userID string, dropID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookmarks WHERE user_id = $1 AND drop_id = $2)`,
		userID, dropID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ブックマークの確認に失敗しました: %w", err)
	}
	return exists, nil
}

// compile-time interface check
var _ BookmarkRepository = (*PostgresBookmarkRepo)(nil)
