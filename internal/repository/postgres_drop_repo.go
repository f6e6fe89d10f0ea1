package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/dropzone/internal/model"
)

// dropColumns はdropsテーブルのSELECT対象カラム。
// 状態付きクエリではbookmarksとのLEFT JOIN結果を末尾に追加する。
const dropColumns = `d.id, d.title, d.description, d.content_type, d.file_name, d.github_link,
	d.is_free, d.release_time, d.created_at, d.updated_at`

// PostgresDropRepo はPostgreSQLを使用したドロップリポジトリ。
type PostgresDropRepo struct {
	db *sql.DB
}

// NewPostgresDropRepo はPostgresDropRepoを生成する。
func NewPostgresDropRepo(db *sql.DB) *PostgresDropRepo {
	return &PostgresDropRepo{db: db}
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDrop は1行分のドロップを読み取る。
// extraにはdropColumnsの後ろに続くカラムのスキャン先を渡す。
func scanDrop(s rowScanner, d *model.Drop, extra ...any) error {
	var fileName, githubLink sql.NullString
	var contentType string

	dest := []any{
		&d.ID, &d.Title, &d.Description, &contentType, &fileName, &githubLink,
		&d.IsFree, &d.ReleaseTime, &d.CreatedAt, &d.UpdatedAt,
	}
	dest = append(dest, extra...)

	if err := s.Scan(dest...); err != nil {
		return err
	}

	d.ContentType = model.ContentType(contentType)
	d.FileName = nullStringValue(fileName)
	d.GithubLink = nullStringValue(githubLink)
	return nil
}

// FindByID は指定IDのドロップを取得する。見つからない場合はnilを返す。
func (r *PostgresDropRepo) FindByID(ctx context.Context, id int64) (*model.Drop, error) {
	drop := &model.Drop{}
	err := scanDrop(r.db.QueryRowContext(ctx,
		`SELECT `+dropColumns+` FROM drops d WHERE d.id = $1`,
		id,
	), drop)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ドロップの取得に失敗しました: %w", err)
	}

	return drop, nil
}

// FindByIDWithState は指定IDのドロップをユーザーのブックマーク状態付きで取得する。
func (r *PostgresDropRepo) FindByIDWithState(ctx context.Context, userID string, id int64) (*model.DropWithState, error) {
	drop := &model.DropWithState{}
	err := scanDrop(r.db.QueryRowContext(ctx,
		`SELECT `+dropColumns+`, (b.drop_id IS NOT NULL) AS is_bookmarked
		 FROM drops d
		 LEFT JOIN bookmarks b ON b.drop_id = d.id AND b.user_id = $1
		 WHERE d.id = $2`,
		userID, id,
	), &drop.Drop, &drop.IsBookmarked)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ドロップの取得に失敗しました: %w", err)
	}

	return drop, nil
}

// ListReleased は release_time <= now のドロップを release_time 降順で返す。
func (r *PostgresDropRepo) ListReleased(ctx context.Context, userID string, now time.Time) ([]model.DropWithState, error) {
	return r.listWithState(ctx,
		`SELECT `+dropColumns+`, (b.drop_id IS NOT NULL) AS is_bookmarked
		 FROM drops d
		 LEFT JOIN bookmarks b ON b.drop_id = d.id AND b.user_id = $1
		 WHERE d.release_time <= $2
		 ORDER BY d.release_time DESC, d.id DESC`,
		userID, now,
	)
}

// ListUpcoming は release_time > now のドロップを release_time 昇順で返す。
func (r *PostgresDropRepo) ListUpcoming(ctx context.Context, userID string, now time.Time) ([]model.DropWithState, error) {
	return r.listWithState(ctx,
		`SELECT `+dropColumns+`, (b.drop_id IS NOT NULL) AS is_bookmarked
		 FROM drops d
		 LEFT JOIN bookmarks b ON b.drop_id = d.id AND b.user_id = $1
		 WHERE d.release_time > $2
		 ORDER BY d.release_time ASC, d.id ASC`,
		userID, now,
	)
}

// ListBookmarked はユーザーがブックマークしたドロップをブックマーク日時の降順で返す。
// 公開前のドロップも含む。
func (r *PostgresDropRepo) ListBookmarked(ctx context.Context, userID string) ([]model.DropWithState, error) {
	return r.listWithState(ctx,
		`SELECT `+dropColumns+`, TRUE AS is_bookmarked
		 FROM drops d
		 INNER JOIN bookmarks b ON b.drop_id = d.id
		 WHERE b.user_id = $1
		 ORDER BY b.bookmarked_at DESC, d.id DESC`,
		userID,
	)
}

func (r *PostgresDropRepo) listWithState(ctx context.Context, query string, args ...any) ([]model.DropWithState, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ドロップ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	drops := []model.DropWithState{}
	for rows.Next() {
		var d model.DropWithState
		if err := scanDrop(rows, &d.Drop, &d.IsBookmarked); err != nil {
			return nil, fmt.Errorf("ドロップ行のスキャンに失敗しました: %w", err)
		}
		drops = append(drops, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ドロップ一覧の読み取りに失敗しました: %w", err)
	}

	return drops, nil
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// compile-time interface check
var _ DropRepository = (*PostgresDropRepo)(nil)
