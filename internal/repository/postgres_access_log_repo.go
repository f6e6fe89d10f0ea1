package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresAccessLogRepo はPostgreSQLを使用したアクセスログリポジトリ。
type PostgresAccessLogRepo struct {
	db *sql.DB
}

// NewPostgresAccessLogRepo はPostgresAccessLogRepoを生成する。
func NewPostgresAccessLogRepo(db *sql.DB) *PostgresAccessLogRepo {
	return &PostgresAccessLogRepo{db: db}
}

// Append はアクセスログを1件追記する。
func (r *PostgresAccessLogRepo) Append(ctx context.Context, userID string, dropID int64, accessedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO access_logs (user_id, drop_id, accessed_at) VALUES ($1, $2, $3)`,
		userID, dropID, accessedAt,
	)
	if err != nil {
		return fmt.Errorf("アクセスログの記録に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ AccessLogRepository = (*PostgresAccessLogRepo)(nil)
