// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/dropzone/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はusernameでユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成する。
	// usernameが既に存在する場合はmodel.ErrDuplicateUsernameをラップしたエラーを返す。
	Create(ctx context.Context, user *model.User) error
}

// DropRepository はドロップデータの永続化インターフェース。
// ドロップは管理者がAPI外で作成するため、読み取り操作のみを提供する。
type DropRepository interface {
	// FindByID は指定IDのドロップを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Drop, error)

	// FindByIDWithState は指定IDのドロップをユーザーのブックマーク状態付きで取得する。
	// 見つからない場合はnilを返す。
	FindByIDWithState(ctx context.Context, userID string, id int64) (*model.DropWithState, error)

	// ListReleased は release_time <= now のドロップを release_time 降順で返す。
	ListReleased(ctx context.Context, userID string, now time.Time) ([]model.DropWithState, error)

	// ListUpcoming は release_time > now のドロップを release_time 昇順で返す。
	ListUpcoming(ctx context.Context, userID string, now time.Time) ([]model.DropWithState, error)

	// ListBookmarked はユーザーがブックマークしたドロップをブックマーク日時の降順で返す。
	ListBookmarked(ctx context.Context, userID string) ([]model.DropWithState, error)
}

// BookmarkRepository はブックマークの永続化インターフェース。
type BookmarkRepository interface {
	// Toggle はブックマークが存在すれば削除し、存在しなければ作成する。
	// 1文のSQLとUNIQUE(user_id, drop_id)制約で原子的に実行する。
	Toggle(ctx context.Context, userID string, dropID int64, now time.Time) (model.BookmarkToggleResult, error)

	// Exists はブックマークの有無を返す。
	Exists(ctx context.Context, userID string, dropID int64) (bool, error)
}

// AccessLogRepository はアクセスログの永続化インターフェース。
// 追記のみを提供する。
type AccessLogRepository interface {
	// Append はアクセスログを1件追記する。
	Append(ctx context.Context, userID string, dropID int64, accessedAt time.Time) error
}
