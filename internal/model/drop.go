// Package model はドメインモデルを定義する。
package model

import "time"

// ContentType はドロップのコンテンツ種別を表す。
// 値はAPIレスポンスとDBにそのまま格納される。
type ContentType string

const (
	// ContentTypeDocument は非公開ドキュメント。
	ContentTypeDocument ContentType = "doc"
	// ContentTypeCheatsheet はチートシート。
	ContentTypeCheatsheet ContentType = "cheatsheet"
	// ContentTypeRepository はGitHubリポジトリへのリンク。
	ContentTypeRepository ContentType = "repo"
)

// Valid は既知のコンテンツ種別かどうかを返す。
func (c ContentType) Valid() bool {
	switch c {
	case ContentTypeDocument, ContentTypeCheatsheet, ContentTypeRepository:
		return true
	}
	return false
}

// Drop は公開日時が設定されたコンテンツを表す。
// 管理者がAPI外で作成し、APIからは読み取り専用。
type Drop struct {
	ID          int64
	Title       string
	Description string
	ContentType ContentType
	FileName    string // ストレージ上のオブジェクト名（例: "drops/guide.pdf"）。空なら添付なし
	GithubLink  string
	IsFree      bool
	ReleaseTime time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsReleased はnow時点でドロップが公開済みかどうかを返す。
// now >= release_time のとき公開済み。
func (d *Drop) IsReleased(now time.Time) bool {
	return !now.Before(d.ReleaseTime)
}

// HasFile はファイルが添付されているかどうかを返す。
func (d *Drop) HasFile() bool {
	return d.FileName != ""
}

// DropWithState はドロップとリクエストユーザーのブックマーク状態を結合したモデル。
type DropWithState struct {
	Drop
	IsBookmarked bool
}

// Bookmark はユーザーによるドロップのブックマークを表す。
// (user_id, drop_id) は一意。
type Bookmark struct {
	UserID       string
	DropID       int64
	BookmarkedAt time.Time
}

// BookmarkToggleResult はブックマーク切り替えの結果を表す。
type BookmarkToggleResult string

const (
	// BookmarkCreated はブックマークが新規作成されたことを示す。
	BookmarkCreated BookmarkToggleResult = "created"
	// BookmarkRemoved はブックマークが削除されたことを示す。
	BookmarkRemoved BookmarkToggleResult = "removed"
)

// AccessLog はユーザーのドロップ閲覧・ダウンロードの監査レコード。
// 追記のみで、更新・削除は行わない。
type AccessLog struct {
	ID         int64
	UserID     string
	DropID     int64
	AccessedAt time.Time
}
