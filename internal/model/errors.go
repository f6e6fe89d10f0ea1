// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, drop, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeDropNotFound       = "DROP_NOT_FOUND"
	ErrCodeDropNotReleased    = "DROP_NOT_RELEASED"
	ErrCodeFileNotFound       = "FILE_NOT_FOUND"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeDuplicateUsername  = "DUPLICATE_USERNAME"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// ErrDuplicateUsername はusernameの一意制約違反を表す。
// リポジトリ層が返し、サービス層でAPIErrorに変換する。
var ErrDuplicateUsername = errors.New("username already exists")

// NewDropNotFoundError はドロップ未検出エラーを生成する。
func NewDropNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeDropNotFound,
		Message:  "Drop not found.",
		Category: "drop",
		Action:   "ドロップIDを確認してください。",
	}
}

// NewDropNotReleasedError は公開前のドロップへのアクセスエラーを生成する。
func NewDropNotReleasedError() *APIError {
	return &APIError{
		Code:     ErrCodeDropNotReleased,
		Message:  "This drop is not yet released.",
		Category: "drop",
		Action:   "公開日時を過ぎてから再度お試しください。",
	}
}

// NewNoFileAttachedError はドロップにファイルが添付されていない場合のエラーを生成する。
func NewNoFileAttachedError() *APIError {
	return &APIError{
		Code:     ErrCodeFileNotFound,
		Message:  "No file attached to this drop.",
		Category: "drop",
		Action:   "このドロップにはダウンロード可能なファイルがありません。",
	}
}

// NewFileMissingError はストレージ上にファイルが存在しない場合のエラーを生成する。
func NewFileMissingError() *APIError {
	return &APIError{
		Code:     ErrCodeFileNotFound,
		Message:  "File not found.",
		Category: "drop",
		Action:   "管理者に連絡してください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Authentication credentials were not provided.",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "No active account found with the given credentials.",
		Category: "auth",
		Action:   "ユーザー名とパスワードを確認してください。",
	}
}

// NewInvalidTokenError は無効・期限切れトークンのエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "Token is invalid or expired.",
		Category: "auth",
		Action:   "再度ログインしてください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "Malformed request body.",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewValidationError は入力値のバリデーションエラーを生成する。
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("%s: %s", field, reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewDuplicateUsernameError はusername重複エラーを生成する。
func NewDuplicateUsernameError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUsername,
		Message:  "A user with that username already exists.",
		Category: "validation",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found.",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Request was throttled.",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Internal server error.",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
