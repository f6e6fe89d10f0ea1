// Package notify はユーザー登録時のウェルカム通知を提供する。
package notify

import (
	"context"
	"log/slog"

	"github.com/hitoshi/dropzone/internal/model"
)

// WelcomeSubject はウェルカムメールの件名。
const WelcomeSubject = "🔥 Welcome to DropZone!"

// WelcomeNotifier は新規登録ユーザーへの通知インターフェース。
type WelcomeNotifier interface {
	NotifyWelcome(ctx context.Context, user *model.User) error
}

// LogNotifier はSMTPが未設定の環境で使う通知実装。
// 送信の代わりにログへ記録する。
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier はLogNotifierを生成する。loggerがnilの場合はslog.Default()を使う。
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// NotifyWelcome はウェルカム通知をログに出力する。
func (n *LogNotifier) NotifyWelcome(ctx context.Context, user *model.User) error {
	n.logger.InfoContext(ctx, "welcome email skipped (mail disabled)",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
		slog.Bool("has_email", user.Email != ""),
	)
	return nil
}

var _ WelcomeNotifier = (*LogNotifier)(nil)
