// Package auth はユーザー登録、パスワード認証、JWTの発行と検証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hitoshi/dropzone/internal/metrics"
	"github.com/hitoshi/dropzone/internal/model"
	"github.com/hitoshi/dropzone/internal/notify"
	"github.com/hitoshi/dropzone/internal/repository"
)

const (
	maxUsernameLength = 150
	minPasswordLength = 8
	// bcryptは72バイトを超える入力を扱えない。
	maxPasswordBytes = 72
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	numericPattern  = regexp.MustCompile(`^[0-9]+$`)
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	BcryptCost int
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	tokens   *TokenIssuer
	notifier notify.WelcomeNotifier
	metrics  metrics.MetricsCollector
	config   ServiceConfig
	now      func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	tokens *TokenIssuer,
	notifier notify.WelcomeNotifier,
	mc metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		notifier: notifier,
		metrics:  mc,
		config:   config,
		now:      time.Now,
	}
}

// Register はユーザーを作成し、ウェルカム通知を送る。
// 通知の失敗はログとメトリクスに記録するだけで、登録自体は成功として扱う。
func (s *Service) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrDuplicateUsername) {
			return nil, model.NewDuplicateUsernameError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.RecordRegistration()
	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	if err := s.notifier.NotifyWelcome(ctx, user); err != nil {
		s.metrics.RecordWelcomeEmailFailure()
		slog.Error("failed to send welcome email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return user, nil
}

// Login はユーザー名とパスワードを検証し、トークンの組を発行する。
func (s *Service) Login(ctx context.Context, username, password string) (*model.TokenPair, error) {
	if username == "" || password == "" {
		return nil, model.NewInvalidCredentialsError()
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		VerifyPassword(password, string(dummyHash))
		return nil, model.NewInvalidCredentialsError()
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, model.NewInvalidCredentialsError()
	}

	access, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return &model.TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh はリフレッシュトークンから新しいアクセストークンを発行する。
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.resolveUser(ctx, refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	return s.tokens.IssueAccess(userID)
}

// Authenticate はアクセストークンを検証し、ユーザーIDを返す。
// 認証ミドルウェアから呼ばれる。
func (s *Service) Authenticate(ctx context.Context, accessToken string) (string, error) {
	return s.resolveUser(ctx, accessToken, TokenTypeAccess)
}

// CurrentUser は指定IDのユーザーを返す。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// resolveUser はトークンを検証し、ユーザーが現存することを確認する。
func (s *Service) resolveUser(ctx context.Context, raw, tokenType string) (string, error) {
	if raw == "" {
		return "", model.NewInvalidTokenError()
	}

	userID, err := s.tokens.Parse(raw, tokenType)
	if err != nil {
		slog.Debug("token rejected",
			slog.String("token_type", tokenType),
			slog.String("error", err.Error()),
		)
		return "", model.NewInvalidTokenError()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return "", model.NewInvalidTokenError()
	}
	return user.ID, nil
}

// validateRegistration は登録入力を検証する。
func validateRegistration(username, email, password string) error {
	switch n := utf8.RuneCountInString(username); {
	case n == 0:
		return model.NewValidationError("username", "This field may not be blank.")
	case n > maxUsernameLength:
		return model.NewValidationError("username", "Ensure this field has no more than 150 characters.")
	case !usernamePattern.MatchString(username):
		return model.NewValidationError("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}

	if email != "" && !emailPattern.MatchString(email) {
		return model.NewValidationError("email", "Enter a valid email address.")
	}

	switch {
	case utf8.RuneCountInString(password) < minPasswordLength:
		return model.NewValidationError("password", "This password is too short. It must contain at least 8 characters.")
	case len(password) > maxPasswordBytes:
		return model.NewValidationError("password", "This password is too long.")
	case numericPattern.MatchString(password):
		return model.NewValidationError("password", "This password is entirely numeric.")
	}

	return nil
}
