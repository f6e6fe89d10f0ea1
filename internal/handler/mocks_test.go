package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/dropzone/internal/drop"
	"github.com/hitoshi/dropzone/internal/middleware"
	"github.com/hitoshi/dropzone/internal/model"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	registerFn    func(ctx context.Context, username, email, password string) (*model.User, error)
	loginFn       func(ctx context.Context, username, password string) (*model.TokenPair, error)
	refreshFn     func(ctx context.Context, refreshToken string) (string, error)
	currentUserFn func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, username, email, password)
	}
	return nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*model.TokenPair, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password)
	}
	return nil, model.NewInvalidCredentialsError()
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, refreshToken)
	}
	return "", model.NewInvalidTokenError()
}

func (m *mockAuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, userID)
	}
	return nil, model.NewUserNotFoundError()
}

// mockDropService はDropServiceInterfaceのモック実装。
type mockDropService struct {
	listReleasedFn   func(ctx context.Context, userID string) ([]model.DropWithState, error)
	listUpcomingFn   func(ctx context.Context, userID string) ([]model.DropWithState, error)
	listBookmarkedFn func(ctx context.Context, userID string) ([]model.DropWithState, error)
	getFn            func(ctx context.Context, userID string, dropID int64) (*model.DropWithState, error)
	toggleFn         func(ctx context.Context, userID string, dropID int64) (model.BookmarkToggleResult, error)
	openDownloadFn   func(ctx context.Context, userID string, dropID int64) (*drop.Download, error)
}

func (m *mockDropService) ListReleased(ctx context.Context, userID string) ([]model.DropWithState, error) {
	if m.listReleasedFn != nil {
		return m.listReleasedFn(ctx, userID)
	}
	return []model.DropWithState{}, nil
}

func (m *mockDropService) ListUpcoming(ctx context.Context, userID string) ([]model.DropWithState, error) {
	if m.listUpcomingFn != nil {
		return m.listUpcomingFn(ctx, userID)
	}
	return []model.DropWithState{}, nil
}

func (m *mockDropService) ListBookmarked(ctx context.Context, userID string) ([]model.DropWithState, error) {
	if m.listBookmarkedFn != nil {
		return m.listBookmarkedFn(ctx, userID)
	}
	return []model.DropWithState{}, nil
}

func (m *mockDropService) Get(ctx context.Context, userID string, dropID int64) (*model.DropWithState, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, dropID)
	}
	return nil, model.NewDropNotFoundError()
}

func (m *mockDropService) ToggleBookmark(ctx context.Context, userID string, dropID int64) (model.BookmarkToggleResult, error) {
	if m.toggleFn != nil {
		return m.toggleFn(ctx, userID, dropID)
	}
	return "", model.NewDropNotFoundError()
}

func (m *mockDropService) OpenDownload(ctx context.Context, userID string, dropID int64) (*drop.Download, error) {
	if m.openDownloadFn != nil {
		return m.openDownloadFn(ctx, userID, dropID)
	}
	return nil, model.NewDropNotFoundError()
}

// memObject はメモリ上のstorage.Object実装。
type memObject struct {
	*bytes.Reader
	modTime time.Time
	closed  bool
}

func newMemObject(data string, modTime time.Time) *memObject {
	return &memObject{Reader: bytes.NewReader([]byte(data)), modTime: modTime}
}

func (o *memObject) Close() error { o.closed = true; return nil }
func (o *memObject) ModTime() time.Time { return o.modTime }
func (o *memObject) Size() int64 { return o.Reader.Size() }

// --- テストヘルパー ---

// withUserID はテスト用にリクエストコンテキストにユーザーIDを注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), userID)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからエラーレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

// jsonBody はvをJSONエンコードしたリクエストボディを返す。
func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	return bytes.NewReader(b)
}

func sampleDrop(id int64, release time.Time) model.DropWithState {
	return model.DropWithState{
		Drop: model.Drop{
			ID:          id,
			Title:       "Go Concurrency Patterns",
			Description: "<p>channels</p>",
			ContentType: model.ContentTypeDocument,
			FileName:    "drops/go-patterns.pdf",
			IsFree:      true,
			ReleaseTime: release,
			CreatedAt:   release.Add(-24 * time.Hour),
			UpdatedAt:   release.Add(-24 * time.Hour),
		},
	}
}
