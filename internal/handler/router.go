package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/dropzone/internal/metrics"
	"github.com/hitoshi/dropzone/internal/middleware"
	"github.com/hitoshi/dropzone/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Authenticator     middleware.TokenAuthenticator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	TrustProxy        bool
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector

	// ヘルスチェック・メトリクス
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// サービス
	AuthService AuthServiceInterface
	DropService DropServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → (RealIP) → SecurityHeaders → CORS → Logging → Metrics
//
// 認証系ルート（/register/, /login/, /refresh/）はIP単位のレート制限のみを適用し、
// それ以外のAPIは Auth → RateLimit(General) を通す。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(chimw.RequestID)
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeAPIErrorResponse(w, http.StatusNotFound, &model.APIError{
			Code:     "NOT_FOUND",
			Message:  "Not found.",
			Category: "system",
			Action:   "URLを確認してください。",
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeAPIErrorResponse(w, http.StatusMethodNotAllowed, &model.APIError{
			Code:     "METHOD_NOT_ALLOWED",
			Message:  "Method not allowed.",
			Category: "system",
			Action:   "HTTPメソッドを確認してください。",
		})
	})

	healthHandler := NewHealthHandler(deps.HealthChecker)
	authHandler := NewAuthHandler(deps.AuthService)
	dropHandler := NewDropHandler(deps.DropService)

	// --- 認証不要のルート ---
	r.Get("/health/", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthMiddleware())

		r.Post("/register/", authHandler.Register)
		r.Post("/login/", authHandler.Login)
		r.Post("/refresh/", authHandler.Refresh)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Authenticator))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/me/", authHandler.Me)

		r.Route("/drops", func(r chi.Router) {
			r.Get("/released/", dropHandler.ListReleased)
			r.Get("/upcoming/", dropHandler.ListUpcoming)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", dropHandler.GetDrop)
				r.Post("/bookmark/", dropHandler.ToggleBookmark)
				r.Get("/download/", dropHandler.Download)
			})
		})

		r.Get("/bookmarks/", dropHandler.ListBookmarks)
	})

	return r
}
