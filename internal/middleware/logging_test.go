package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// newTestLogger はJSONログをbufに書き出すロガーを返す。
func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// decodeLogEntry はbufに1件だけ出力されたJSONログをデコードする。
func decodeLogEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one log line, got %d:\n%s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v\nraw: %s", err, buf.String())
	}
	return entry
}

// newLoggedRouter はロギングを全体に、認証を保護グループにだけ掛けたルーターを返す。
// 本番のルーター構成と同じく、ロギングは認証ミドルウェアの外側にある。
func newLoggedRouter(buf *bytes.Buffer) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(NewLoggingMiddleware(newTestLogger(buf)))

	r.Get("/health/", okHandler().ServeHTTP)
	r.Group(func(r chi.Router) {
		r.Use(NewAuthMiddleware(validTokenAuthenticator("token-alice", "user-alice")))
		r.Get("/drops/released/", okHandler().ServeHTTP)
		r.Get("/drops/{id}/download/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", `attachment; filename="guide.pdf"`)
			w.Write([]byte("%PDF-1.4 guide"))
		})
	})
	return r
}

func TestLoggingMiddleware_UserIDFromInnerAuthMiddleware(t *testing.T) {
	var buf bytes.Buffer
	router := newLoggedRouter(&buf)

	req := httptest.NewRequest(http.MethodGet, "/drops/released/", nil)
	req.Header.Set("Authorization", "Bearer token-alice")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	entry := decodeLogEntry(t, &buf)
	if entry["msg"] != "http_request" {
		t.Errorf("msg = %v, want http_request", entry["msg"])
	}
	if entry["user_id"] != "user-alice" {
		t.Errorf("user_id = %v, want %q", entry["user_id"], "user-alice")
	}
	if entry["path"] != "/drops/released/" {
		t.Errorf("path = %v, want %q", entry["path"], "/drops/released/")
	}
	if id, _ := entry["request_id"].(string); id == "" {
		t.Error("expected request_id in log entry")
	}
}

func TestLoggingMiddleware_RejectedTokenHasNoUserID(t *testing.T) {
	var buf bytes.Buffer
	router := newLoggedRouter(&buf)

	req := httptest.NewRequest(http.MethodGet, "/drops/released/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	entry := decodeLogEntry(t, &buf)
	if _, ok := entry["user_id"]; ok {
		t.Errorf("user_id should be omitted for a rejected token, got %v", entry["user_id"])
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", entry["level"])
	}
}

func TestLoggingMiddleware_PublicRouteHasNoUserID(t *testing.T) {
	var buf bytes.Buffer
	router := newLoggedRouter(&buf)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/", nil))

	entry := decodeLogEntry(t, &buf)
	if _, ok := entry["user_id"]; ok {
		t.Errorf("user_id should be omitted for /health/, got %v", entry["user_id"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", entry["level"])
	}
}

func TestLoggingMiddleware_DownloadRecordsBytes(t *testing.T) {
	var buf bytes.Buffer
	router := newLoggedRouter(&buf)

	req := httptest.NewRequest(http.MethodGet, "/drops/3/download/", nil)
	req.Header.Set("Authorization", "Bearer token-alice")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	entry := decodeLogEntry(t, &buf)
	if got := entry["bytes"].(float64); int(got) != len("%PDF-1.4 guide") {
		t.Errorf("bytes = %v, want %d", got, len("%PDF-1.4 guide"))
	}
	if got := int(entry["status"].(float64)); got != http.StatusOK {
		t.Errorf("status = %d, want %d", got, http.StatusOK)
	}
	if d := entry["duration_ms"].(float64); d < 0 {
		t.Errorf("duration_ms = %v, should be >= 0", d)
	}
}

func TestLoggingMiddleware_UserIDAlreadyInContext(t *testing.T) {
	var buf bytes.Buffer
	handler := NewLoggingMiddleware(newTestLogger(&buf))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/bookmarks/", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "user-bob"))

	handler.ServeHTTP(httptest.NewRecorder(), req)

	if entry := decodeLogEntry(t, &buf); entry["user_id"] != "user-bob" {
		t.Errorf("user_id = %v, want %q", entry["user_id"], "user-bob")
	}
}

func TestLoggingMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantLevel  string
	}{
		{"bookmark created", http.StatusCreated, "INFO"},
		{"partial content", http.StatusPartialContent, "INFO"},
		{"not released", http.StatusForbidden, "WARN"},
		{"drop not found", http.StatusNotFound, "WARN"},
		{"rate limited", http.StatusTooManyRequests, "WARN"},
		{"storage failure", http.StatusInternalServerError, "ERROR"},
		{"database down", http.StatusServiceUnavailable, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := NewLoggingMiddleware(newTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/drops/1/", nil))

			entry := decodeLogEntry(t, &buf)
			if got := int(entry["status"].(float64)); got != tt.statusCode {
				t.Errorf("status = %d, want %d", got, tt.statusCode)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
		})
	}
}

func TestRecordUserID_WithoutLoggingMiddlewareIsNoop(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me/", nil)

	recordUserID(req.Context(), "user-1")

	if _, err := UserIDFromContext(req.Context()); err == nil {
		t.Error("recordUserID must not inject a user ID into the request context")
	}
}
