package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/dropzone/internal/drop"
	"github.com/hitoshi/dropzone/internal/model"
	"github.com/hitoshi/dropzone/internal/storage"
)

// DropServiceInterface はドロップハンドラーが必要とするサービスインターフェース。
type DropServiceInterface interface {
	ListReleased(ctx context.Context, userID string) ([]model.DropWithState, error)
	ListUpcoming(ctx context.Context, userID string) ([]model.DropWithState, error)
	ListBookmarked(ctx context.Context, userID string) ([]model.DropWithState, error)
	Get(ctx context.Context, userID string, dropID int64) (*model.DropWithState, error)
	ToggleBookmark(ctx context.Context, userID string, dropID int64) (model.BookmarkToggleResult, error)
	OpenDownload(ctx context.Context, userID string, dropID int64) (*drop.Download, error)
}

// DropHandler はドロップの一覧・詳細・ブックマーク・ダウンロードのHTTPハンドラー。
type DropHandler struct {
	service DropServiceInterface
}

// NewDropHandler はDropHandlerを生成する。
func NewDropHandler(service DropServiceInterface) *DropHandler {
	return &DropHandler{service: service}
}

// dropResponse はドロップのAPIレスポンス。
// file はダウンロード時のファイル名。添付がなければnull。
type dropResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ContentType  string    `json:"content_type"`
	File         *string   `json:"file"`
	GithubLink   *string   `json:"github_link"`
	IsFree       bool      `json:"is_free"`
	ReleaseTime  time.Time `json:"release_time"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	IsBookmarked bool      `json:"is_bookmarked"`
}

type bookmarkResponse struct {
	Message string `json:"message"`
	Result  string `json:"result"`
}

// ListReleased は公開済みドロップの一覧を返す。
// GET /drops/released/
func (h *DropHandler) ListReleased(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListReleased)
}

// ListUpcoming は公開前ドロップの一覧を返す。
// GET /drops/upcoming/
func (h *DropHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListUpcoming)
}

// ListBookmarks はユーザーがブックマークしたドロップの一覧を返す。
// GET /bookmarks/
func (h *DropHandler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListBookmarked)
}

func (h *DropHandler) list(w http.ResponseWriter, r *http.Request,
	fetch func(ctx context.Context, userID string) ([]model.DropWithState, error)) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	drops, err := fetch(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]dropResponse, 0, len(drops))
	for i := range drops {
		resp = append(resp, toDropResponse(&drops[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetDrop はドロップ詳細を返す。公開前のドロップも閲覧できる。
// GET /drops/{id}/
func (h *DropHandler) GetDrop(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	dropID, ok := parseDropID(w, r)
	if !ok {
		return
	}

	d, err := h.service.Get(r.Context(), userID, dropID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDropResponse(d))
}

// ToggleBookmark はブックマークを切り替える。
// 作成時は201、削除時は200を返す。
// POST /drops/{id}/bookmark/
func (h *DropHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	dropID, ok := parseDropID(w, r)
	if !ok {
		return
	}

	result, err := h.service.ToggleBookmark(r.Context(), userID, dropID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if result == model.BookmarkCreated {
		writeJSON(w, http.StatusCreated, bookmarkResponse{Message: "Bookmarked!", Result: string(result)})
		return
	}
	writeJSON(w, http.StatusOK, bookmarkResponse{Message: "Bookmark removed.", Result: string(result)})
}

// Download は公開済みドロップの添付ファイルを返す。
// Rangeリクエストに対応する。
// GET /drops/{id}/download/
func (h *DropHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	dropID, ok := parseDropID(w, r)
	if !ok {
		return
	}

	dl, err := h.service.OpenDownload(r.Context(), userID, dropID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	defer dl.Body.Close()

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", contentDisposition(dl.Name))
	http.ServeContent(w, r, dl.Name, dl.ModTime, dl.Body)
}

// parseDropID はURLパラメータのドロップIDを解析する。
// 数値でないIDは存在しないドロップとして404を返す。
func parseDropID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewDropNotFoundError())
		return 0, false
	}
	return id, true
}

// contentDisposition はattachment指定のContent-Dispositionヘッダー値を組み立てる。
// 非ASCIIのファイル名には RFC 6266 の filename* を併記する。
func contentDisposition(name string) string {
	if name == "" {
		return "attachment"
	}
	ascii := true
	for i := 0; i < len(name); i++ {
		if name[i] < 0x20 || name[i] > 0x7e {
			ascii = false
			break
		}
	}
	if ascii {
		return fmt.Sprintf(`attachment; filename="%s"`, name)
	}
	return fmt.Sprintf(`attachment; filename="download"; filename*=UTF-8''%s`, url.PathEscape(name))
}

// toDropResponse はmodel.DropWithStateからAPIレスポンスに変換する。
func toDropResponse(d *model.DropWithState) dropResponse {
	resp := dropResponse{
		ID:           d.ID,
		Title:        d.Title,
		Description:  d.Description,
		ContentType:  string(d.ContentType),
		IsFree:       d.IsFree,
		ReleaseTime:  d.ReleaseTime,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		IsBookmarked: d.IsBookmarked,
	}
	if d.HasFile() {
		name := storage.AttachmentName(d.FileName)
		resp.File = &name
	}
	if d.GithubLink != "" {
		link := d.GithubLink
		resp.GithubLink = &link
	}
	return resp
}
