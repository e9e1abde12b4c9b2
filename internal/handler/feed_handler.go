// Package handler はHTTP APIハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/atelier/internal/feed"
	"github.com/hitoshi/atelier/internal/middleware"
	"github.com/hitoshi/atelier/internal/model"
)

// FeedServiceInterface はフィードハンドラーが必要とするサービスインターフェース。
type FeedServiceInterface interface {
	// FetchHomeFeed はホームフィードの1ページを返す。
	FetchHomeFeed(ctx context.Context, userID string, feedType model.FeedType, cursor string, lastSources []string) (*feed.FeedPage, error)
	// FetchForYouFeed は投稿のみの混合フィードの1ページを返す。
	FetchForYouFeed(ctx context.Context, userID, cursor string) (*feed.FeedPage, error)
}

// FeedHandler はフィード取得のHTTPハンドラー。
type FeedHandler struct {
	service FeedServiceInterface
}

// NewFeedHandler はFeedHandlerを生成する。
func NewFeedHandler(service FeedServiceInterface) *FeedHandler {
	return &FeedHandler{service: service}
}

// --- レスポンス型 ---

// authorResponse はフィードエントリの作者表示情報。
type authorResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Image    string `json:"image,omitempty"`
}

// contentItemResponse は投稿または作品のレスポンス。
type contentItemResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body,omitempty"` // サニタイズ済みHTML
	Image     string    `json:"image,omitempty"`
	ProjectID string    `json:"project_id,omitempty"`
	LikeCount int       `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// feedEntryResponse はフィード1エントリのレスポンス。
// Relatedは投稿が作品を参照している場合のみ設定される。
type feedEntryResponse struct {
	Kind    string               `json:"kind"`
	Item    contentItemResponse  `json:"item"`
	Author  authorResponse       `json:"author"`
	Related *contentItemResponse `json:"related,omitempty"`
}

// feedPageResponse はフィード1ページのレスポンス。
// next_cursorが空の場合はストリーム終端を意味する。
type feedPageResponse struct {
	Items      []feedEntryResponse `json:"items"`
	NextCursor string              `json:"next_cursor,omitempty"`
	TopSources []string            `json:"top_sources,omitempty"`
}

// toContentItemResponse はドメインモデルをレスポンス型に変換する。
func toContentItemResponse(item model.ContentItem) contentItemResponse {
	return contentItemResponse{
		ID:        item.ID,
		Kind:      string(item.Kind),
		AuthorID:  item.AuthorID,
		Title:     item.Title,
		Body:      item.Body,
		Image:     item.Image,
		ProjectID: item.ProjectID,
		LikeCount: item.LikeCount,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// toFeedPageResponse はフィードページをレスポンス型に変換する。
func toFeedPageResponse(page *feed.FeedPage) feedPageResponse {
	resp := feedPageResponse{
		Items:      make([]feedEntryResponse, 0, len(page.Entries)),
		NextCursor: page.NextCursor,
		TopSources: page.TopSources,
	}
	for _, entry := range page.Entries {
		er := feedEntryResponse{
			Kind: string(entry.Kind),
			Item: toContentItemResponse(entry.Item),
			Author: authorResponse{
				ID:       entry.Author.ID,
				Name:     entry.Author.Name,
				Username: entry.Author.Username,
				Image:    entry.Author.Image,
			},
		}
		if entry.Related != nil {
			related := toContentItemResponse(*entry.Related)
			er.Related = &related
		}
		resp.Items = append(resp.Items, er)
	}
	return resp
}

// parseCursor はクエリパラメータのカーソルを検証する。
// カーソルはUUID形式のコンテンツIDでなければならない。空文字は先頭ページを意味する。
func parseCursor(r *http.Request) (string, *model.APIError) {
	cursor := r.URL.Query().Get("cursor")
	if cursor == "" {
		return "", nil
	}
	if err := uuid.Validate(cursor); err != nil {
		return "", model.NewInvalidCursorError(cursor)
	}
	return cursor, nil
}

// parseLastSources はクエリパラメータのクールダウン対象ディメンション名を解析する。
// カンマ区切りで、空要素は無視する。
func parseLastSources(r *http.Request) []string {
	raw := r.URL.Query().Get("last_sources")
	if raw == "" {
		return nil
	}
	var sources []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			sources = append(sources, name)
		}
	}
	return sources
}

// GetHomeFeed はホームフィードの1ページを取得する。
// GET /api/feed/home?type=forYou|following|friends&cursor=xxx&last_sources=a,b
func (h *FeedHandler) GetHomeFeed(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	// デフォルト種別は forYou
	feedType := model.FeedTypeForYou
	if typeStr := r.URL.Query().Get("type"); typeStr != "" {
		feedType = model.FeedType(typeStr)
	}

	cursor, apiErr := parseCursor(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	page, err := h.service.FetchHomeFeed(r.Context(), userID, feedType, cursor, parseLastSources(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toFeedPageResponse(page))
}

// GetForYouFeed は投稿のみの混合フィードの1ページを取得する。
// GET /api/feed/foryou?cursor=xxx
func (h *FeedHandler) GetForYouFeed(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	cursor, apiErr := parseCursor(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	page, err := h.service.FetchForYouFeed(r.Context(), userID, cursor)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toFeedPageResponse(page))
}

// --- エラーレスポンス ---

// apiErrorResponse はAPIエラーのレスポンス型。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeInvalidFeedType, model.ErrCodeInvalidCursor, model.ErrCodeInvalidLimit:
		return http.StatusBadRequest
	case model.ErrCodeUserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
