package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hitoshi/atelier/internal/middleware"
	"github.com/hitoshi/atelier/internal/model"
	"github.com/hitoshi/atelier/internal/recommend"
)

// maxRecommendLimit は1回の推薦リクエストで許可する最大件数。
const maxRecommendLimit = 50

// RecommendServiceInterface は推薦ハンドラーが必要とするサービスインターフェース。
type RecommendServiceInterface interface {
	// Recommend はフォロー候補をlimit件まで返す。
	Recommend(ctx context.Context, userID string, limit int) ([]recommend.UserSuggestion, error)
}

// RecommendHandler はフォロー候補推薦のHTTPハンドラー。
type RecommendHandler struct {
	service RecommendServiceInterface
}

// NewRecommendHandler はRecommendHandlerを生成する。
func NewRecommendHandler(service RecommendServiceInterface) *RecommendHandler {
	return &RecommendHandler{service: service}
}

// recommendedUserResponse は推薦ユーザー1件のレスポンス。
// Reasonは人間可読の推薦理由で、根拠の強い段ほど具体的になる。
type recommendedUserResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Image    string `json:"image,omitempty"`
	Reason   string `json:"reason"`
}

// recommendListResponse は推薦一覧のレスポンス。
type recommendListResponse struct {
	RecommendedUsers []recommendedUserResponse `json:"recommended_users"`
}

// ListRecommendations はフォロー候補の一覧を取得する。
// GET /api/recommendations?limit=12
func (h *RecommendHandler) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	limit := recommend.DefaultLimit()
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > maxRecommendLimit {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidLimitError(parsed))
			return
		}
		limit = parsed
	}

	suggestions, err := h.service.Recommend(r.Context(), userID, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := recommendListResponse{
		RecommendedUsers: make([]recommendedUserResponse, 0, len(suggestions)),
	}
	for _, s := range suggestions {
		resp.RecommendedUsers = append(resp.RecommendedUsers, recommendedUserResponse{
			ID:       s.ID,
			Name:     s.Name,
			Username: s.Username,
			Image:    s.Image,
			Reason:   s.Reason,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
