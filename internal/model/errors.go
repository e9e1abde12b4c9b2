// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, feed, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInvalidFeedType = "INVALID_FEED_TYPE"
	ErrCodeInvalidCursor   = "INVALID_CURSOR"
	ErrCodeInvalidLimit    = "INVALID_LIMIT"
	ErrCodeUserNotFound    = "USER_NOT_FOUND"
)

// NewUnauthorizedError は未認証エラーを生成する。
// 呼び出し元の認証情報が解決できない場合に部分結果を返さず即座に使用する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidFeedTypeError は無効なフィード種別エラーを生成する。
func NewInvalidFeedTypeError(feedType string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFeedType,
		Message:  fmt.Sprintf("無効なフィード種別です: %s", feedType),
		Category: "validation",
		Action:   "フィード種別には forYou、following、friends のいずれかを指定してください。",
	}
}

// NewInvalidCursorError は無効なカーソルエラーを生成する。
func NewInvalidCursorError(cursor string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCursor,
		Message:  fmt.Sprintf("無効なカーソル値です: %s", cursor),
		Category: "validation",
		Action:   "前回のレスポンスで返されたnext_cursorをそのまま指定してください。",
	}
}

// NewInvalidLimitError は無効な取得件数エラーを生成する。
func NewInvalidLimitError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidLimit,
		Message:  fmt.Sprintf("無効な取得件数です: %d", limit),
		Category: "validation",
		Action:   "取得件数は1以上50以下で指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
