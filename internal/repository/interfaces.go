// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/atelier/internal/model"
)

// ContentOrder はコンテンツ一覧の並び順を表す。
// フィードの各ランキングディメンションはこの並び順のいずれかに対応する。
type ContentOrder string

const (
	// OrderUpdatedDesc は更新日時の新しい順（グラフ系ディメンション）。
	OrderUpdatedDesc ContentOrder = "updated_desc"
	// OrderLikesDesc はいいね数の多い順（人気ディメンション）。
	OrderLikesDesc ContentOrder = "likes_desc"
	// OrderCreatedDesc は作成日時の新しい順（新着ディメンション）。
	OrderCreatedDesc ContentOrder = "created_desc"
	// OrderUpdatedAsc は更新日時の古い順（多様性ディメンション）。
	// ストレージ側のランダムソートを避けた安価な多様性ヒューリスティック。
	OrderUpdatedAsc ContentOrder = "updated_asc"
)

// ContentQuery はコンテンツ一覧取得の条件を表す。
type ContentQuery struct {
	// Kind は取得するコンテンツ種別。
	Kind model.ContentKind
	// AuthorIDs は作者の絞り込み。nilの場合は絞り込まない。
	AuthorIDs []string
	// Exclude は除外するコンテンツIDのリスト。空の場合は除外しない。
	Exclude []string
	// Cursor が空でない場合、id < cursor の範囲に絞り込む（降順ページネーション）。
	Cursor string
	// Order は並び順。
	Order ContentOrder
	// Limit は最大取得件数。
	Limit int
}

// ContentRepository はコンテンツデータの読み取りインターフェース。
// コアはコンテンツのライフサイクルを所有せず、読み取りのみ行う。
type ContentRepository interface {
	// ListContent は条件に一致するコンテンツ一覧を返す。
	ListContent(ctx context.Context, q ContentQuery) ([]model.ContentItem, error)

	// FindProjectByID は指定IDの作品を取得する。見つからない場合はnilを返す。
	// 投稿が参照する作品の解決に使用する。
	FindProjectByID(ctx context.Context, id string) (*model.ContentItem, error)
}

// GraphRepository はソーシャルグラフデータの永続化インターフェース。
type GraphRepository interface {
	// FindEdges は指定ユーザーのグラフエッジのスナップショットを取得する。
	FindEdges(ctx context.Context, userID string) (*model.SocialGraph, error)

	// EnsureGraph はグラフのアンカーレコードを冪等に作成する。
	// 既に存在する場合は何もしない（ON CONFLICT DO NOTHING）。
	// 並行リクエスト間の競合はユニーク制約により無害。
	EnsureGraph(ctx context.Context, userID string) error
}

// CandidateUser は推薦候補のユーザーと、推薦理由の根拠となる付帯情報。
type CandidateUser struct {
	model.User
	// MutualFriendNames は共通の友達の名前（最大数件）。
	MutualFriendNames []string
	// SharedProjectTitle は共同参加している作品のタイトル。
	SharedProjectTitle string
	// FollowerCount はフォロワー数。
	FollowerCount int
}

// UserRepository はユーザーデータの読み取りインターフェース。
// 推薦パイプラインの各段が利用する候補クエリを含む。
// 候補クエリはいずれも自分自身とフォロー済みアカウントをSQL側で除外し、
// さらにexcludeで指定されたIDを除外する。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// ListFriendsOfFriends は友達の友達を共通の友達が多い順に返す。
	// MutualFriendNamesに共通の友達の名前を最大3件含む。
	ListFriendsOfFriends(ctx context.Context, userID string, exclude []string, limit int) ([]CandidateUser, error)

	// ListProjectCollaborators は同じ作品に参加しているユーザーを返す。
	// SharedProjectTitleに共有作品のタイトルを含む。
	ListProjectCollaborators(ctx context.Context, userID string, exclude []string, limit int) ([]CandidateUser, error)

	// ListByFollowerCount はフォロワー数の多い順にユーザーを返す。
	ListByFollowerCount(ctx context.Context, userID string, exclude []string, limit int) ([]CandidateUser, error)

	// ListByRecentActivity は最近更新のあった順にユーザーを返す。
	ListByRecentActivity(ctx context.Context, userID string, exclude []string, limit int) ([]CandidateUser, error)

	// ListNewest は登録の新しい順にユーザーを返す。
	ListNewest(ctx context.Context, userID string, exclude []string, limit int) ([]CandidateUser, error)

	// ListRandom はユーザーをランダムに返す。
	ListRandom(ctx context.Context, userID string, exclude []string, limit int) ([]CandidateUser, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
}
