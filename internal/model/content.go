// Package model はドメインモデルを定義する。
package model

import "time"

// ContentKind はフィードに流れるコンテンツの種別を表す。
type ContentKind string

const (
	// ContentKindPost は投稿（近況・作品紹介テキスト）を表す。
	ContentKindPost ContentKind = "post"
	// ContentKindProject はポートフォリオ作品を表す。
	ContentKindProject ContentKind = "project"
)

// ContentItem はフィード集約の対象となるコンテンツレコードを表す。
// 投稿と作品の両方をこの1つの型で扱い、種別はKindで判別する。
// IDはUUIDv7（時刻順に単調増加）であり、辞書順比較 id < cursor による
// カーソルページネーションが成立する。
type ContentItem struct {
	ID        string
	Kind      ContentKind
	AuthorID  string
	Title     string // 作品のみ。投稿では空。
	Body      string // 投稿本文（HTML）または作品のサマリー
	Image     string
	ProjectID string // 投稿が作品を参照する場合のみ。参照なしは空。
	LikeCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FeedEntry はフィード集約の出力単位。
// コンテンツ本体に作者の表示用フィールドと、投稿が参照する作品を
// 解決して付与したもの。リクエストごとに生成され、永続化されない。
type FeedEntry struct {
	Kind    ContentKind
	Item    ContentItem
	Author  AuthorProfile
	Related *ContentItem // 投稿が参照する作品。未解決・参照なしはnil。
}

// FeedType はホームフィードの表示モードを表す。
type FeedType string

const (
	// FeedTypeForYou は複数ディメンションを混合したおすすめフィード。
	FeedTypeForYou FeedType = "forYou"
	// FeedTypeFollowing はフォロー中アカウントのみのフィード。
	FeedTypeFollowing FeedType = "following"
	// FeedTypeFriends は友達のみのフィード。
	FeedTypeFriends FeedType = "friends"
)
