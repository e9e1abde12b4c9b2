// Package feed はフィード集約エンジンを提供する。
//
// 複数の独立したランキングディメンション（友達・フォロー・人気・新着・多様性）
// からコンテンツを取り寄せ、重複を除去しながら1つのページに合流させる。
// 各ディメンションはSourceFetcherとして実装され、互いに状態を共有しない。
package feed

import (
	"context"

	"github.com/hitoshi/atelier/internal/model"
	"github.com/hitoshi/atelier/internal/repository"
)

// FetchContext は1回の集約呼び出しに共通するセッション情報。
type FetchContext struct {
	// UserID は呼び出し元のユーザーID。
	UserID string
	// Cursor は前ページ最後のコンテンツID。空の場合は先頭ページ。
	Cursor string
}

// SourceFetcher は単一のランキングディメンションからコンテンツを取得する。
// 除外セットと残りクォータの純粋な関数であり、実装間で状態を共有しない。
type SourceFetcher interface {
	// Name はディメンションの識別名を返す。クールダウンとメトリクスに使用する。
	Name() string

	// Fetch は除外セットに含まれないコンテンツを最大quota件返す。
	// quotaが0以下の場合はストレージに問い合わせず空を返すこと。
	// エラーはそのまま呼び出し元に伝播する（ディメンション単位のリトライは行わない）。
	Fetch(ctx context.Context, fc FetchContext, exclude []string, quota int) ([]model.ContentItem, error)
}

// graphFetcher はソーシャルグラフのエッジ集合で作者を絞り込むディメンション。
// 友達フィードとフォロー中フィードの両方がこの実装を使う。
// 並び順は更新日時の新しい順。
type graphFetcher struct {
	name      string
	kind      model.ContentKind
	authorIDs []string
	repo      repository.ContentRepository
}

// newGraphFetcher はエッジ集合を束縛したgraphFetcherを生成する。
// エッジ集合は呼び出しごとのスナップショットであり、フェッチャーは
// 集約呼び出しの間だけ生存する。
func newGraphFetcher(name string, kind model.ContentKind, authorIDs []string, repo repository.ContentRepository) *graphFetcher {
	return &graphFetcher{name: name, kind: kind, authorIDs: authorIDs, repo: repo}
}

func (f *graphFetcher) Name() string { return f.name }

// Fetch はエッジ集合内の作者のコンテンツを更新日時の新しい順に返す。
// エッジ集合が空の場合はクエリを発行せずに空を返す。
func (f *graphFetcher) Fetch(ctx context.Context, fc FetchContext, exclude []string, quota int) ([]model.ContentItem, error) {
	if quota <= 0 {
		return nil, nil
	}
	if len(f.authorIDs) == 0 {
		return nil, nil
	}

	return f.repo.ListContent(ctx, repository.ContentQuery{
		Kind:      f.kind,
		AuthorIDs: f.authorIDs,
		Exclude:   exclude,
		Cursor:    fc.Cursor,
		Order:     repository.OrderUpdatedDesc,
		Limit:     quota,
	})
}

// orderedFetcher は作者を絞り込まず並び順のみでランキングするディメンション。
// 人気（いいね数降順）・新着（作成日時降順）・多様性（更新日時昇順）が
// この実装を共有する。
type orderedFetcher struct {
	name  string
	kind  model.ContentKind
	order repository.ContentOrder
	repo  repository.ContentRepository
}

// newOrderedFetcher は指定の並び順を持つorderedFetcherを生成する。
func newOrderedFetcher(name string, kind model.ContentKind, order repository.ContentOrder, repo repository.ContentRepository) *orderedFetcher {
	return &orderedFetcher{name: name, kind: kind, order: order, repo: repo}
}

func (f *orderedFetcher) Name() string { return f.name }

// Fetch は指定の並び順でコンテンツを返す。
func (f *orderedFetcher) Fetch(ctx context.Context, fc FetchContext, exclude []string, quota int) ([]model.ContentItem, error) {
	if quota <= 0 {
		return nil, nil
	}

	return f.repo.ListContent(ctx, repository.ContentQuery{
		Kind:    f.kind,
		Exclude: exclude,
		Cursor:  fc.Cursor,
		Order:   f.order,
		Limit:   quota,
	})
}

// ディメンションの識別名。
// レスポンスのtop_sourcesとリクエストのlast_sourcesで相互にやり取りされる。
const (
	SourceFriendsPosts      = "friends_posts"
	SourceFriendsProjects   = "friends_projects"
	SourceFollowingPosts    = "following_posts"
	SourceFollowingProjects = "following_projects"
	SourceRecentPosts       = "recent_posts"
	SourceRecentProjects    = "recent_projects"
	SourcePopularPosts      = "popular_posts"
	SourceDiversePosts      = "diverse_posts"
)
