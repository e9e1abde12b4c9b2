package feed

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/hitoshi/atelier/internal/metrics"
	"github.com/hitoshi/atelier/internal/model"
	"github.com/hitoshi/atelier/internal/repository"
	"github.com/hitoshi/atelier/internal/security"
)

const (
	// defaultPageSize はフィード1ページのデフォルト件数。
	defaultPageSize = 10
	// defaultCooldownCount はクールダウン修復パスが対象とする先頭枠数。
	defaultCooldownCount = 3
	// attemptsPerFetcher はフェッチャー1つあたりの試行上限。
	// ループ全体の上限は len(fetchers) × attemptsPerFetcher となり、
	// 全ディメンションが空を返し続けても有限回で終了する。
	attemptsPerFetcher = 3
)

// Service はフィード集約のオーケストレーター。
// 複数のSourceFetcherをラウンドロビンで巡回し、重複のない1ページを組み立てる。
type Service struct {
	contentRepo repository.ContentRepository
	graphRepo   repository.GraphRepository
	userRepo    repository.UserRepository
	sanitizer   security.ContentSanitizerService
	metrics     metrics.AggregationMetrics

	// rand.Randは並行安全ではないため、シャッフル時はmuで保護する。
	mu  sync.Mutex
	rng *rand.Rand

	pageSize      int
	cooldownCount int
}

// ServiceConfig はServiceの設定。ゼロ値のフィールドにはデフォルト値が使われる。
type ServiceConfig struct {
	PageSize      int
	CooldownCount int
}

// NewService はフィード集約サービスを生成する。
// rngにはシード可能な乱数源を注入する。本番では時刻シード、
// テストでは固定シードを渡すことでシャッフルの再現性を確保する。
func NewService(
	contentRepo repository.ContentRepository,
	graphRepo repository.GraphRepository,
	userRepo repository.UserRepository,
	sanitizer security.ContentSanitizerService,
	m metrics.AggregationMetrics,
	rng *rand.Rand,
	cfg ServiceConfig,
) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.CooldownCount <= 0 {
		cfg.CooldownCount = defaultCooldownCount
	}
	return &Service{
		contentRepo:   contentRepo,
		graphRepo:     graphRepo,
		userRepo:      userRepo,
		sanitizer:     sanitizer,
		metrics:       m,
		rng:           rng,
		pageSize:      cfg.PageSize,
		cooldownCount: cfg.CooldownCount,
	}
}

// FeedPage は1回の集約呼び出しの結果ページ。
type FeedPage struct {
	// Entries は重複のないフィードエントリ。最大でページサイズ件。
	Entries []model.FeedEntry
	// NextCursor は次ページ取得用のカーソル。
	// ページが満杯のときのみ設定される。未設定はストリーム終端を意味する。
	NextCursor string
	// TopSources はこのページの先頭枠を取ったディメンション名。
	// 次回呼び出しのlast_sourcesとして渡すことでクールダウンが機能する。
	TopSources []string
}

// validFeedTypes は有効なフィード種別のセット。
var validFeedTypes = map[model.FeedType]bool{
	model.FeedTypeForYou:    true,
	model.FeedTypeFollowing: true,
	model.FeedTypeFriends:   true,
}

// FetchHomeFeed はホームフィードの1ページを組み立てる。
//
// 処理の流れ:
//  1. 呼び出し元の認証を確認する（未認証は即エラー、部分結果なし）。
//  2. グラフのアンカーレコードを冪等に作成し、エッジ集合を取得する。
//  3. フィード種別に応じたフェッチャー列を構築し、シャッフルする。
//     先頭枠には前回上位ディメンション（lastSources）のクールダウンを適用する。
//  4. ラウンドロビンで各フェッチャーを巡回し、ページを埋める。
//  5. 作者と参照作品を解決してエントリ化し、カーソルを導出する。
func (s *Service) FetchHomeFeed(ctx context.Context, userID string, feedType model.FeedType, cursor string, lastSources []string) (*FeedPage, error) {
	if userID == "" {
		return nil, model.NewUnauthorizedError()
	}
	if !validFeedTypes[feedType] {
		return nil, model.NewInvalidFeedTypeError(string(feedType))
	}

	start := time.Now()

	if err := s.graphRepo.EnsureGraph(ctx, userID); err != nil {
		return nil, err
	}
	graph, err := s.graphRepo.FindEdges(ctx, userID)
	if err != nil {
		return nil, err
	}

	fetchers := s.buildFetchers(graph, feedType)

	lastTop := make(map[string]struct{}, len(lastSources))
	for _, name := range lastSources {
		lastTop[name] = struct{}{}
	}

	s.mu.Lock()
	cooldownShuffle(s.rng, fetchers, s.cooldownCount, lastTop)
	s.mu.Unlock()

	fc := FetchContext{UserID: userID, Cursor: cursor}
	collected, err := s.aggregate(ctx, fetchers, fc, s.pageSize)
	if err != nil {
		return nil, err
	}

	page, err := s.buildPage(ctx, collected, s.pageSize)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPage(string(feedType), len(page.Entries), page.NextCursor != "")
	s.metrics.RecordAggregateLatency(time.Since(start))

	return page, nil
}

// FetchForYouFeed は投稿のみの混合フィードの1ページを組み立てる。
// ホームフィードより単純なバリアントで、クールダウン修復は行わず
// 素のシャッフルのみ適用する。
func (s *Service) FetchForYouFeed(ctx context.Context, userID, cursor string) (*FeedPage, error) {
	if userID == "" {
		return nil, model.NewUnauthorizedError()
	}

	start := time.Now()

	if err := s.graphRepo.EnsureGraph(ctx, userID); err != nil {
		return nil, err
	}
	graph, err := s.graphRepo.FindEdges(ctx, userID)
	if err != nil {
		return nil, err
	}

	fetchers := []SourceFetcher{
		newGraphFetcher(SourceFriendsPosts, model.ContentKindPost, graph.FriendIDs, s.contentRepo),
		newOrderedFetcher(SourceRecentPosts, model.ContentKindPost, repository.OrderCreatedDesc, s.contentRepo),
		newOrderedFetcher(SourcePopularPosts, model.ContentKindPost, repository.OrderLikesDesc, s.contentRepo),
		newOrderedFetcher(SourceDiversePosts, model.ContentKindPost, repository.OrderUpdatedAsc, s.contentRepo),
	}

	s.mu.Lock()
	shuffleFetchers(s.rng, fetchers)
	s.mu.Unlock()

	fc := FetchContext{UserID: userID, Cursor: cursor}
	collected, err := s.aggregate(ctx, fetchers, fc, s.pageSize)
	if err != nil {
		return nil, err
	}

	page, err := s.buildPage(ctx, collected, s.pageSize)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPage("forYouPosts", len(page.Entries), page.NextCursor != "")
	s.metrics.RecordAggregateLatency(time.Since(start))

	return page, nil
}

// buildFetchers はフィード種別に応じたフェッチャー列を構築する。
// フェッチャーは呼び出しごとに生成され、エッジ集合のスナップショットを束縛する。
func (s *Service) buildFetchers(graph *model.SocialGraph, feedType model.FeedType) []SourceFetcher {
	switch feedType {
	case model.FeedTypeFollowing:
		return []SourceFetcher{
			newGraphFetcher(SourceFollowingPosts, model.ContentKindPost, graph.FollowingIDs, s.contentRepo),
			newGraphFetcher(SourceFollowingProjects, model.ContentKindProject, graph.FollowingIDs, s.contentRepo),
		}
	case model.FeedTypeFriends:
		return []SourceFetcher{
			newGraphFetcher(SourceFriendsPosts, model.ContentKindPost, graph.FriendIDs, s.contentRepo),
			newGraphFetcher(SourceFriendsProjects, model.ContentKindProject, graph.FriendIDs, s.contentRepo),
		}
	default: // forYou
		return []SourceFetcher{
			newGraphFetcher(SourceFriendsPosts, model.ContentKindPost, graph.FriendIDs, s.contentRepo),
			newGraphFetcher(SourceFriendsProjects, model.ContentKindProject, graph.FriendIDs, s.contentRepo),
			newOrderedFetcher(SourceRecentPosts, model.ContentKindPost, repository.OrderCreatedDesc, s.contentRepo),
			newOrderedFetcher(SourceRecentProjects, model.ContentKindProject, repository.OrderCreatedDesc, s.contentRepo),
			newOrderedFetcher(SourcePopularPosts, model.ContentKindPost, repository.OrderLikesDesc, s.contentRepo),
			newOrderedFetcher(SourceDiversePosts, model.ContentKindPost, repository.OrderUpdatedAsc, s.contentRepo),
		}
	}
}

// sourcedItem は取得元ディメンション名を付与したコンテンツ。
type sourcedItem struct {
	item   model.ContentItem
	source string
}

// aggregate はフェッチャー列をラウンドロビンで巡回し、重複のない結果を集める。
//
// 選択は attempts mod len(fetchers) で行い、1件以上の新規アイテムを返した
// フェッチャーがいた場合はattemptsを0にリセットする。これにより生産的な
// ディメンションほど頻繁にサンプリングされる（重み付きラウンドロビンの近似）。
// attemptsが len(fetchers) × attemptsPerFetcher に達したら全ディメンション
// 枯渇とみなして終了する。これはエラーではなく、短いページは正当な結果。
//
// 除外セットは呼び出しスコープで所有され、フェッチャー間で逐次受け渡される。
// 後続のフェッチャーのクエリは先行フェッチャーの出力を反映するため、
// フェッチャー呼び出しは並行化せず直列に行う。
func (s *Service) aggregate(ctx context.Context, fetchers []SourceFetcher, fc FetchContext, quota int) ([]sourcedItem, error) {
	if len(fetchers) == 0 || quota <= 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, quota)
	exclude := make([]string, 0, quota)
	var collected []sourcedItem

	attempts := 0
	maxAttempts := len(fetchers) * attemptsPerFetcher

	for len(collected) < quota && attempts < maxAttempts {
		fetcher := fetchers[attempts%len(fetchers)]

		items, err := fetcher.Fetch(ctx, fc, exclude, quota-len(collected))
		if err != nil {
			// ストレージエラーはリトライせずそのまま伝播する。
			// 空結果のみが「他ディメンションを試す」シグナルとなる。
			return nil, err
		}
		s.metrics.RecordFetch(fetcher.Name(), len(items))

		added := 0
		for _, item := range items {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			exclude = append(exclude, item.ID)
			collected = append(collected, sourcedItem{item: item, source: fetcher.Name()})
			added++
		}

		if added > 0 {
			// 生産的なディメンションに次の優先権を戻す
			attempts = 0
		} else {
			attempts++
		}
	}

	if len(collected) > quota {
		collected = collected[:quota]
	}

	return collected, nil
}

// buildPage は収集結果を作者・参照作品の解決を行いながらエントリ化し、
// カーソルと上位ディメンションを導出する。
// 作者解決は呼び出し内でキャッシュし、同一作者の重複クエリを避ける。
func (s *Service) buildPage(ctx context.Context, collected []sourcedItem, quota int) (*FeedPage, error) {
	page := &FeedPage{}
	authorCache := make(map[string]model.AuthorProfile)

	for _, si := range collected {
		entry := model.FeedEntry{
			Kind: si.item.Kind,
			Item: si.item,
		}
		entry.Item.Body = s.sanitizer.Sanitize(entry.Item.Body)

		author, ok := authorCache[si.item.AuthorID]
		if !ok {
			user, err := s.userRepo.FindByID(ctx, si.item.AuthorID)
			if err != nil {
				return nil, err
			}
			// 作者が見つからない場合は表示フィールドを空のまま残す
			if user != nil {
				author = model.AuthorProfile{
					ID:       user.ID,
					Name:     user.Name,
					Username: user.Username,
					Image:    user.Image,
				}
			}
			authorCache[si.item.AuthorID] = author
		}
		entry.Author = author

		// 投稿が作品を参照している場合は解決して付与する。
		// 参照先が見つからない場合はnilのまま、失敗扱いにはしない。
		if si.item.Kind == model.ContentKindPost && si.item.ProjectID != "" {
			related, err := s.contentRepo.FindProjectByID(ctx, si.item.ProjectID)
			if err != nil {
				return nil, err
			}
			if related != nil {
				related.Body = s.sanitizer.Sanitize(related.Body)
			}
			entry.Related = related
		}

		page.Entries = append(page.Entries, entry)
	}

	// ページが満杯のときのみカーソルを設定する。
	// 端数ページはカーソル省略によりストリーム終端を示す。
	if len(page.Entries) == quota && quota > 0 {
		page.NextCursor = page.Entries[len(page.Entries)-1].Item.ID
	}

	// 先頭枠を取ったディメンション名を重複なしで集める
	topSeen := make(map[string]struct{})
	for i, si := range collected {
		if i >= s.cooldownCount {
			break
		}
		if _, dup := topSeen[si.source]; dup {
			continue
		}
		topSeen[si.source] = struct{}{}
		page.TopSources = append(page.TopSources, si.source)
	}

	return page, nil
}
