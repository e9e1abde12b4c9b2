// Package recommend はフォロー候補アカウントの推薦エンジンを提供する。
//
// フィード集約と同じファンインの形を持つが、こちらはラウンドロビンではなく
// 根拠の強い順に並べた段階的フォールバックで候補を集める。
// 前の段で採用されたIDは除外セットに即座に加わり、後の段で重複しない。
package recommend

import (
	"context"

	"github.com/hitoshi/atelier/internal/metrics"
	"github.com/hitoshi/atelier/internal/model"
	"github.com/hitoshi/atelier/internal/repository"
)

// defaultLimit は推薦件数のデフォルト値。
const defaultLimit = 12

// Service はフォロー候補推薦のオーケストレーター。
type Service struct {
	sources []CandidateSource
	metrics metrics.AggregationMetrics
}

// NewService は推薦サービスを生成する。
// パイプラインは根拠の強い順に固定される:
// 友達の友達 → 作品の共同参加者 → 人気 → 活動中 → 新規 → ランダム。
func NewService(userRepo repository.UserRepository, m metrics.AggregationMetrics) *Service {
	return &Service{
		sources: []CandidateSource{
			&friendsOfFriendsSource{repo: userRepo},
			&projectCollaboratorsSource{repo: userRepo},
			&popularAccountsSource{repo: userRepo},
			&activeAccountsSource{repo: userRepo},
			&newAccountsSource{repo: userRepo},
			&randomAccountsSource{repo: userRepo},
		},
		metrics: m,
	}
}

// Recommend はフォロー候補をlimit件まで推薦する。
//
// 各段は推薦数がlimitに満たない間だけ実行され、満たされた時点で
// 以降の段は一切呼び出されない。採用した候補のIDは即座に除外セットへ
// 加わるため、段をまたいだ重複は発生しない。前の段へ戻ることはない。
// limitが0以下の場合はクエリを発行せず空を返す。
func (s *Service) Recommend(ctx context.Context, userID string, limit int) ([]UserSuggestion, error) {
	if userID == "" {
		return nil, model.NewUnauthorizedError()
	}
	if limit <= 0 {
		return []UserSuggestion{}, nil
	}

	// 自分自身は常に除外する
	exclude := make([]string, 0, limit+1)
	exclude = append(exclude, userID)

	seen := map[string]struct{}{userID: {}}
	recommendations := make([]UserSuggestion, 0, limit)

	for _, source := range s.sources {
		remaining := limit - len(recommendations)
		if remaining <= 0 {
			break
		}

		suggestions, err := source.Fetch(ctx, userID, exclude, remaining)
		if err != nil {
			// ストレージエラーは段内でリトライせずそのまま伝播する
			return nil, err
		}

		added := 0
		for _, suggestion := range suggestions {
			if _, dup := seen[suggestion.ID]; dup {
				continue
			}
			if len(recommendations) >= limit {
				break
			}
			seen[suggestion.ID] = struct{}{}
			exclude = append(exclude, suggestion.ID)
			recommendations = append(recommendations, suggestion)
			added++
		}
		s.metrics.RecordRecommendStage(source.Name(), added)
	}

	s.metrics.RecordRecommendServed(len(recommendations))

	return recommendations, nil
}

// DefaultLimit は推薦件数のデフォルト値を返す。ハンドラーが使用する。
func DefaultLimit() int { return defaultLimit }
