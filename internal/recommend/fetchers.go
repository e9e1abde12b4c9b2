package recommend

import (
	"context"
	"fmt"

	"github.com/hitoshi/atelier/internal/repository"
)

// CandidateSource は推薦候補を1つの根拠ディメンションから取得する。
// フィード集約のSourceFetcherと同じ形だが、候補はコンテンツではなくユーザー。
type CandidateSource interface {
	// Name は段の識別名を返す。メトリクスに使用する。
	Name() string

	// Fetch は除外セットに含まれない候補を最大limit件、推薦理由付きで返す。
	// limitが0以下の場合はストレージに問い合わせず空を返すこと。
	Fetch(ctx context.Context, userID string, exclude []string, limit int) ([]UserSuggestion, error)
}

// UserSuggestion は推薦結果の1件。
// Reasonは推薦の根拠を人間可読な文字列で示す。
type UserSuggestion struct {
	ID       string
	Name     string
	Username string
	Image    string
	Reason   string
}

// toSuggestion は候補ユーザーをUserSuggestionに変換する共通ヘルパー。
func toSuggestion(c repository.CandidateUser, reason string) UserSuggestion {
	return UserSuggestion{
		ID:       c.ID,
		Name:     c.Name,
		Username: c.Username,
		Image:    c.Image,
		Reason:   reason,
	}
}

// friendsOfFriendsSource は友達の友達を推薦する。根拠が最も強い段。
type friendsOfFriendsSource struct {
	repo repository.UserRepository
}

func (s *friendsOfFriendsSource) Name() string { return "friends_of_friends" }

func (s *friendsOfFriendsSource) Fetch(ctx context.Context, userID string, exclude []string, limit int) ([]UserSuggestion, error) {
	if limit <= 0 {
		return nil, nil
	}
	candidates, err := s.repo.ListFriendsOfFriends(ctx, userID, exclude, limit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]UserSuggestion, len(candidates))
	for i, c := range candidates {
		suggestions[i] = toSuggestion(c, mutualFriendsReason(c.MutualFriendNames))
	}
	return suggestions, nil
}

// mutualFriendsReason は共通の友達の名前から推薦理由を組み立てる。
// 名前は最大2件まで表示し、それ以上は「ほか」でまとめる。
func mutualFriendsReason(names []string) string {
	switch len(names) {
	case 0:
		return "知り合いかもしれません"
	case 1:
		return fmt.Sprintf("%s さんと友達です", names[0])
	case 2:
		return fmt.Sprintf("%s さん、%s さんと友達です", names[0], names[1])
	default:
		return fmt.Sprintf("%s さん、%s さんほかと友達です", names[0], names[1])
	}
}

// projectCollaboratorsSource は同じ作品に参加しているユーザーを推薦する。
type projectCollaboratorsSource struct {
	repo repository.UserRepository
}

func (s *projectCollaboratorsSource) Name() string { return "project_collaborators" }

func (s *projectCollaboratorsSource) Fetch(ctx context.Context, userID string, exclude []string, limit int) ([]UserSuggestion, error) {
	if limit <= 0 {
		return nil, nil
	}
	candidates, err := s.repo.ListProjectCollaborators(ctx, userID, exclude, limit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]UserSuggestion, len(candidates))
	for i, c := range candidates {
		reason := "作品に一緒に参加しています"
		if c.SharedProjectTitle != "" {
			reason = fmt.Sprintf("作品「%s」に一緒に参加しています", c.SharedProjectTitle)
		}
		suggestions[i] = toSuggestion(c, reason)
	}
	return suggestions, nil
}

// popularAccountsSource はフォロワー数の多いアカウントを推薦する。
type popularAccountsSource struct {
	repo repository.UserRepository
}

func (s *popularAccountsSource) Name() string { return "popular_accounts" }

func (s *popularAccountsSource) Fetch(ctx context.Context, userID string, exclude []string, limit int) ([]UserSuggestion, error) {
	if limit <= 0 {
		return nil, nil
	}
	candidates, err := s.repo.ListByFollowerCount(ctx, userID, exclude, limit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]UserSuggestion, len(candidates))
	for i, c := range candidates {
		suggestions[i] = toSuggestion(c, fmt.Sprintf("フォロワー %d 人の人気アカウントです", c.FollowerCount))
	}
	return suggestions, nil
}

// activeAccountsSource は最近活動のあったアカウントを推薦する。
type activeAccountsSource struct {
	repo repository.UserRepository
}

func (s *activeAccountsSource) Name() string { return "active_accounts" }

func (s *activeAccountsSource) Fetch(ctx context.Context, userID string, exclude []string, limit int) ([]UserSuggestion, error) {
	if limit <= 0 {
		return nil, nil
	}
	candidates, err := s.repo.ListByRecentActivity(ctx, userID, exclude, limit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]UserSuggestion, len(candidates))
	for i, c := range candidates {
		suggestions[i] = toSuggestion(c, "最近活動しています")
	}
	return suggestions, nil
}

// newAccountsSource は新しく登録されたアカウントを推薦する。
type newAccountsSource struct {
	repo repository.UserRepository
}

func (s *newAccountsSource) Name() string { return "new_accounts" }

func (s *newAccountsSource) Fetch(ctx context.Context, userID string, exclude []string, limit int) ([]UserSuggestion, error) {
	if limit <= 0 {
		return nil, nil
	}
	candidates, err := s.repo.ListNewest(ctx, userID, exclude, limit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]UserSuggestion, len(candidates))
	for i, c := range candidates {
		suggestions[i] = toSuggestion(c, "新しく参加しました")
	}
	return suggestions, nil
}

// randomAccountsSource はランダムに選んだアカウントを推薦する最後の受け皿。
type randomAccountsSource struct {
	repo repository.UserRepository
}

func (s *randomAccountsSource) Name() string { return "random_accounts" }

func (s *randomAccountsSource) Fetch(ctx context.Context, userID string, exclude []string, limit int) ([]UserSuggestion, error) {
	if limit <= 0 {
		return nil, nil
	}
	candidates, err := s.repo.ListRandom(ctx, userID, exclude, limit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]UserSuggestion, len(candidates))
	for i, c := range candidates {
		suggestions[i] = toSuggestion(c, "おすすめのアカウントです")
	}
	return suggestions, nil
}
