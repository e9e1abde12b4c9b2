package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/atelier/internal/model"
)

// PostgresGraphRepo はPostgreSQLを使用したソーシャルグラフリポジトリ。
type PostgresGraphRepo struct {
	db *sql.DB
}

// NewPostgresGraphRepo はPostgresGraphRepoを生成する。
func NewPostgresGraphRepo(db *sql.DB) *PostgresGraphRepo {
	return &PostgresGraphRepo{db: db}
}

// FindEdges は指定ユーザーのグラフエッジのスナップショットを取得する。
// friendships・followsの両テーブルを読み取り、読み取り専用のビューとして返す。
func (r *PostgresGraphRepo) FindEdges(ctx context.Context, userID string) (*model.SocialGraph, error) {
	graph := &model.SocialGraph{UserID: userID}

	friendIDs, err := r.queryIDs(ctx,
		`SELECT friend_id FROM friendships WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("友達一覧の取得に失敗しました: %w", err)
	}
	graph.FriendIDs = friendIDs

	followingIDs, err := r.queryIDs(ctx,
		`SELECT followee_id FROM follows WHERE follower_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("フォロー一覧の取得に失敗しました: %w", err)
	}
	graph.FollowingIDs = followingIDs

	followerIDs, err := r.queryIDs(ctx,
		`SELECT follower_id FROM follows WHERE followee_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("フォロワー一覧の取得に失敗しました: %w", err)
	}
	graph.FollowerIDs = followerIDs

	return graph, nil
}

// EnsureGraph はグラフのアンカーレコードを冪等に作成する。
// ユニーク制約により並行作成が競合しても重複は発生しない。
func (r *PostgresGraphRepo) EnsureGraph(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO social_graphs (user_id, created_at)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("グラフレコードの作成に失敗しました: %w", err)
	}
	return nil
}

// queryIDs は単一カラムのID一覧を取得する共通ヘルパー。
func (r *PostgresGraphRepo) queryIDs(ctx context.Context, query, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

// compile-time interface check
var _ GraphRepository = (*PostgresGraphRepo)(nil)
