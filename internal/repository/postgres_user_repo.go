package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/atelier/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
// 推薦パイプラインの候補クエリを含む。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	var image, bio sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, username, image, bio, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Name, &user.Username, &image, &bio, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}

	user.Image = nullStringValue(image)
	user.Bio = nullStringValue(bio)

	return user, nil
}

// candidateBaseExclusions は候補クエリ共通の除外条件。
// 自分自身・フォロー済み・友達済み・excludeで指定されたIDを除外する。
// $1 = userID, $2 = exclude
const candidateBaseExclusions = `
	  u.id <> $1
	  AND NOT EXISTS (
	      SELECT 1 FROM follows fo
	      WHERE fo.follower_id = $1 AND fo.followee_id = u.id)
	  AND NOT EXISTS (
	      SELECT 1 FROM friendships fr
	      WHERE fr.user_id = $1 AND fr.friend_id = u.id)
	  AND NOT (u.id = ANY($2))`

// ListFriendsOfFriends は友達の友達を共通の友達が多い順に返す。
// 各候補について共通の友達の名前を最大3件集約する。
func (r *PostgresUserRepo) ListFriendsOfFriends(ctx context.Context, userID string, exclude []string, limit int) ([]CandidateUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.name, u.username, u.image, u.bio, u.created_at, u.updated_at,
		        (ARRAY_AGG(mf.name ORDER BY mf.name))[1:3] AS mutual_names
		 FROM friendships f1
		 JOIN friendships f2 ON f2.user_id = f1.friend_id
		 JOIN users u ON u.id = f2.friend_id
		 JOIN users mf ON mf.id = f1.friend_id
		 WHERE f1.user_id = $1
		   AND `+candidateBaseExclusions+`
		 GROUP BY u.id, u.name, u.username, u.image, u.bio, u.created_at, u.updated_at
		 ORDER BY COUNT(DISTINCT f1.friend_id) DESC, u.id DESC
		 LIMIT $3`,
		userID, pq.Array(exclude), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("友達の友達の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var candidates []CandidateUser
	for rows.Next() {
		var c CandidateUser
		var image, bio sql.NullString
		var mutualNames pq.StringArray

		if err := rows.Scan(
			&c.ID, &c.Name, &c.Username, &image, &bio, &c.CreatedAt, &c.UpdatedAt,
			&mutualNames,
		); err != nil {
			return nil, fmt.Errorf("友達の友達の行読み取りに失敗しました: %w", err)
		}

		c.Image = nullStringValue(image)
		c.Bio = nullStringValue(bio)
		c.MutualFriendNames = []string(mutualNames)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("友達の友達の走査に失敗しました: %w", err)
	}

	return candidates, nil
}

// ListProjectCollaborators は同じ作品に参加しているユーザーを返す。
// 候補ごとに共有作品のタイトルを1件付与する。
func (r *PostgresUserRepo) ListProjectCollaborators(ctx context.Context, userID string, exclude []string, limit int) ([]CandidateUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT ON (u.id)
		        u.id, u.name, u.username, u.image, u.bio, u.created_at, u.updated_at,
		        p.title
		 FROM project_members pm1
		 JOIN project_members pm2
		   ON pm2.project_id = pm1.project_id AND pm2.user_id <> pm1.user_id
		 JOIN users u ON u.id = pm2.user_id
		 JOIN projects p ON p.id = pm1.project_id
		 WHERE pm1.user_id = $1
		   AND `+candidateBaseExclusions+`
		 ORDER BY u.id, p.created_at DESC
		 LIMIT $3`,
		userID, pq.Array(exclude), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("共同参加者の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var candidates []CandidateUser
	for rows.Next() {
		var c CandidateUser
		var image, bio sql.NullString

		if err := rows.Scan(
			&c.ID, &c.Name, &c.Username, &image, &bio, &c.CreatedAt, &c.UpdatedAt,
			&c.SharedProjectTitle,
		); err != nil {
			return nil, fmt.Errorf("共同参加者の行読み取りに失敗しました: %w", err)
		}

		c.Image = nullStringValue(image)
		c.Bio = nullStringValue(bio)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("共同参加者の走査に失敗しました: %w", err)
	}

	return candidates, nil
}

// ListByFollowerCount はフォロワー数の多い順にユーザーを返す。
func (r *PostgresUserRepo) ListByFollowerCount(ctx context.Context, userID string, exclude []string, limit int) ([]CandidateUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.name, u.username, u.image, u.bio, u.created_at, u.updated_at,
		        COUNT(f.follower_id) AS follower_count
		 FROM users u
		 LEFT JOIN follows f ON f.followee_id = u.id
		 WHERE `+candidateBaseExclusions+`
		 GROUP BY u.id, u.name, u.username, u.image, u.bio, u.created_at, u.updated_at
		 ORDER BY COUNT(f.follower_id) DESC, u.id DESC
		 LIMIT $3`,
		userID, pq.Array(exclude), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("人気アカウントの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var candidates []CandidateUser
	for rows.Next() {
		var c CandidateUser
		var image, bio sql.NullString

		if err := rows.Scan(
			&c.ID, &c.Name, &c.Username, &image, &bio, &c.CreatedAt, &c.UpdatedAt,
			&c.FollowerCount,
		); err != nil {
			return nil, fmt.Errorf("人気アカウントの行読み取りに失敗しました: %w", err)
		}

		c.Image = nullStringValue(image)
		c.Bio = nullStringValue(bio)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("人気アカウントの走査に失敗しました: %w", err)
	}

	return candidates, nil
}

// ListByRecentActivity は最近更新のあった順にユーザーを返す。
func (r *PostgresUserRepo) ListByRecentActivity(ctx context.Context, userID string, exclude []string, limit int) ([]CandidateUser, error) {
	return r.listPlain(ctx, "u.updated_at DESC", userID, exclude, limit)
}

// ListNewest は登録の新しい順にユーザーを返す。
func (r *PostgresUserRepo) ListNewest(ctx context.Context, userID string, exclude []string, limit int) ([]CandidateUser, error) {
	return r.listPlain(ctx, "u.created_at DESC", userID, exclude, limit)
}

// ListRandom はユーザーをランダムに返す。
func (r *PostgresUserRepo) ListRandom(ctx context.Context, userID string, exclude []string, limit int) ([]CandidateUser, error) {
	return r.listPlain(ctx, "random()", userID, exclude, limit)
}

// listPlain は付帯情報なしの候補クエリの共通実装。
// orderByは呼び出し側が固定文字列で指定する（外部入力を渡さないこと）。
func (r *PostgresUserRepo) listPlain(ctx context.Context, orderBy, userID string, exclude []string, limit int) ([]CandidateUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.name, u.username, u.image, u.bio, u.created_at, u.updated_at
		 FROM users u
		 WHERE `+candidateBaseExclusions+`
		 ORDER BY `+orderBy+`
		 LIMIT $3`,
		userID, pq.Array(exclude), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("候補ユーザーの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var candidates []CandidateUser
	for rows.Next() {
		var c CandidateUser
		var image, bio sql.NullString

		if err := rows.Scan(
			&c.ID, &c.Name, &c.Username, &image, &bio, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("候補ユーザーの行読み取りに失敗しました: %w", err)
		}

		c.Image = nullStringValue(image)
		c.Bio = nullStringValue(bio)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("候補ユーザーの走査に失敗しました: %w", err)
	}

	return candidates, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
