package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/atelier/internal/model"
)

// PostgresContentRepo はPostgreSQLを使用したコンテンツリポジトリ。
// 投稿（posts）と作品（projects）の2テーブルを種別に応じて読み分ける。
type PostgresContentRepo struct {
	db *sql.DB
}

// NewPostgresContentRepo はPostgresContentRepoを生成する。
func NewPostgresContentRepo(db *sql.DB) *PostgresContentRepo {
	return &PostgresContentRepo{db: db}
}

// orderClauses はContentOrderをSQLのORDER BY句にマッピングする。
// ランタイムのフィールド名組み立てを避け、列挙キーの対応表として持つ。
var orderClauses = map[ContentOrder]string{
	OrderUpdatedDesc: "updated_at DESC",
	OrderLikesDesc:   "like_count DESC",
	OrderCreatedDesc: "created_at DESC",
	OrderUpdatedAsc:  "updated_at ASC",
}

// ListContent は条件に一致するコンテンツ一覧を返す。
// AuthorIDs・Exclude・Cursorの各条件は指定された場合のみWHERE句に加わる。
// IDはUUIDv7のため、id < cursor の辞書順比較が時刻降順ページネーションとして成立する。
func (r *PostgresContentRepo) ListContent(ctx context.Context, q ContentQuery) ([]model.ContentItem, error) {
	orderBy, ok := orderClauses[q.Order]
	if !ok {
		return nil, fmt.Errorf("未知の並び順です: %s", q.Order)
	}

	var baseQuery string
	switch q.Kind {
	case model.ContentKindPost:
		baseQuery = `
			SELECT id, author_id, body, project_id, like_count, created_at, updated_at
			FROM posts
			WHERE true`
	case model.ContentKindProject:
		baseQuery = `
			SELECT id, author_id, title, summary, image, like_count, created_at, updated_at
			FROM projects
			WHERE true`
	default:
		return nil, fmt.Errorf("未知のコンテンツ種別です: %s", q.Kind)
	}

	args := []interface{}{}
	argIndex := 1

	if q.AuthorIDs != nil {
		baseQuery += fmt.Sprintf(" AND author_id = ANY($%d)", argIndex)
		args = append(args, pq.Array(q.AuthorIDs))
		argIndex++
	}

	if len(q.Exclude) > 0 {
		baseQuery += fmt.Sprintf(" AND NOT (id = ANY($%d))", argIndex)
		args = append(args, pq.Array(q.Exclude))
		argIndex++
	}

	if q.Cursor != "" {
		baseQuery += fmt.Sprintf(" AND id < $%d", argIndex)
		args = append(args, q.Cursor)
		argIndex++
	}

	baseQuery += fmt.Sprintf(" ORDER BY %s LIMIT $%d", orderBy, argIndex)
	args = append(args, q.Limit)

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("コンテンツ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var items []model.ContentItem
	for rows.Next() {
		item := model.ContentItem{Kind: q.Kind}

		switch q.Kind {
		case model.ContentKindPost:
			var projectID sql.NullString
			if err := rows.Scan(
				&item.ID, &item.AuthorID, &item.Body, &projectID,
				&item.LikeCount, &item.CreatedAt, &item.UpdatedAt,
			); err != nil {
				return nil, fmt.Errorf("投稿行の読み取りに失敗しました: %w", err)
			}
			item.ProjectID = nullStringValue(projectID)
		case model.ContentKindProject:
			var summary, image sql.NullString
			if err := rows.Scan(
				&item.ID, &item.AuthorID, &item.Title, &summary, &image,
				&item.LikeCount, &item.CreatedAt, &item.UpdatedAt,
			); err != nil {
				return nil, fmt.Errorf("作品行の読み取りに失敗しました: %w", err)
			}
			item.Body = nullStringValue(summary)
			item.Image = nullStringValue(image)
		}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("コンテンツ一覧の走査に失敗しました: %w", err)
	}

	return items, nil
}

// FindProjectByID は指定IDの作品を取得する。見つからない場合はnilを返す。
func (r *PostgresContentRepo) FindProjectByID(ctx context.Context, id string) (*model.ContentItem, error) {
	item := &model.ContentItem{Kind: model.ContentKindProject}
	var summary, image sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, author_id, title, summary, image, like_count, created_at, updated_at
		 FROM projects WHERE id = $1`,
		id,
	).Scan(
		&item.ID, &item.AuthorID, &item.Title, &summary, &image,
		&item.LikeCount, &item.CreatedAt, &item.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("作品の取得に失敗しました: %w", err)
	}

	item.Body = nullStringValue(summary)
	item.Image = nullStringValue(image)

	return item, nil
}

// compile-time interface check
var _ ContentRepository = (*PostgresContentRepo)(nil)
