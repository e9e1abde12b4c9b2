package repository

import (
	"context"
	"testing"

	"github.com/hitoshi/atelier/internal/model"
)

// PostgresContentRepoはContentRepositoryインターフェースを満たすことを検証
func TestPostgresContentRepo_ImplementsInterface(t *testing.T) {
	var _ ContentRepository = (*PostgresContentRepo)(nil)
}

// NewPostgresContentRepoが正しく初期化されることを検証
func TestNewPostgresContentRepo_Initializes(t *testing.T) {
	repo := NewPostgresContentRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// TestOrderClauses_CoversAllOrders はすべてのContentOrderにORDER BY句が
// 定義されていることをテストする。
func TestOrderClauses_CoversAllOrders(t *testing.T) {
	orders := []ContentOrder{
		OrderUpdatedDesc, OrderLikesDesc, OrderCreatedDesc, OrderUpdatedAsc,
	}

	for _, order := range orders {
		if _, ok := orderClauses[order]; !ok {
			t.Errorf("order %q has no ORDER BY clause", order)
		}
	}
}

// TestOrderClauses_Mapping は各ディメンションの並び順が意図したSQL句に
// 対応することをテストする。
func TestOrderClauses_Mapping(t *testing.T) {
	cases := []struct {
		order ContentOrder
		want  string
	}{
		{OrderUpdatedDesc, "updated_at DESC"},
		{OrderLikesDesc, "like_count DESC"},
		{OrderCreatedDesc, "created_at DESC"},
		{OrderUpdatedAsc, "updated_at ASC"},
	}

	for _, tc := range cases {
		if got := orderClauses[tc.order]; got != tc.want {
			t.Errorf("orderClauses[%q] = %q, want %q", tc.order, got, tc.want)
		}
	}
}

// TestListContent_UnknownOrderFails は未知の並び順がクエリ発行前に
// エラーになることをテストする。
func TestListContent_UnknownOrderFails(t *testing.T) {
	repo := NewPostgresContentRepo(nil)

	_, err := repo.ListContent(context.Background(), ContentQuery{
		Kind:  model.ContentKindPost,
		Order: ContentOrder("random"),
		Limit: 10,
	})
	if err == nil {
		t.Fatal("expected error for unknown order")
	}
}

// TestListContent_UnknownKindFails は未知のコンテンツ種別がクエリ発行前に
// エラーになることをテストする。
func TestListContent_UnknownKindFails(t *testing.T) {
	repo := NewPostgresContentRepo(nil)

	_, err := repo.ListContent(context.Background(), ContentQuery{
		Kind:  model.ContentKind("comment"),
		Order: OrderUpdatedDesc,
		Limit: 10,
	})
	if err == nil {
		t.Fatal("expected error for unknown content kind")
	}
}
