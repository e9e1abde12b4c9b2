package feed

import (
	"math/rand"
	"sort"
	"testing"
)

// namedFetchers はテスト用のstubFetcher列を生成する。
func namedFetchers(names ...string) []SourceFetcher {
	fetchers := make([]SourceFetcher, len(names))
	for i, name := range names {
		fetchers[i] = &stubFetcher{name: name}
	}
	return fetchers
}

// fetcherNames はフェッチャー列の名前を抜き出す。
func fetcherNames(fetchers []SourceFetcher) []string {
	names := make([]string, len(fetchers))
	for i, f := range fetchers {
		names[i] = f.Name()
	}
	return names
}

// TestShuffleFetchers_FixedSeedIsDeterministic は同一シードで同一の並びに
// なることをテストする。
func TestShuffleFetchers_FixedSeedIsDeterministic(t *testing.T) {
	a := namedFetchers("a", "b", "c", "d", "e", "f")
	b := namedFetchers("a", "b", "c", "d", "e", "f")

	shuffleFetchers(rand.New(rand.NewSource(42)), a)
	shuffleFetchers(rand.New(rand.NewSource(42)), b)

	namesA := fetcherNames(a)
	namesB := fetcherNames(b)
	for i := range namesA {
		if namesA[i] != namesB[i] {
			t.Errorf("order differs at %d: %q vs %q", i, namesA[i], namesB[i])
		}
	}
}

// TestShuffleFetchers_PreservesElements はシャッフルが要素の集合を
// 変えないことをテストする。
func TestShuffleFetchers_PreservesElements(t *testing.T) {
	fetchers := namedFetchers("a", "b", "c", "d", "e")
	shuffleFetchers(rand.New(rand.NewSource(7)), fetchers)

	names := fetcherNames(fetchers)
	sort.Strings(names)
	want := []string{"a", "b", "c", "d", "e"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

// TestCooldownShuffle_EvictsLastTopFromPrefix は前回上位のディメンションが
// 先頭枠から追い出されることを、複数シードにわたってテストする。
func TestCooldownShuffle_EvictsLastTopFromPrefix(t *testing.T) {
	lastTop := map[string]struct{}{
		"friends_posts": {},
		"recent_posts":  {},
	}

	for seed := int64(0); seed < 50; seed++ {
		fetchers := namedFetchers(
			"friends_posts", "friends_projects", "recent_posts",
			"recent_projects", "popular_posts", "diverse_posts",
		)
		cooldownShuffle(rand.New(rand.NewSource(seed)), fetchers, 3, lastTop)

		// 非lastTopが4つあるため、先頭3枠は必ず修復可能
		for i := 0; i < 3; i++ {
			if _, hit := lastTop[fetchers[i].Name()]; hit {
				t.Errorf("seed %d: slot %d holds cooled-down source %q", seed, i, fetchers[i].Name())
			}
		}
	}
}

// TestCooldownShuffle_AllInLastTopLeavesOrder は全ディメンションが前回上位の場合、
// 入れ替え候補がなくそのまま残ることをテストする。
func TestCooldownShuffle_AllInLastTopLeavesOrder(t *testing.T) {
	lastTop := map[string]struct{}{
		"a": {}, "b": {}, "c": {},
	}
	fetchers := namedFetchers("a", "b", "c")

	cooldownShuffle(rand.New(rand.NewSource(1)), fetchers, 3, lastTop)

	names := fetcherNames(fetchers)
	sort.Strings(names)
	want := []string{"a", "b", "c"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

// TestCooldownShuffle_EmptyLastTopIsPlainShuffle はlastTopが空の場合に
// 修復パスが並びを変えないことをテストする。
func TestCooldownShuffle_EmptyLastTopIsPlainShuffle(t *testing.T) {
	a := namedFetchers("a", "b", "c", "d")
	b := namedFetchers("a", "b", "c", "d")

	shuffleFetchers(rand.New(rand.NewSource(99)), a)
	cooldownShuffle(rand.New(rand.NewSource(99)), b, 3, nil)

	namesA := fetcherNames(a)
	namesB := fetcherNames(b)
	for i := range namesA {
		if namesA[i] != namesB[i] {
			t.Errorf("order differs at %d: %q vs %q", i, namesA[i], namesB[i])
		}
	}
}

// TestCooldownShuffle_PrefixLargerThanSlice はクールダウン枠数がフェッチャー数を
// 超えても範囲外アクセスが起きないことをテストする。
func TestCooldownShuffle_PrefixLargerThanSlice(t *testing.T) {
	lastTop := map[string]struct{}{"a": {}}
	fetchers := namedFetchers("a", "b")

	cooldownShuffle(rand.New(rand.NewSource(3)), fetchers, 5, lastTop)

	names := fetcherNames(fetchers)
	sort.Strings(names)
	if names[0] != "a" || names[1] != "b" {
		t.Errorf("elements changed: %v", names)
	}
}
