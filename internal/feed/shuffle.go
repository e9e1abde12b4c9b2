package feed

import "math/rand"

// shuffleFetchers はフェッチャーの並びをFisher–Yatesで1回シャッフルする。
// どのディメンションが最初にクォータを取るかを呼び出しごとにランダム化し、
// 特定のディメンションが常に上位を占有することを防ぐ。
// rngは注入されたシード可能な乱数源を使う（テストでの再現性のため）。
func shuffleFetchers(rng *rand.Rand, fetchers []SourceFetcher) {
	for i := len(fetchers) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		fetchers[i], fetchers[j] = fetchers[j], fetchers[i]
	}
}

// cooldownShuffle はシャッフル後、先頭cooldownCount枠に対して修復パスを行う。
// 前回の呼び出しで上位を取ったディメンション（lastTop）が先頭枠に入っていた場合、
// それ以降で最初に見つかるlastTop外のディメンションと入れ替える。
// 入れ替え候補が存在しない場合（全てがlastTopに含まれる場合）はそのまま残す。
// 連続ページで同じディメンションが上位を独占し続けることを防ぐヒューリスティックであり、
// 厳密なランダム性の保証ではない。
func cooldownShuffle(rng *rand.Rand, fetchers []SourceFetcher, cooldownCount int, lastTop map[string]struct{}) {
	shuffleFetchers(rng, fetchers)

	if len(lastTop) == 0 {
		return
	}

	prefix := cooldownCount
	if prefix > len(fetchers) {
		prefix = len(fetchers)
	}

	for i := 0; i < prefix; i++ {
		if _, hit := lastTop[fetchers[i].Name()]; !hit {
			continue
		}
		// 先頭枠より後ろから、lastTopに含まれない最初の枠を探して入れ替える
		for j := i + 1; j < len(fetchers); j++ {
			if _, hit := lastTop[fetchers[j].Name()]; !hit {
				fetchers[i], fetchers[j] = fetchers[j], fetchers[i]
				break
			}
		}
	}
}
