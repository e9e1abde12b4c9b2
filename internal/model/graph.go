// Package model はドメインモデルを定義する。
package model

// SocialGraph はユーザーのソーシャルグラフの読み取り専用スナップショット。
// グラフ系フェッチャーが作者の絞り込みに使用する。
// コアはエッジの変更を行わず、アンカーレコードの冪等な作成のみ行う。
type SocialGraph struct {
	UserID       string
	FriendIDs    []string
	FollowingIDs []string
	FollowerIDs  []string
}
