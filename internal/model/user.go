// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// プロフィール表示用のフィールドを含む。
type User struct {
	ID        string
	Name      string
	Username  string
	Image     string
	Bio       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuthorProfile はフィードエントリに付与する作者の表示用フィールド。
// Userの部分集合として、一覧表示に必要な項目のみを持つ。
type AuthorProfile struct {
	ID       string
	Name     string
	Username string
	Image    string
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
