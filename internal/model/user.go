// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenPair はログイン時に発行するアクセストークンとリフレッシュトークンの組。
type TokenPair struct {
	Access  string
	Refresh string
}
