package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash はユーザーが存在しない場合の比較に使う。
// 存在有無で応答時間が変わらないよう、常にbcrypt比較を1回行う。
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dropzone-dummy-password"), bcrypt.MinCost)

// HashPassword はパスワードをbcryptでハッシュ化する。
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword はパスワードがハッシュと一致するかを返す。
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
