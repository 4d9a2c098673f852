// Package auth は認証・認可機能を提供します。
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost はパスワードハッシュの計算コストです。
// 登録済みハッシュとの整合性が崩れるため、運用途中で変更しないこと。
const bcryptCost = 12

// HashPassword は平文パスワードを bcrypt でハッシュ化します。
// ソルトが埋め込まれるため、同じ入力でも毎回異なる文字列を返します。
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword は平文パスワードと保存済みハッシュを照合します。
// 不一致だけでなく、ハッシュ文字列が壊れている場合も単に false を返します。
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
