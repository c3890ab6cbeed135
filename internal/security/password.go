// Package security はパスワード資格情報のハッシュ化と照合を提供する。
//
// bcryptは入力の先頭72バイトしか扱えないため、パスワードをSHA-256で
// 固定長のダイジェストにしてからbcryptに渡す。これによりパスワードの長さや
// 文字種に関わらず、全バイトが照合に使われる。
package security

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword はパスワードのbcryptハッシュを返す。
// costにbcrypt.MinCost未満を指定した場合はbcrypt.DefaultCostが使われる。
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// PasswordMatches は保存済みハッシュと入力パスワードが一致するかを判定する。
// 大文字小文字や正規化の違いは区別する。
func PasswordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(password)) == nil
}

// prehash はbcryptに渡す44バイトの入力を返す。
// base64にするのはbcryptがNULバイトを終端として扱う実装との互換のため。
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	buf := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(buf, sum[:])
	return buf
}
