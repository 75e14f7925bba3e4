package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes 是 bcrypt 能处理的最大输入长度，更长的部分会被忽略。
const MaxPasswordBytes = 72

// ErrPasswordTooLong 表示密码超出 bcrypt 的输入上限。
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// HashPassword 返回密码的 bcrypt 哈希。
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash 比较明文密码和已存储的哈希。
func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
