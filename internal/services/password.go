package services

import (
	cryptorand "crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/viper"
	"golang.org/x/crypto/argon2"
)

func argon2Params() (timeCost, memory uint32, threads uint8, keyLen, saltLen uint32) {
	timeCost = uint32(viper.GetInt("argon2.time"))
	memory = uint32(viper.GetInt("argon2.memory"))
	threads = uint8(viper.GetInt("argon2.threads"))
	keyLen = uint32(viper.GetInt("argon2.key_length"))
	saltLen = uint32(viper.GetInt("argon2.salt_length"))

	if timeCost == 0 {
		timeCost = 1
	}
	if memory == 0 {
		memory = 64 * 1024
	}
	if threads == 0 {
		threads = 4
	}
	if keyLen == 0 {
		keyLen = 32
	}
	if saltLen == 0 {
		saltLen = 16
	}
	return
}

// HashPassword derives an Argon2id hash, encoded as base64(salt)$base64(hash).
func HashPassword(password string) (string, error) {
	timeCost, memory, threads, keyLen, saltLen := argon2Params()

	salt := make([]byte, saltLen)
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, keyLen)
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

// VerifyPassword reports whether password matches a stored hash.
func VerifyPassword(password, hashedPassword string) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	timeCost, memory, threads, keyLen, _ := argon2Params()
	computedHash := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, keyLen)
	return string(hash) == string(computedHash)
}

// PasswordStrong checks the registration password policy: minimum length,
// upper, lower, digit and special character, no whitespace.
func PasswordStrong(password string, minLen int) bool {
	if len(password) < minLen {
		return false
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return false
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}
