package admin

import (
	"encoding/base64"
	"fmt"
	"testing"

	"golang.org/x/crypto/argon2"
)

// encodeHash собирает хеш в том же формате, что scripts/generate_hash.go.
func encodeHash(password string, salt []byte) string {
	var (
		memory      uint32 = 65536
		iterations  uint32 = 3
		parallelism uint8  = 2
	)
	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, 32)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}

func TestVerifyArgon2id(t *testing.T) {
	salt := []byte("0123456789abcdef")
	encoded := encodeHash("секретный-пароль", salt)

	if !verifyArgon2id("секретный-пароль", encoded) {
		t.Error("правильный пароль должен проходить проверку")
	}
	if verifyArgon2id("неправильный", encoded) {
		t.Error("неправильный пароль не должен проходить")
	}
	if verifyArgon2id("", encoded) {
		t.Error("пустой пароль не должен проходить")
	}
}

func TestVerifyArgon2idMalformed(t *testing.T) {
	cases := []string{
		"",
		"не хеш вообще",
		"$argon2id$v=19$m=65536,t=3,p=2$соль",              // мало секций
		"$argon2id$v=19$кривые параметры$c2FsdA$aGFzaA",    // нечитаемые параметры
		"$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA",        // кривая соль
		"$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$!!!",        // кривый хеш
	}

	for _, encoded := range cases {
		if verifyArgon2id("пароль", encoded) {
			t.Errorf("кривой хеш %q не должен проходить проверку", encoded)
		}
	}
}

func TestGenerateSecureToken(t *testing.T) {
	a := generateSecureToken()
	b := generateSecureToken()

	if a == b {
		t.Error("токены должны быть уникальными")
	}
	// 32 байта в base64 URL — 44 символа
	if len(a) != 44 {
		t.Errorf("длина токена = %d, ожидалось 44", len(a))
	}
}
