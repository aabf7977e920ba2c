package crypto

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// PayloadDigest возвращает hex-encoded BLAKE2b-256 хеш payload.
// Используется в журнале конфликтов, чтобы аудит мог сверить сохраненные payload.
// Для пустого payload возвращает пустую строку.
func PayloadDigest(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}

	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// VerifyPayloadDigest проверяет, что payload соответствует сохраненному digest
func VerifyPayloadDigest(payload []byte, digest string) error {
	if digest == "" {
		return fmt.Errorf("digest cannot be empty")
	}

	computed := PayloadDigest(payload)
	if subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) != 1 {
		return fmt.Errorf("payload digest mismatch")
	}

	return nil
}
