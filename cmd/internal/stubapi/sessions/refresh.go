package sessions

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// newRefreshToken returns a URL-safe opaque token and its storage hash.
func newRefreshToken(nBytes int, key []byte) (plain, hash string, err error) {
	b := make([]byte, nBytes)
	if _, err = rand.Read(b); err != nil {
		return "", "", err
	}
	plain = base64.RawURLEncoding.EncodeToString(b)
	return plain, hashRefreshToken(plain, key), nil
}

// hashRefreshToken is HMAC-SHA256 under key, or SHA-256 when key is empty.
func hashRefreshToken(plain string, key []byte) string {
	if len(key) == 0 {
		sum := sha256.Sum256([]byte(plain))
		return hex.EncodeToString(sum[:])
	}
	m := hmac.New(sha256.New, key)
	_, _ = m.Write([]byte(plain))
	return hex.EncodeToString(m.Sum(nil))
}
