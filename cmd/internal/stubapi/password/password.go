package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2Version = argon2.Version

var b64 = base64.RawStdEncoding

type phc struct {
	params Params
	salt   []byte
	key    []byte
}

func (p phc) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Version, p.params.MemoryKiB, p.params.Iterations, p.params.Parallelism,
		b64.EncodeToString(p.salt), b64.EncodeToString(p.key))
}

func parsePHC(s string) (phc, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return phc{}, ErrInvalidHash
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2Version) {
		return phc{}, ErrInvalidHash
	}

	var mem, iter, lanes uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iter, &lanes); err != nil {
		return phc{}, ErrInvalidHash
	}
	if mem == 0 || iter == 0 || lanes == 0 || lanes > 255 {
		return phc{}, ErrInvalidHash
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) < 8 || len(salt) > 64 {
		return phc{}, ErrInvalidHash
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) < 16 || len(key) > 128 {
		return phc{}, ErrInvalidHash
	}

	return phc{
		params: Params{
			MemoryKiB:   mem,
			Iterations:  iter,
			Parallelism: uint8(lanes),
			SaltLength:  uint32(len(salt)), // #nosec G115 -- bounded above.
			KeyLength:   uint32(len(key)),  // #nosec G115 -- bounded above.
		},
		salt: salt,
		key:  key,
	}, nil
}

// Hash validates pw against the policy and returns its PHC-encoded Argon2id hash.
func (c Config) Hash(pw string) (string, error) {
	if err := c.Validate(pw); err != nil {
		return "", err
	}
	salt := make([]byte, c.Params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}
	key := argon2.IDKey([]byte(pw), salt, c.Params.Iterations, c.Params.MemoryKiB, c.Params.Parallelism, c.Params.KeyLength)
	return phc{params: c.Params, salt: salt, key: key}.String(), nil
}

// MustHash is Hash for seed data. It panics on policy violations.
func (c Config) MustHash(pw string) string {
	h, err := c.Hash(pw)
	if err != nil {
		panic(fmt.Sprintf("password: %v", err))
	}
	return h
}

// Verify reports whether pw matches encoded. A malformed or overly expensive
// hash returns ErrInvalidHash.
func (c Config) Verify(encoded, pw string) (bool, error) {
	h, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}
	if !c.affordable(h.params) {
		return false, ErrInvalidHash
	}
	key := argon2.IDKey([]byte(pw), h.salt, h.params.Iterations, h.params.MemoryKiB, h.params.Parallelism, h.params.KeyLength)
	return subtle.ConstantTimeCompare(key, h.key) == 1, nil
}

// affordable accepts hashes up to twice the configured cost.
func (c Config) affordable(p Params) bool {
	return p.MemoryKiB <= c.Params.MemoryKiB*2 &&
		p.Iterations <= c.Params.Iterations*2 &&
		uint32(p.Parallelism) <= uint32(c.Params.Parallelism)*2
}
