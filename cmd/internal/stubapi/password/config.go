package password

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Params is the Argon2id cost. MemoryKiB is in KiB as argon2.IDKey expects.
type Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Config bundles hashing cost and the length policy.
type Config struct {
	Params       Params
	MinLength    int
	MaxLength    int
	RejectCommon bool
}

// DefaultConfig is tuned for interactive logins on a dev backend.
func DefaultConfig() Config {
	lanes := runtime.NumCPU()
	if lanes < 1 {
		lanes = 1
	}
	if lanes > 4 {
		lanes = 4
	}
	return Config{
		Params: Params{
			MemoryKiB:   19 * 1024,
			Iterations:  2,
			Parallelism: uint8(lanes), // #nosec G115 -- clamped to [1..4].
			SaltLength:  16,
			KeyLength:   32,
		},
		MinLength:    8,
		MaxLength:    256,
		RejectCommon: true,
	}
}

// FastConfig trades cost for speed. Tests and seed data only.
func FastConfig() Config {
	c := DefaultConfig()
	c.Params.MemoryKiB = 1024
	c.Params.Iterations = 1
	c.Params.Parallelism = 1
	return c
}

type envField struct {
	key      string
	min, max uint64
	set      func(*Config, uint64)
}

var envFields = []envField{
	{"STUBAPI_PASSWORD_MIN_LEN", 1, 1024, func(c *Config, v uint64) { c.MinLength = int(v) }},
	{"STUBAPI_PASSWORD_MAX_LEN", 1, 4096, func(c *Config, v uint64) { c.MaxLength = int(v) }},
	{"STUBAPI_ARGON2_MEMORY_KIB", 1024, 1 << 20, func(c *Config, v uint64) { c.Params.MemoryKiB = uint32(v) }},
	{"STUBAPI_ARGON2_ITERATIONS", 1, 20, func(c *Config, v uint64) { c.Params.Iterations = uint32(v) }},
	{"STUBAPI_ARGON2_PARALLELISM", 1, 64, func(c *Config, v uint64) { c.Params.Parallelism = uint8(v) }},
	{"STUBAPI_ARGON2_SALT_LEN", 8, 64, func(c *Config, v uint64) { c.Params.SaltLength = uint32(v) }},
	{"STUBAPI_ARGON2_KEY_LEN", 16, 64, func(c *Config, v uint64) { c.Params.KeyLength = uint32(v) }},
}

// FromEnv overlays STUBAPI_PASSWORD_* and STUBAPI_ARGON2_* on DefaultConfig.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	for _, f := range envFields {
		raw, ok := os.LookupEnv(f.key)
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
		if err != nil {
			return Config{}, fmt.Errorf("%s: not an unsigned integer", f.key)
		}
		if v < f.min || v > f.max {
			return Config{}, fmt.Errorf("%s: out of range [%d..%d]", f.key, f.min, f.max)
		}
		f.set(&cfg, v)
	}

	if raw, ok := os.LookupEnv("STUBAPI_PASSWORD_REJECT_COMMON"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return Config{}, fmt.Errorf("STUBAPI_PASSWORD_REJECT_COMMON: %w", err)
		}
		cfg.RejectCommon = b
	}

	if cfg.MinLength > cfg.MaxLength {
		return Config{}, fmt.Errorf("password policy invalid: min_len(%d) > max_len(%d)", cfg.MinLength, cfg.MaxLength)
	}
	return cfg, nil
}
