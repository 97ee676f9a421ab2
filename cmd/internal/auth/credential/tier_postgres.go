package credential

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaNameRe = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// PostgresTier is a durable tier stored in <schema>.client_storage.
//
// Expected table:
//
//	CREATE TABLE hiring.client_storage (
//	  key        text PRIMARY KEY,
//	  value      text NOT NULL,
//	  updated_at timestamptz NOT NULL DEFAULT now()
//	);
//
// EnsureTable creates it on demand. The pool is owned by the caller.
type PostgresTier struct {
	pool   *pgxpool.Pool
	schema string
}

// NewPostgresTier returns a tier using schema (default "hiring").
func NewPostgresTier(pool *pgxpool.Pool, schema string) (*PostgresTier, error) {
	if pool == nil {
		return nil, errors.New("credential: nil db pool")
	}
	if schema == "" {
		schema = "hiring"
	}
	if !schemaNameRe.MatchString(schema) {
		return nil, fmt.Errorf("credential: invalid schema name %q", schema)
	}
	return &PostgresTier{pool: pool, schema: schema}, nil
}

// Name returns the tier label used in logs.
func (t *PostgresTier) Name() string { return "postgres" }

// Get returns the stored value for key.
func (t *PostgresTier) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := t.pool.QueryRow(ctx, `
		SELECT value
		FROM `+t.schema+`.client_storage
		WHERE key = $1
	`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set upserts value under key.
func (t *PostgresTier) Set(ctx context.Context, key, value string) error {
	_, err := t.pool.Exec(ctx, `
		INSERT INTO `+t.schema+`.client_storage (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, value)
	return err
}

// Delete removes key. Missing keys are not an error.
func (t *PostgresTier) Delete(ctx context.Context, key string) error {
	_, err := t.pool.Exec(ctx, `
		DELETE FROM `+t.schema+`.client_storage
		WHERE key = $1
	`, key)
	return err
}

// EnsureTable creates the schema and client_storage table when missing.
func (t *PostgresTier) EnsureTable(ctx context.Context) error {
	_, err := t.pool.Exec(ctx, `
		CREATE SCHEMA IF NOT EXISTS `+t.schema+`;
		CREATE TABLE IF NOT EXISTS `+t.schema+`.client_storage (
			key        text PRIMARY KEY,
			value      text NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("credential: ensure %s.client_storage: %w", t.schema, err)
	}
	return nil
}
