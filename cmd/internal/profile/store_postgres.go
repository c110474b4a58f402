package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a Store backed by PostgreSQL. Each profile is one jsonb document in
// <schema>.user_profiles keyed by id.
//
// Ownership model:
// - PostgresStore does NOT own the pgx pool. The caller must close the pool.
// - Close() is therefore a no-op.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures PostgresStore behavior.
type PostgresOption func(*PostgresStore) error

// WithSchema sets the DB schema used by this store (default: "usersvc").
// The schema name is validated and safely quoted in queries.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return errors.New("profile: empty schema")
		}
		if !isValidPGIdent(schema) {
			return errors.New("profile: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a Postgres-backed Store.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "usersvc",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, errors.New("profile: nil pool")
	}
	return st, nil
}

// Close is a no-op because the pool is owned by the caller.
func (s *PostgresStore) Close() error { return nil }

// EnsureSchema creates the schema and table when they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `CREATE SCHEMA IF NOT EXISTS `+pgx.Identifier{s.schema}.Sanitize()); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS `+pgIdent(s.schema, "user_profiles")+` (
		   id         TEXT PRIMARY KEY,
		   doc        JSONB NOT NULL,
		   updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		 )`,
	); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// Put upserts the document for p.ID.
func (s *PostgresStore) Put(ctx context.Context, p Profile) error {
	if s == nil || s.pool == nil {
		return errors.New("profile: nil store")
	}
	if p.ID == "" {
		return ErrInvalidInput
	}

	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO `+pgIdent(s.schema, "user_profiles")+` (id, doc, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE
		    SET doc = EXCLUDED.doc,
		        updated_at = now()`,
		p.ID, doc,
	); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// Get reads the document for id. A missing row is reported as found=false.
func (s *PostgresStore) Get(ctx context.Context, id string) (Profile, bool, error) {
	if s == nil || s.pool == nil {
		return Profile{}, false, errors.New("profile: nil store")
	}

	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM `+pgIdent(s.schema, "user_profiles")+` WHERE id = $1`,
		id,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, false, nil
	}
	if err != nil {
		return Profile{}, false, err
	}

	var p Profile
	if err := json.Unmarshal(doc, &p); err != nil {
		return Profile{}, false, fmt.Errorf("decode profile: %w", err)
	}
	return p, true, nil
}

var pgIdentRE = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func isValidPGIdent(s string) bool {
	return pgIdentRE.MatchString(s)
}

func pgIdent(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}
