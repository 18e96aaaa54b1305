package docstore

// The Postgres driver keeps the document tree in a single table:
//
//   create table documents (
//       path text primary key,
//       doc  jsonb not null
//   );
//
// Batch updates select each target row for update inside one transaction, so
// guards and writes commit atomically. The merge itself happens client-side
// to keep guard semantics identical across drivers.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/ledger/internal/errs"
)

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres establishes a pgx pool using the provided connection string.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("docstore: postgres ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the underlying pool.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *Postgres) Get(ctx context.Context, path string) (json.RawMessage, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, `select doc from documents where path = $1`, path).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	return json.RawMessage(raw), nil
}

func (p *Postgres) Set(ctx context.Context, path string, doc json.RawMessage) error {
	_, err := p.pool.Exec(ctx, `
		insert into documents (path, doc) values ($1, $2)
		on conflict (path) do update set doc = excluded.doc
	`, path, []byte(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	return nil
}

func (p *Postgres) Apply(ctx context.Context, writes []Write) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	for _, w := range writes {
		var raw []byte
		err := tx.QueryRow(ctx, `select doc from documents where path = $1 for update`, w.Path).Scan(&raw)
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
		}
		if err := checkGuard(raw, w.Guard); err != nil {
			return err
		}
		merged, err := mergeFields(raw, w.Fields)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `update documents set doc = $2 where path = $1`, w.Path, []byte(merged)); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, path string) error {
	if _, err := p.pool.Exec(ctx, `delete from documents where path = $1`, path); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, prefix string) (map[string]json.RawMessage, error) {
	rows, err := p.pool.Query(ctx, `select path, doc from documents where path like $1 || '%'`, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	defer rows.Close()
	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var path string
		var raw []byte
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
		}
		out[path] = json.RawMessage(raw)
	}
	return out, rows.Err()
}

func (p *Postgres) Query(ctx context.Context, prefix, field string, value any) (map[string]json.RawMessage, error) {
	all, err := p.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage)
	for path, raw := range all {
		if fieldEquals(raw, field, value) {
			out[path] = raw
		}
	}
	return out, nil
}

func (p *Postgres) Ready(ctx context.Context) error { return p.pool.Ping(ctx) }
