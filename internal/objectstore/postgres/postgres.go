// Package postgres stores objects as rows of a single documents table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore"
)

// Schema creates the documents table. It is safe to run repeatedly.
const Schema = `
create table if not exists project_documents (
  key        text primary key,
  body       jsonb not null,
  etag       text not null,
  updated_at timestamptz not null default now()
);
`

// Bucket implements objectstore.Bucket on a pgx pool.
type Bucket struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Bucket {
	return &Bucket{db: db}
}

// Migrate applies Schema.
func (b *Bucket) Migrate(ctx context.Context) error {
	if _, err := b.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate project_documents: %w", err)
	}
	return nil
}

func (b *Bucket) Get(ctx context.Context, key string) (*objectstore.Object, error) {
	const q = `
select body::text, etag
from project_documents
where key = $1;
`
	var body string
	obj := objectstore.Object{Key: key}
	err := b.db.QueryRow(ctx, q, key).Scan(&body, &obj.ETag)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, objectstore.ErrNotExist
		}
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	obj.Data = []byte(body)
	return &obj, nil
}

func (b *Bucket) Create(ctx context.Context, key string, data []byte) (string, error) {
	const q = `
insert into project_documents (key, body, etag)
values ($1, $2::jsonb, $3)
on conflict (key) do nothing;
`
	etag := uuid.NewString()
	ct, err := b.db.Exec(ctx, q, key, string(data), etag)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", key, err)
	}
	if ct.RowsAffected() == 0 {
		return "", objectstore.ErrPreconditionFailed
	}
	return etag, nil
}

func (b *Bucket) Replace(ctx context.Context, key string, data []byte, etag string) (string, error) {
	const q = `
update project_documents
set body = $2::jsonb, etag = $3, updated_at = now()
where key = $1 and etag = $4;
`
	next := uuid.NewString()
	ct, err := b.db.Exec(ctx, q, key, string(data), next, etag)
	if err != nil {
		return "", fmt.Errorf("update %s: %w", key, err)
	}
	if ct.RowsAffected() == 0 {
		return "", b.missOrStale(ctx, key)
	}
	return next, nil
}

func (b *Bucket) Delete(ctx context.Context, key, etag string) error {
	const q = `
delete from project_documents
where key = $1 and etag = $2;
`
	ct, err := b.db.Exec(ctx, q, key, etag)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if ct.RowsAffected() == 0 {
		return b.missOrStale(ctx, key)
	}
	return nil
}

func (b *Bucket) Keys(ctx context.Context, prefix string) iter.Seq2[string, error] {
	const q = `
select key
from project_documents
where starts_with(key, $1)
order by key;
`
	return func(yield func(string, error) bool) {
		rows, err := b.db.Query(ctx, q, prefix)
		if err != nil {
			yield("", fmt.Errorf("list keys: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var k string
			if err := rows.Scan(&k); err != nil {
				yield("", err)
				return
			}
			if !yield(k, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield("", err)
		}
	}
}

func (b *Bucket) Ping(ctx context.Context) error {
	return b.db.Ping(ctx)
}

// missOrStale tells apart a missing row from an etag mismatch after a conditional
// statement touched no rows.
func (b *Bucket) missOrStale(ctx context.Context, key string) error {
	var exists bool
	err := b.db.QueryRow(ctx, `select exists(select 1 from project_documents where key = $1)`, key).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check %s: %w", key, err)
	}
	if !exists {
		return objectstore.ErrNotExist
	}
	return objectstore.ErrPreconditionFailed
}
