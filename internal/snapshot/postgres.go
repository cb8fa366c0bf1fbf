package snapshot

import (
	"bountywatch/internal/assert"
	"bountywatch/internal/posting"
	"bountywatch/internal/telemetry"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
create table if not exists postings (
    position integer primary key,
    id text not null,
    title text not null,
    price text not null,
    description text not null default '',
    author text not null default '',
    link text not null default '',
    time_info text not null default '',
    status text not null default '',
    cycles text not null default '',
    observed_at timestamptz not null
)`

var postgresColumns = []string{
	"position", "id", "title", "price", "description", "author",
	"link", "time_info", "status", "cycles", "observed_at",
}

// PostgresStore keeps the snapshot in a postgres table, Replace deletes and
// bulk copies the new rows in a single transaction. observed_at is stored as
// timestamptz and so keeps microsecond precision.
type PostgresStore struct {
	pool *pgxpool.Pool
	tel  telemetry.API
}

func OpenPostgresStore(ctx context.Context, conn string, tel telemetry.API) (PostgresStore, error) {
	pool, err := pgxpool.New(ctx, conn)
	if err != nil {
		return PostgresStore{}, err
	}
	_, err = pool.Exec(ctx, postgresSchema)
	if err != nil {
		pool.Close()
		return PostgresStore{}, fmt.Errorf("create schema: %w", err)
	}
	return NewPostgresStore(pool, tel), nil
}

func NewPostgresStore(pool *pgxpool.Pool, tel telemetry.API) PostgresStore {
	assert.NotNil(pool)
	assert.NotNil(tel)
	return PostgresStore{
		pool: pool,
		tel:  telemetry.NewScopedAPI("snapshot_postgres", tel),
	}
}

func (s PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s PostgresStore) Load(ctx context.Context) ([]posting.Posting, error) {
	rows, err := s.pool.Query(ctx, `
select id, title, price, description, author, link, time_info, status, cycles, observed_at
from postings
order by position asc`)
	if err != nil {
		s.tel.ReportBroken(report_load, err)
		return nil, err
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (posting.Posting, error) {
		var p posting.Posting
		err := row.Scan(
			&p.ID,
			&p.Title,
			&p.Price,
			&p.Description,
			&p.Author,
			&p.Link,
			&p.TimeInfo,
			&p.Status,
			&p.Cycles,
			&p.ObservedAt,
		)
		p.ObservedAt = p.ObservedAt.UTC()
		return p, err
	})
	if err != nil {
		s.tel.ReportBroken(report_load, err)
		return nil, err
	}
	if out == nil {
		out = []posting.Posting{}
	}
	return out, nil
}

func (s PostgresStore) Replace(ctx context.Context, postings []posting.Posting) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, "delete from postings")
		if err != nil {
			return fmt.Errorf("delete: %w", err)
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"postings"},
			postgresColumns,
			pgx.CopyFromSlice(len(postings), func(i int) ([]any, error) {
				p := postings[i]
				return []any{
					i, p.ID, p.Title, p.Price, p.Description, p.Author,
					p.Link, p.TimeInfo, p.Status, p.Cycles, p.ObservedAt.UTC(),
				}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copy: %w", err)
		}
		return nil
	})
	if err != nil {
		s.tel.ReportBroken(report_replace, err)
		return err
	}
	s.tel.ReportDebug("replaced snapshot", telemetry.KV{Key: "count", Value: len(postings)})
	return nil
}

var _ Store = PostgresStore{}
var _ Store = SQLStore{}
var _ Store = (*FileStore)(nil)
