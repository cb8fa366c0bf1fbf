package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type Posting struct {
	Position    int64
	ID          string
	Title       string
	Price       string
	Description string
	Author      string
	Link        string
	TimeInfo    string
	Status      string
	Cycles      string
	ObservedAt  string
}

const listPostings = `
select position, id, title, price, description, author, link, time_info, status, cycles, observed_at
from postings
order by position asc
`

func (q *Queries) ListPostings(ctx context.Context) ([]Posting, error) {
	rows, err := q.db.QueryContext(ctx, listPostings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Posting
	for rows.Next() {
		var i Posting
		err := rows.Scan(
			&i.Position,
			&i.ID,
			&i.Title,
			&i.Price,
			&i.Description,
			&i.Author,
			&i.Link,
			&i.TimeInfo,
			&i.Status,
			&i.Cycles,
			&i.ObservedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deletePostings = `delete from postings`

func (q *Queries) DeletePostings(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deletePostings)
	return err
}

const createPosting = `
insert into postings (
    position, id, title, price, description, author, link, time_info, status, cycles, observed_at
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreatePostingParams = Posting

func (q *Queries) CreatePosting(ctx context.Context, arg CreatePostingParams) error {
	_, err := q.db.ExecContext(ctx, createPosting,
		arg.Position,
		arg.ID,
		arg.Title,
		arg.Price,
		arg.Description,
		arg.Author,
		arg.Link,
		arg.TimeInfo,
		arg.Status,
		arg.Cycles,
		arg.ObservedAt,
	)
	return err
}

const countPostings = `select count(*) from postings`

func (q *Queries) CountPostings(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPostings)
	var count int64
	err := row.Scan(&count)
	return count, err
}
