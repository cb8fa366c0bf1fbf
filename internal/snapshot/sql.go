package snapshot

import (
	"bountywatch/internal/assert"
	"bountywatch/internal/db"
	"bountywatch/internal/posting"
	"bountywatch/internal/telemetry"
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLStore keeps the snapshot in the `postings` table of a sqlite or libsql
// database, Replace is a delete-then-insert inside one transaction.
type SQLStore struct {
	qry    *db.Queries
	makeTx db.MakeTx
	tel    telemetry.API
}

func NewSQLStore(database *sql.DB, tel telemetry.API) SQLStore {
	assert.NotNil(database)
	assert.NotNil(tel)

	return SQLStore{
		qry:    db.New(database),
		makeTx: db.NewMakeTx(database),
		tel:    telemetry.NewScopedAPI("snapshot_sql", tel),
	}
}

func (s SQLStore) Load(ctx context.Context) ([]posting.Posting, error) {
	rows, err := s.qry.ListPostings(ctx)
	if err != nil {
		s.tel.ReportBroken(report_load, err)
		return nil, err
	}

	out := make([]posting.Posting, len(rows))
	for i, row := range rows {
		out[i], err = fromRow(row)
		if err != nil {
			s.tel.ReportBroken(report_load, err)
			return nil, err
		}
	}
	return out, nil
}

func (s SQLStore) Replace(ctx context.Context, postings []posting.Posting) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_replace, fmt.Errorf("make tx: %w", err))
		return err
	}
	defer discard()

	err = tx.DeletePostings(ctx)
	if err != nil {
		s.tel.ReportBroken(report_replace, err, "DeletePostings")
		return err
	}

	for i, p := range postings {
		err = tx.CreatePosting(ctx, toRow(i, p))
		if err != nil {
			s.tel.ReportBroken(report_replace, err, "CreatePosting", i, p.ID)
			return err
		}
	}

	err = commit()
	if err != nil {
		s.tel.ReportBroken(report_replace, fmt.Errorf("commit: %w", err))
		return err
	}
	s.tel.ReportDebug("replaced snapshot", telemetry.KV{Key: "count", Value: len(postings)})
	return nil
}

func toRow(position int, p posting.Posting) db.Posting {
	return db.Posting{
		Position:    int64(position),
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Author:      p.Author,
		Link:        p.Link,
		TimeInfo:    p.TimeInfo,
		Status:      p.Status,
		Cycles:      p.Cycles,
		ObservedAt:  formatTime(p.ObservedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func fromRow(row db.Posting) (posting.Posting, error) {
	observedAt, err := time.Parse(time.RFC3339Nano, row.ObservedAt)
	if err != nil {
		return posting.Posting{}, fmt.Errorf("posting %d: observed_at: %w", row.Position, err)
	}
	return posting.Posting{
		ID:          row.ID,
		Title:       row.Title,
		Price:       row.Price,
		Description: row.Description,
		Author:      row.Author,
		Link:        row.Link,
		TimeInfo:    row.TimeInfo,
		Status:      row.Status,
		Cycles:      row.Cycles,
		ObservedAt:  observedAt,
	}, nil
}
