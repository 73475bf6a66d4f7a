package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

type attemptRepo struct {
	db *sql.DB
}

func (r *attemptRepo) Append(ctx context.Context, rec AttemptRecord) error {
	if rec.SubmittedAt.IsZero() {
		rec.SubmittedAt = time.Now()
	}
	passed := 0
	if rec.Passed {
		passed = 1
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableAttempts).
		Columns("id", "kind", "track_id", "lesson_id", "quiz_id", "correct", "total", "passed", "submitted_at").
		Values(rec.ID, rec.Kind, rec.TrackID, rec.LessonID, rec.QuizID, rec.Correct, rec.Total, passed, rec.SubmittedAt.UnixMilli()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) Recent(ctx context.Context, opts QueryOpts) ([]AttemptRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select("id", "kind", "track_id", "lesson_id", "quiz_id", "correct", "total", "passed", "submitted_at").
		From(entsql.Table(tableAttempts)).
		OrderBy(entsql.Desc("submitted_at"), entsql.Desc("seq"))

	if opts.Kind != "" {
		sel.Where(entsql.EQ("kind", opts.Kind))
	}
	if opts.TrackID != "" {
		sel.Where(entsql.EQ("track_id", opts.TrackID))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("submitted_at", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("submitted_at", opts.To.UnixMilli()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		var (
			rec       AttemptRecord
			passed    int
			submitted int64
		)
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.TrackID, &rec.LessonID, &rec.QuizID,
			&rec.Correct, &rec.Total, &passed, &submitted); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		rec.Passed = passed != 0
		rec.SubmittedAt = time.UnixMilli(submitted)
		out = append(out, rec)
	}
	return out, rows.Err()
}
