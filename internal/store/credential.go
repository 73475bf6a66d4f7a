package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

type credentialRepo struct {
	db *sql.DB
}

func (r *credentialRepo) Load(ctx context.Context) (*Credential, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("token", "user_id", "username", "saved_at").
		From(entsql.Table(tableCredentials)).
		Where(entsql.EQ("id", 1)).
		Limit(1).
		Query()

	var (
		cred    Credential
		savedAt int64
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&cred.Token, &cred.UserID, &cred.Username, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	cred.SavedAt = time.UnixMilli(savedAt)
	return &cred, nil
}

func (r *credentialRepo) Save(ctx context.Context, cred Credential) error {
	if cred.SavedAt.IsZero() {
		cred.SavedAt = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	del, delArgs := entsql.Dialect(dialect.SQLite).
		Delete(tableCredentials).
		Where(entsql.EQ("id", 1)).
		Query()
	if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
		return fmt.Errorf("replace credential: %w", err)
	}

	ins, insArgs := entsql.Dialect(dialect.SQLite).
		Insert(tableCredentials).
		Columns("id", "token", "user_id", "username", "saved_at").
		Values(1, cred.Token, cred.UserID, cred.Username, cred.SavedAt.UnixMilli()).
		Query()
	if _, err := tx.ExecContext(ctx, ins, insArgs...); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return tx.Commit()
}

func (r *credentialRepo) Clear(ctx context.Context) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(tableCredentials).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
