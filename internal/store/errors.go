package store

import (
	"context"
	"database/sql"
	"errors"
)

// Domain rule violations reported by store operations.
var (
	ErrNotFound         = errors.New("not found")
	ErrNotOwner         = errors.New("item belongs to another student")
	ErrOwnItem          = errors.New("you cannot claim your own item")
	ErrNotClaimable     = errors.New("item is not open for claims")
	ErrDuplicateClaim   = errors.New("you already have an open claim on this item")
	ErrClaimClosed      = errors.New("claim has already been decided")
	ErrNoOpenQuestion   = errors.New("no unanswered verification question")
	ErrNotLostItem      = errors.New("found responses are only for lost items")
	ErrNotDeleted       = errors.New("item is not deleted")
	ErrAlreadyDeleted   = errors.New("item is already deleted")
	ErrDuplicateAccount = errors.New("account already exists")
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// affected turns a zero-row update into ErrNotFound.
func affected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
