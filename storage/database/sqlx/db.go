// Package sqlxrepos implements the repositories on PostgreSQL.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// writeErr maps a unique violation to core.ErrDuplicate.
func writeErr(err error, msg string) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
		return core.ErrDuplicate
	}
	return errors.Wrap(err, msg)
}

// deleteErr maps a foreign key violation to core.ErrInUse.
func deleteErr(err error, msg string) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == pqForeignKeyViolation {
		return core.ErrInUse
	}
	return errors.Wrap(err, msg)
}

// trapNoRowsErr maps "no rows" to the not found error of the queried table.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// mustAffect returns notFound when `res` affected no row.
func mustAffect(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// conditions builds a WHERE clause with `?` bind vars.
type conditions struct {
	clauses []string
	args    []interface{}
}

// eq adds "col = val" unless val is empty.
func (c *conditions) eq(col, val string) {
	if val != "" {
		c.add(col+" = ?", val)
	}
}

func (c *conditions) add(clause string, args ...interface{}) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
}

func (c *conditions) String() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// orderBy renders the allowed orderings, or `def` when none is allowed.
func orderBy(orderings []core.DBOrdering, columns map[string]string, def string) string {
	allowed := core.AllowedOrderings(orderings, columns)
	if len(allowed) == 0 {
		return " ORDER BY " + def
	}
	parts := make([]string, len(allowed))
	for i, ord := range allowed {
		parts[i] = ord.String()
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// inTx runs fn in a transaction, committed when fn succeeds.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
