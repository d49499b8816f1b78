// Package repositories implements the domain repositories on PostgreSQL.
package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryExecutor abstracts pgxpool.Pool and pgx.Tx.
type queryExecutor interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// scanner abstracts pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// quoteIdent double-quotes a column name for use in generated SQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// textValue converts a decoded JSON value into the text stored in a column.
// nil maps to NULL.
func textValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// args accumulates positional parameters and hands out their placeholders.
type args struct {
	values []any
}

func (a *args) add(v any) string {
	a.values = append(a.values, v)
	return fmt.Sprintf("$%d", len(a.values))
}
