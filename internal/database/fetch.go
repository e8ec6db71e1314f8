package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dbsmedya/gonest/internal/types"
)

// Querier is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Fetch runs query and returns every result row as an ordered Row keyed by the
// result-set column names. Rows keep the order the database returned them in,
// so JOIN queries should ORDER BY the root key.
func Fetch(ctx context.Context, q Querier, query string, args ...interface{}) ([]*types.Row, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	if dup := duplicateColumn(columns); dup != "" {
		return nil, fmt.Errorf("result set has duplicate column %q; alias joined columns with a relationship prefix", dup)
	}

	var result []*types.Row
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("fetch interrupted: %w", err)
		}

		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(result), err)
		}
		for i, v := range values {
			values[i] = formatValue(v)
		}

		row, err := types.NewRowFromColumns(columns, values)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	if result == nil {
		result = []*types.Row{}
	}
	return result, nil
}

// formatValue converts driver values into plain, comparable output values.
func formatValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return val
	}
}

func duplicateColumn(columns []string) string {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			return c
		}
		seen[c] = true
	}
	return ""
}
