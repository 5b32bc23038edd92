package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tilestock/tilestock/internal/inventory"
	"github.com/tilestock/tilestock/internal/model"
)

// RecordQuerier adapts the records table to the pager's query interface.
// All queries share the descending (created_at, id) sort; boundary
// timestamps are normalized through datetime() so driver and
// CURRENT_TIMESTAMP formats compare correctly.
type RecordQuerier struct {
	DB *sql.DB
}

// PageInitial returns the newest limit records.
func (q RecordQuerier) PageInitial(ctx context.Context, limit int) ([]model.Record, error) {
	rows, err := q.DB.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records
		 ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying first page: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// PageAfter returns up to limit records strictly after the cursor in the
// descending order (i.e. older records).
func (q RecordQuerier) PageAfter(ctx context.Context, after inventory.Cursor, limit int) ([]model.Record, error) {
	rows, err := q.DB.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records
		 WHERE created_at < datetime(?) OR (created_at = datetime(?) AND id < ?)
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		after.CreatedAt, after.CreatedAt, after.ID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying page after cursor: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// PageBefore returns the limit records immediately preceding the cursor in
// the descending order (i.e. the newest records older pages came from),
// still sorted newest first.
func (q RecordQuerier) PageBefore(ctx context.Context, before inventory.Cursor, limit int) ([]model.Record, error) {
	rows, err := q.DB.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records
		 WHERE created_at > datetime(?) OR (created_at = datetime(?) AND id > ?)
		 ORDER BY created_at ASC, id ASC LIMIT ?`,
		before.CreatedAt, before.CreatedAt, before.ID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying page before cursor: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	// The ascending scan took the rows closest to the cursor; flip them
	// back into display order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Count returns the total record count.
func (q RecordQuerier) Count(ctx context.Context) (int, error) {
	return CountRecords(ctx, q.DB)
}
