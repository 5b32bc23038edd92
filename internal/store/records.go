package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tilestock/tilestock/internal/model"
)

// VariantInput is one suffix variant of a group save.
type VariantInput struct {
	TypeSuffix string
	Quantity   int
}

const recordColumns = `id, model_prefix, type_suffix, width, height, quantity,
       COALESCE(batch_id, ''), COALESCE(photo_mime, ''), created_at, updated_at`

// SaveGroup inserts one record per variant in a single transaction, all
// sharing a fresh batch ID. A failure on any variant rolls back the whole
// group.
func SaveGroup(ctx context.Context, db *sql.DB, prefix string, width, height float64, variants []VariantInput) ([]model.Record, error) {
	if len(variants) == 0 {
		return nil, fmt.Errorf("group needs at least one variant")
	}
	prefix = model.NormalizePrefix(prefix)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	batchID := uuid.NewString()
	ids := make([]int64, 0, len(variants))
	for _, v := range variants {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO records (model_prefix, type_suffix, width, height, quantity, batch_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			prefix, v.TypeSuffix, width, height, v.Quantity, batchID,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting variant %q: %w", v.TypeSuffix, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("getting variant id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing group: %w", err)
	}

	records := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		r, err := GetRecord(ctx, db, id)
		if err != nil {
			return nil, err
		}
		if r != nil {
			records = append(records, *r)
		}
	}
	return records, nil
}

// ReplaceGroup replaces all variants of an existing group with a new
// variant set, possibly under new prefix or dimensions, in one
// transaction.
func ReplaceGroup(ctx context.Context, db *sql.DB, oldPrefix string, oldWidth, oldHeight float64, prefix string, width, height float64, variants []VariantInput) error {
	if len(variants) == 0 {
		return fmt.Errorf("group needs at least one variant")
	}
	oldPrefix = model.NormalizePrefix(oldPrefix)
	prefix = model.NormalizePrefix(prefix)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM records WHERE model_prefix = ? AND width = ? AND height = ?`,
		oldPrefix, oldWidth, oldHeight,
	); err != nil {
		return fmt.Errorf("removing old variants: %w", err)
	}

	batchID := uuid.NewString()
	for _, v := range variants {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records (model_prefix, type_suffix, width, height, quantity, batch_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			prefix, v.TypeSuffix, width, height, v.Quantity, batchID,
		); err != nil {
			return fmt.Errorf("inserting variant %q: %w", v.TypeSuffix, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing group replacement: %w", err)
	}
	return nil
}

// DeleteGroup deletes every variant of a group in one transaction and
// returns how many records were removed. A failure aborts all deletes.
func DeleteGroup(ctx context.Context, db *sql.DB, prefix string, width, height float64) (int, error) {
	prefix = model.NormalizePrefix(prefix)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM records WHERE model_prefix = ? AND width = ? AND height = ?`,
		prefix, width, height,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting group: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted variants: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing group delete: %w", err)
	}
	return int(n), nil
}

// GetRecord returns a record by ID.
func GetRecord(ctx context.Context, db *sql.DB, id int64) (*model.Record, error) {
	r := &model.Record{}
	err := db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = ?`, id,
	).Scan(&r.ID, &r.ModelPrefix, &r.TypeSuffix, &r.Width, &r.Height, &r.Quantity,
		&r.BatchID, &r.PhotoMime, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return r, nil
}

// ListRecords returns all records, newest first, optionally filtered by a
// model-prefix search term (prefix match).
func ListRecords(ctx context.Context, db *sql.DB, prefixQuery string) ([]model.Record, error) {
	var rows *sql.Rows
	var err error

	if prefixQuery != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT `+recordColumns+` FROM records
			 WHERE model_prefix LIKE ? ESCAPE '\'
			 ORDER BY created_at DESC, id DESC`,
			escapeLike(prefixQuery)+"%",
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+recordColumns+` FROM records ORDER BY created_at DESC, id DESC`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GroupRecords returns every record of one display group.
func GroupRecords(ctx context.Context, db *sql.DB, prefix string, width, height float64) ([]model.Record, error) {
	prefix = model.NormalizePrefix(prefix)
	rows, err := db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records
		 WHERE model_prefix = ? AND width = ? AND height = ?
		 ORDER BY id`,
		prefix, width, height,
	)
	if err != nil {
		return nil, fmt.Errorf("listing group records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// CountRecords returns the total number of records.
func CountRecords(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// SetRecordPhoto stores a record's photo data.
func SetRecordPhoto(ctx context.Context, db *sql.DB, id int64, photo []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE records SET photo = ?, photo_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		photo, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting record photo: %w", err)
	}
	return nil
}

// GetRecordPhoto returns a record's photo data and MIME type.
func GetRecordPhoto(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM records WHERE id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting record photo: %w", err)
	}
	return photo, mime.String, nil
}

func scanRecords(rows *sql.Rows) ([]model.Record, error) {
	var records []model.Record
	for rows.Next() {
		var r model.Record
		if err := rows.Scan(&r.ID, &r.ModelPrefix, &r.TypeSuffix, &r.Width, &r.Height,
			&r.Quantity, &r.BatchID, &r.PhotoMime, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// escapeLike escapes LIKE wildcards in a user-supplied search term.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
