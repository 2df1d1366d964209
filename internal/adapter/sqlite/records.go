package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// Compile-time check: RecordRepository implements domain.RecordRepository.
var _ domain.RecordRepository = (*RecordRepository)(nil)

// RecordRepository stores tenant-owned records as JSON documents. Every
// query is constrained by barbershop_id.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository uses a database already migrated by New or NewFromDB.
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

const recordColumns = `id, barbershop_id, collection, data, created_at, updated_at`

func (r *RecordRepository) Insert(ctx context.Context, rec domain.StoredRecord) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.BarbershopID, rec.Collection, string(data),
		rec.CreatedAt.UTC().Format(timeFormat),
		rec.UpdatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

func (r *RecordRepository) Get(ctx context.Context, tenantID, collection, id string) (domain.StoredRecord, error) {
	return scanRecord(r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records
		 WHERE barbershop_id = ? AND collection = ? AND id = ?`,
		tenantID, collection, id,
	))
}

func (r *RecordRepository) List(ctx context.Context, tenantID, collection string) ([]domain.StoredRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records
		 WHERE barbershop_id = ? AND collection = ?
		 ORDER BY created_at, id`,
		tenantID, collection,
	)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var out []domain.StoredRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *RecordRepository) Update(ctx context.Context, rec domain.StoredRecord) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE records SET data = ?, updated_at = ?
		 WHERE barbershop_id = ? AND collection = ? AND id = ?`,
		string(data), rec.UpdatedAt.UTC().Format(timeFormat),
		rec.BarbershopID, rec.Collection, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("updating record: %w", err)
	}
	return checkAffected(result)
}

func (r *RecordRepository) Delete(ctx context.Context, tenantID, collection, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM records WHERE barbershop_id = ? AND collection = ? AND id = ?`,
		tenantID, collection, id,
	)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func scanRecord(row scanner) (domain.StoredRecord, error) {
	var rec domain.StoredRecord
	var data, createdAt, updatedAt string

	err := row.Scan(&rec.ID, &rec.BarbershopID, &rec.Collection, &data, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StoredRecord{}, domain.ErrRecordNotFound
		}
		return domain.StoredRecord{}, fmt.Errorf("scanning record: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &rec.Data); err != nil {
		return domain.StoredRecord{}, fmt.Errorf("decoding record %s: %w", rec.ID, err)
	}
	rec.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	rec.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return rec, nil
}
