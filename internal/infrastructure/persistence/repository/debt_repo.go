// Package repository persists debt entries in SQLite.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haekalr/kasbon/internal/domain/entity"
	"github.com/haekalr/kasbon/pkg/database"
)

// ErrNotFound is returned when no entry exists for the given ID.
var ErrNotFound = errors.New("debt not found")

type txKey struct{}

// executor is the subset of sql.DB/sql.Tx the queries need.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// DebtRepository stores debt entries in the debts table.
type DebtRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewDebtRepository creates a new debt repository.
func NewDebtRepository(db *database.DB, logger *zap.Logger) *DebtRepository {
	return &DebtRepository{db: db, logger: logger}
}

// getExecutor returns the transaction bound to ctx, or the plain
// connection when none is.
func (r *DebtRepository) getExecutor(ctx context.Context) executor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return r.db.DB
}

// InTransaction runs fn with all repository calls on ctx scoped to a
// single transaction.
func (r *DebtRepository) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

const debtColumns = "id, nama, tanggal, nominal, status, deskripsi, foto_data_uris, created_at, updated_at"

// List returns all entries ordered by date descending, newest insert
// first within a day. The sort lives in SQL rather than trusting the
// string column order at the call sites.
func (r *DebtRepository) List(ctx context.Context) ([]entity.Debt, error) {
	query := fmt.Sprintf("SELECT %s FROM debts ORDER BY tanggal DESC, created_at DESC", debtColumns)

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list debts", zap.Error(err))
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	debts := make([]entity.Debt, 0)
	for rows.Next() {
		debt, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, *debt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debts: %w", err)
	}
	return debts, nil
}

// Get retrieves one entry by ID.
func (r *DebtRepository) Get(ctx context.Context, id string) (*entity.Debt, error) {
	query := fmt.Sprintf("SELECT %s FROM debts WHERE id = ?", debtColumns)

	row := r.getExecutor(ctx).QueryRowContext(ctx, query, id)
	debt, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get debt", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return debt, nil
}

// Create inserts a new entry, assigning its ID and timestamps.
func (r *DebtRepository) Create(ctx context.Context, d *entity.Debt) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	photos, err := marshalPhotos(d.Photos)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO debts (id, nama, tanggal, nominal, status, deskripsi, foto_data_uris, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.getExecutor(ctx).ExecContext(ctx, query,
		d.ID,
		d.Name,
		d.Date.Format(entity.DateLayout),
		d.Amount,
		string(d.Status),
		d.Description,
		photos,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create debt", zap.String("nama", d.Name), zap.Error(err))
		return fmt.Errorf("failed to create debt: %w", err)
	}
	return nil
}

// Update overwrites an existing entry's fields.
func (r *DebtRepository) Update(ctx context.Context, d *entity.Debt) error {
	d.UpdatedAt = time.Now().UTC()

	photos, err := marshalPhotos(d.Photos)
	if err != nil {
		return err
	}

	query := `
		UPDATE debts
		SET nama = ?, tanggal = ?, nominal = ?, status = ?, deskripsi = ?, foto_data_uris = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		d.Name,
		d.Date.Format(entity.DateLayout),
		d.Amount,
		string(d.Status),
		d.Description,
		photos,
		d.UpdatedAt,
		d.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update debt", zap.String("id", d.ID), zap.Error(err))
		return fmt.Errorf("failed to update debt: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an entry.
func (r *DebtRepository) Delete(ctx context.Context, id string) error {
	result, err := r.getExecutor(ctx).ExecContext(ctx, "DELETE FROM debts WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete debt", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete debt: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDebt(s scanner) (*entity.Debt, error) {
	var (
		debt   entity.Debt
		date   string
		status string
		photos sql.NullString
	)

	err := s.Scan(
		&debt.ID,
		&debt.Name,
		&date,
		&debt.Amount,
		&status,
		&debt.Description,
		&photos,
		&debt.CreatedAt,
		&debt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	debt.Date, err = time.Parse(entity.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored date %q: %w", date, err)
	}
	debt.Status = entity.Status(status)

	debt.Photos = []string{}
	if photos.Valid && photos.String != "" {
		if err := json.Unmarshal([]byte(photos.String), &debt.Photos); err != nil {
			return nil, fmt.Errorf("failed to parse stored photos: %w", err)
		}
	}
	return &debt, nil
}

// marshalPhotos serializes the photo list, storing NULL when empty so the
// column never carries an empty-vs-absent ambiguity.
func marshalPhotos(photos []string) (interface{}, error) {
	if len(photos) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(photos)
	if err != nil {
		return nil, fmt.Errorf("failed to encode photos: %w", err)
	}
	return string(encoded), nil
}
