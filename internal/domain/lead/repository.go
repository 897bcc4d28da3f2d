package lead

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository is the persistence contract for leads. Update writes l only when
// the stored version equals expectedVersion, and sets l.Version to the new one.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Lead, error)
	Get(ctx context.Context, id uuid.UUID) (*Lead, error)
	Create(ctx context.Context, l *Lead) error
	Update(ctx context.Context, l *Lead, expectedVersion int64) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SQLRepository handles lead data access with hand-written queries; the table
// itself is created by database.Migrate.
type SQLRepository struct {
	db *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

const leadColumns = `id, user_id, name, phone, company, email, address, status,
	service, requirements, price, callback_date, callback_time, rejection_reason,
	version, created_at, updated_at`

// List returns leads newest first, optionally restricted to one status
func (r *SQLRepository) List(ctx context.Context, filter Filter) ([]Lead, error) {
	leads := []Lead{}
	var err error
	if filter == FilterAll || filter == "" {
		query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC`
		err = r.db.SelectContext(ctx, &leads, query)
	} else {
		query := r.db.Rebind(`SELECT ` + leadColumns + ` FROM leads WHERE status = ? ORDER BY created_at DESC`)
		err = r.db.SelectContext(ctx, &leads, query, string(filter))
	}
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

func (r *SQLRepository) Get(ctx context.Context, id uuid.UUID) (*Lead, error) {
	var l Lead
	query := r.db.Rebind(`SELECT ` + leadColumns + ` FROM leads WHERE id = ?`)
	if err := r.db.GetContext(ctx, &l, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return &l, nil
}

// Create inserts a new lead
func (r *SQLRepository) Create(ctx context.Context, l *Lead) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now
	if l.Version == 0 {
		l.Version = 1
	}

	query := r.db.Rebind(`
		INSERT INTO leads (` + leadColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		l.ID.String(), l.UserID, l.Name, l.Phone, l.Company, l.Email, l.Address, string(l.Status),
		l.Service, l.Requirements, l.Price, l.CallbackDate, l.CallbackTime, l.RejectionReason,
		l.Version, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

func (r *SQLRepository) Update(ctx context.Context, l *Lead, expectedVersion int64) error {
	updatedAt := time.Now().UTC()
	query := r.db.Rebind(`
		UPDATE leads SET
			name = ?, phone = ?, company = ?, email = ?, address = ?, status = ?,
			service = ?, requirements = ?, price = ?,
			callback_date = ?, callback_time = ?, rejection_reason = ?,
			version = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`)
	res, err := r.db.ExecContext(ctx, query,
		l.Name, l.Phone, l.Company, l.Email, l.Address, string(l.Status),
		l.Service, l.Requirements, l.Price,
		l.CallbackDate, l.CallbackTime, l.RejectionReason,
		expectedVersion+1, updatedAt,
		l.ID.String(), expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	if n == 0 {
		return r.missOrStale(ctx, l.ID)
	}
	l.Version = expectedVersion + 1
	l.UpdatedAt = updatedAt
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM leads WHERE id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func (r *SQLRepository) missOrStale(ctx context.Context, id uuid.UUID) error {
	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT COUNT(*) FROM leads WHERE id = ?`), id.String()); err != nil {
		return fmt.Errorf("check lead: %w", err)
	}
	if count == 0 {
		return ErrLeadNotFound
	}
	return ErrStaleWrite
}
