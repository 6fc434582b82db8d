package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WholesalerService interface {
	CreateWholesaler(ctx context.Context, input WholesalerInput) (*Wholesaler, error)
	UpdateWholesaler(ctx context.Context, id int, input WholesalerInput) (*Wholesaler, error)
	GetWholesaler(ctx context.Context, id int) (*Wholesaler, error)
	GetWholesalers(ctx context.Context) ([]Wholesaler, error)
	DeactivateWholesaler(ctx context.Context, id int) error
}

type wholesalerService struct {
	pool *pgxpool.Pool
}

// NewWholesalerService constructs a WholesalerService backed by PostgreSQL.
func NewWholesalerService(pool *pgxpool.Pool) WholesalerService {
	return &wholesalerService{pool: pool}
}

// CreateWholesaler inserts a new wholesaler record.
func (s *wholesalerService) CreateWholesaler(ctx context.Context, input WholesalerInput) (*Wholesaler, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	toPtr := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	w := &Wholesaler{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO wholesalers (name, phone, address)
		VALUES ($1, $2, $3)
		RETURNING id, name, phone, address, is_active, created_at`,
		strings.TrimSpace(input.Name), toPtr(input.Phone), toPtr(input.Address),
	).Scan(&w.ID, &w.Name, &w.Phone, &w.Address, &w.IsActive, &w.CreatedAt)
	if err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("create wholesaler %q", input.Name), Err: err}
	}
	return w, nil
}

// UpdateWholesaler replaces the mutable fields of a wholesaler.
func (s *wholesalerService) UpdateWholesaler(ctx context.Context, id int, input WholesalerInput) (*Wholesaler, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	toPtr := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	w := &Wholesaler{}
	err := s.pool.QueryRow(ctx, `
		UPDATE wholesalers
		SET name = $1, phone = $2, address = $3
		WHERE id = $4
		RETURNING id, name, phone, address, is_active, created_at`,
		strings.TrimSpace(input.Name), toPtr(input.Phone), toPtr(input.Address), id,
	).Scan(&w.ID, &w.Name, &w.Phone, &w.Address, &w.IsActive, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "wholesaler", ID: id}
		}
		return nil, &StorageError{Op: fmt.Sprintf("update wholesaler %d", id), Err: err}
	}
	return w, nil
}

// GetWholesaler returns a wholesaler by id.
func (s *wholesalerService) GetWholesaler(ctx context.Context, id int) (*Wholesaler, error) {
	w := &Wholesaler{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, phone, address, is_active, created_at
		FROM wholesalers
		WHERE id = $1`,
		id,
	).Scan(&w.ID, &w.Name, &w.Phone, &w.Address, &w.IsActive, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "wholesaler", ID: id}
		}
		return nil, &StorageError{Op: fmt.Sprintf("get wholesaler %d", id), Err: err}
	}
	return w, nil
}

// GetWholesalers returns all active wholesalers ordered by name.
func (s *wholesalerService) GetWholesalers(ctx context.Context) ([]Wholesaler, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, phone, address, is_active, created_at
		FROM wholesalers
		WHERE is_active = true
		ORDER BY name`,
	)
	if err != nil {
		return nil, &StorageError{Op: "list wholesalers", Err: err}
	}
	defer rows.Close()

	var wholesalers []Wholesaler
	for rows.Next() {
		var w Wholesaler
		if err := rows.Scan(&w.ID, &w.Name, &w.Phone, &w.Address, &w.IsActive, &w.CreatedAt); err != nil {
			return nil, &StorageError{Op: "scan wholesaler", Err: err}
		}
		wholesalers = append(wholesalers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate wholesalers", Err: err}
	}
	return wholesalers, nil
}

// DeactivateWholesaler soft-deletes a wholesaler. Its bills, products and
// payments stay in the ledger untouched.
func (s *wholesalerService) DeactivateWholesaler(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE wholesalers SET is_active = false WHERE id = $1", id)
	if err != nil {
		return &StorageError{Op: fmt.Sprintf("deactivate wholesaler %d", id), Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "wholesaler", ID: id}
	}
	return nil
}
