package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/fleetmate/loan-ledger/internal/domain"
)

const truckColumns = `id, added_by, registration_no, is_financed, finance_amount, make, model, year, chassis_no, engine_no, created_at`

type truckRepository struct {
	db *sqlx.DB
}

func NewTruckRepository(db *sqlx.DB) TruckRepository {
	return &truckRepository{db: db}
}

func (r *truckRepository) GetByID(ctx context.Context, id string) (*domain.Truck, error) {
	query := `SELECT ` + truckColumns + ` FROM trucks WHERE id = $1`

	var truck domain.Truck
	if err := r.db.GetContext(ctx, &truck, query, id); err != nil {
		return nil, err
	}

	return &truck, nil
}

func (r *truckRepository) ListFinanced(ctx context.Context) ([]*domain.Truck, error) {
	query := `SELECT ` + truckColumns + ` FROM trucks WHERE is_financed = TRUE ORDER BY registration_no`

	var trucks []*domain.Truck
	if err := r.db.SelectContext(ctx, &trucks, query); err != nil {
		return nil, err
	}

	return trucks, nil
}
