package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/fleetmate/loan-ledger/internal/domain"
	"github.com/fleetmate/loan-ledger/pkg/utils"
)

const paymentColumns = `id, truck_id, added_by, date, cost, additional_charges, note, created_at`

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.LoanPayment) error {
	query := `
		INSERT INTO loan_payments (id, truck_id, added_by, date, cost, additional_charges, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.TruckID,
		payment.AddedBy,
		payment.Date,
		payment.Cost,
		payment.AdditionalCharges,
		payment.Note,
		payment.CreatedAt,
	)

	return err
}

func (r *paymentRepository) FindByTruckID(ctx context.Context, truckID string, window *utils.DateRange) ([]*domain.LoanPayment, error) {
	return r.find(ctx, "truck_id", truckID, window)
}

func (r *paymentRepository) FindByUserID(ctx context.Context, userID string, window *utils.DateRange) ([]*domain.LoanPayment, error) {
	return r.find(ctx, "added_by", userID, window)
}

// find builds the shared filter: a single-day window matches the exact
// normalized start instant, any other window becomes an inclusive range.
func (r *paymentRepository) find(ctx context.Context, column, value string, window *utils.DateRange) ([]*domain.LoanPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM loan_payments WHERE ` + column + ` = $1`
	args := []interface{}{value}

	if window != nil {
		if window.SingleDay() {
			query += ` AND date = $2`
			args = append(args, window.Start)
		} else {
			query += ` AND date BETWEEN $2 AND $3`
			args = append(args, window.Start, window.End)
		}
	}

	query += ` ORDER BY date ASC`

	var payments []*domain.LoanPayment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) SumCostByTruckID(ctx context.Context, truckID string) (decimal.Decimal, error) {
	return r.sum(ctx, "cost", truckID)
}

func (r *paymentRepository) SumAdditionalChargesByTruckID(ctx context.Context, truckID string) (decimal.Decimal, error) {
	return r.sum(ctx, "additional_charges", truckID)
}

func (r *paymentRepository) sum(ctx context.Context, column, truckID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(` + column + `), 0) FROM loan_payments WHERE truck_id = $1`

	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, truckID); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

func (r *paymentRepository) LatestByTruckID(ctx context.Context, truckID string) (*domain.LoanPayment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM loan_payments
		WHERE truck_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var payment domain.LoanPayment
	err := r.db.GetContext(ctx, &payment, query, truckID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) DeleteByID(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM loan_payments WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
