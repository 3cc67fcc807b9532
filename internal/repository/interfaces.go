package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetmate/loan-ledger/internal/domain"
	"github.com/fleetmate/loan-ledger/pkg/utils"
)

// PaymentRepository defines the interface for loan payment data operations.
// The Sum* and Latest* queries deliberately ignore date windows: balance and
// recent-payment views always cover the truck's whole history.
type PaymentRepository interface {
	// Create inserts a new payment record
	Create(ctx context.Context, payment *domain.LoanPayment) error

	// FindByTruckID retrieves payments for a truck, optionally restricted to
	// a day window, sorted by payment date ascending
	FindByTruckID(ctx context.Context, truckID string, window *utils.DateRange) ([]*domain.LoanPayment, error)

	// FindByUserID retrieves payments recorded by a user, optionally
	// restricted to a day window, sorted by payment date ascending
	FindByUserID(ctx context.Context, userID string, window *utils.DateRange) ([]*domain.LoanPayment, error)

	// SumCostByTruckID sums cost over the truck's entire history
	SumCostByTruckID(ctx context.Context, truckID string) (decimal.Decimal, error)

	// SumAdditionalChargesByTruckID sums additional charges over the truck's
	// entire history
	SumAdditionalChargesByTruckID(ctx context.Context, truckID string) (decimal.Decimal, error)

	// LatestByTruckID returns the most recently inserted payment for a truck,
	// or nil when the truck has none
	LatestByTruckID(ctx context.Context, truckID string) (*domain.LoanPayment, error)

	// DeleteByID removes one payment and reports how many rows matched
	DeleteByID(ctx context.Context, id uuid.UUID) (int64, error)
}

// TruckRepository defines the read-only truck directory
type TruckRepository interface {
	// GetByID retrieves a truck by its ID
	GetByID(ctx context.Context, id string) (*domain.Truck, error)

	// ListFinanced retrieves all trucks carrying a financing balance
	ListFinanced(ctx context.Context) ([]*domain.Truck, error)
}
