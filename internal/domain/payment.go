package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanPayment is one recorded charge against a truck's financing balance.
// Records are append-only: created once, deleted explicitly, never updated.
// Date is the calendar day the payment applies to, stored at midnight UTC;
// CreatedAt is the insertion timestamp and only orders "most recent payment".
type LoanPayment struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	TruckID           string          `json:"truckId" db:"truck_id"`
	AddedBy           string          `json:"addedBy" db:"added_by"`
	Date              time.Time       `json:"date" db:"date"`
	Cost              decimal.Decimal `json:"cost" db:"cost"`
	AdditionalCharges decimal.Decimal `json:"additionalCharges" db:"additional_charges"`
	Note              string          `json:"note,omitempty" db:"note"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
}

// DTOs for requests and responses

type RecordPaymentRequest struct {
	TruckID           string          `json:"truckId" validate:"required"`
	AddedBy           string          `json:"addedBy" validate:"required"`
	Date              string          `json:"date" validate:"required"`
	Cost              decimal.Decimal `json:"cost" validate:"required"`
	AdditionalCharges decimal.Decimal `json:"additionalCharges"`
	Note              string          `json:"note"`
}
