package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRow is one formatted payment in a ledger response: calendar date as
// YYYY-MM-DD and a 0-based key for client-side list rendering. RegistrationNo
// is populated only at user scope, where rows span multiple trucks.
type PaymentRow struct {
	ID                uuid.UUID       `json:"id"`
	TruckID           string          `json:"truckId"`
	AddedBy           string          `json:"addedBy"`
	Date              string          `json:"date"`
	Cost              decimal.Decimal `json:"cost"`
	AdditionalCharges decimal.Decimal `json:"additionalCharges"`
	Note              string          `json:"note,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	RegistrationNo    string          `json:"registrationNo,omitempty"`
	Key               int             `json:"key"`
}

// TruckLedgerResponse is the per-truck aggregate view. TotalCalculation sums
// cost over the date-filtered rows only; TotalAdditionalCharges and
// PaymentLeft are computed over the truck's entire payment history,
// independent of the filter.
type TruckLedgerResponse struct {
	Calculations           []PaymentRow    `json:"calculations"`
	TotalCalculation       decimal.Decimal `json:"totalCalculation"`
	TotalFinanceAmount     decimal.Decimal `json:"totalFinanceAmount"`
	RecentPayment          *LoanPayment    `json:"recentPayment"`
	PaymentLeft            decimal.Decimal `json:"paymentLeft"`
	TotalAdditionalCharges decimal.Decimal `json:"totalAdditionalCharges"`
}

// UserLedgerResponse is the per-user view: rows across trucks with resolved
// registration numbers. No finance or balance fields apply at this scope.
type UserLedgerResponse struct {
	Calculations     []PaymentRow    `json:"calculations"`
	TotalCalculation decimal.Decimal `json:"totalCalculation"`
}
