package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownRegistrationNo is reported when a payment references a truck the
// directory cannot resolve. A dangling reference degrades to this placeholder
// rather than failing the whole ledger view.
const UnknownRegistrationNo = "Unknown"

// Truck is read-only from the ledger's perspective: FinanceAmount is the
// fixed ceiling that payments accumulate against, never mutated here.
type Truck struct {
	ID             string          `json:"id" db:"id"`
	AddedBy        string          `json:"addedBy" db:"added_by"`
	RegistrationNo string          `json:"registrationNo" db:"registration_no"`
	IsFinanced     bool            `json:"isFinanced" db:"is_financed"`
	FinanceAmount  decimal.Decimal `json:"financeAmount" db:"finance_amount"`
	Make           string          `json:"make,omitempty" db:"make"`
	Model          string          `json:"model,omitempty" db:"model"`
	Year           int             `json:"year,omitempty" db:"year"`
	ChassisNo      string          `json:"chassisNo,omitempty" db:"chassis_no"`
	EngineNo       string          `json:"engineNo,omitempty" db:"engine_no"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
}
