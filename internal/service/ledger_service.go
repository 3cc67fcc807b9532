package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetmate/loan-ledger/internal/domain"
	"github.com/fleetmate/loan-ledger/internal/report"
	"github.com/fleetmate/loan-ledger/internal/repository"
	customError "github.com/fleetmate/loan-ledger/pkg/errors"
	"github.com/fleetmate/loan-ledger/pkg/utils"
)

// LedgerService is the balance aggregator: it turns the payment log into
// per-truck and per-user views and renders them for export. Totals are
// recomputed from the store on every call, never cached.
type LedgerService struct {
	Payments repository.PaymentRepository
	Trucks   *TruckDirectory
	Exporter report.Exporter
}

func NewLedgerService(
	payments repository.PaymentRepository,
	trucks *TruckDirectory,
	exporter report.Exporter,
) *LedgerService {
	return &LedgerService{
		Payments: payments,
		Trucks:   trucks,
		Exporter: exporter,
	}
}

// RecordPayment validates and appends one payment. Insertion touches no
// other record: balances are derived fresh at read time.
func (s *LedgerService) RecordPayment(ctx context.Context, request *domain.RecordPaymentRequest) (*domain.LoanPayment, error) {
	switch {
	case request.TruckID == "":
		return nil, customError.WrapMissingField("truckId")
	case request.AddedBy == "":
		return nil, customError.WrapMissingField("addedBy")
	case request.Date == "":
		return nil, customError.WrapMissingField("date")
	case request.Cost.IsZero():
		return nil, customError.WrapMissingField("cost")
	}

	day, err := utils.ParseDay(request.Date)
	if err != nil {
		return nil, customError.WrapInvalidField("date", err)
	}

	payment := &domain.LoanPayment{
		ID:                uuid.New(),
		TruckID:           request.TruckID,
		AddedBy:           request.AddedBy,
		Date:              utils.StartOfDay(day),
		Cost:              request.Cost,
		AdditionalCharges: request.AdditionalCharges,
		Note:              strings.TrimSpace(request.Note),
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.Payments.Create(ctx, payment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return payment, nil
}

// TruckLedger computes the per-truck aggregate view. TotalCalculation covers
// the window only; the balance fields and RecentPayment always cover the
// truck's full history, matching the application's display contract.
func (s *LedgerService) TruckLedger(ctx context.Context, truckID string, window *utils.DateRange) (*domain.TruckLedgerResponse, error) {
	if truckID == "" {
		return nil, customError.WrapMissingField("truckId")
	}

	payments, err := s.Payments.FindByTruckID(ctx, truckID, window)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	totalCalculation := decimal.Zero
	for _, payment := range payments {
		totalCalculation = totalCalculation.Add(payment.Cost)
	}

	// A truck the directory cannot resolve contributes a zero finance amount
	// rather than failing the view
	financeAmount := decimal.Zero
	if truck, err := s.Trucks.GetByID(ctx, truckID); err == nil && truck != nil {
		financeAmount = truck.FinanceAmount
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Printf("truck lookup failed for %s: %v", truckID, err)
	}

	recentPayment, err := s.Payments.LatestByTruckID(ctx, truckID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	totalPaid, err := s.Payments.SumCostByTruckID(ctx, truckID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	totalAdditionalCharges, err := s.Payments.SumAdditionalChargesByTruckID(ctx, truckID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.TruckLedgerResponse{
		Calculations:           formatPayments(payments, nil),
		TotalCalculation:       totalCalculation,
		TotalFinanceAmount:     financeAmount,
		RecentPayment:          recentPayment,
		PaymentLeft:            financeAmount.Add(totalAdditionalCharges).Sub(totalPaid),
		TotalAdditionalCharges: totalAdditionalCharges,
	}, nil
}

// UserLedger computes the cross-truck view for one user. Unlike the truck
// view, an empty result is a not-found condition.
func (s *LedgerService) UserLedger(ctx context.Context, userID string, window *utils.DateRange) (*domain.UserLedgerResponse, error) {
	if userID == "" {
		return nil, customError.WrapMissingField("userId")
	}

	payments, err := s.Payments.FindByUserID(ctx, userID, window)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if len(payments) == 0 {
		return nil, customError.WrapUserLedgerEmpty(userID)
	}

	totalCalculation := decimal.Zero
	for _, payment := range payments {
		totalCalculation = totalCalculation.Add(payment.Cost)
	}

	return &domain.UserLedgerResponse{
		Calculations:     formatPayments(payments, s.registrationResolver(ctx)),
		TotalCalculation: totalCalculation,
	}, nil
}

// DeletePayment removes exactly one payment. Retrying after a successful
// delete reports not-found again.
func (s *LedgerService) DeletePayment(ctx context.Context, id string) error {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return customError.WrapInvalidPaymentID(id)
	}

	deleted, err := s.Payments.DeleteByID(ctx, paymentID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if deleted == 0 {
		return customError.WrapPaymentNotFound(id)
	}

	return nil
}

// TruckReport renders the single-truck spreadsheet. Both date bounds are
// required to label the header, and an empty row set produces no workbook.
func (s *LedgerService) TruckReport(ctx context.Context, truckID string, window *utils.DateRange) ([]byte, error) {
	if truckID == "" {
		return nil, customError.WrapMissingField("truckId")
	}
	if window == nil {
		return nil, customError.WrapMissingDateRange()
	}

	payments, err := s.Payments.FindByTruckID(ctx, truckID, window)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if len(payments) == 0 {
		return nil, customError.WrapEmptyReport("truck")
	}

	registrationNo := domain.UnknownRegistrationNo
	if truck, err := s.Trucks.GetByID(ctx, truckID); err == nil && truck != nil {
		registrationNo = truck.RegistrationNo
	}

	rows := make([][]interface{}, 0, len(payments))
	for _, payment := range payments {
		rows = append(rows, []interface{}{
			utils.FormatDay(payment.Date),
			payment.Cost.InexactFloat64(),
			payment.AdditionalCharges.InexactFloat64(),
			payment.Note,
		})
	}

	sheet := report.Sheet{
		Name:    "Loan Calculations",
		Header:  fmt.Sprintf("%s - Loan Calculations ( %s - %s )", registrationNo, utils.FormatDay(window.Start), utils.FormatDay(window.End)),
		Columns: []string{"Date", "Cost", "Additional Charges", "Note"},
		Rows:    rows,
	}

	return s.Exporter.Export(sheet)
}

// UserReport renders the cross-truck spreadsheet for one user. Additional
// charges are not a column at this scope.
func (s *LedgerService) UserReport(ctx context.Context, userID string, window *utils.DateRange) ([]byte, error) {
	if userID == "" {
		return nil, customError.WrapMissingField("userId")
	}
	if window == nil {
		return nil, customError.WrapMissingDateRange()
	}

	payments, err := s.Payments.FindByUserID(ctx, userID, window)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if len(payments) == 0 {
		return nil, customError.WrapEmptyReport("user")
	}

	resolve := s.registrationResolver(ctx)

	rows := make([][]interface{}, 0, len(payments))
	for _, payment := range payments {
		rows = append(rows, []interface{}{
			utils.FormatDay(payment.Date),
			resolve(payment.TruckID),
			payment.Cost.InexactFloat64(),
			payment.Note,
		})
	}

	sheet := report.Sheet{
		Name:    "Loan Calculations",
		Header:  fmt.Sprintf("Loan Calculations ( %s - %s )", utils.FormatDay(window.Start), utils.FormatDay(window.End)),
		Columns: []string{"Date", "Registration No", "Cost", "Note"},
		Rows:    rows,
	}

	return s.Exporter.Export(sheet)
}

// registrationResolver resolves registration numbers through the directory,
// degrading to a placeholder when the truck is missing or the lookup fails.
func (s *LedgerService) registrationResolver(ctx context.Context) func(truckID string) string {
	return func(truckID string) string {
		truck, err := s.Trucks.GetByID(ctx, truckID)
		if err != nil || truck == nil {
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				log.Printf("truck lookup failed for %s: %v", truckID, err)
			}
			return domain.UnknownRegistrationNo
		}
		return truck.RegistrationNo
	}
}

// formatPayments shapes records for API responses: YYYY-MM-DD dates and a
// 0-based key per row. A non-nil resolver annotates each row with its
// truck's registration number.
func formatPayments(payments []*domain.LoanPayment, resolve func(truckID string) string) []domain.PaymentRow {
	rows := make([]domain.PaymentRow, 0, len(payments))
	for i, payment := range payments {
		row := domain.PaymentRow{
			ID:                payment.ID,
			TruckID:           payment.TruckID,
			AddedBy:           payment.AddedBy,
			Date:              utils.FormatDay(payment.Date),
			Cost:              payment.Cost,
			AdditionalCharges: payment.AdditionalCharges,
			Note:              payment.Note,
			CreatedAt:         payment.CreatedAt,
			Key:               i,
		}
		if resolve != nil {
			row.RegistrationNo = resolve(payment.TruckID)
		}
		rows = append(rows, row)
	}
	return rows
}
