package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fleetmate/loan-ledger/internal/domain"
	"github.com/fleetmate/loan-ledger/internal/report"
	"github.com/fleetmate/loan-ledger/internal/service"
	customError "github.com/fleetmate/loan-ledger/pkg/errors"
	"github.com/fleetmate/loan-ledger/pkg/utils"
	"github.com/fleetmate/loan-ledger/tests/mocks"
)

func newService(paymentRepo *mocks.MockPaymentRepository, truckRepo *mocks.MockTruckRepository) *service.LedgerService {
	directory := service.NewTruckDirectory(truckRepo, nil, time.Minute)
	return service.NewLedgerService(paymentRepo, directory, report.NewExcelExporter())
}

func payment(truckID, userID, day string, cost, charges int64) *domain.LoanPayment {
	date, _ := utils.ParseDay(day)
	return &domain.LoanPayment{
		ID:                uuid.New(),
		TruckID:           truckID,
		AddedBy:           userID,
		Date:              date,
		Cost:              decimal.NewFromInt(cost),
		AdditionalCharges: decimal.NewFromInt(charges),
		CreatedAt:         time.Now().UTC(),
	}
}

func TestRecordPayment(t *testing.T) {
	tests := []struct {
		name          string
		request       *domain.RecordPaymentRequest
		setupMocks    func(*mocks.MockPaymentRepository)
		expectedError bool
		errorContains string
	}{
		{
			name: "Success - payment appended with fresh id and midnight date",
			request: &domain.RecordPaymentRequest{
				TruckID:           "truck-1",
				AddedBy:           "user-1",
				Date:              "2024-01-02",
				Cost:              decimal.NewFromInt(2000),
				AdditionalCharges: decimal.NewFromInt(100),
				Note:              "  first installment  ",
			},
			setupMocks: func(paymentRepo *mocks.MockPaymentRepository) {
				paymentRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.LoanPayment) bool {
					return p.ID != uuid.Nil &&
						p.TruckID == "truck-1" &&
						p.AddedBy == "user-1" &&
						p.Date.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) &&
						p.Cost.Equal(decimal.NewFromInt(2000)) &&
						p.AdditionalCharges.Equal(decimal.NewFromInt(100)) &&
						p.Note == "first installment"
				})).Return(nil)
			},
		},
		{
			name: "Failure - missing truckId",
			request: &domain.RecordPaymentRequest{
				AddedBy: "user-1",
				Date:    "2024-01-02",
				Cost:    decimal.NewFromInt(2000),
			},
			expectedError: true,
			errorContains: "truckId",
		},
		{
			name: "Failure - missing addedBy",
			request: &domain.RecordPaymentRequest{
				TruckID: "truck-1",
				Date:    "2024-01-02",
				Cost:    decimal.NewFromInt(2000),
			},
			expectedError: true,
			errorContains: "addedBy",
		},
		{
			name: "Failure - missing date",
			request: &domain.RecordPaymentRequest{
				TruckID: "truck-1",
				AddedBy: "user-1",
				Cost:    decimal.NewFromInt(2000),
			},
			expectedError: true,
			errorContains: "date",
		},
		{
			name: "Failure - missing cost",
			request: &domain.RecordPaymentRequest{
				TruckID: "truck-1",
				AddedBy: "user-1",
				Date:    "2024-01-02",
			},
			expectedError: true,
			errorContains: "cost",
		},
		{
			name: "Failure - malformed date",
			request: &domain.RecordPaymentRequest{
				TruckID: "truck-1",
				AddedBy: "user-1",
				Date:    "02/01/2024",
				Cost:    decimal.NewFromInt(2000),
			},
			expectedError: true,
			errorContains: "date",
		},
		{
			name: "Failure - store error",
			request: &domain.RecordPaymentRequest{
				TruckID: "truck-1",
				AddedBy: "user-1",
				Date:    "2024-01-02",
				Cost:    decimal.NewFromInt(2000),
			},
			setupMocks: func(paymentRepo *mocks.MockPaymentRepository) {
				paymentRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
			},
			expectedError: true,
			errorContains: "database",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paymentRepo := new(mocks.MockPaymentRepository)
			truckRepo := new(mocks.MockTruckRepository)
			if tt.setupMocks != nil {
				tt.setupMocks(paymentRepo)
			}

			created, err := newService(paymentRepo, truckRepo).RecordPayment(context.Background(), tt.request)

			if tt.expectedError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Nil(t, created)
			} else {
				require.NoError(t, err)
				require.NotNil(t, created)
				assert.True(t, created.Cost.Equal(tt.request.Cost))
			}
			paymentRepo.AssertExpectations(t)
		})
	}
}

func TestTruckLedger(t *testing.T) {
	truckID := "truck-1"

	t.Run("Aggregates combine filtered rows with unfiltered balance sums", func(t *testing.T) {
		paymentRepo := new(mocks.MockPaymentRepository)
		truckRepo := new(mocks.MockTruckRepository)

		window, err := utils.ParseDateRange("2024-01-01", "2024-01-31")
		require.NoError(t, err)

		filtered := []*domain.LoanPayment{
			payment(truckID, "user-1", "2024-01-10", 2000, 100),
		}
		recent := payment(truckID, "user-1", "2024-02-01", 3000, 0)

		paymentRepo.On("FindByTruckID", mock.Anything, truckID, window).Return(filtered, nil)
		paymentRepo.On("LatestByTruckID", mock.Anything, truckID).Return(recent, nil)
		// History sums span the whole truck, not the window
		paymentRepo.On("SumCostByTruckID", mock.Anything, truckID).Return(decimal.NewFromInt(5000), nil)
		paymentRepo.On("SumAdditionalChargesByTruckID", mock.Anything, truckID).Return(decimal.NewFromInt(100), nil)
		truckRepo.On("GetByID", mock.Anything, truckID).Return(&domain.Truck{
			ID:             truckID,
			RegistrationNo: "KA-01-1234",
			FinanceAmount:  decimal.NewFromInt(10000),
		}, nil)

		ledger, err := newService(paymentRepo, truckRepo).TruckLedger(context.Background(), truckID, window)
		require.NoError(t, err)

		assert.True(t, ledger.TotalCalculation.Equal(decimal.NewFromInt(2000)))
		assert.True(t, ledger.TotalFinanceAmount.Equal(decimal.NewFromInt(10000)))
		assert.True(t, ledger.TotalAdditionalCharges.Equal(decimal.NewFromInt(100)))
		// 10000 + 100 - 5000
		assert.True(t, ledger.PaymentLeft.Equal(decimal.NewFromInt(5100)))
		require.NotNil(t, ledger.RecentPayment)
		assert.Equal(t, recent.ID, ledger.RecentPayment.ID)

		require.Len(t, ledger.Calculations, 1)
		assert.Equal(t, "2024-01-10", ledger.Calculations[0].Date)
		assert.Equal(t, 0, ledger.Calculations[0].Key)
		assert.Empty(t, ledger.Calculations[0].RegistrationNo)
	})

	t.Run("Empty result returns zero aggregates, not an error", func(t *testing.T) {
		paymentRepo := new(mocks.MockPaymentRepository)
		truckRepo := new(mocks.MockTruckRepository)

		paymentRepo.On("FindByTruckID", mock.Anything, truckID, (*utils.DateRange)(nil)).Return([]*domain.LoanPayment{}, nil)
		paymentRepo.On("LatestByTruckID", mock.Anything, truckID).Return(nil, nil)
		paymentRepo.On("SumCostByTruckID", mock.Anything, truckID).Return(decimal.Zero, nil)
		paymentRepo.On("SumAdditionalChargesByTruckID", mock.Anything, truckID).Return(decimal.Zero, nil)
		truckRepo.On("GetByID", mock.Anything, truckID).Return(nil, sql.ErrNoRows)

		ledger, err := newService(paymentRepo, truckRepo).TruckLedger(context.Background(), truckID, nil)
		require.NoError(t, err)

		assert.Empty(t, ledger.Calculations)
		assert.True(t, ledger.TotalCalculation.IsZero())
		assert.True(t, ledger.PaymentLeft.IsZero())
		assert.Nil(t, ledger.RecentPayment)
	})

	t.Run("Missing truck degrades finance amount to zero", func(t *testing.T) {
		paymentRepo := new(mocks.MockPaymentRepository)
		truckRepo := new(mocks.MockTruckRepository)

		paymentRepo.On("FindByTruckID", mock.Anything, truckID, (*utils.DateRange)(nil)).Return([]*domain.LoanPayment{
			payment(truckID, "user-1", "2024-01-10", 2000, 0),
		}, nil)
		paymentRepo.On("LatestByTruckID", mock.Anything, truckID).Return(nil, nil)
		paymentRepo.On("SumCostByTruckID", mock.Anything, truckID).Return(decimal.NewFromInt(2000), nil)
		paymentRepo.On("SumAdditionalChargesByTruckID", mock.Anything, truckID).Return(decimal.Zero, nil)
		truckRepo.On("GetByID", mock.Anything, truckID).Return(nil, sql.ErrNoRows)

		ledger, err := newService(paymentRepo, truckRepo).TruckLedger(context.Background(), truckID, nil)
		require.NoError(t, err)

		assert.True(t, ledger.TotalFinanceAmount.IsZero())
		assert.True(t, ledger.PaymentLeft.Equal(decimal.NewFromInt(-2000)))
	})

	t.Run("Missing truckId is a validation error", func(t *testing.T) {
		svc := newService(new(mocks.MockPaymentRepository), new(mocks.MockTruckRepository))

		_, err := svc.TruckLedger(context.Background(), "", nil)

		var businessErr *customError.BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, customError.ErrCodeValidation, businessErr.Code)
	})

	t.Run("Store failure surfaces as database error", func(t *testing.T) {
		paymentRepo := new(mocks.MockPaymentRepository)
		paymentRepo.On("FindByTruckID", mock.Anything, truckID, (*utils.DateRange)(nil)).Return(nil, errors.New("connection reset"))

		_, err := newService(paymentRepo, new(mocks.MockTruckRepository)).TruckLedger(context.Background(), truckID, nil)

		var businessErr *customError.BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, customError.ErrCodeDatabaseError, businessErr.Code)
	})
}

func TestUserLedger(t *testing.T) {
	userID := "user-1"

	t.Run("Rows are annotated with registration numbers", func(t *testing.T) {
		paymentRepo := new(mocks.MockPaymentRepository)
		truckRepo := new(mocks.MockTruckRepository)

		rows := []*domain.LoanPayment{
			payment("truck-1", userID, "2024-01-02", 2000, 0),
			payment("truck-2", userID, "2024-01-03", 3000, 0),
		}
		paymentRepo.On("FindByUserID", mock.Anything, userID, (*utils.DateRange)(nil)).Return(rows, nil)
		truckRepo.On("GetByID", mock.Anything, "truck-1").Return(&domain.Truck{ID: "truck-1", RegistrationNo: "KA-01-1234"}, nil)
		truckRepo.On("GetByID", mock.Anything, "truck-2").Return(nil, sql.ErrNoRows)

		ledger, err := newService(paymentRepo, truckRepo).UserLedger(context.Background(), userID, nil)
		require.NoError(t, err)

		assert.True(t, ledger.TotalCalculation.Equal(decimal.NewFromInt(5000)))
		require.Len(t, ledger.Calculations, 2)
		assert.Equal(t, "KA-01-1234", ledger.Calculations[0].RegistrationNo)
		assert.Equal(t, domain.UnknownRegistrationNo, ledger.Calculations[1].RegistrationNo)
		assert.Equal(t, 0, ledger.Calculations[0].Key)
		assert.Equal(t, 1, ledger.Calculations[1].Key)
	})

	t.Run("Empty result is not found", func(t *testing.T) {
		paymentRepo := new(mocks.MockPaymentRepository)
		paymentRepo.On("FindByUserID", mock.Anything, userID, (*utils.DateRange)(nil)).Return([]*domain.LoanPayment{}, nil)

		_, err := newService(paymentRepo, new(mocks.MockTruckRepository)).UserLedger(context.Background(), userID, nil)

		var businessErr *customError.BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, customError.ErrCodeNotFound, businessErr.Code)
	})

	t.Run("Missing userId is a validation error", func(t *testing.T) {
		svc := newService(new(mocks.MockPaymentRepository), new(mocks.MockTruckRepository))

		_, err := svc.UserLedger(context.Background(), "", nil)

		var businessErr *customError.BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, customError.ErrCodeValidation, businessErr.Code)
	})
}

func TestDeletePayment(t *testing.T) {
	t.Run("Malformed id is a validation error", func(t *testing.T) {
		svc := newService(new(mocks.MockPaymentRepository), new(mocks.MockTruckRepository))

		err := svc.DeletePayment(context.Background(), "not-a-uuid")

		var businessErr *customError.BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, customError.ErrCodeValidation, businessErr.Code)
	})

	t.Run("Unknown id is not found, and stays not found on retry", func(t *testing.T) {
		id := uuid.New()
		paymentRepo := new(mocks.MockPaymentRepository)
		paymentRepo.On("DeleteByID", mock.Anything, id).Return(int64(0), nil)

		svc := newService(paymentRepo, new(mocks.MockTruckRepository))

		for i := 0; i < 2; i++ {
			err := svc.DeletePayment(context.Background(), id.String())
			var businessErr *customError.BusinessError
			require.ErrorAs(t, err, &businessErr)
			assert.Equal(t, customError.ErrCodeNotFound, businessErr.Code)
		}
	})

	t.Run("Success removes exactly one record", func(t *testing.T) {
		id := uuid.New()
		paymentRepo := new(mocks.MockPaymentRepository)
		paymentRepo.On("DeleteByID", mock.Anything, id).Return(int64(1), nil)

		err := newService(paymentRepo, new(mocks.MockTruckRepository)).DeletePayment(context.Background(), id.String())
		assert.NoError(t, err)
		paymentRepo.AssertExpectations(t)
	})
}

func TestReports(t *testing.T) {
	truckID := "truck-1"
	userID := "user-1"

	window, err := utils.ParseDateRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)

	t.Run("Truck report requires a date range", func(t *testing.T) {
		svc := newService(new(mocks.MockPaymentRepository), new(mocks.MockTruckRepository))

		_, err := svc.TruckReport(context.Background(), truckID, nil)

		var businessErr *customError.BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, customError.ErrCodeReportRangeRequired, businessErr.Code)
	})

	t.Run("User report requires a date range", func(t *testing.T) {
		svc := newService(new(mocks.MockPaymentRepository), new(mocks.MockTruckRepository))

		_, err := svc.UserReport(context.Background(), userID, nil)

		var businessErr *customError.BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, customError.ErrCodeReportRangeRequired, businessErr.Code)
	})

	t.Run("Empty truck result produces no workbook", func(t *testing.T) {
		paymentRepo := new(mocks.MockPaymentRepository)
		paymentRepo.On("FindByTruckID", mock.Anything, truckID, window).Return([]*domain.LoanPayment{}, nil)

		_, err := newService(paymentRepo, new(mocks.MockTruckRepository)).TruckReport(context.Background(), truckID, window)

		var businessErr *customError.BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, customError.ErrCodeReportEmpty, businessErr.Code)
	})

	t.Run("Empty user result produces no workbook", func(t *testing.T) {
		paymentRepo := new(mocks.MockPaymentRepository)
		paymentRepo.On("FindByUserID", mock.Anything, userID, window).Return([]*domain.LoanPayment{}, nil)

		_, err := newService(paymentRepo, new(mocks.MockTruckRepository)).UserReport(context.Background(), userID, window)

		var businessErr *customError.BusinessError
		require.ErrorAs(t, err, &businessErr)
		assert.Equal(t, customError.ErrCodeReportEmpty, businessErr.Code)
	})

	t.Run("Truck report renders workbook bytes", func(t *testing.T) {
		paymentRepo := new(mocks.MockPaymentRepository)
		truckRepo := new(mocks.MockTruckRepository)

		paymentRepo.On("FindByTruckID", mock.Anything, truckID, window).Return([]*domain.LoanPayment{
			payment(truckID, userID, "2024-01-10", 2000, 100),
		}, nil)
		truckRepo.On("GetByID", mock.Anything, truckID).Return(&domain.Truck{ID: truckID, RegistrationNo: "KA-01-1234"}, nil)

		workbook, err := newService(paymentRepo, truckRepo).TruckReport(context.Background(), truckID, window)
		require.NoError(t, err)
		assert.NotEmpty(t, workbook)
	})

	t.Run("User report renders workbook bytes", func(t *testing.T) {
		paymentRepo := new(mocks.MockPaymentRepository)
		truckRepo := new(mocks.MockTruckRepository)

		paymentRepo.On("FindByUserID", mock.Anything, userID, window).Return([]*domain.LoanPayment{
			payment(truckID, userID, "2024-01-10", 2000, 0),
		}, nil)
		truckRepo.On("GetByID", mock.Anything, truckID).Return(&domain.Truck{ID: truckID, RegistrationNo: "KA-01-1234"}, nil)

		workbook, err := newService(paymentRepo, truckRepo).UserReport(context.Background(), userID, window)
		require.NoError(t, err)
		assert.NotEmpty(t, workbook)
	})
}
