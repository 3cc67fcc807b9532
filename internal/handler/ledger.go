package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/fleetmate/loan-ledger/internal/domain"
	"github.com/fleetmate/loan-ledger/internal/service"
	customError "github.com/fleetmate/loan-ledger/pkg/errors"
	"github.com/fleetmate/loan-ledger/pkg/response"
	"github.com/fleetmate/loan-ledger/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type LedgerHandler struct {
	service   *service.LedgerService
	validator *validator.Validate
}

func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	v := validator.New()

	// Report violations by json field name, matching the wire contract
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &LedgerHandler{
		service:   ledgerService,
		validator: v,
	}
}

// AddLoanCalculation handles POST /addLoanCalculation
func (h *LedgerHandler) AddLoanCalculation(w http.ResponseWriter, r *http.Request) {
	var request domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		var violations validator.ValidationErrors
		if errors.As(err, &violations) && len(violations) > 0 {
			response.BadRequest(w, violations[0].Field()+" is required", customError.ErrMissingField)
			return
		}
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), &request)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, payment)
}

// GetAllLoanCalculationsByTruckID handles GET /getAllLoanCalculationsByTruckId
func (h *LedgerHandler) GetAllLoanCalculationsByTruckID(w http.ResponseWriter, r *http.Request) {
	truckID := r.URL.Query().Get("truckId")
	if truckID == "" {
		response.BadRequest(w, "Truck ID is required", nil)
		return
	}

	window, err := selectedDates(r)
	if err != nil {
		response.BadRequest(w, "Invalid selectedDates", err)
		return
	}

	ledger, err := h.service.TruckLedger(r.Context(), truckID, window)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, ledger)
}

// GetAllLoanCalculationsByUserID handles GET /getAllLoanCalculationsByUserId
func (h *LedgerHandler) GetAllLoanCalculationsByUserID(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		response.BadRequest(w, "User ID is required", nil)
		return
	}

	window, err := selectedDates(r)
	if err != nil {
		response.BadRequest(w, "Invalid selectedDates", err)
		return
	}

	ledger, err := h.service.UserLedger(r.Context(), userID, window)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, ledger)
}

// DeleteLoanCalculationByID handles DELETE /deleteLoanCalculationById/{id}
func (h *LedgerHandler) DeleteLoanCalculationByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.DeletePayment(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Calculation deleted"})
}

// DownloadLoanCalculationExcel handles GET /downloadLoanCalculationExcel
func (h *LedgerHandler) DownloadLoanCalculationExcel(w http.ResponseWriter, r *http.Request) {
	truckID := r.URL.Query().Get("truckId")
	if truckID == "" {
		response.BadRequest(w, "Truck ID is required", nil)
		return
	}

	window, err := selectedDates(r)
	if err != nil {
		response.BadRequest(w, "Invalid selectedDates", err)
		return
	}

	workbook, err := h.service.TruckReport(r.Context(), truckID, window)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeWorkbook(w, workbook)
}

// DownloadAllLoanCalculationExcel handles GET /downloadAllLoanCalculationExcel
func (h *LedgerHandler) DownloadAllLoanCalculationExcel(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		response.BadRequest(w, "User ID is required", nil)
		return
	}

	window, err := selectedDates(r)
	if err != nil {
		response.BadRequest(w, "Invalid selectedDates", err)
		return
	}

	workbook, err := h.service.UserReport(r.Context(), userID, window)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeWorkbook(w, workbook)
}

func writeWorkbook(w http.ResponseWriter, workbook []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=loanCalculations.xlsx")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(workbook); err != nil {
		log.Printf("Error writing workbook response: %v", err)
	}
}

// selectedDates reads the optional two-element date window. The parameter is
// accepted both repeated (?selectedDates=a&selectedDates=b) and
// comma-joined (?selectedDates=a,b).
func selectedDates(r *http.Request) (*utils.DateRange, error) {
	values := r.URL.Query()["selectedDates"]
	if len(values) == 1 && strings.Contains(values[0], ",") {
		values = strings.SplitN(values[0], ",", 2)
	}

	switch len(values) {
	case 0:
		return nil, nil
	case 2:
		return utils.ParseDateRange(values[0], values[1])
	default:
		return nil, errors.New("selectedDates must supply a start and an end date")
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Store failures are
// logged with their cause and surfaced as generic server errors.
func (h *LedgerHandler) writeError(w http.ResponseWriter, err error) {
	var businessErr *customError.BusinessError
	if !errors.As(err, &businessErr) {
		log.Printf("Unexpected error: %v", err)
		response.InternalServerError(w, "Internal server error", nil)
		return
	}

	switch businessErr.Code {
	case customError.ErrCodeValidation, customError.ErrCodeReportRangeRequired:
		response.BadRequest(w, businessErr.Message, nil)
	case customError.ErrCodeNotFound, customError.ErrCodeReportEmpty:
		response.NotFound(w, businessErr.Message)
	default:
		log.Printf("%s: %v", businessErr.Message, businessErr.Err)
		response.InternalServerError(w, businessErr.Message, nil)
	}
}
