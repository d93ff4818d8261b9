package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/service"
	"lending-service/pkg/utils"
)

// LoanHandler handles loan-related HTTP requests
type LoanHandler struct {
	loanService    service.LoanService
	accrualService service.AccrualService
	paymentService service.PaymentService
	logger         *logrus.Logger
	config         *configs.Config
	validate       *validator.Validate
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService service.LoanService, accrualService service.AccrualService, paymentService service.PaymentService, logger *logrus.Logger, config *configs.Config) *LoanHandler {
	return &LoanHandler{
		loanService:    loanService,
		accrualService: accrualService,
		paymentService: paymentService,
		logger:         logger,
		config:         config,
		validate:       validator.New(),
	}
}

// Disburse handles loan disbursement
func (h *LoanHandler) Disburse(w http.ResponseWriter, r *http.Request) {
	var req models.DisburseRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	loan, err := h.loanService.Disburse(r.Context(), &req)
	if err != nil {
		h.logger.Warnf("Failed to disburse loan: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "loan disbursed successfully", loan)
}

// GetByID handles retrieving a specific loan by ID
func (h *LoanHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	loanID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid loan ID")
		return
	}

	loan, err := h.loanService.GetByID(r.Context(), loanID)
	if err != nil {
		h.logger.Warnf("Failed to get loan: %v", err)
		utils.RespondWithError(w, http.StatusNotFound, "loan not found")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "loan retrieved successfully", loan)
}

// Outstanding handles retrieving the owed breakdown for a loan, optionally as
// of a given date (as_of query parameter, RFC 3339)
func (h *LoanHandler) Outstanding(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	loanID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid loan ID")
		return
	}

	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		asOf, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid as_of date, expected RFC 3339")
			return
		}
	}

	statement, err := h.accrualService.Outstanding(r.Context(), loanID, asOf)
	if err != nil {
		h.logger.Warnf("Failed to compute outstanding: %v", err)
		utils.RespondWithError(w, http.StatusNotFound, "loan not found")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "outstanding retrieved successfully", statement)
}

// InitiatePayment registers an expected gateway payment for a loan
func (h *LoanHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	loanID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid loan ID")
		return
	}

	pending, err := h.paymentService.Initiate(r.Context(), loanID)
	if err != nil {
		h.logger.Warnf("Failed to initiate payment: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "payment initiated successfully", pending)
}
