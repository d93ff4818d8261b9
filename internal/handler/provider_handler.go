package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/service"
	"lending-service/pkg/utils"
)

// ProviderHandler handles provider-related HTTP requests
type ProviderHandler struct {
	ledgerService service.LedgerService
	logger        *logrus.Logger
	config        *configs.Config
}

// NewProviderHandler creates a new ProviderHandler
func NewProviderHandler(ledgerService service.LedgerService, logger *logrus.Logger, config *configs.Config) *ProviderHandler {
	return &ProviderHandler{
		ledgerService: ledgerService,
		logger:        logger,
		config:        config,
	}
}

// TrialBalance handles retrieving a provider's chart of accounts with
// current balances
func (h *ProviderHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	providerID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid provider ID")
		return
	}

	accounts, err := h.ledgerService.TrialBalance(r.Context(), providerID)
	if err != nil {
		h.logger.Warnf("Failed to get trial balance: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get trial balance")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "trial balance retrieved successfully", accounts)
}
