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

// BorrowerHandler handles borrower-related HTTP requests
type BorrowerHandler struct {
	scoringService service.ScoringService
	logger         *logrus.Logger
	config         *configs.Config
}

// NewBorrowerHandler creates a new BorrowerHandler
func NewBorrowerHandler(scoringService service.ScoringService, logger *logrus.Logger, config *configs.Config) *BorrowerHandler {
	return &BorrowerHandler{
		scoringService: scoringService,
		logger:         logger,
		config:         config,
	}
}

// Eligibility handles checking a borrower's eligibility for a product. An
// ineligible borrower is still a 200 with the reason in the body; only a
// check that could not run is an error.
func (h *BorrowerHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	borrowerID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid borrower ID")
		return
	}

	productID, err := strconv.Atoi(r.URL.Query().Get("product_id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid or missing product_id")
		return
	}

	result, err := h.scoringService.EvaluateEligibility(r.Context(), borrowerID, productID)
	if err != nil {
		h.logger.Warnf("Failed to evaluate eligibility: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "eligibility evaluated successfully", result)
}
