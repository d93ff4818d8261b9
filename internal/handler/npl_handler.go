package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/service"
	"lending-service/pkg/utils"
)

// NPLHandler handles manual non-performing loan scan requests
type NPLHandler struct {
	nplService service.NPLService
	logger     *logrus.Logger
	config     *configs.Config
}

// NewNPLHandler creates a new NPLHandler
func NewNPLHandler(nplService service.NPLService, logger *logrus.Logger, config *configs.Config) *NPLHandler {
	return &NPLHandler{
		nplService: nplService,
		logger:     logger,
		config:     config,
	}
}

// Run triggers an immediate scan across all providers
func (h *NPLHandler) Run(w http.ResponseWriter, r *http.Request) {
	flagged, err := h.nplService.Run(r.Context())
	if err != nil {
		h.logger.Warnf("Manual NPL scan failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "scan failed")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "scan completed successfully", map[string]interface{}{
		"flagged": flagged,
	})
}
