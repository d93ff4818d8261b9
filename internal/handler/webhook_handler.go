package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/service"
	"lending-service/pkg/utils"
)

// WebhookHandler handles payment gateway callbacks
type WebhookHandler struct {
	paymentService service.PaymentService
	logger         *logrus.Logger
	config         *configs.Config
	validate       *validator.Validate
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(paymentService service.PaymentService, logger *logrus.Logger, config *configs.Config) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
		logger:         logger,
		config:         config,
		validate:       validator.New(),
	}
}

// PaymentCallback handles one gateway payment notification. Every
// well-formed callback is answered 200 so the gateway stops retrying;
// rejected and unknown payments are resolved internally, not over HTTP.
func (h *WebhookHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentCallbackRequest
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

	if err := h.paymentService.ProcessCallback(r.Context(), &req); err != nil {
		h.logger.Errorf("Failed to process payment callback %s: %v", req.TxnRef, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "callback processing failed")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "callback accepted", nil)
}
