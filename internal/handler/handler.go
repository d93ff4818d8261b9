package handler

import (
	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/service"
)

// Dependencies contains handler dependencies
type Dependencies struct {
	Services *service.Service
	Logger   *logrus.Logger
	Config   *configs.Config
}

// Handler contains all HTTP handlers for the application
type Handler struct {
	Loan     *LoanHandler
	Borrower *BorrowerHandler
	Provider *ProviderHandler
	Webhook  *WebhookHandler
	NPL      *NPLHandler
}

// NewHandler creates a new Handler with all subhandlers
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		Loan:     NewLoanHandler(deps.Services.Loan, deps.Services.Accrual, deps.Services.Payment, deps.Logger, deps.Config),
		Borrower: NewBorrowerHandler(deps.Services.Scoring, deps.Logger, deps.Config),
		Provider: NewProviderHandler(deps.Services.Ledger, deps.Logger, deps.Config),
		Webhook:  NewWebhookHandler(deps.Services.Payment, deps.Logger, deps.Config),
		NPL:      NewNPLHandler(deps.Services.NPL, deps.Logger, deps.Config),
	}
}
