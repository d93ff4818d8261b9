package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-service/configs"
	"lending-service/internal/models"
)

type fakePaymentService struct {
	err   error
	calls []*models.PaymentCallbackRequest
}

func (f *fakePaymentService) Initiate(ctx context.Context, loanID int) (*models.PendingPayment, error) {
	return &models.PendingPayment{LoanID: loanID}, f.err
}

func (f *fakePaymentService) ProcessCallback(ctx context.Context, req *models.PaymentCallbackRequest) error {
	f.calls = append(f.calls, req)
	return f.err
}

func newWebhookTestHandler(svc *fakePaymentService) *WebhookHandler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewWebhookHandler(svc, logger, &configs.Config{})
}

func TestPaymentCallback(t *testing.T) {
	svc := &fakePaymentService{}
	h := newWebhookTestHandler(svc)

	body := `{"txnRef":"txn-1","paidAmount":150.25,"paidByNumber":"+254700000000","accountNo":"LN-10"}`
	req := httptest.NewRequest(http.MethodPost, "/callbacks/payments", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.PaymentCallback(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.calls, 1)
	assert.Equal(t, "txn-1", svc.calls[0].TxnRef)
	assert.Equal(t, "150.25", svc.calls[0].PaidAmount.String())
}

func TestPaymentCallback_MalformedBody(t *testing.T) {
	svc := &fakePaymentService{}
	h := newWebhookTestHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/callbacks/payments", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.PaymentCallback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.calls, "service must not see malformed callbacks")
}

func TestPaymentCallback_MissingTxnRef(t *testing.T) {
	svc := &fakePaymentService{}
	h := newWebhookTestHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/callbacks/payments", strings.NewReader(`{"paidAmount":100}`))
	rec := httptest.NewRecorder()

	h.PaymentCallback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.calls)
}

func TestPaymentCallback_ServiceFailure(t *testing.T) {
	svc := &fakePaymentService{err: errors.New("db down")}
	h := newWebhookTestHandler(svc)

	body := `{"txnRef":"txn-1","paidAmount":100}`
	req := httptest.NewRequest(http.MethodPost, "/callbacks/payments", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.PaymentCallback(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
