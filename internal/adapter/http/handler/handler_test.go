package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"checkout-gateway/internal/core/domain"
	"checkout-gateway/internal/core/ports"
	"checkout-gateway/internal/core/ports/mocks"
	"checkout-gateway/pkg/apperror"
	"checkout-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type routerMocks struct {
	checkout  *mocks.MockCheckoutService
	webhook   *mocks.MockWebhookProcessor
	reporting *mocks.MockReportingService
}

func newTestRouter(ctrl *gomock.Controller, checkers ...ports.HealthChecker) (*gin.Engine, routerMocks) {
	m := routerMocks{
		checkout:  mocks.NewMockCheckoutService(ctrl),
		webhook:   mocks.NewMockWebhookProcessor(ctrl),
		reporting: mocks.NewMockReportingService(ctrl),
	}
	r := SetupRouter(RouterDeps{
		CheckoutSvc:    m.checkout,
		WebhookSvc:     m.webhook,
		ReportingSvc:   m.reporting,
		HealthCheckers: checkers,
		Logger:         logger.NewWithWriter("error", io.Discard),
		StartTime:      time.Now(),
	})
	return r, m
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCheckoutHandler_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, m := newTestRouter(ctrl)

	checkoutID := uuid.New()
	expiresAt := time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC)
	m.checkout.EXPECT().Checkout(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, input ports.CheckoutInput) (*ports.CheckoutResult, error) {
			assert.True(t, input.Amount.Equal(decimal.NewFromFloat(49.99)))
			assert.Equal(t, "buyer@example.com", input.Email)
			return &ports.CheckoutResult{
				PaymentURL: "https://pay.example.com/pay/ABCD1234",
				CheckoutID: checkoutID,
				ExpiresAt:  expiresAt,
			}, nil
		})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout",
		bytes.NewReader([]byte(`{"amount":49.99,"email":"buyer@example.com"}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "https://pay.example.com/pay/ABCD1234", data["payment_url"])
	assert.Equal(t, checkoutID.String(), data["checkout_id"])
	assert.Equal(t, "2026-03-01T10:15:00Z", data["expires_at"])
}

func TestCheckoutHandler_MalformedJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, _ := newTestRouter(ctrl)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
}

func TestCheckoutHandler_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, m := newTestRouter(ctrl)

	m.checkout.EXPECT().Checkout(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ValidationField("amount", "must be greater than zero"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout",
		bytes.NewReader([]byte(`{"amount":-1,"email":"buyer@example.com"}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "invalid amount: must be greater than zero", body["error"])
}

func TestWebhookHandler_Accepted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, m := newTestRouter(ctrl)

	payload := []byte(`{"id":"wh-1","type":"charge:confirmed"}`)
	m.webhook.EXPECT().Process(gomock.Any(), payload, "sig-abc").Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewReader(payload))
	req.Header.Set(HeaderWebhookSignature, "sig-abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestWebhookHandler_InvalidSignature(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, m := newTestRouter(ctrl)

	m.webhook.EXPECT().Process(gomock.Any(), gomock.Any(), "").
		Return(apperror.ErrInvalidSignature())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewReader([]byte(`{}`)))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
}

func TestTransactionHandler_List_Pagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, m := newTestRouter(ctrl)

	txns := make([]domain.Transaction, 10)
	for i := range txns {
		txns[i] = domain.Transaction{
			ID:         uuid.New(),
			CheckoutID: uuid.New(),
			Status:     domain.StatusPending,
			Amount:     decimal.NewFromInt(int64(i + 1)),
			Currency:   "USD",
		}
	}
	m.reporting.EXPECT().ListTransactions(gomock.Any(), ports.TransactionListParams{Page: 2, PageSize: 10}).
		Return(txns, int64(25), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/transactions?page=2&limit=10", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	assert.Len(t, data["transactions"], 10)

	p := data["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), p["page"])
	assert.Equal(t, float64(10), p["limit"])
	assert.Equal(t, float64(25), p["total"])
	assert.Equal(t, float64(3), p["totalPages"])
	assert.Equal(t, true, p["hasNext"])
	assert.Equal(t, true, p["hasPrev"])
}

func TestTransactionHandler_List_Filters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, m := newTestRouter(ctrl)

	status := domain.StatusCompleted
	email := "buyer@example.com"
	m.reporting.EXPECT().ListTransactions(gomock.Any(), ports.TransactionListParams{
		Status:   &status,
		Email:    &email,
		Page:     1,
		PageSize: 20,
	}).Return(nil, int64(0), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/transactions?status=completed&email=buyer%40example.com", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTransactionHandler_List_RejectsBadPagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, _ := newTestRouter(ctrl)

	for _, query := range []string{"?page=0", "?limit=0", "?limit=101", "?page=abc", "?limit=abc"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/transactions"+query, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "query %s", query)
	}
}

func TestTransactionHandler_Get_Found(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, m := newTestRouter(ctrl)

	id := uuid.New()
	chargeID := "charge-123"
	m.reporting.EXPECT().GetTransaction(gomock.Any(), id).Return(&domain.Transaction{
		ID:               id,
		CheckoutID:       uuid.New(),
		Email:            "buyer@example.com",
		Amount:           decimal.NewFromFloat(49.99),
		Currency:         "USD",
		Status:           domain.StatusCompleted,
		ProviderChargeID: &chargeID,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/transactions/"+id.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, id.String(), data["id"])
	assert.Equal(t, "49.99", data["amount"])
	assert.Equal(t, "completed", data["status"])
}

func TestTransactionHandler_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, m := newTestRouter(ctrl)

	id := uuid.New()
	m.reporting.EXPECT().GetTransaction(gomock.Any(), id).
		Return(nil, apperror.ErrNotFound("transaction"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/transactions/"+id.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransactionHandler_Get_MalformedID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, _ := newTestRouter(ctrl)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/transactions/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(ctx context.Context) error { return s.err }
func (s stubChecker) Name() string                   { return s.name }

func TestHealthCheck_Healthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, m := newTestRouter(ctrl, stubChecker{name: "postgresql"}, stubChecker{name: "redis"})

	m.reporting.EXPECT().Counts(gomock.Any()).Return(&ports.TransactionCounts{
		Total: 5, Pending: 2, Completed: 3,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "connected", body["store"])

	counts := body["transactions"].(map[string]interface{})
	assert.Equal(t, float64(5), counts["total"])
	assert.Equal(t, float64(3), counts["completed"])
}

func TestHealthCheck_StoreDown_Still200(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, _ := newTestRouter(ctrl, stubChecker{name: "postgresql", err: errors.New("connection refused")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	r.ServeHTTP(w, req)

	// Degraded, never failing.
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "disconnected", body["store"])
	_, hasCounts := body["transactions"]
	assert.False(t, hasCounts)
}

func TestHealthCheck_UptimeFromProcessStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reporting := mocks.NewMockReportingService(ctrl)
	reporting.EXPECT().Counts(gomock.Any()).Return(&ports.TransactionCounts{}, nil)

	// Uptime is measured from the injected process start, not from when the
	// router was built.
	r := SetupRouter(RouterDeps{
		CheckoutSvc:  mocks.NewMockCheckoutService(ctrl),
		WebhookSvc:   mocks.NewMockWebhookProcessor(ctrl),
		ReportingSvc: reporting,
		Logger:       logger.NewWithWriter("error", io.Discard),
		StartTime:    time.Now().Add(-90 * time.Minute),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	uptime, err := time.ParseDuration(body["uptime"].(string))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, uptime, 90*time.Minute)
	assert.Less(t, uptime, 91*time.Minute)
}

func TestMetricsEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, _ := newTestRouter(ctrl)

	// First request creates the series, second observes it.
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		if i == 1 {
			assert.Contains(t, w.Body.String(), "http_requests_total")
		}
	}
}
