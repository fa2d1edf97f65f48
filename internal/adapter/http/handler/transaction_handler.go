package handler

import (
	"math"
	"strconv"

	"checkout-gateway/internal/adapter/http/dto"
	"checkout-gateway/internal/core/domain"
	"checkout-gateway/internal/core/ports"
	"checkout-gateway/pkg/apperror"
	"checkout-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles the read-side transaction endpoints.
type TransactionHandler struct {
	reportingSvc ports.ReportingService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(reportingSvc ports.ReportingService) *TransactionHandler {
	return &TransactionHandler{reportingSvc: reportingSvc}
}

// List handles GET /api/transactions. Out-of-range pagination is rejected,
// not clamped.
func (h *TransactionHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		response.Error(c, apperror.ValidationField("page", "must be a positive integer"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		response.Error(c, apperror.ValidationField("limit", "must be a positive integer"))
		return
	}
	if limit > ports.MaxPageSize {
		response.Error(c, apperror.ValidationField("limit", "must not exceed 100"))
		return
	}

	params := ports.TransactionListParams{
		Page:     page,
		PageSize: limit,
	}
	if s := c.Query("status"); s != "" {
		status := domain.TransactionStatus(s)
		params.Status = &status
	}
	if e := c.Query("email"); e != "" {
		params.Email = &e
	}

	txns, total, err := h.reportingSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, dto.ToTransactionResponse(&txns[i]))
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	response.OK(c, dto.TransactionListResponse{
		Transactions: items,
		Pagination: dto.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1 && total > 0,
		},
	})
}

// Get handles GET /api/transactions/:id. A malformed id is indistinguishable
// from an absent transaction to the caller.
func (h *TransactionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrNotFound("transaction"))
		return
	}

	txn, err := h.reportingSvc.GetTransaction(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToTransactionResponse(txn))
}
