package service

import (
	"context"
	"fmt"

	"checkout-gateway/internal/core/domain"
	"checkout-gateway/internal/core/ports"
	"checkout-gateway/pkg/apperror"

	"github.com/google/uuid"
)

// reportingService is the read layer behind the transaction endpoints and the
// health check's aggregate counts.
type reportingService struct {
	repo ports.TransactionRepository
}

// NewReportingService creates the read-only reporting service.
func NewReportingService(repo ports.TransactionRepository) ports.ReportingService {
	return &reportingService{repo: repo}
}

func (s *reportingService) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	return txn, nil
}

func (s *reportingService) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.Page < 1 {
		return nil, 0, apperror.ValidationField("page", "must be at least 1")
	}
	if params.PageSize < 1 {
		return nil, 0, apperror.ValidationField("limit", "must be at least 1")
	}
	return s.repo.List(ctx, params)
}

func (s *reportingService) Counts(ctx context.Context) (*ports.TransactionCounts, error) {
	return s.repo.AggregateCounts(ctx)
}
