package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
)

type MockScheduleService struct {
	mock.Mock
}

func (m *MockScheduleService) Preview(ctx context.Context, request *domain.ComputeScheduleRequest) (*domain.ComputeScheduleResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComputeScheduleResponse), args.Error(1)
}

type MockOperationService struct {
	mock.Mock
}

func (m *MockOperationService) Create(ctx context.Context, request *domain.CreateOperationRequest) (*domain.Operation, []*domain.Duplicata, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Operation), args.Get(1).([]*domain.Duplicata), args.Error(2)
}

func (m *MockOperationService) Approve(ctx context.Context, id int64, request *domain.ApproveOperationRequest) error {
	args := m.Called(ctx, id, request)
	return args.Error(0)
}

func (m *MockOperationService) Reject(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOperationService) Cancel(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) SettleOne(ctx context.Context, request *domain.SettleRequest) (*domain.Duplicata, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Duplicata), args.Error(1)
}

func (m *MockSettlementService) SettleBulk(ctx context.Context, request *domain.BulkSettleRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockSettlementService) SettleBuyback(ctx context.Context, id int64, request *domain.BuybackRequest) (*domain.Duplicata, error) {
	args := m.Called(ctx, id, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Duplicata), args.Error(1)
}

func (m *MockSettlementService) Reverse(ctx context.Context, id int64) (*domain.Duplicata, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Duplicata), args.Error(1)
}

type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) MatchCandidates(ctx context.Context, query string) ([]*domain.Duplicata, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Duplicata), args.Error(1)
}

func (m *MockReconciliationService) ReconcilePayment(ctx context.Context, request *domain.ReconcileRequest) (*domain.ReconcileResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconcileResponse), args.Error(1)
}

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Record(ctx context.Context, request *domain.ManualMovementRequest) (*domain.CashMovement, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashMovement), args.Error(1)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Overdue(ctx context.Context) (*domain.OverdueSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OverdueSummary), args.Error(1)
}

type MockDBPinger struct {
	mock.Mock
}

func (m *MockDBPinger) PingContext(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
