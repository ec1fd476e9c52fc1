package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/repository"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

type MockOperationTypeRepository struct {
	mock.Mock
}

func (m *MockOperationTypeRepository) GetByID(ctx context.Context, id int64) (*domain.OperationType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OperationType), args.Error(1)
}

type MockBankAccountRepository struct {
	mock.Mock
}

func (m *MockBankAccountRepository) GetByID(ctx context.Context, id int64) (*domain.BankAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

func (m *MockBankAccountRepository) FindByLabel(ctx context.Context, label string) (*domain.BankAccount, error) {
	args := m.Called(ctx, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

// MockDuplicataRepository runs transition callbacks against the duplicatas
// returned by the expectations and records the ledger effects they produce.
type MockDuplicataRepository struct {
	mock.Mock

	Effects   []domain.LedgerEffect
	Movements []*domain.CashMovement
}

func (m *MockDuplicataRepository) GetByID(ctx context.Context, id int64) (*domain.Duplicata, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Duplicata), args.Error(1)
}

func (m *MockDuplicataRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Duplicata, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Duplicata), args.Error(1)
}

func (m *MockDuplicataRepository) SearchOpen(ctx context.Context, query string, limit int) ([]*domain.Duplicata, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Duplicata), args.Error(1)
}

// Transition mirrors the transactional contract: the callback only runs when
// the row loads, and nothing is recorded when the callback fails.
func (m *MockDuplicataRepository) Transition(ctx context.Context, id int64, fn repository.TransitionFunc) (*domain.Duplicata, error) {
	args := m.Called(ctx, id)
	if err := args.Error(1); err != nil {
		return nil, err
	}

	stored := args.Get(0).(*domain.Duplicata)
	working := *stored
	effect, err := fn(&working)
	if err != nil {
		return nil, err
	}

	*stored = working
	m.Effects = append(m.Effects, effect)
	return stored, nil
}

func (m *MockDuplicataRepository) TransitionBatch(ctx context.Context, ids []int64, fn repository.BatchFunc) error {
	args := m.Called(ctx, ids)
	if err := args.Error(1); err != nil {
		return err
	}

	stored := args.Get(0).([]*domain.Duplicata)
	working := make([]*domain.Duplicata, 0, len(stored))
	for _, d := range stored {
		copied := *d
		working = append(working, &copied)
	}

	movements, err := fn(working)
	if err != nil {
		return err
	}

	for i := range stored {
		*stored[i] = *working[i]
	}
	m.Movements = append(m.Movements, movements...)
	return nil
}

func (m *MockDuplicataRepository) OverdueSummary(ctx context.Context, before utils.Date) (*domain.OverdueSummary, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OverdueSummary), args.Error(1)
}

type MockOperationRepository struct {
	mock.Mock

	Movements []*domain.CashMovement
}

func (m *MockOperationRepository) Create(ctx context.Context, operation *domain.Operation, duplicatas []*domain.Duplicata) error {
	args := m.Called(ctx, operation, duplicatas)
	return args.Error(0)
}

func (m *MockOperationRepository) GetByID(ctx context.Context, id int64) (*domain.Operation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) Approve(ctx context.Context, id int64, account *domain.BankAccount, fn func(op *domain.Operation) (*domain.CashMovement, error)) error {
	args := m.Called(ctx, id, account)
	if err := args.Error(1); err != nil {
		return err
	}

	operation := args.Get(0).(*domain.Operation)
	debit, err := fn(operation)
	if err != nil {
		return err
	}
	if debit != nil {
		m.Movements = append(m.Movements, debit)
	}
	return nil
}

func (m *MockOperationRepository) UpdateStatus(ctx context.Context, id int64, fn func(op *domain.Operation) error) error {
	args := m.Called(ctx, id)
	if err := args.Error(1); err != nil {
		return err
	}
	return fn(args.Get(0).(*domain.Operation))
}

func (m *MockOperationRepository) Delete(ctx context.Context, id int64, fn repository.BatchGuardFunc) error {
	args := m.Called(ctx, id)
	if err := args.Error(1); err != nil {
		return err
	}
	return fn(args.Get(0).([]*domain.Duplicata))
}

type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Create(ctx context.Context, movement *domain.CashMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) GetByDuplicataID(ctx context.Context, duplicataID int64) ([]*domain.CashMovement, error) {
	args := m.Called(ctx, duplicataID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CashMovement), args.Error(1)
}
