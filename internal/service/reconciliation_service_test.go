package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/mocks"
	customError "github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/errors"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

const accountLabel = "Itaú - 0001/12345-6"

func newReconciliationService() (*ReconciliationService, *mocks.MockDuplicataRepository, *mocks.MockBankAccountRepository) {
	dupRepo := &mocks.MockDuplicataRepository{}
	accountRepo := &mocks.MockBankAccountRepository{}
	svc := NewReconciliationService(dupRepo, accountRepo, ReconciliationOptions{FreightSegment: "Transportes"})
	return svc, dupRepo, accountRepo
}

func reconcileRequest(amount, interest, discount string, ids ...int64) *domain.ReconcileRequest {
	return &domain.ReconcileRequest{
		DuplicataIDs: ids,
		Transaction: domain.BankTransaction{
			ID:     "TX-991",
			Date:   utils.MustParseDate("2024-06-03"),
			Amount: dec(amount),
		},
		AccountLabel: accountLabel,
		Interest:     dec(interest),
		Discount:     dec(discount),
	}
}

func TestReconciliationService_ReconcilePayment(t *testing.T) {
	svc, dupRepo, accountRepo := newReconciliationService()
	first, second := pendingDuplicata(1, "1000"), pendingDuplicata(2, "500")

	accountRepo.On("FindByLabel", mock.Anything, accountLabel).Return(testAccount(), nil)
	dupRepo.On("TransitionBatch", mock.Anything, []int64{1, 2}).Return([]*domain.Duplicata{first, second}, nil)

	response, err := svc.ReconcilePayment(context.Background(), reconcileRequest("1515", "20", "5", 2, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, "2 duplicata(s) conciliada(s) com sucesso.", response.Message)

	for _, d := range []*domain.Duplicata{first, second} {
		assert.Equal(t, domain.DuplicataStatusReceived, d.Status)
		assert.Equal(t, utils.MustParseDate("2024-06-03"), *d.SettlementDate)
		assert.Equal(t, accountLabel, *d.SettlementAccount)
	}

	movements := dupRepo.Movements
	require.Len(t, movements, 4)

	assert.Equal(t, "Recebimento NF-e 1234 - Sacado Alfa Ltda", movements[0].Description)
	assertDecimal(t, "1000", movements[0].Value)
	assert.Equal(t, int64(1), *movements[0].DuplicataID)
	assert.Equal(t, "TX-991#1", *movements[0].ExternalTransactionID)
	assertDecimal(t, "500", movements[1].Value)
	assert.Equal(t, "TX-991#2", *movements[1].ExternalTransactionID)

	assert.Equal(t, "Juros recebidos ref. NF-e 1234", movements[2].Description)
	assert.Equal(t, domain.MovementCategoryInterest, movements[2].Category)
	assertDecimal(t, "20", movements[2].Value)
	assert.Equal(t, "TX-991#juros", *movements[2].ExternalTransactionID)

	assert.Equal(t, "Desconto concedido ref. NF-e 1234", movements[3].Description)
	assert.Equal(t, domain.MovementCategoryDiscount, movements[3].Category)
	assertDecimal(t, "-5", movements[3].Value)
	assert.Nil(t, movements[3].DuplicataID)

	for _, m := range movements {
		assert.Equal(t, accountLabel, m.AccountLabel)
		assert.Equal(t, utils.MustParseDate("2024-06-03"), m.Date)
	}
}

func TestReconciliationService_FreightClientUsesCTe(t *testing.T) {
	svc, dupRepo, accountRepo := newReconciliationService()
	stored := pendingDuplicata(4, "800")
	stored.ClientSegment = "transportes"
	stored.DocumentNumber = "5555.1"

	accountRepo.On("FindByLabel", mock.Anything, accountLabel).Return(testAccount(), nil)
	dupRepo.On("TransitionBatch", mock.Anything, []int64{4}).Return([]*domain.Duplicata{stored}, nil)

	_, err := svc.ReconcilePayment(context.Background(), reconcileRequest("800.004", "0", "0", 4))
	require.NoError(t, err)

	require.Len(t, dupRepo.Movements, 1)
	assert.Equal(t, "Recebimento CT-e 5555 - Sacado Alfa Ltda", dupRepo.Movements[0].Description)
}

func TestReconciliationService_AmountMismatch(t *testing.T) {
	svc, dupRepo, accountRepo := newReconciliationService()
	first := pendingDuplicata(1, "1000")

	accountRepo.On("FindByLabel", mock.Anything, accountLabel).Return(testAccount(), nil)
	dupRepo.On("TransitionBatch", mock.Anything, []int64{1}).Return([]*domain.Duplicata{first}, nil)

	_, err := svc.ReconcilePayment(context.Background(), reconcileRequest("990", "0", "0", 1))
	assert.True(t, errors.Is(err, customError.ErrReconciliationMismatch))
	assert.Equal(t, domain.DuplicataStatusPending, first.Status)
	assert.Empty(t, dupRepo.Movements)
}

func TestReconciliationService_ZeroTolerance(t *testing.T) {
	exact := decimal.Zero
	dupRepo := &mocks.MockDuplicataRepository{}
	accountRepo := &mocks.MockBankAccountRepository{}
	svc := NewReconciliationService(dupRepo, accountRepo, ReconciliationOptions{Tolerance: &exact})

	accountRepo.On("FindByLabel", mock.Anything, accountLabel).Return(testAccount(), nil)
	dupRepo.On("TransitionBatch", mock.Anything, []int64{1}).Return([]*domain.Duplicata{pendingDuplicata(1, "1000")}, nil)

	_, err := svc.ReconcilePayment(context.Background(), reconcileRequest("1000.01", "0", "0", 1))
	assert.True(t, errors.Is(err, customError.ErrReconciliationMismatch))
	assert.Empty(t, dupRepo.Movements)

	t.Run("unset tolerance accepts one cent", func(t *testing.T) {
		svc, dupRepo, accountRepo := newReconciliationService()
		accountRepo.On("FindByLabel", mock.Anything, accountLabel).Return(testAccount(), nil)
		dupRepo.On("TransitionBatch", mock.Anything, []int64{1}).Return([]*domain.Duplicata{pendingDuplicata(1, "1000")}, nil)

		_, err := svc.ReconcilePayment(context.Background(), reconcileRequest("1000.01", "0", "0", 1))
		require.NoError(t, err)
		require.Len(t, dupRepo.Movements, 1)
	})
}

func TestReconciliationService_AlreadySettled(t *testing.T) {
	svc, dupRepo, accountRepo := newReconciliationService()
	first, second := pendingDuplicata(1, "100"), pendingDuplicata(2, "100")
	second.Status = domain.DuplicataStatusReceived

	accountRepo.On("FindByLabel", mock.Anything, accountLabel).Return(testAccount(), nil)
	dupRepo.On("TransitionBatch", mock.Anything, []int64{1, 2}).Return([]*domain.Duplicata{first, second}, nil)

	_, err := svc.ReconcilePayment(context.Background(), reconcileRequest("200", "0", "0", 1, 2))
	assert.True(t, errors.Is(err, customError.ErrStateConflict))
	assert.Equal(t, domain.DuplicataStatusPending, first.Status)
	assert.Empty(t, dupRepo.Movements)
}

func TestReconciliationService_MissingDuplicata(t *testing.T) {
	svc, dupRepo, accountRepo := newReconciliationService()

	accountRepo.On("FindByLabel", mock.Anything, accountLabel).Return(testAccount(), nil)
	dupRepo.On("TransitionBatch", mock.Anything, []int64{1, 8}).Return([]*domain.Duplicata{pendingDuplicata(1, "100")}, nil)

	_, err := svc.ReconcilePayment(context.Background(), reconcileRequest("100", "0", "0", 1, 8))
	assert.True(t, errors.Is(err, customError.ErrNotFound))
}

func TestReconciliationService_UnknownAccount(t *testing.T) {
	svc, dupRepo, accountRepo := newReconciliationService()
	accountRepo.On("FindByLabel", mock.Anything, accountLabel).Return(nil, sql.ErrNoRows)

	_, err := svc.ReconcilePayment(context.Background(), reconcileRequest("100", "0", "0", 1))
	assert.True(t, errors.Is(err, customError.ErrNotFound))
	dupRepo.AssertNotCalled(t, "TransitionBatch", mock.Anything, mock.Anything)
}

func TestReconciliationService_ReplayedTransaction(t *testing.T) {
	svc, dupRepo, accountRepo := newReconciliationService()

	accountRepo.On("FindByLabel", mock.Anything, accountLabel).Return(testAccount(), nil)
	dupRepo.On("TransitionBatch", mock.Anything, []int64{1}).Return(nil, customError.WrapDuplicateTransaction("TX-991#1"))

	_, err := svc.ReconcilePayment(context.Background(), reconcileRequest("100", "0", "0", 1))
	assert.True(t, errors.Is(err, customError.ErrDuplicateTransaction))
}

func TestReconciliationService_InvalidRequest(t *testing.T) {
	tests := []struct {
		name    string
		request *domain.ReconcileRequest
	}{
		{name: "no ids", request: reconcileRequest("100", "0", "0")},
		{name: "negative interest", request: reconcileRequest("100", "-1", "0", 1)},
		{name: "missing transaction id", request: func() *domain.ReconcileRequest {
			r := reconcileRequest("100", "0", "0", 1)
			r.Transaction.ID = " "
			return r
		}()},
		{name: "missing transaction date", request: func() *domain.ReconcileRequest {
			r := reconcileRequest("100", "0", "0", 1)
			r.Transaction.Date = utils.Date{}
			return r
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, accountRepo := newReconciliationService()

			_, err := svc.ReconcilePayment(context.Background(), tt.request)
			assert.True(t, errors.Is(err, customError.ErrValidation))
			accountRepo.AssertNotCalled(t, "FindByLabel", mock.Anything, mock.Anything)
		})
	}
}

func TestReconciliationService_MatchCandidates(t *testing.T) {
	t.Run("trims query and applies limit", func(t *testing.T) {
		svc, dupRepo, _ := newReconciliationService()
		dupRepo.On("SearchOpen", mock.Anything, "alfa", 50).Return([]*domain.Duplicata{pendingDuplicata(1, "100")}, nil)

		candidates, err := svc.MatchCandidates(context.Background(), "  alfa ")
		require.NoError(t, err)
		assert.Len(t, candidates, 1)
	})

	t.Run("no matches returns empty slice", func(t *testing.T) {
		svc, dupRepo, _ := newReconciliationService()
		dupRepo.On("SearchOpen", mock.Anything, "zzz", 50).Return([]*domain.Duplicata(nil), nil)

		candidates, err := svc.MatchCandidates(context.Background(), "zzz")
		require.NoError(t, err)
		assert.NotNil(t, candidates)
		assert.Empty(t, candidates)
	})

	t.Run("blank query", func(t *testing.T) {
		svc, dupRepo, _ := newReconciliationService()

		_, err := svc.MatchCandidates(context.Background(), "   ")
		assert.True(t, errors.Is(err, customError.ErrValidation))
		dupRepo.AssertNotCalled(t, "SearchOpen", mock.Anything, mock.Anything, mock.Anything)
	})
}
