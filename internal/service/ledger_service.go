package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/logger"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/repository"
	customError "github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/errors"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

// LedgerService records manual cash movements
type LedgerService struct {
	MovementRepo repository.MovementRepository
	AccountRepo  repository.BankAccountRepository
	log          zerolog.Logger
}

func NewLedgerService(movementRepo repository.MovementRepository, accountRepo repository.BankAccountRepository) *LedgerService {
	return &LedgerService{
		MovementRepo: movementRepo,
		AccountRepo:  accountRepo,
		log:          logger.WithComponent("ledger"),
	}
}

// Record writes a manual ledger line. A repeated transaction id is rejected.
func (s *LedgerService) Record(ctx context.Context, request *domain.ManualMovementRequest) (*domain.CashMovement, error) {
	if strings.TrimSpace(request.Description) == "" {
		return nil, customError.WrapValidation("descricao is required")
	}
	if request.Value.IsZero() {
		return nil, customError.WrapValidation("valor must not be zero")
	}

	account, err := s.AccountRepo.GetByID(ctx, request.BankAccountID)
	if err != nil {
		return nil, wrapRepoError(err, "bank account", request.BankAccountID)
	}

	category := request.Category
	if category == "" {
		category = domain.MovementCategoryManual
	}

	movement := &domain.CashMovement{
		Date:         request.Date,
		Description:  request.Description,
		Value:        utils.ToCurrency(request.Value),
		AccountLabel: account.Label(),
		Category:     category,
	}
	if id := strings.TrimSpace(request.ExternalTransactionID); id != "" {
		movement.ExternalTransactionID = &id
	}

	if err := s.MovementRepo.Create(ctx, movement); err != nil {
		return nil, wrapRepoError(err, "cash movement", request.ExternalTransactionID)
	}

	s.log.Info().Int64("movement_id", movement.ID).Str("account", movement.AccountLabel).Msg("Manual movement recorded")
	return movement, nil
}
