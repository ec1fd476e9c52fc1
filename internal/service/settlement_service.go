package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/logger"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/repository"
	customError "github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/errors"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

// SettlementService drives the Pending/Received lifecycle of duplicatas
type SettlementService struct {
	DuplicataRepo repository.DuplicataRepository
	AccountRepo   repository.BankAccountRepository
	clock         utils.Clock
	log           zerolog.Logger
}

func NewSettlementService(
	duplicataRepo repository.DuplicataRepository,
	accountRepo repository.BankAccountRepository,
	clock utils.Clock,
) *SettlementService {
	return &SettlementService{
		DuplicataRepo: duplicataRepo,
		AccountRepo:   accountRepo,
		clock:         clock,
		log:           logger.WithComponent("settlement"),
	}
}

func (s *SettlementService) dateOrToday(date *utils.Date) utils.Date {
	if date == nil || date.IsZero() {
		return s.clock.Today()
	}
	return *date
}

func (s *SettlementService) account(ctx context.Context, id *int64) (*domain.BankAccount, error) {
	if id == nil {
		return nil, nil
	}
	account, err := s.AccountRepo.GetByID(ctx, *id)
	if err != nil {
		return nil, wrapRepoError(err, "bank account", *id)
	}
	return account, nil
}

// SettleOne settles a single duplicata. A bank account posts a credit of
// face value + mora - discount; without one only the row changes.
func (s *SettlementService) SettleOne(ctx context.Context, request *domain.SettleRequest) (*domain.Duplicata, error) {
	if request.DuplicataID <= 0 {
		return nil, customError.WrapValidation("duplicataId is required")
	}
	if request.LateInterest.IsNegative() || request.Discount.IsNegative() {
		return nil, customError.WrapValidation("jurosMora and desconto must not be negative")
	}

	account, err := s.account(ctx, request.BankAccountID)
	if err != nil {
		return nil, err
	}

	date := s.dateOrToday(request.SettlementDate)
	duplicata, err := s.DuplicataRepo.Transition(ctx, request.DuplicataID, func(d *domain.Duplicata) (domain.LedgerEffect, error) {
		return d.Settle(date, request.LateInterest, request.Discount, account)
	})
	if err != nil {
		return nil, wrapRepoError(err, "duplicata", request.DuplicataID)
	}

	s.log.Info().
		Int64("duplicata_id", duplicata.ID).
		Str("date", date.String()).
		Bool("credited", account != nil).
		Msg("Duplicata settled")

	return duplicata, nil
}

// SettleBulk settles several duplicatas with one date. With a bank account
// the aggregate mora and discount are split by face value and each item
// posts its own credit; without one, items are marked received with no
// ledger effect and the adjustments are ignored.
//
// Items are processed one at a time in request order. The first failure
// stops the loop; items already settled stay settled and are reported in a
// PartialFailureError.
func (s *SettlementService) SettleBulk(ctx context.Context, request *domain.BulkSettleRequest) error {
	if len(request.Items) == 0 {
		return customError.WrapValidation("no duplicatas selected")
	}
	if request.LateInterest.IsNegative() || request.Discount.IsNegative() {
		return customError.WrapValidation("jurosMora and desconto must not be negative")
	}

	ids := make([]int64, 0, len(request.Items))
	for _, item := range request.Items {
		if item.ID <= 0 {
			return customError.WrapValidation("invalid duplicata id %d", item.ID)
		}
		ids = append(ids, item.ID)
	}

	date := s.dateOrToday(request.SettlementDate)

	account, err := s.account(ctx, request.BankAccountID)
	if err != nil {
		return err
	}

	var transitions map[int64]repository.TransitionFunc
	if account != nil {
		transitions, err = s.creditTransitions(ctx, ids, date, request.LateInterest, request.Discount, account)
		if err != nil {
			return err
		}
	}

	settled := make([]int64, 0, len(ids))
	for _, id := range ids {
		fn := func(d *domain.Duplicata) (domain.LedgerEffect, error) {
			return d.SettleWithoutCredit(date)
		}
		if transitions != nil {
			fn = transitions[id]
		}

		if _, err := s.DuplicataRepo.Transition(ctx, id, fn); err != nil {
			wrapped := wrapRepoError(err, "duplicata", id)
			s.log.Error().
				Err(wrapped).
				Int64("failed_id", id).
				Ints64("settled_ids", settled).
				Msg("Bulk settlement aborted")

			if len(settled) == 0 {
				return wrapped
			}
			return &customError.PartialFailureError{Settled: settled, FailedID: id, Err: wrapped}
		}
		settled = append(settled, id)
	}

	s.log.Info().
		Int("count", len(settled)).
		Str("date", date.String()).
		Bool("credited", account != nil).
		Msg("Bulk settlement completed")

	return nil
}

// creditTransitions loads the selected duplicatas, splits mora and discount
// by face value and returns one Settle call per id.
func (s *SettlementService) creditTransitions(
	ctx context.Context,
	ids []int64,
	date utils.Date,
	lateInterest, discount decimal.Decimal,
	account *domain.BankAccount,
) (map[int64]repository.TransitionFunc, error) {
	duplicatas, err := s.DuplicataRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, wrapRepoError(err, "duplicata", ids)
	}

	found := make(map[int64]bool, len(duplicatas))
	items := make([]AllocationItem, 0, len(duplicatas))
	for _, d := range duplicatas {
		found[d.ID] = true
		items = append(items, AllocationItem{ID: d.ID, FaceValue: d.FaceValue})
	}
	for _, id := range ids {
		if !found[id] {
			return nil, customError.WrapNotFound("duplicata", id)
		}
	}

	moraShares, err := AllocateProportionally(items, lateInterest)
	if err != nil {
		return nil, err
	}
	discountShares, err := AllocateProportionally(items, discount)
	if err != nil {
		return nil, err
	}

	transitions := make(map[int64]repository.TransitionFunc, len(ids))
	for _, id := range ids {
		mora, desc := moraShares[id], discountShares[id]
		transitions[id] = func(d *domain.Duplicata) (domain.LedgerEffect, error) {
			return d.Settle(date, mora, desc, account)
		}
	}
	return transitions, nil
}

// SettleBuyback marks a duplicata received because the client bought it
// back. No ledger line is written or touched.
func (s *SettlementService) SettleBuyback(ctx context.Context, id int64, request *domain.BuybackRequest) (*domain.Duplicata, error) {
	if id <= 0 {
		return nil, customError.WrapValidation("duplicataId is required")
	}

	var date utils.Date
	if request != nil {
		date = s.dateOrToday(request.SettlementDate)
	} else {
		date = s.clock.Today()
	}

	duplicata, err := s.DuplicataRepo.Transition(ctx, id, func(d *domain.Duplicata) (domain.LedgerEffect, error) {
		return d.SettleBuyback(date)
	})
	if err != nil {
		return nil, wrapRepoError(err, "duplicata", id)
	}

	s.log.Info().Int64("duplicata_id", id).Str("date", date.String()).Msg("Duplicata bought back")
	return duplicata, nil
}

// Reverse returns a settled duplicata to Pending and deletes its ledger lines
func (s *SettlementService) Reverse(ctx context.Context, id int64) (*domain.Duplicata, error) {
	if id <= 0 {
		return nil, customError.WrapValidation("duplicataId is required")
	}

	duplicata, err := s.DuplicataRepo.Transition(ctx, id, func(d *domain.Duplicata) (domain.LedgerEffect, error) {
		return d.Reverse()
	})
	if err != nil {
		return nil, wrapRepoError(err, "duplicata", id)
	}

	s.log.Info().Int64("duplicata_id", id).Msg("Settlement reversed")
	return duplicata, nil
}
