package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/logger"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/repository"
	customError "github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/errors"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

// OperationService handles the borderô lifecycle around the schedule
type OperationService struct {
	OperationRepo repository.OperationRepository
	AccountRepo   repository.BankAccountRepository
	schedules     *ScheduleService
	log           zerolog.Logger
}

func NewOperationService(
	operationRepo repository.OperationRepository,
	accountRepo repository.BankAccountRepository,
	schedules *ScheduleService,
) *OperationService {
	return &OperationService{
		OperationRepo: operationRepo,
		AccountRepo:   accountRepo,
		schedules:     schedules,
		log:           logger.WithComponent("operation"),
	}
}

// Create prices every note of the request and persists the operation as
// Pending together with its duplicatas. Values are rounded to cents here.
func (s *OperationService) Create(ctx context.Context, request *domain.CreateOperationRequest) (*domain.Operation, []*domain.Duplicata, error) {
	if len(request.Notes) == 0 {
		return nil, nil, customError.WrapValidation("at least one note is required")
	}

	operationType, err := s.schedules.OperationType(ctx, request.OperationTypeID)
	if err != nil {
		return nil, nil, err
	}

	gross, interest := decimal.Zero, decimal.Zero
	duplicatas := make([]*domain.Duplicata, 0)
	documents := make(map[string]bool)

	for _, note := range request.Notes {
		offsets, err := ParseOffsets(note.Offsets)
		if err != nil {
			return nil, nil, err
		}
		if note.Installments > 0 && note.Installments != len(offsets) {
			return nil, nil, customError.WrapValidation("note %s: parcelas is %d but prazos lists %d offsets", note.DocumentNumber, note.Installments, len(offsets))
		}

		schedule, err := ComputeSchedule(ScheduleInput{
			NoteValue:     note.NoteValue,
			OperationDate: request.OperationDate,
			NoteDate:      note.NoteDate,
			Type:          operationType,
			Offsets:       offsets,
			Weight:        note.Weight,
		})
		if err != nil {
			return nil, nil, err
		}

		gross = gross.Add(note.NoteValue)
		interest = interest.Add(schedule.TotalInterest)

		for _, installment := range schedule.Installments {
			number := domain.DocumentNumberFor(note.DocumentNumber, installment.Number)
			if documents[number] {
				return nil, nil, customError.WrapValidation("document number %s appears more than once", number)
			}
			documents[number] = true

			duplicatas = append(duplicatas, &domain.Duplicata{
				DebtorID:       note.DebtorID,
				DocumentNumber: number,
				FaceValue:      utils.ToCurrency(installment.FaceValue),
				Interest:       utils.ToCurrency(installment.Interest),
				DueDate:        installment.DueDate,
				Status:         domain.DuplicataStatusPending,
			})
		}
	}

	discounts := decimal.Zero
	for _, discount := range request.Discounts {
		discounts = discounts.Add(discount.Value)
	}

	operation := &domain.Operation{
		Date:            request.OperationDate,
		OperationTypeID: request.OperationTypeID,
		ClientID:        request.ClientID,
		GrossTotal:      utils.ToCurrency(gross),
		TotalInterest:   utils.ToCurrency(interest),
		TotalDiscounts:  utils.ToCurrency(discounts),
		Status:          domain.OperationStatusPending,
	}
	operation.NetValue = operation.GrossTotal.Sub(operation.TotalInterest).Sub(operation.TotalDiscounts)

	if err := s.OperationRepo.Create(ctx, operation, duplicatas); err != nil {
		return nil, nil, wrapRepoError(err, "operation", request.ClientID)
	}

	s.log.Info().
		Int64("operation_id", operation.ID).
		Int("duplicatas", len(duplicatas)).
		Str("net_value", operation.NetValue.StringFixed(2)).
		Msg("Operation created")

	return operation, duplicatas, nil
}

// Approve accepts a pending operation and debits the net value from the
// paying account in the same transaction.
func (s *OperationService) Approve(ctx context.Context, id int64, request *domain.ApproveOperationRequest) error {
	account, err := s.AccountRepo.GetByID(ctx, request.BankAccountID)
	if err != nil {
		return wrapRepoError(err, "bank account", request.BankAccountID)
	}

	err = s.OperationRepo.Approve(ctx, id, account, func(op *domain.Operation) (*domain.CashMovement, error) {
		if op.Status != domain.OperationStatusPending {
			return nil, customError.WrapStateConflict("operation %d is %s", op.ID, op.Status)
		}

		accountID, operationID := account.ID, op.ID
		op.Status = domain.OperationStatusApproved
		op.BankAccountID = &accountID

		return &domain.CashMovement{
			Date:         op.Date,
			Description:  fmt.Sprintf("Pagamento Borderô #%d", op.ID),
			Value:        op.NetValue.Neg(),
			AccountLabel: account.Label(),
			Category:     domain.MovementCategoryBorderoPayout,
			OperationID:  &operationID,
		}, nil
	})
	if err != nil {
		return wrapRepoError(err, "operation", id)
	}

	s.log.Info().Int64("operation_id", id).Int64("account_id", account.ID).Msg("Operation approved")
	return nil
}

// Reject refuses a pending operation
func (s *OperationService) Reject(ctx context.Context, id int64) error {
	err := s.OperationRepo.UpdateStatus(ctx, id, func(op *domain.Operation) error {
		if op.Status != domain.OperationStatusPending {
			return customError.WrapStateConflict("operation %d is %s", op.ID, op.Status)
		}
		op.Status = domain.OperationStatusRejected
		return nil
	})
	if err != nil {
		return wrapRepoError(err, "operation", id)
	}

	s.log.Info().Int64("operation_id", id).Msg("Operation rejected")
	return nil
}

// Cancel deletes an operation with its duplicatas and ledger lines. It is
// refused when any duplicata was already settled.
func (s *OperationService) Cancel(ctx context.Context, id int64) error {
	err := s.OperationRepo.Delete(ctx, id, func(duplicatas []*domain.Duplicata) error {
		for _, d := range duplicatas {
			if d.IsReceived() {
				return customError.WrapStateConflict("operation %d has settled duplicata %s", id, d.DocumentNumber)
			}
		}
		return nil
	})
	if err != nil {
		return wrapRepoError(err, "operation", id)
	}

	s.log.Info().Int64("operation_id", id).Msg("Operation cancelled")
	return nil
}
