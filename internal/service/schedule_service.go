package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/repository"
	customError "github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/errors"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

type ScheduleService struct {
	OperationTypeRepo repository.OperationTypeRepository
}

func NewScheduleService(operationTypeRepo repository.OperationTypeRepository) *ScheduleService {
	return &ScheduleService{OperationTypeRepo: operationTypeRepo}
}

// OperationType resolves a pricing policy; unknown ids are a configuration error
func (s *ScheduleService) OperationType(ctx context.Context, id int64) (*domain.OperationType, error) {
	operationType, err := s.OperationTypeRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapOperationTypeNotFound(id)
	}
	if err != nil {
		return nil, wrapRepoError(err, "operation type", id)
	}
	return operationType, nil
}

// Preview computes the installment schedule for the calcular-juros screen
func (s *ScheduleService) Preview(ctx context.Context, request *domain.ComputeScheduleRequest) (*domain.ComputeScheduleResponse, error) {
	offsets, err := ParseOffsets(request.Offsets)
	if err != nil {
		return nil, err
	}
	if request.Installments > 0 && request.Installments != len(offsets) {
		return nil, customError.WrapValidation("parcelas is %d but prazos lists %d offsets", request.Installments, len(offsets))
	}

	operationType, err := s.OperationType(ctx, request.OperationTypeID)
	if err != nil {
		return nil, err
	}

	schedule, err := ComputeSchedule(ScheduleInput{
		NoteValue:     request.NoteValue,
		OperationDate: request.OperationDate,
		NoteDate:      request.NoteDate,
		Type:          operationType,
		Offsets:       offsets,
		Weight:        request.Weight,
	})
	if err != nil {
		return nil, err
	}

	return ToScheduleResponse(schedule), nil
}

// ToScheduleResponse converts a computed schedule to its wire form, rounded
// to cents. The net value is taken from the rounded note value and total
// interest so valorLiquido = valorNf - totalJuros holds on the rounded figures.
func ToScheduleResponse(schedule *Schedule) *domain.ComputeScheduleResponse {
	totalInterest := utils.ToCurrency(schedule.TotalInterest)
	noteValue := utils.ToCurrency(schedule.NetValue.Add(schedule.TotalInterest))

	response := &domain.ComputeScheduleResponse{
		TotalInterest: totalInterest,
		NetValue:      noteValue.Sub(totalInterest),
		Installments:  make([]domain.ScheduleInstallmentResponse, 0, len(schedule.Installments)),
	}
	for _, installment := range schedule.Installments {
		response.Installments = append(response.Installments, domain.ScheduleInstallmentResponse{
			Number:       installment.Number,
			DueDate:      installment.DueDate,
			FaceValue:    utils.ToCurrency(installment.FaceValue),
			InterestPart: utils.ToCurrency(installment.Interest),
		})
	}
	return response
}
