package service

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	customError "github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/errors"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

var (
	hundred    = decimal.NewFromInt(100)
	thirtyDays = decimal.NewFromInt(30)
)

// ScheduleInput holds everything the calculator needs for one note
type ScheduleInput struct {
	NoteValue     decimal.Decimal
	OperationDate utils.Date
	NoteDate      utils.Date
	Type          *domain.OperationType
	Offsets       []int
	// Weight scales the flat fee when the type asks for it.
	Weight decimal.Decimal
}

// Installment is one computed line of a schedule
type Installment struct {
	Number    int
	DueDate   utils.Date
	FaceValue decimal.Decimal
	Interest  decimal.Decimal
}

// Schedule is the unrounded result of the calculator. Values are rounded
// with utils.ToCurrency only when an operation is persisted.
type Schedule struct {
	TotalInterest decimal.Decimal
	NetValue      decimal.Decimal
	Installments  []Installment
}

// ParseOffsets parses "30/60/90" into day offsets.
func ParseOffsets(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, customError.WrapValidation("prazos must list at least one day offset")
	}

	parts := strings.Split(raw, "/")
	offsets := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		days, err := strconv.Atoi(part)
		if err != nil {
			return nil, customError.WrapValidation("invalid day offset %q in prazos %q", part, raw)
		}
		if days < 0 {
			return nil, customError.WrapValidation("day offset %d must not be negative", days)
		}
		offsets = append(offsets, days)
	}
	return offsets, nil
}

// ComputeSchedule splits the note value into equal installments due at each
// offset from the note date and prices them with the operation type.
//
// Flat fee: the fee (times weight when configured) is split equally.
// Rate: interest_i = face * (rate/100) / 30 * days_i, where days_i is the
// offset itself or the calendar days from the operation date to the due date.
// A due date before the operation date yields negative interest.
func ComputeSchedule(in ScheduleInput) (*Schedule, error) {
	if in.Type == nil {
		return nil, customError.NewBusinessError(customError.ErrCodeConfiguration, "operation type is required", customError.ErrConfiguration)
	}
	if len(in.Offsets) == 0 {
		return nil, customError.WrapValidation("at least one installment is required")
	}
	if !in.NoteValue.IsPositive() {
		return nil, customError.WrapValidation("note value must be greater than zero")
	}
	for _, d := range in.Offsets {
		if d < 0 {
			return nil, customError.WrapValidation("day offset %d must not be negative", d)
		}
	}

	count := decimal.NewFromInt(int64(len(in.Offsets)))
	faceValue := in.NoteValue.Div(count)

	totalInterest := decimal.Zero
	flatInterest := decimal.Zero
	if in.Type.IsFlatFee() {
		totalInterest = in.Type.FixedFee
		if in.Type.UseWeightOnFixedFee {
			totalInterest = in.Weight.Mul(in.Type.FixedFee)
		}
		flatInterest = totalInterest.Div(count)
	}

	rate := in.Type.InterestRate.Div(hundred)

	installments := make([]Installment, 0, len(in.Offsets))
	for i, offset := range in.Offsets {
		dueDate := in.NoteDate.AddDays(offset)

		interest := flatInterest
		if !in.Type.IsFlatFee() {
			days := offset
			if !in.Type.UseDebtorTerm {
				days = utils.DaysBetween(in.OperationDate, dueDate)
			}
			interest = faceValue.Mul(rate).Div(thirtyDays).Mul(decimal.NewFromInt(int64(days)))
			totalInterest = totalInterest.Add(interest)
		}

		installments = append(installments, Installment{
			Number:    i + 1,
			DueDate:   dueDate,
			FaceValue: faceValue,
			Interest:  interest,
		})
	}

	return &Schedule{
		TotalInterest: totalInterest,
		NetValue:      in.NoteValue.Sub(totalInterest),
		Installments:  installments,
	}, nil
}
