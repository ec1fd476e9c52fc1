package service

import (
	"github.com/shopspring/decimal"

	customError "github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/errors"
)

// AllocationItem is one installment taking part in a proportional split
type AllocationItem struct {
	ID        int64
	FaceValue decimal.Decimal
}

// AllocateProportionally splits totalExtra across items by face value. When
// every face value is zero the split is equal. Shares are not rounded, so
// their sum may drift from totalExtra by a fraction of a cent.
func AllocateProportionally(items []AllocationItem, totalExtra decimal.Decimal) (map[int64]decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, customError.WrapValidation("no installments to allocate over")
	}

	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.FaceValue)
	}

	equalShare := decimal.NewFromInt(1).Div(decimal.NewFromInt(int64(len(items))))

	allocation := make(map[int64]decimal.Decimal, len(items))
	for _, item := range items {
		share := equalShare
		if sum.IsPositive() {
			share = item.FaceValue.Div(sum)
		}
		allocation[item.ID] = allocation[item.ID].Add(totalExtra.Mul(share))
	}
	return allocation, nil
}
