package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/logger"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/repository"
	customError "github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/errors"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

// ReconciliationOptions carries the business settings of the matcher
type ReconciliationOptions struct {
	MatchLimit     int
	FreightSegment string
	// Tolerance defaults to one cent when nil; zero demands an exact match.
	Tolerance *decimal.Decimal
}

// ReconciliationService matches bank statement lines to open duplicatas
type ReconciliationService struct {
	DuplicataRepo repository.DuplicataRepository
	AccountRepo   repository.BankAccountRepository
	options       ReconciliationOptions
	log           zerolog.Logger
}

func NewReconciliationService(
	duplicataRepo repository.DuplicataRepository,
	accountRepo repository.BankAccountRepository,
	options ReconciliationOptions,
) *ReconciliationService {
	if options.MatchLimit <= 0 {
		options.MatchLimit = 50
	}
	if options.Tolerance == nil {
		tolerance := utils.CentTolerance
		options.Tolerance = &tolerance
	}
	return &ReconciliationService{
		DuplicataRepo: duplicataRepo,
		AccountRepo:   accountRepo,
		options:       options,
		log:           logger.WithComponent("reconciliation"),
	}
}

// MatchCandidates returns open duplicatas whose debtor name or document
// number contains the query
func (s *ReconciliationService) MatchCandidates(ctx context.Context, query string) ([]*domain.Duplicata, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, customError.WrapValidation("search query is required")
	}

	duplicatas, err := s.DuplicataRepo.SearchOpen(ctx, query, s.options.MatchLimit)
	if err != nil {
		return nil, wrapRepoError(err, "duplicata", query)
	}
	if duplicatas == nil {
		duplicatas = []*domain.Duplicata{}
	}
	return duplicatas, nil
}

// ReconcilePayment settles the selected duplicatas against one bank credit.
// Each duplicata gets a ledger credit for its own face value; interest and
// discount are posted as single aggregate lines. The lines must add up to
// the transaction amount before anything is written.
func (s *ReconciliationService) ReconcilePayment(ctx context.Context, request *domain.ReconcileRequest) (*domain.ReconcileResponse, error) {
	ids, err := uniqueIDs(request.DuplicataIDs)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(request.Transaction.ID) == "" {
		return nil, customError.WrapValidation("transaction id is required")
	}
	if request.Transaction.Date.IsZero() {
		return nil, customError.WrapValidation("transaction date is required")
	}
	if request.Interest.IsNegative() || request.Discount.IsNegative() {
		return nil, customError.WrapValidation("juros and descontos must not be negative")
	}

	account, err := s.AccountRepo.FindByLabel(ctx, request.AccountLabel)
	if err != nil {
		return nil, wrapRepoError(err, "bank account", request.AccountLabel)
	}
	label := account.Label()

	err = s.DuplicataRepo.TransitionBatch(ctx, ids, func(duplicatas []*domain.Duplicata) ([]*domain.CashMovement, error) {
		return s.buildReconciliation(ids, duplicatas, request, label)
	})
	if err != nil {
		return nil, wrapRepoError(err, "duplicata", ids)
	}

	s.log.Info().
		Str("transaction_id", request.Transaction.ID).
		Ints64("duplicata_ids", ids).
		Str("account", label).
		Msg("Payment reconciled")

	return &domain.ReconcileResponse{
		Message: fmt.Sprintf("%d duplicata(s) conciliada(s) com sucesso.", len(ids)),
	}, nil
}

func (s *ReconciliationService) buildReconciliation(
	ids []int64,
	duplicatas []*domain.Duplicata,
	request *domain.ReconcileRequest,
	label string,
) ([]*domain.CashMovement, error) {
	if len(duplicatas) != len(ids) {
		found := make(map[int64]bool, len(duplicatas))
		for _, d := range duplicatas {
			found[d.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, customError.WrapNotFound("duplicata", id)
			}
		}
	}

	tx := request.Transaction
	interest := utils.ToCurrency(request.Interest)
	discount := utils.ToCurrency(request.Discount)

	movements := make([]*domain.CashMovement, 0, len(duplicatas)+2)
	documents := make([]string, 0, len(duplicatas))
	seen := make(map[string]bool, len(duplicatas))
	total := decimal.Zero

	for _, d := range duplicatas {
		if !d.IsPending() {
			return nil, customError.WrapStateConflict("duplicata %d (%s) is already settled", d.ID, d.DocumentNumber)
		}

		docType := d.DocumentType(s.options.FreightSegment)
		base := d.BaseDocumentNumber()
		reference := docType + " " + base
		if !seen[reference] {
			seen[reference] = true
			documents = append(documents, reference)
		}

		duplicataID, operationID := d.ID, d.OperationID
		value := utils.ToCurrency(d.FaceValue)
		movements = append(movements, &domain.CashMovement{
			Date:                  tx.Date,
			Description:           fmt.Sprintf("Recebimento %s %s - %s", docType, base, d.DebtorName),
			Value:                 value,
			AccountLabel:          label,
			Category:              domain.MovementCategoryReceipt,
			DuplicataID:           &duplicataID,
			OperationID:           &operationID,
			ExternalTransactionID: lineTransactionID(tx.ID, fmt.Sprint(d.ID)),
		})
		total = total.Add(value)
	}

	if interest.IsPositive() {
		movements = append(movements, &domain.CashMovement{
			Date:                  tx.Date,
			Description:           "Juros recebidos ref. " + strings.Join(documents, ", "),
			Value:                 interest,
			AccountLabel:          label,
			Category:              domain.MovementCategoryInterest,
			ExternalTransactionID: lineTransactionID(tx.ID, domain.InterestLineSuffix),
		})
		total = total.Add(interest)
	}

	if discount.IsPositive() {
		movements = append(movements, &domain.CashMovement{
			Date:                  tx.Date,
			Description:           "Desconto concedido ref. " + strings.Join(documents, ", "),
			Value:                 discount.Neg(),
			AccountLabel:          label,
			Category:              domain.MovementCategoryDiscount,
			ExternalTransactionID: lineTransactionID(tx.ID, domain.DiscountLineSuffix),
		})
		total = total.Sub(discount)
	}

	if !utils.WithinTolerance(total, tx.Amount, *s.options.Tolerance) {
		return nil, customError.WrapReconciliationMismatch(tx.Amount.StringFixed(2), total.StringFixed(2))
	}

	for _, d := range duplicatas {
		if err := d.MarkReconciled(tx.Date, label); err != nil {
			return nil, err
		}
	}

	return movements, nil
}

func lineTransactionID(transactionID, suffix string) *string {
	key := domain.LineTransactionID(transactionID, suffix)
	return &key
}

func uniqueIDs(ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, customError.WrapValidation("no duplicatas selected")
	}

	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, customError.WrapValidation("invalid duplicata id %d", id)
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
