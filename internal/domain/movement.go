package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

// Ledger categories
const (
	MovementCategoryReceipt       = "Recebimento"
	MovementCategoryBorderoPayout = "Pagamento de Borderô"
	MovementCategoryInterest      = "Juros Recebidos"
	MovementCategoryDiscount      = "Descontos Concedidos"
	MovementCategoryManual        = "Movimentação Avulsa"
)

// Suffixes of the aggregate lines a reconciliation writes next to the
// per-duplicata credits. Per-duplicata lines use the duplicata id instead.
const (
	InterestLineSuffix = "juros"
	DiscountLineSuffix = "desconto"
)

// LineTransactionID derives the idempotency key of one ledger line from the
// bank transaction id, so replaying the same statement line conflicts.
func LineTransactionID(transactionID, suffix string) string {
	return transactionID + "#" + suffix
}

// BankTransactionID returns the bank transaction a derived line id belongs
// to, or false when the id was not derived by LineTransactionID.
func BankTransactionID(lineID string) (string, bool) {
	i := strings.LastIndex(lineID, "#")
	if i <= 0 {
		return "", false
	}
	return lineID[:i], true
}

// CashMovement is one line of the cash ledger. Positive values are credits.
type CashMovement struct {
	ID                    int64           `json:"id" db:"id"`
	Date                  utils.Date      `json:"dataMovimento" db:"data_movimento"`
	Description           string          `json:"descricao" db:"descricao"`
	Value                 decimal.Decimal `json:"valor" db:"valor"`
	AccountLabel          string          `json:"contaBancaria" db:"conta_bancaria"`
	Category              string          `json:"categoria" db:"categoria"`
	DuplicataID           *int64          `json:"duplicataId,omitempty" db:"duplicata_id"`
	OperationID           *int64          `json:"operacaoId,omitempty" db:"operacao_id"`
	ExternalTransactionID *string         `json:"transactionId,omitempty" db:"transaction_id"`
}

type ManualMovementRequest struct {
	Date                  utils.Date      `json:"data" validate:"required"`
	Description           string          `json:"descricao" validate:"required"`
	Value                 decimal.Decimal `json:"valor"`
	BankAccountID         int64           `json:"contaBancariaId" validate:"required,gt=0"`
	Category              string          `json:"categoria"`
	ExternalTransactionID string          `json:"transactionId"`
}

// BankTransaction is the bank statement line being reconciled
type BankTransaction struct {
	ID     string          `json:"id" validate:"required"`
	Date   utils.Date      `json:"data" validate:"required"`
	Amount decimal.Decimal `json:"valor" validate:"gt=0"`
}

type ReconcileRequest struct {
	DuplicataIDs []int64         `json:"duplicataIds" validate:"required,min=1"`
	Transaction  BankTransaction `json:"detalhesTransacao"`
	AccountLabel string          `json:"contaBancaria" validate:"required"`
	Interest     decimal.Decimal `json:"juros" validate:"gte=0"`
	Discount     decimal.Decimal `json:"descontos" validate:"gte=0"`
}

type ReconcileResponse struct {
	Message string `json:"message"`
}

// OverdueSummary is the dashboard snapshot of pending duplicatas past due
type OverdueSummary struct {
	ReferenceDate utils.Date      `json:"dataReferencia" db:"-"`
	Count         int             `json:"quantidade" db:"quantidade"`
	Total         decimal.Decimal `json:"valorTotal" db:"valor_total"`
}
