package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	customError "github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/errors"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

// Settlement status of a duplicata
const (
	DuplicataStatusPending  = "Pendente"
	DuplicataStatusReceived = "Recebido"
)

// Duplicata represents one receivable installment
type Duplicata struct {
	ID                int64           `json:"id" db:"id"`
	OperationID       int64           `json:"operacaoId" db:"operacao_id"`
	DebtorID          int64           `json:"sacadoId" db:"sacado_id"`
	DebtorName        string          `json:"clienteSacado" db:"sacado_nome"`
	ClientSegment     string          `json:"ramoAtividade" db:"ramo_de_atividade"`
	DocumentNumber    string          `json:"nfCte" db:"numero_documento"`
	FaceValue         decimal.Decimal `json:"valorBruto" db:"valor_bruto"`
	Interest          decimal.Decimal `json:"valorJuros" db:"valor_juros"`
	DueDate           utils.Date      `json:"dataVencimento" db:"data_vencimento"`
	Status            string          `json:"statusRecebimento" db:"status_recebimento"`
	SettlementDate    *utils.Date     `json:"dataLiquidacao" db:"data_liquidacao"`
	SettlementAccount *string         `json:"contaLiquidacao" db:"conta_liquidacao"`
	LateInterest      decimal.Decimal `json:"jurosMora" db:"juros_mora"`
	Discount          decimal.Decimal `json:"desconto" db:"desconto"`
}

// LedgerEffect is the cash-ledger side of a state transition. The repository
// applies it in the same transaction as the duplicata row update.
type LedgerEffect struct {
	Credit       *CashMovement
	DeleteLinked bool
}

// DocumentNumberFor composes "{numeroDocumento}.{parcela}".
func DocumentNumberFor(documentNumber string, installment int) string {
	return fmt.Sprintf("%s.%d", documentNumber, installment)
}

// BaseDocumentNumber strips the installment suffix: "1234.2" -> "1234".
func (d *Duplicata) BaseDocumentNumber() string {
	if i := strings.LastIndex(d.DocumentNumber, "."); i > 0 {
		return d.DocumentNumber[:i]
	}
	return d.DocumentNumber
}

// DocumentType is "CT-e" for clients in the freight segment, "NF-e" otherwise.
func (d *Duplicata) DocumentType(freightSegment string) string {
	if freightSegment != "" && strings.EqualFold(strings.TrimSpace(d.ClientSegment), freightSegment) {
		return "CT-e"
	}
	return "NF-e"
}

func (d *Duplicata) IsPending() bool {
	return d.Status == DuplicataStatusPending
}

func (d *Duplicata) IsReceived() bool {
	return d.Status == DuplicataStatusReceived
}

func (d *Duplicata) requirePending() error {
	if !d.IsPending() {
		return customError.WrapStateConflict("duplicata %d (%s) is already settled", d.ID, d.DocumentNumber)
	}
	return nil
}

// Settle moves a pending duplicata to Received. When account is not nil a
// credit of face value + mora - discount is posted to it.
func (d *Duplicata) Settle(date utils.Date, lateInterest, discount decimal.Decimal, account *BankAccount) (LedgerEffect, error) {
	if err := d.requirePending(); err != nil {
		return LedgerEffect{}, err
	}

	lateInterest = utils.ToCurrency(lateInterest)
	discount = utils.ToCurrency(discount)

	settled := date
	d.Status = DuplicataStatusReceived
	d.SettlementDate = &settled
	d.LateInterest = lateInterest
	d.Discount = discount
	d.SettlementAccount = nil

	if account == nil {
		return LedgerEffect{}, nil
	}

	label := account.Label()
	d.SettlementAccount = &label

	duplicataID, operationID := d.ID, d.OperationID
	credit := &CashMovement{
		Date:         date,
		Description:  fmt.Sprintf("Recebimento %s - %s", d.DocumentNumber, d.DebtorName),
		Value:        utils.ToCurrency(d.FaceValue.Add(lateInterest).Sub(discount)),
		AccountLabel: label,
		Category:     MovementCategoryReceipt,
		DuplicataID:  &duplicataID,
		OperationID:  &operationID,
	}
	return LedgerEffect{Credit: credit}, nil
}

// SettleWithoutCredit marks the duplicata received with no cash posting.
func (d *Duplicata) SettleWithoutCredit(date utils.Date) (LedgerEffect, error) {
	if err := d.requirePending(); err != nil {
		return LedgerEffect{}, err
	}

	settled := date
	d.Status = DuplicataStatusReceived
	d.SettlementDate = &settled
	d.SettlementAccount = nil
	d.LateInterest = decimal.Zero
	d.Discount = decimal.Zero
	return LedgerEffect{}, nil
}

// SettleBuyback records a repurchase by the client. Only the settlement date
// changes; ledger links are left exactly as they are.
func (d *Duplicata) SettleBuyback(date utils.Date) (LedgerEffect, error) {
	if err := d.requirePending(); err != nil {
		return LedgerEffect{}, err
	}

	settled := date
	d.Status = DuplicataStatusReceived
	d.SettlementDate = &settled
	return LedgerEffect{}, nil
}

// MarkReconciled settles the duplicata from a matched bank statement line.
// Ledger lines are built by the caller for the whole batch.
func (d *Duplicata) MarkReconciled(date utils.Date, accountLabel string) error {
	if err := d.requirePending(); err != nil {
		return err
	}

	settled, label := date, accountLabel
	d.Status = DuplicataStatusReceived
	d.SettlementDate = &settled
	d.SettlementAccount = &label
	return nil
}

// Reverse undoes a settlement and drops the linked ledger lines.
func (d *Duplicata) Reverse() (LedgerEffect, error) {
	if !d.IsReceived() {
		return LedgerEffect{}, customError.WrapStateConflict("duplicata %d (%s) is not settled", d.ID, d.DocumentNumber)
	}

	d.Status = DuplicataStatusPending
	d.SettlementDate = nil
	d.SettlementAccount = nil
	d.LateInterest = decimal.Zero
	d.Discount = decimal.Zero
	return LedgerEffect{DeleteLinked: true}, nil
}

// DTOs for requests and responses

type SettleRequest struct {
	DuplicataID    int64           `json:"duplicataId"`
	SettlementDate *utils.Date     `json:"dataLiquidacao"`
	LateInterest   decimal.Decimal `json:"jurosMora" validate:"gte=0"`
	Discount       decimal.Decimal `json:"desconto" validate:"gte=0"`
	BankAccountID  *int64          `json:"contaBancariaId"`
}

type BulkSettleItem struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

type BulkSettleRequest struct {
	Items          []BulkSettleItem `json:"liquidacoes" validate:"dive"`
	SettlementDate *utils.Date      `json:"dataLiquidacao"`
	LateInterest   decimal.Decimal  `json:"jurosMora" validate:"gte=0"`
	Discount       decimal.Decimal  `json:"desconto" validate:"gte=0"`
	BankAccountID  *int64           `json:"contaBancariaId"`
}

type BuybackRequest struct {
	SettlementDate *utils.Date `json:"dataLiquidacao"`
}
