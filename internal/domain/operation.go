package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

const (
	OperationStatusPending  = "Pendente"
	OperationStatusApproved = "Aprovada"
	OperationStatusRejected = "Rejeitada"
)

// OperationType is the pricing policy of an operation: a flat fee when
// FixedFee > 0, a per-30-day rate otherwise.
type OperationType struct {
	ID                  int64           `json:"id" db:"id"`
	Name                string          `json:"nome" db:"nome"`
	InterestRate        decimal.Decimal `json:"taxaJuros" db:"taxa_juros"`
	FixedFee            decimal.Decimal `json:"valorFixo" db:"valor_fixo"`
	UseDebtorTerm       bool            `json:"usarPrazoSacado" db:"usar_prazo_sacado"`
	UseWeightOnFixedFee bool            `json:"usarPesoNoValorFixo" db:"usar_peso_no_valor_fixo"`
}

// IsFlatFee reports whether the flat fee branch applies. It wins over the
// rate when both are configured.
func (t *OperationType) IsFlatFee() bool {
	return t.FixedFee.GreaterThan(decimal.Zero)
}

// Operation represents one factoring transaction (borderô) for a client
type Operation struct {
	ID              int64           `json:"id" db:"id"`
	Date            utils.Date      `json:"dataOperacao" db:"data_operacao"`
	OperationTypeID int64           `json:"tipoOperacaoId" db:"tipo_operacao_id"`
	ClientID        int64           `json:"clienteId" db:"cliente_id"`
	BankAccountID   *int64          `json:"contaBancariaId,omitempty" db:"conta_bancaria_id"`
	GrossTotal      decimal.Decimal `json:"valorTotalBruto" db:"valor_total_bruto"`
	TotalInterest   decimal.Decimal `json:"valorTotalJuros" db:"valor_total_juros"`
	TotalDiscounts  decimal.Decimal `json:"valorTotalDescontos" db:"valor_total_descontos"`
	NetValue        decimal.Decimal `json:"valorLiquido" db:"valor_liquido"`
	Status          string          `json:"status" db:"status"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
}

// Balanced checks valor_liquido = bruto - juros - descontos within one cent.
func (o *Operation) Balanced() bool {
	expected := o.GrossTotal.Sub(o.TotalInterest).Sub(o.TotalDiscounts)
	return utils.WithinTolerance(expected, o.NetValue, utils.CentTolerance)
}

// BankAccount is a registered account that can receive or pay ledger entries
type BankAccount struct {
	ID      int64  `json:"id" db:"id"`
	Bank    string `json:"banco" db:"banco"`
	Agency  string `json:"agencia" db:"agencia"`
	Account string `json:"contaCorrente" db:"conta_corrente"`
}

// Label is the canonical account name used on ledger lines.
func (a *BankAccount) Label() string {
	return fmt.Sprintf("%s - %s/%s", a.Bank, a.Agency, a.Account)
}

// DTOs for requests and responses

type ComputeScheduleRequest struct {
	OperationDate   utils.Date      `json:"dataOperacao" validate:"required"`
	OperationTypeID int64           `json:"tipoOperacaoId" validate:"required,gt=0"`
	NoteValue       decimal.Decimal `json:"valorNf" validate:"gt=0"`
	Installments    int             `json:"parcelas" validate:"gte=0"`
	Offsets         string          `json:"prazos" validate:"required"`
	NoteDate        utils.Date      `json:"dataNf" validate:"required"`
	Weight          decimal.Decimal `json:"peso" validate:"gte=0"`
}

type ScheduleInstallmentResponse struct {
	Number       int             `json:"numeroParcela"`
	DueDate      utils.Date      `json:"dataVencimento"`
	FaceValue    decimal.Decimal `json:"valorParcela"`
	InterestPart decimal.Decimal `json:"jurosParcela"`
}

type ComputeScheduleResponse struct {
	TotalInterest decimal.Decimal               `json:"totalJuros"`
	NetValue      decimal.Decimal               `json:"valorLiquido"`
	Installments  []ScheduleInstallmentResponse `json:"parcelasCalculadas"`
}

type OperationDiscount struct {
	Description string          `json:"descricao" validate:"required"`
	Value       decimal.Decimal `json:"valor" validate:"gt=0"`
}

// NoteRequest is one invoice (NF-e or CT-e) inside an operation
type NoteRequest struct {
	DocumentNumber string          `json:"nfCte" validate:"required"`
	DebtorID       int64           `json:"sacadoId" validate:"required,gt=0"`
	NoteDate       utils.Date      `json:"dataNf" validate:"required"`
	NoteValue      decimal.Decimal `json:"valorNf" validate:"gt=0"`
	Installments   int             `json:"parcelas" validate:"gte=0"`
	Offsets        string          `json:"prazos" validate:"required"`
	Weight         decimal.Decimal `json:"peso" validate:"gte=0"`
}

type CreateOperationRequest struct {
	OperationDate   utils.Date          `json:"dataOperacao" validate:"required"`
	OperationTypeID int64               `json:"tipoOperacaoId" validate:"required,gt=0"`
	ClientID        int64               `json:"clienteId" validate:"required,gt=0"`
	Notes           []NoteRequest       `json:"notasFiscais" validate:"required,min=1,dive"`
	Discounts       []OperationDiscount `json:"descontos" validate:"dive"`
}

type CreateOperationResponse struct {
	Operation  *Operation   `json:"operacao"`
	Duplicatas []*Duplicata `json:"duplicatas"`
}

type ApproveOperationRequest struct {
	BankAccountID int64 `json:"contaBancariaId" validate:"required,gt=0"`
}
