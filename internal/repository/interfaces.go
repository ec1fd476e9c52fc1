package repository

import (
	"context"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

// TransitionFunc mutates a locked duplicata and returns the ledger effect to
// persist with it. Returning an error aborts the transaction.
type TransitionFunc func(d *domain.Duplicata) (domain.LedgerEffect, error)

// BatchFunc mutates a set of locked duplicatas and returns the ledger lines
// to insert with them. Returning an error aborts the transaction.
type BatchFunc func(duplicatas []*domain.Duplicata) ([]*domain.CashMovement, error)

// OperationTypeRepository defines read access to pricing policies
type OperationTypeRepository interface {
	// GetByID retrieves an operation type, sql.ErrNoRows when unknown
	GetByID(ctx context.Context, id int64) (*domain.OperationType, error)
}

// BankAccountRepository defines read access to registered accounts
type BankAccountRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.BankAccount, error)

	// FindByLabel resolves a "Bank - Agency/Account" label or a bare account
	// number to the registered account
	FindByLabel(ctx context.Context, label string) (*domain.BankAccount, error)
}

// OperationRepository defines the interface for operation data operations
type OperationRepository interface {
	// Create persists the operation and its duplicatas in one transaction
	Create(ctx context.Context, operation *domain.Operation, duplicatas []*domain.Duplicata) error

	GetByID(ctx context.Context, id int64) (*domain.Operation, error)

	// Approve sets the account and status and posts the payout debit atomically
	Approve(ctx context.Context, id int64, account *domain.BankAccount, fn func(op *domain.Operation) (*domain.CashMovement, error)) error

	// UpdateStatus changes the status of a pending operation
	UpdateStatus(ctx context.Context, id int64, fn func(op *domain.Operation) error) error

	// Delete removes the operation, its duplicatas and ledger lines; fn sees
	// the locked duplicatas first and may refuse
	Delete(ctx context.Context, id int64, fn BatchGuardFunc) error
}

// BatchGuardFunc inspects locked duplicatas without changing them
type BatchGuardFunc func(duplicatas []*domain.Duplicata) error

// DuplicataRepository defines the interface for duplicata data operations
type DuplicataRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Duplicata, error)

	// GetByIDs returns the duplicatas found, in id order
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Duplicata, error)

	// SearchOpen returns pending duplicatas of approved operations matching
	// debtor name or document number, earliest due date first
	SearchOpen(ctx context.Context, query string, limit int) ([]*domain.Duplicata, error)

	// Transition locks one duplicata, applies fn and persists the row and the
	// ledger effect in a single transaction
	Transition(ctx context.Context, id int64, fn TransitionFunc) (*domain.Duplicata, error)

	// TransitionBatch locks all ids, applies fn and persists rows and ledger
	// lines in a single transaction
	TransitionBatch(ctx context.Context, ids []int64, fn BatchFunc) error

	// OverdueSummary aggregates pending duplicatas due before the date
	OverdueSummary(ctx context.Context, before utils.Date) (*domain.OverdueSummary, error)
}

// MovementRepository defines the interface for cash ledger data operations
type MovementRepository interface {
	// Create inserts a ledger line; ErrDuplicateTransaction when the external
	// transaction id was already recorded
	Create(ctx context.Context, movement *domain.CashMovement) error

	GetByDuplicataID(ctx context.Context, duplicataID int64) ([]*domain.CashMovement, error)
}
