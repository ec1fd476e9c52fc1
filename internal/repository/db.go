package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	customError "github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/errors"
)

const (
	pqUniqueViolation = "23505"

	// Name of the unique constraint on movimentacoes_caixa.transaction_id
	transactionIDConstraint = "uq_movimentacoes_caixa_transaction_id"
)

// execer is satisfied by both *sqlx.DB and *sqlx.Tx
type execer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// mapInsertError turns a unique violation on the ledger transaction id into
// a duplicate-transaction conflict.
func mapInsertError(err error, movement *domain.CashMovement) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation && pqErr.Constraint == transactionIDConstraint {
		transactionID := ""
		if movement != nil && movement.ExternalTransactionID != nil {
			transactionID = *movement.ExternalTransactionID
		}
		return customError.WrapDuplicateTransaction(transactionID)
	}
	return err
}

func insertMovement(ctx context.Context, db execer, movement *domain.CashMovement) error {
	query := `
		INSERT INTO movimentacoes_caixa (data_movimento, descricao, valor, conta_bancaria, categoria, duplicata_id, operacao_id, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := db.QueryRowxContext(ctx, query,
		movement.Date,
		movement.Description,
		movement.Value,
		movement.AccountLabel,
		movement.Category,
		movement.DuplicataID,
		movement.OperationID,
		movement.ExternalTransactionID,
	).Scan(&movement.ID)

	return mapInsertError(err, movement)
}
