package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
)

const selectOperation = `
	SELECT id, data_operacao, tipo_operacao_id, cliente_id, conta_bancaria_id, valor_total_bruto,
		valor_total_juros, valor_total_descontos, valor_liquido, status, created_at
	FROM operacoes
`

type operationRepository struct {
	db *sqlx.DB
}

func NewOperationRepository(db *sqlx.DB) OperationRepository {
	return &operationRepository{db: db}
}

func (r *operationRepository) Create(ctx context.Context, operation *domain.Operation, duplicatas []*domain.Duplicata) error {
	operationQuery := `
		INSERT INTO operacoes (data_operacao, tipo_operacao_id, cliente_id, valor_total_bruto, valor_total_juros, valor_total_descontos, valor_liquido, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	duplicataQuery := `
		INSERT INTO duplicatas (operacao_id, sacado_id, numero_documento, valor_bruto, valor_juros, data_vencimento, status_recebimento)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, operationQuery,
		operation.Date,
		operation.OperationTypeID,
		operation.ClientID,
		operation.GrossTotal,
		operation.TotalInterest,
		operation.TotalDiscounts,
		operation.NetValue,
		operation.Status,
	).Scan(&operation.ID, &operation.CreatedAt)
	if err != nil {
		return err
	}

	for _, duplicata := range duplicatas {
		duplicata.OperationID = operation.ID
		err = tx.QueryRowxContext(ctx, duplicataQuery,
			duplicata.OperationID,
			duplicata.DebtorID,
			duplicata.DocumentNumber,
			duplicata.FaceValue,
			duplicata.Interest,
			duplicata.DueDate,
			duplicata.Status,
		).Scan(&duplicata.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *operationRepository) GetByID(ctx context.Context, id int64) (*domain.Operation, error) {
	var operation domain.Operation
	err := r.db.GetContext(ctx, &operation, selectOperation+` WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}

	return &operation, nil
}

func (r *operationRepository) Approve(ctx context.Context, id int64, account *domain.BankAccount, fn func(op *domain.Operation) (*domain.CashMovement, error)) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var operation domain.Operation
	if err = tx.GetContext(ctx, &operation, selectOperation+` WHERE id = $1 FOR UPDATE`, id); err != nil {
		return err
	}

	debit, err := fn(&operation)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE operacoes SET status = $2, conta_bancaria_id = $3 WHERE id = $1`,
		operation.ID, operation.Status, account.ID,
	)
	if err != nil {
		return err
	}

	if debit != nil {
		if err = insertMovement(ctx, tx, debit); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *operationRepository) UpdateStatus(ctx context.Context, id int64, fn func(op *domain.Operation) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var operation domain.Operation
	if err = tx.GetContext(ctx, &operation, selectOperation+` WHERE id = $1 FOR UPDATE`, id); err != nil {
		return err
	}

	if err = fn(&operation); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE operacoes SET status = $2 WHERE id = $1`, operation.ID, operation.Status); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *operationRepository) Delete(ctx context.Context, id int64, fn BatchGuardFunc) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var operationID int64
	if err = tx.GetContext(ctx, &operationID, `SELECT id FROM operacoes WHERE id = $1 FOR UPDATE`, id); err != nil {
		return err
	}

	var duplicatas []*domain.Duplicata
	err = tx.SelectContext(ctx, &duplicatas, selectDuplicata+` WHERE d.operacao_id = $1 ORDER BY d.id FOR UPDATE OF d`, id)
	if err != nil {
		return err
	}

	if err = fn(duplicatas); err != nil {
		return err
	}

	statements := []string{
		`DELETE FROM movimentacoes_caixa WHERE operacao_id = $1 OR duplicata_id IN (SELECT id FROM duplicatas WHERE operacao_id = $1)`,
		`DELETE FROM duplicatas WHERE operacao_id = $1`,
		`DELETE FROM operacoes WHERE id = $1`,
	}
	for _, statement := range statements {
		if _, err = tx.ExecContext(ctx, statement, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}
