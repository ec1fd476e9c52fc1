package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	customError "github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/errors"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

const selectDuplicata = `
	SELECT d.id, d.operacao_id, d.sacado_id, s.nome AS sacado_nome,
		COALESCE(c.ramo_de_atividade, '') AS ramo_de_atividade,
		d.numero_documento, d.valor_bruto, d.valor_juros, d.data_vencimento,
		d.status_recebimento, d.data_liquidacao, d.conta_liquidacao, d.juros_mora, d.desconto
	FROM duplicatas d
	JOIN sacados s ON s.id = d.sacado_id
	JOIN operacoes o ON o.id = d.operacao_id
	JOIN clientes c ON c.id = o.cliente_id
`

type duplicataRepository struct {
	db *sqlx.DB
}

func NewDuplicataRepository(db *sqlx.DB) DuplicataRepository {
	return &duplicataRepository{db: db}
}

func (r *duplicataRepository) GetByID(ctx context.Context, id int64) (*domain.Duplicata, error) {
	var duplicata domain.Duplicata
	err := r.db.GetContext(ctx, &duplicata, selectDuplicata+` WHERE d.id = $1`, id)
	if err != nil {
		return nil, err
	}

	return &duplicata, nil
}

func (r *duplicataRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Duplicata, error) {
	var duplicatas []*domain.Duplicata
	err := r.db.SelectContext(ctx, &duplicatas, selectDuplicata+` WHERE d.id = ANY($1) ORDER BY d.id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}

	return duplicatas, nil
}

func (r *duplicataRepository) SearchOpen(ctx context.Context, query string, limit int) ([]*domain.Duplicata, error) {
	sqlQuery := selectDuplicata + `
		WHERE d.status_recebimento = $1
		  AND o.status = $2
		  AND (s.nome ILIKE $3 OR d.numero_documento ILIKE $3)
		ORDER BY d.data_vencimento ASC, d.id ASC
		LIMIT $4
	`

	pattern := "%" + escapeLike(query) + "%"

	var duplicatas []*domain.Duplicata
	err := r.db.SelectContext(ctx, &duplicatas, sqlQuery,
		domain.DuplicataStatusPending,
		domain.OperationStatusApproved,
		pattern,
		limit,
	)
	if err != nil {
		return nil, err
	}

	return duplicatas, nil
}

func (r *duplicataRepository) Transition(ctx context.Context, id int64, fn TransitionFunc) (*domain.Duplicata, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var duplicata domain.Duplicata
	if err = tx.GetContext(ctx, &duplicata, selectDuplicata+` WHERE d.id = $1 FOR UPDATE OF d`, id); err != nil {
		return nil, err
	}

	effect, err := fn(&duplicata)
	if err != nil {
		return nil, err
	}

	if err = updateSettlement(ctx, tx, &duplicata); err != nil {
		return nil, err
	}

	if effect.DeleteLinked {
		if err = deleteLinkedMovements(ctx, tx, duplicata.ID); err != nil {
			return nil, err
		}
	}

	if effect.Credit != nil {
		if err = insertMovement(ctx, tx, effect.Credit); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &duplicata, nil
}

func (r *duplicataRepository) TransitionBatch(ctx context.Context, ids []int64, fn BatchFunc) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Lock in id order so concurrent batches cannot deadlock each other.
	var duplicatas []*domain.Duplicata
	err = tx.SelectContext(ctx, &duplicatas, selectDuplicata+` WHERE d.id = ANY($1) ORDER BY d.id FOR UPDATE OF d`, pq.Array(ids))
	if err != nil {
		return err
	}

	movements, err := fn(duplicatas)
	if err != nil {
		return err
	}

	for _, movement := range movements {
		if err = insertMovement(ctx, tx, movement); err != nil {
			return err
		}
	}

	for _, duplicata := range duplicatas {
		if err = updateSettlement(ctx, tx, duplicata); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *duplicataRepository) OverdueSummary(ctx context.Context, before utils.Date) (*domain.OverdueSummary, error) {
	query := `
		SELECT COUNT(*) AS quantidade, COALESCE(SUM(d.valor_bruto), 0) AS valor_total
		FROM duplicatas d
		JOIN operacoes o ON o.id = d.operacao_id
		WHERE d.status_recebimento = $1 AND o.status = $2 AND d.data_vencimento < $3
	`

	var summary domain.OverdueSummary
	err := r.db.GetContext(ctx, &summary, query, domain.DuplicataStatusPending, domain.OperationStatusApproved, before)
	if err != nil {
		return nil, err
	}
	summary.ReferenceDate = before

	return &summary, nil
}

// deleteLinkedMovements removes the ledger lines of a duplicata. When a line
// came from a reconciliation and no other duplicata of that bank transaction
// still has its credit, the transaction's interest and discount lines go too,
// so the statement line can be reconciled again.
func deleteLinkedMovements(ctx context.Context, tx *sqlx.Tx, duplicataID int64) error {
	var lineIDs []sql.NullString
	err := tx.SelectContext(ctx, &lineIDs,
		`DELETE FROM movimentacoes_caixa WHERE duplicata_id = $1 RETURNING transaction_id`, duplicataID)
	if err != nil {
		return err
	}

	for _, lineID := range lineIDs {
		if !lineID.Valid {
			continue
		}
		bankTxID, ok := domain.BankTransactionID(lineID.String)
		if !ok {
			continue
		}

		_, err = tx.ExecContext(ctx, `
			DELETE FROM movimentacoes_caixa
			WHERE transaction_id = ANY($1)
			  AND NOT EXISTS (
				SELECT 1 FROM movimentacoes_caixa
				WHERE duplicata_id IS NOT NULL AND transaction_id LIKE $2
			  )
		`,
			pq.Array([]string{
				domain.LineTransactionID(bankTxID, domain.InterestLineSuffix),
				domain.LineTransactionID(bankTxID, domain.DiscountLineSuffix),
			}),
			escapeLike(bankTxID)+"#%",
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func updateSettlement(ctx context.Context, tx *sqlx.Tx, duplicata *domain.Duplicata) error {
	query := `
		UPDATE duplicatas
		SET status_recebimento = $2, data_liquidacao = $3, conta_liquidacao = $4, juros_mora = $5, desconto = $6
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, query,
		duplicata.ID,
		duplicata.Status,
		duplicata.SettlementDate,
		duplicata.SettlementAccount,
		duplicata.LateInterest,
		duplicata.Discount,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows != 1 {
		return customError.WrapDatabaseError(fmt.Errorf("duplicata %d: expected 1 row updated, got %d: %w", duplicata.ID, rows, sql.ErrNoRows))
	}
	return nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
