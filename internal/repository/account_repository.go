package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
)

type bankAccountRepository struct {
	db *sqlx.DB
}

func NewBankAccountRepository(db *sqlx.DB) BankAccountRepository {
	return &bankAccountRepository{db: db}
}

func (r *bankAccountRepository) GetByID(ctx context.Context, id int64) (*domain.BankAccount, error) {
	query := `SELECT id, banco, agencia, conta_corrente FROM contas_bancarias WHERE id = $1`

	var account domain.BankAccount
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		return nil, err
	}

	return &account, nil
}

// FindByLabel accepts the canonical label or just the account number, which
// is what bank statement imports carry.
func (r *bankAccountRepository) FindByLabel(ctx context.Context, label string) (*domain.BankAccount, error) {
	query := `
		SELECT id, banco, agencia, conta_corrente
		FROM contas_bancarias
		WHERE banco || ' - ' || agencia || '/' || conta_corrente = $1 OR conta_corrente = $1
		ORDER BY id
		LIMIT 1
	`

	var account domain.BankAccount
	if err := r.db.GetContext(ctx, &account, query, strings.TrimSpace(label)); err != nil {
		return nil, err
	}

	return &account, nil
}

type operationTypeRepository struct {
	db *sqlx.DB
}

func NewOperationTypeRepository(db *sqlx.DB) OperationTypeRepository {
	return &operationTypeRepository{db: db}
}

func (r *operationTypeRepository) GetByID(ctx context.Context, id int64) (*domain.OperationType, error) {
	query := `
		SELECT id, nome, taxa_juros, valor_fixo, usar_prazo_sacado, usar_peso_no_valor_fixo
		FROM tipos_operacao
		WHERE id = $1
	`

	var operationType domain.OperationType
	if err := r.db.GetContext(ctx, &operationType, query, id); err != nil {
		return nil, err
	}

	return &operationType, nil
}
