package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
)

type movementRepository struct {
	db *sqlx.DB
}

func NewMovementRepository(db *sqlx.DB) MovementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) Create(ctx context.Context, movement *domain.CashMovement) error {
	return insertMovement(ctx, r.db, movement)
}

func (r *movementRepository) GetByDuplicataID(ctx context.Context, duplicataID int64) ([]*domain.CashMovement, error) {
	query := `
		SELECT id, data_movimento, descricao, valor, conta_bancaria, categoria, duplicata_id, operacao_id, transaction_id
		FROM movimentacoes_caixa
		WHERE duplicata_id = $1
		ORDER BY id
	`

	var movements []*domain.CashMovement
	if err := r.db.SelectContext(ctx, &movements, query, duplicataID); err != nil {
		return nil, err
	}

	return movements, nil
}
