package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/logger"
)

// cachedOperationTypeRepository is a read-through redis cache in front of
// the operation type table. Cache failures fall back to the database.
type cachedOperationTypeRepository struct {
	next  OperationTypeRepository
	redis redis.Cmdable
	ttl   time.Duration
	log   zerolog.Logger
}

func NewCachedOperationTypeRepository(next OperationTypeRepository, client redis.Cmdable, ttl time.Duration) OperationTypeRepository {
	return &cachedOperationTypeRepository{
		next:  next,
		redis: client,
		ttl:   ttl,
		log:   logger.WithComponent("operation-type-cache"),
	}
}

func operationTypeKey(id int64) string {
	return fmt.Sprintf("tipo_operacao:%d", id)
}

func (r *cachedOperationTypeRepository) GetByID(ctx context.Context, id int64) (*domain.OperationType, error) {
	key := operationTypeKey(id)

	raw, err := r.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var operationType domain.OperationType
		if jsonErr := json.Unmarshal(raw, &operationType); jsonErr == nil {
			return &operationType, nil
		}
		r.log.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		r.log.Warn().Err(err).Str("key", key).Msg("Cache read failed, using database")
	}

	operationType, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(operationType)
	if err == nil {
		if setErr := r.redis.Set(ctx, key, payload, r.ttl).Err(); setErr != nil {
			r.log.Warn().Err(setErr).Str("key", key).Msg("Cache write failed")
		}
	}

	return operationType, nil
}
