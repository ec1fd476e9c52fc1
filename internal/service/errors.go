package service

import (
	"database/sql"
	"errors"

	customError "github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/errors"
)

// wrapRepoError keeps business errors raised inside a transaction callback,
// maps missing rows to NotFound and treats anything else as an opaque
// persistence failure.
func wrapRepoError(err error, entity string, id interface{}) error {
	if err == nil {
		return nil
	}

	var be *customError.BusinessError
	if errors.As(err, &be) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapNotFound(entity, id)
	}

	return customError.WrapDatabaseError(err)
}
