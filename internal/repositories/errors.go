package repositories

import (
	"errors"

	apperrors "github.com/anonto42/moments/backend/internal/errors"
	"github.com/anonto42/moments/backend/internal/store"
	"gorm.io/gorm"
)

// storeError maps document store and GORM errors onto application errors.
func storeError(op, resource string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		e := apperrors.NotFound(resource)
		e.Op = op
		e.Err = err
		return e
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		e := apperrors.Conflict(resource + " already exists")
		e.Op = op
		e.Err = err
		return e
	}
	return apperrors.RemoteFailure(op, err)
}

func chunk(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
