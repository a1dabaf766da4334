package repository

import (
	"errors"

	"gorm.io/gorm"

	"go-inventory-tims/internal/apperr"
)

// translate maps gorm errors onto the domain taxonomy.
func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Duplicate("%s already exists", entity)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperr.Invalid("%s references a record that does not exist", entity)
	default:
		return err
	}
}
