package apperrors

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// FromStoreError turns a raw GORM/MySQL error into a classified application
// error. entity names what was being touched ("user", "candidate") so the
// caller-facing message stays meaningful.
func FromStoreError(rawErr error, entity string) error {
	if rawErr == nil {
		return nil
	}

	switch {
	case errors.Is(rawErr, gorm.ErrRecordNotFound):
		return NotFound(entity + " not found")
	case errors.Is(rawErr, gorm.ErrDuplicatedKey):
		return InvalidInput(entity + " already exists")
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(rawErr, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062: // unique constraint violation
			return InvalidInput(entity + " already exists")
		case 1045, 1049, 1146:
			return Internal("database unavailable", rawErr)
		}
	}

	return Internal(fmt.Sprintf("%s operation failed", entity), rawErr)
}

// IsDuplicate reports whether err stems from a unique-constraint violation.
func IsDuplicate(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
