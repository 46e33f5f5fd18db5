package service

import (
	"errors"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Caller-facing error taxonomy. Handlers map these onto HTTP statuses with
// errors.Is; anything else is an infrastructure failure.
var (
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrInvalidMode      = errors.New("unknown payment mode")
	ErrDuplicateEntry   = errors.New("ledger entry already exists for this student, category and year")
	ErrOverpayment      = errors.New("amount exceeds remaining balance")
	ErrHasPayments      = errors.New("entry has recorded payments and cannot be deleted without cascade")
	ErrInactiveCategory = errors.New("category is inactive")
	ErrNoClasses        = errors.New("no classes selected")
	ErrNotFound         = errors.New("record not found")
	ErrNotAuthorized    = errors.New("operation requires an authorization capability")
)

// isDuplicateKeyErr reports whether err is a unique-index violation. The
// (student, category, year) key is enforced by the database, so a concurrent
// generation run surfaces as MySQL error 1062 here.
func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldrv.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
