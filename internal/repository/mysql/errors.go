package mysql

import (
	"errors"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const (
	errDupEntry      = 1062
	errNoReferenced2 = 1452
)

// isDuplicateKey reports a unique index violation, translated by gorm or raw from the driver
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDupEntry
}

// isMissingParent reports a foreign key violation on insert
func isMissingParent(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errNoReferenced2
}
