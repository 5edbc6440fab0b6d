package apperr

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const (
	CodeValidation           = "validation"
	CodeDuplicateEntry       = "duplicate_entry"
	CodeReferentialIntegrity = "referential_integrity"
	CodeNotFound             = "not_found"
	CodeStoreUnavailable     = "store_unavailable"
)

type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return "app error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(code string, err error) *Error {
	return &Error{Code: code, Err: err}
}

func Newf(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}

// CodeOf returns the classification code of err, or "" for unclassified errors.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

func IsValidation(err error) bool           { return CodeOf(err) == CodeValidation }
func IsDuplicateEntry(err error) bool       { return CodeOf(err) == CodeDuplicateEntry }
func IsReferentialIntegrity(err error) bool { return CodeOf(err) == CodeReferentialIntegrity }
func IsNotFound(err error) bool             { return CodeOf(err) == CodeNotFound }
func IsStoreUnavailable(err error) bool     { return CodeOf(err) == CodeStoreUnavailable }

// MySQL server errno values the mutation paths care about.
const (
	mysqlErrDuplicateEntry   = 1062
	mysqlErrRowIsReferenced  = 1451
	mysqlErrNoReferencedRow  = 1452
	mysqlErrBadNullViolation = 1048
)

// ClassifyMySQL maps a raw store error onto the domain taxonomy. Already
// classified errors pass through untouched; anything unrecognized is returned
// as-is so callers keep the original cause.
func ClassifyMySQL(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return New(CodeNotFound, err)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrDuplicateEntry:
			return New(CodeDuplicateEntry, err)
		case mysqlErrRowIsReferenced, mysqlErrNoReferencedRow:
			return New(CodeReferentialIntegrity, err)
		case mysqlErrBadNullViolation:
			return New(CodeValidation, err)
		}
	}
	if errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, mysql.ErrBusyBuffer) {
		return New(CodeStoreUnavailable, err)
	}
	return err
}
