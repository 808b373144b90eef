package core

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

var (
	// ErrRecordNotFound is returned when a single-row finder matches nothing.
	ErrRecordNotFound = errors.New("record not found")
	// ErrUnknownColumn is returned when a field name has no column in the table.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNoPrimaryKey is returned when update or delete runs against a table
	// with no primary key. This is a misconfiguration, not a validation failure.
	ErrNoPrimaryKey = errors.New("table has no primary key")
	// ErrUnknownDialect is returned by Open for an unregistered driver name.
	ErrUnknownDialect = errors.New("unknown dialect")
	// ErrUnknownRelation is returned when a named foreign-key constraint
	// does not exist or is not a foreign key.
	ErrUnknownRelation = errors.New("unknown relation")
	// ErrDuplicateKey is wrapped by DBError for unique violations.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrForeignKey is wrapped by DBError for foreign key violations.
	ErrForeignKey = errors.New("foreign key constraint")
)

// genericSQLState is the fallback code when a driver error carries none.
const genericSQLState = "HY000"

// DBError is the single error type that crosses the model boundary for
// statement failures: a normalized code plus the driver's message. The raw
// driver error never leaks past Translate.
type DBError struct {
	Code    string
	Message string
	wrapped error
}

func (e *DBError) Error() string {
	return fmt.Sprintf("db error %s: %s", e.Code, e.Message)
}

func (e *DBError) Unwrap() error { return e.wrapped }

// Translate converts a driver error into a *DBError at the execution
// boundary. nil passes through.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		e := &DBError{Code: strconv.Itoa(int(myErr.Number)), Message: myErr.Message}
		if s := string(myErr.SQLState[:]); s != "\x00\x00\x00\x00\x00" && s != "" {
			e.Code = s
		}
		switch myErr.Number {
		case 1062:
			e.wrapped = ErrDuplicateKey
		case 1216, 1217, 1451, 1452:
			e.wrapped = ErrForeignKey
		}
		return e
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		e := &DBError{Code: string(pqErr.Code), Message: pqErr.Message}
		switch pqErr.Code {
		case "23505":
			e.wrapped = ErrDuplicateKey
		case "23503":
			e.wrapped = ErrForeignKey
		}
		return e
	}

	return &DBError{Code: genericSQLState, Message: err.Error()}
}
