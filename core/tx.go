package core

import (
	"database/sql"
)

// Tx represents a database transaction opened by DB.Transaction.
type Tx struct {
	db    *DB
	sqlTx *sql.Tx
}

// Exec runs a statement within the transaction.
func (tx *Tx) Exec(query string, args ...any) (sql.Result, error) {
	res, err := tx.sqlTx.Exec(query, args...)
	if err != nil {
		return nil, Translate(err)
	}
	return res, nil
}

// Query runs a query within the transaction.
func (tx *Tx) Query(query string, args ...any) (*sql.Rows, error) {
	rows, err := tx.sqlTx.Query(query, args...)
	if err != nil {
		return nil, Translate(err)
	}
	return rows, nil
}

// Commit commits the transaction.
func (tx *Tx) Commit() error {
	return tx.sqlTx.Commit()
}

// Rollback rolls back the transaction.
func (tx *Tx) Rollback() error {
	return tx.sqlTx.Rollback()
}
