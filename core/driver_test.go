package core

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/nerdsrescueme/norm/dialect"
	"github.com/nerdsrescueme/norm/pool"
)

// fakeEngine is an in-memory driver backend. Catalog queries are answered
// from the fixture tables below; data queries are answered from rows
// scripted per test; every statement is recorded.
type fakeEngine struct {
	mu    sync.Mutex
	execs []statement
	// rows answers the next data queries in order.
	rows []scriptedRows
	// execErr fails the next exec.
	execErr error

	commits   int
	rollbacks int
}

type statement struct {
	query string
	args  []driver.Value
}

type scriptedRows struct {
	columns []string
	values  [][]driver.Value
}

func (e *fakeEngine) record(query string, args []driver.NamedValue) statement {
	vals := make([]driver.Value, len(args))
	for i, a := range args {
		vals[i] = a.Value
	}
	return statement{query: query, args: vals}
}

func (e *fakeEngine) script(columns []string, values ...[]driver.Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = append(e.rows, scriptedRows{columns: columns, values: values})
}

func (e *fakeEngine) lastExec() statement {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.execs) == 0 {
		return statement{}
	}
	return e.execs[len(e.execs)-1]
}

// Fixture catalog: a users table with a single-column primary key and a
// foreign key to groups.
var fixtureColumns = map[string][][]driver.Value{
	"users": {
		{"id", nil, "NO", "int", "int(10) unsigned", "PRI", "auto_increment", ""},
		{"name", nil, "NO", "varchar", "varchar(50)", "", "", ""},
		{"email", nil, "YES", "varchar", "varchar(100)", "UNI", "", ""},
		{"active", nil, "YES", "tinyint", "tinyint(1)", "", "", ""},
		{"group_id", nil, "YES", "int", "int(10) unsigned", "MUL", "", ""},
	},
	"groups": {
		{"id", nil, "NO", "int", "int(10) unsigned", "PRI", "auto_increment", ""},
		{"title", nil, "NO", "varchar", "varchar(50)", "", "", ""},
	},
	"notes": {
		{"body", nil, "YES", "varchar", "varchar(255)", "", "", ""},
	},
}

var fixtureConstraints = map[string][][]driver.Value{
	"users": {
		{"PRIMARY", "PRIMARY KEY"},
		{"email", "UNIQUE"},
		{"users-group_id-groups-id", "FOREIGN KEY"},
	},
	"groups": {
		{"PRIMARY", "PRIMARY KEY"},
		{"users-group_id-groups-id", "FOREIGN KEY"},
	},
	"notes": {},
}

func (e *fakeEngine) query(query string, args []driver.NamedValue) (driver.Rows, error) {
	if strings.Contains(query, "information_schema.COLUMNS") {
		table, _ := args[1].Value.(string)
		rows, ok := fixtureColumns[table]
		if !ok {
			return nil, fmt.Errorf("no fixture for table %q", table)
		}
		return &fakeRows{columns: catalogColumnNames, values: rows}, nil
	}
	if strings.Contains(query, "TABLE_CONSTRAINTS") {
		table, _ := args[1].Value.(string)
		return &fakeRows{columns: []string{"CONSTRAINT_NAME", "CONSTRAINT_TYPE"}, values: fixtureConstraints[table]}, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.execs = append(e.execs, e.record(query, args))
	if len(e.rows) == 0 {
		return &fakeRows{columns: []string{}}, nil
	}
	next := e.rows[0]
	e.rows = e.rows[1:]
	return &fakeRows{columns: next.columns, values: next.values}, nil
}

var catalogColumnNames = []string{
	"COLUMN_NAME", "COLUMN_DEFAULT", "IS_NULLABLE", "DATA_TYPE",
	"COLUMN_TYPE", "COLUMN_KEY", "EXTRA", "COLUMN_COMMENT",
}

func (e *fakeEngine) exec(query string, args []driver.NamedValue) (driver.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.execs = append(e.execs, e.record(query, args))
	if e.execErr != nil {
		err := e.execErr
		e.execErr = nil
		return nil, err
	}
	return driver.RowsAffected(1), nil
}

type fakeConnector struct {
	engine *fakeEngine
}

func (c *fakeConnector) Connect(context.Context) (driver.Conn, error) {
	return &fakeConn{engine: c.engine}, nil
}

func (c *fakeConnector) Driver() driver.Driver { return fakeDriver{} }

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) {
	return nil, fmt.Errorf("use the connector")
}

type fakeConn struct {
	engine *fakeEngine
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, fmt.Errorf("prepare not supported")
}

func (c *fakeConn) Close() error              { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) { return &fakeTx{engine: c.engine}, nil }

func (c *fakeConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	return c.engine.query(query, args)
}

func (c *fakeConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	return c.engine.exec(query, args)
}

type fakeTx struct {
	engine *fakeEngine
}

func (tx *fakeTx) Commit() error {
	tx.engine.mu.Lock()
	defer tx.engine.mu.Unlock()
	tx.engine.commits++
	return nil
}

func (tx *fakeTx) Rollback() error {
	tx.engine.mu.Lock()
	defer tx.engine.mu.Unlock()
	tx.engine.rollbacks++
	return nil
}

type fakeRows struct {
	columns []string
	values  [][]driver.Value
	pos     int
}

func (r *fakeRows) Columns() []string { return r.columns }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.pos])
	r.pos++
	return nil
}

func newFakeSQLDB(t *testing.T, engine *fakeEngine) *sql.DB {
	t.Helper()
	sqlDB := sql.OpenDB(&fakeConnector{engine: engine})
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

// newTestDB wires a DB over the fake engine with the mysql dialect.
func newTestDB(t *testing.T) (*DB, *fakeEngine) {
	t.Helper()
	engine := &fakeEngine{}
	sqlDB := newFakeSQLDB(t, engine)

	d, ok := dialect.Get("mysql")
	if !ok {
		t.Fatal("mysql dialect not registered")
	}
	db := New(pool.NewStdPool(sqlDB), d, nil)
	db.SetLogger(nil)
	return db, engine
}
