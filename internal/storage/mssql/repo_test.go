package mssql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"sync"
	"testing"
)

// failingDriver opens connections whose BeginTx and ExecContext always fail,
// which is enough to drive Repository's error paths without a server.
type failingDriver struct{}

type failingConn struct{}

func (failingDriver) Open(string) (driver.Conn, error) { return failingConn{}, nil }

func (failingConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("prepare not supported") }
func (failingConn) Close() error                        { return nil }
func (failingConn) Begin() (driver.Tx, error)           { return nil, errors.New("begin not supported") }

func (failingConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return nil, errors.New("server unavailable")
}

func (failingConn) ExecContext(context.Context, string, []driver.NamedValue) (driver.Result, error) {
	return nil, errors.New("server unavailable")
}

var registerFailing sync.Once

func failingRepo(t *testing.T) *Repository {
	t.Helper()
	registerFailing.Do(func() { sql.Register("mssql_failing", failingDriver{}) })
	db, err := sql.Open("mssql_failing", "")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &Repository{db: db}
}

func TestNewRepositoryRejectsBadDSN(t *testing.T) {
	t.Parallel()

	_, _, err := NewRepository(context.Background(), Config{DSN: "sqlserver://%zz"})
	if err == nil || !strings.HasPrefix(err.Error(), "mssql dsn:") {
		t.Fatalf("NewRepository() error = %v, want mssql dsn error", err)
	}
}

func TestCopyFromWithoutConnection(t *testing.T) {
	t.Parallel()

	r := &Repository{}
	cols := []string{"product_id", "quantity"}

	n, err := r.CopyFrom(context.Background(), "dbo.ecom_unified", cols, nil)
	if err != nil || n != 0 {
		t.Fatalf("CopyFrom(no rows) = %d, %v; want 0, nil", n, err)
	}

	_, err = r.CopyFrom(context.Background(), "dbo.ecom_unified", cols, [][]any{{"1", int64(2)}, {"2"}})
	if err == nil || !strings.Contains(err.Error(), "row 1: length 1 != columns length 2") {
		t.Fatalf("CopyFrom(ragged) error = %v", err)
	}

	if err := r.Exec(context.Background(), " \n\t"); err != nil {
		t.Fatalf("Exec(blank) error = %v", err)
	}
}

func TestErrorsAreWrapped(t *testing.T) {
	t.Parallel()

	r := failingRepo(t)

	err := r.Exec(context.Background(), "TRUNCATE TABLE [dbo].[ecom_unified]")
	if err == nil || !strings.HasPrefix(err.Error(), "mssql: exec:") || !strings.Contains(err.Error(), "server unavailable") {
		t.Fatalf("Exec() error = %v", err)
	}

	n, err := r.CopyFrom(context.Background(), "dbo.ecom_top_products",
		[]string{"product_id", "quantity"}, [][]any{{"1", int64(3)}})
	if n != 0 || err == nil || !strings.HasPrefix(err.Error(), "mssql: begin tx:") {
		t.Fatalf("CopyFrom() = %d, %v; want begin tx error", n, err)
	}
}
