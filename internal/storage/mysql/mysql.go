package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"estimate-backend/internal/config"
	"estimate-backend/internal/storage"
)

type Storage struct {
	db *sql.DB
}

// DSN builds the driver connection string. Migrations need multi-statement
// support, the rest of the code does not care.
func DSN(cfg config.DB) string {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	c.DBName = cfg.Name
	c.ParseTime = true
	c.Loc = time.UTC
	c.MultiStatements = true
	// affected rows count matched rows, so an update to the same value is
	// not mistaken for a missing row
	c.ClientFoundRows = true
	return c.FormatDSN()
}

func New(cfg config.DB) (*Storage, error) {
	const op = "storage.mysql.New"

	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// NewFromDB wraps an open handle, used by tests.
func NewFromDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// MySQL server error numbers the storage translates.
const (
	errDuplicateEntry    = 1062
	errRowIsReferenced   = 1451
	errNoReferencedRow   = 1452
	errCheckConstraint   = 3819
	errLockWaitTimeout   = 1205
	errDeadlockRollbacks = 1213
)

// mapError turns driver errors into the storage error types.
func mapError(err error, entity string) error {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return err
	}
	switch myErr.Number {
	case errDuplicateEntry:
		return storage.Conflict(fmt.Sprintf("%s already exists", entity))
	case errNoReferencedRow:
		return &storage.NotFoundError{Entity: "referenced row of " + entity}
	case errRowIsReferenced:
		return storage.Conflict(fmt.Sprintf("%s is still referenced", entity))
	case errCheckConstraint:
		return storage.Invalid(entity, myErr.Message)
	case errLockWaitTimeout, errDeadlockRollbacks:
		return storage.Conflict("concurrent update, retry")
	}
	return err
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// exists reports whether a row with the id is present in table. table is
// always a constant from this package.
func exists(ctx context.Context, q queryer, table string, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
