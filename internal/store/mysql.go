package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// querier is satisfied by both *sql.DB and *sql.Tx so every repository
// method works inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// mysqlStore is the shared state behind the MySQL repositories.
type mysqlStore struct {
	db *sql.DB
}

// NewMySQLStore wires the MySQL repositories over one connection pool.
func NewMySQLStore(db *sql.DB) *Store {
	s := &mysqlStore{db: db}
	return &Store{
		Medicines:     &mysqlMedicines{s},
		Carts:         &mysqlCarts{s},
		Orders:        &mysqlOrders{s},
		Notifications: &mysqlNotifications{s},
		Users:         &mysqlUsers{s},
		Tx:            s,
	}
}

// q returns the transaction bound to ctx, or the pool.
func (s *mysqlStore) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// inTx reports whether ctx already carries a transaction.
func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*sql.Tx)
	return ok
}

// WithTransaction runs fn inside a serializable transaction. Nested calls
// join the outer transaction instead of opening a new one.
func (s *mysqlStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer tx.Rollback() // Safety net

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// isDuplicate reports whether err is a MySQL duplicate-key rejection (1062).
func isDuplicate(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
