package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nayoon/stock-service/internal/core/domain"
)

var ErrOptimisticLock = errors.New("optimistic lock conflict")

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

var schemas = map[string]string{
	DriverMySQL: `
		CREATE TABLE IF NOT EXISTS stock (
			stock_id      BIGINT AUTO_INCREMENT PRIMARY KEY,
			product_id    BIGINT NOT NULL,
			initial_stock INT NOT NULL,
			version       INT NOT NULL DEFAULT 0,
			created_at    DATETIME(6) NOT NULL,
			updated_at    DATETIME(6) NOT NULL,
			UNIQUE KEY uk_stock_product_id (product_id)
		)`,
	DriverSQLite: `
		CREATE TABLE IF NOT EXISTS stock (
			stock_id      INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id    INTEGER NOT NULL UNIQUE,
			initial_stock INTEGER NOT NULL,
			version       INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL
		)`,
}

// SQLAdapter is the stock ledger on database/sql. Queries stick to the
// subset shared by MySQL and SQLite.
type SQLAdapter struct {
	db     *sql.DB
	driver string
}

func NewSQLAdapter(db *sql.DB, driver string) *SQLAdapter {
	return &SQLAdapter{db: db, driver: driver}
}

// Migrate creates the stock table if it does not exist.
func (a *SQLAdapter) Migrate(ctx context.Context) error {
	ddl, ok := schemas[a.driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", a.driver)
	}
	if _, err := a.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create stock table: %w", err)
	}

	return nil
}

func (a *SQLAdapter) ExistsByProduct(ctx context.Context, productID int64) (bool, error) {
	var n int
	err := a.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM stock WHERE product_id = ?`, productID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count stock: %w", err)
	}

	return n > 0, nil
}

func (a *SQLAdapter) FindByProduct(ctx context.Context, productID int64) (*domain.Stock, error) {
	var s domain.Stock
	err := a.db.QueryRowContext(ctx, `
		SELECT stock_id, product_id, initial_stock, version, created_at, updated_at
		FROM stock WHERE product_id = ?`, productID,
	).Scan(&s.ID, &s.ProductID, &s.InitialStock, &s.Version, &s.CreatedAt, &s.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}

	return &s, nil
}

func (a *SQLAdapter) Save(ctx context.Context, s *domain.Stock) error {
	if s.ID == 0 {
		return a.insert(ctx, s)
	}
	return a.update(ctx, s)
}

func (a *SQLAdapter) insert(ctx context.Context, s *domain.Stock) error {
	now := time.Now().UTC()
	result, err := a.db.ExecContext(ctx, `
		INSERT INTO stock (product_id, initial_stock, version, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?)`,
		s.ProductID, s.InitialStock, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert stock: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert stock id: %w", err)
	}

	s.ID = id
	s.Version = 0
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

func (a *SQLAdapter) update(ctx context.Context, s *domain.Stock) error {
	now := time.Now().UTC()
	result, err := a.db.ExecContext(ctx, `
		UPDATE stock
		SET initial_stock = ?, version = version + 1, updated_at = ?
		WHERE stock_id = ? AND version = ?`,
		s.InitialStock, now, s.ID, s.Version,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	if err := expectOneRow(result); err != nil {
		return err
	}

	s.Version++
	s.UpdatedAt = now
	return nil
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update stock rows affected: %w", err)
	}
	if rows == 0 {
		return ErrOptimisticLock
	}
	return nil
}
