package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/trattoria/internal/domain/errors"
	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/domain/repository"
)

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	repositories

	pool   pgxPool
	logger *slog.Logger
}

// repositories binds every repository to one querier.
type repositories struct {
	q querier
}

type staffRepository struct {
	q querier
}

type tableRepository struct {
	q querier
}

type productRepository struct {
	q querier
}

type orderRepository struct {
	q querier
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := wrap(pool, logger)
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

func wrap(pool pgxPool, logger *slog.Logger) *Storage {
	return &Storage{repositories: repositories{q: pool}, pool: pool, logger: logger}
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (r repositories) Staff() repository.StaffRepository {
	return &staffRepository{q: r.q}
}

func (r repositories) Orders() repository.OrderRepository {
	return &orderRepository{q: r.q}
}

func (r repositories) Tables() repository.TableRepository {
	return &tableRepository{q: r.q}
}

func (r repositories) Products() repository.ProductRepository {
	return &productRepository{q: r.q}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS staff (
            id BIGSERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            name TEXT NOT NULL DEFAULT '',
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS dining_tables (
            id BIGSERIAL PRIMARY KEY,
            number INT UNIQUE NOT NULL,
            capacity INT NOT NULL,
            location TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id BIGSERIAL PRIMARY KEY,
            name TEXT UNIQUE NOT NULL,
            category TEXT NOT NULL DEFAULT '',
            price NUMERIC(12,2) NOT NULL,
            available BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE SEQUENCE IF NOT EXISTS order_number_seq`,
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            number BIGINT UNIQUE NOT NULL DEFAULT nextval('order_number_seq'),
            table_id BIGINT NOT NULL REFERENCES dining_tables(id),
            staff_id BIGINT NOT NULL REFERENCES staff(id),
            status TEXT NOT NULL,
            payment_method TEXT NOT NULL,
            items JSONB NOT NULL,
            history JSONB NOT NULL,
            discount JSONB NOT NULL,
            payment JSONB,
            subtotal NUMERIC(12,2) NOT NULL,
            total NUMERIC(12,2) NOT NULL,
            note TEXT NOT NULL DEFAULT '',
            version BIGINT NOT NULL DEFAULT 1,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            started_at TIMESTAMPTZ,
            ready_at TIMESTAMPTZ,
            served_at TIMESTAMPTZ,
            paid_at TIMESTAMPTZ,
            cancelled_at TIMESTAMPTZ
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_table ON orders(table_id, status)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// Do executes fn inside a transaction; repositories handed to fn share it.
func (s *Storage) Do(ctx context.Context, fn func(ctx context.Context, tx repository.Factory) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Warn("rollback failed", slog.String("error", rbErr.Error()))
			}
			return
		}
		err = tx.Commit(ctx)
	}()

	err = fn(ctx, repositories{q: tx})
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domainErrors.ErrAlreadyExists
	}
	return err
}

// --- StaffRepository implementation ---

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	const query = `INSERT INTO staff (login, name, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query, staff.Login, staff.Name, staff.PasswordHash, staff.Role).Scan(&staff.ID, &staff.CreatedAt)
	return mapError(err)
}

func (r *staffRepository) GetByLogin(ctx context.Context, login string) (*model.Staff, error) {
	const query = `SELECT id, login, name, password_hash, role, created_at FROM staff WHERE login=$1`
	return r.get(ctx, query, login)
}

func (r *staffRepository) GetByID(ctx context.Context, id int64) (*model.Staff, error) {
	const query = `SELECT id, login, name, password_hash, role, created_at FROM staff WHERE id=$1`
	return r.get(ctx, query, id)
}

func (r *staffRepository) get(ctx context.Context, query string, arg any) (*model.Staff, error) {
	var s model.Staff
	err := r.q.QueryRow(ctx, query, arg).Scan(&s.ID, &s.Login, &s.Name, &s.PasswordHash, &s.Role, &s.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

// --- TableRepository implementation ---

const tableColumns = `id, number, capacity, location, status, updated_at`

func scanTable(row pgx.Row) (*model.Table, error) {
	var t model.Table
	if err := row.Scan(&t.ID, &t.Number, &t.Capacity, &t.Location, &t.Status, &t.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return &t, nil
}

func (r *tableRepository) Create(ctx context.Context, table *model.Table) error {
	const query = `INSERT INTO dining_tables (number, capacity, location, status) VALUES ($1, $2, $3, $4) RETURNING id, updated_at`
	if table.Status == "" {
		table.Status = model.TableStatusFree
	}
	err := r.q.QueryRow(ctx, query, table.Number, table.Capacity, table.Location, table.Status).Scan(&table.ID, &table.UpdatedAt)
	return mapError(err)
}

func (r *tableRepository) GetByID(ctx context.Context, id int64) (*model.Table, error) {
	return scanTable(r.q.QueryRow(ctx, `SELECT `+tableColumns+` FROM dining_tables WHERE id=$1`, id))
}

func (r *tableRepository) GetForUpdate(ctx context.Context, id int64) (*model.Table, error) {
	return scanTable(r.q.QueryRow(ctx, `SELECT `+tableColumns+` FROM dining_tables WHERE id=$1 FOR UPDATE`, id))
}

func (r *tableRepository) List(ctx context.Context) ([]model.Table, error) {
	rows, err := r.q.Query(ctx, `SELECT `+tableColumns+` FROM dining_tables ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *tableRepository) SetStatus(ctx context.Context, id int64, status model.TableStatus) (*model.Table, error) {
	const query = `UPDATE dining_tables SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING ` + tableColumns
	return scanTable(r.q.QueryRow(ctx, query, status, id))
}

// --- ProductRepository implementation ---

const productColumns = `id, name, category, price::text, available, created_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var (
		p     model.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &price, &p.Available, &p.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	var err error
	if p.Price, err = parseDecimal(price); err != nil {
		return nil, fmt.Errorf("product %d price: %w", p.ID, err)
	}
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	const query = `INSERT INTO products (name, category, price, available) VALUES ($1, $2, $3::numeric, $4) RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query, product.Name, product.Category, product.Price.StringFixed(2), product.Available).
		Scan(&product.ID, &product.CreatedAt)
	return mapError(err)
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	result := make(map[int64]model.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result[p.ID] = *p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *productRepository) SetAvailable(ctx context.Context, id int64, available bool) (*model.Product, error) {
	const query = `UPDATE products SET available=$1 WHERE id=$2 RETURNING ` + productColumns
	return scanProduct(r.q.QueryRow(ctx, query, available, id))
}
