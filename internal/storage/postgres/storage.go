package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/feastline/ordercore/internal/domain/errors"
	"github.com/feastline/ordercore/internal/domain/model"
	"github.com/feastline/ordercore/internal/domain/repository"
)

// Pool is the subset of pgxpool.Pool the storage needs; pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   Pool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type addressRepository struct {
	storage *Storage
}

type cartRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Addresses() repository.AddressRepository {
	return &addressRepository{storage: s}
}

func (s *Storage) Carts() repository.CartRepository {
	return &cartRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS addresses (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            consignee TEXT NOT NULL,
            phone TEXT NOT NULL,
            detail TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS cart_items (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            dish_id BIGINT,
            setmeal_id BIGINT,
            name TEXT NOT NULL,
            flavor TEXT NOT NULL DEFAULT '',
            quantity INT NOT NULL,
            amount NUMERIC(10,2) NOT NULL,
            image TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            number TEXT UNIQUE NOT NULL,
            user_id BIGINT NOT NULL,
            address_id BIGINT NOT NULL,
            status INT NOT NULL,
            pay_status INT NOT NULL,
            pay_method INT NOT NULL DEFAULT 1,
            amount NUMERIC(10,2) NOT NULL,
            remark TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL,
            address TEXT NOT NULL,
            consignee TEXT NOT NULL,
            cancel_reason TEXT NOT NULL DEFAULT '',
            rejection_reason TEXT NOT NULL DEFAULT '',
            order_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            checkout_time TIMESTAMPTZ,
            cancel_time TIMESTAMPTZ,
            estimated_delivery_time TIMESTAMPTZ,
            delivery_time TIMESTAMPTZ,
            tableware_number INT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS order_lines (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            dish_id BIGINT,
            setmeal_id BIGINT,
            name TEXT NOT NULL,
            flavor TEXT NOT NULL DEFAULT '',
            quantity INT NOT NULL,
            amount NUMERIC(10,2) NOT NULL,
            image TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status_time ON orders(status, order_time)`,
		`CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_cart_items_user ON cart_items(user_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, number, user_id, address_id, status, pay_status, pay_method, amount,
       remark, phone, address, consignee, cancel_reason, rejection_reason,
       order_time, checkout_time, cancel_time, estimated_delivery_time, delivery_time,
       tableware_number`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.Number, &o.UserID, &o.AddressID, &o.Status, &o.PayStatus,
		&o.PayMethod, &o.Amount, &o.Remark, &o.Phone, &o.Address, &o.Consignee,
		&o.CancelReason, &o.RejectionReason, &o.OrderTime, &o.CheckoutTime,
		&o.CancelTime, &o.EstimatedDeliveryTime, &o.DeliveryTime, &o.TablewareNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Submit(ctx context.Context, order *model.Order, lines []model.OrderLine) (*model.Order, error) {
	created := *order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertOrder = `INSERT INTO orders
            (number, user_id, address_id, status, pay_status, pay_method, amount, remark,
             phone, address, consignee, order_time, estimated_delivery_time, tableware_number)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
            RETURNING id`
		err := tx.QueryRow(ctx, insertOrder,
			order.Number, order.UserID, order.AddressID, order.Status, order.PayStatus,
			order.PayMethod, order.Amount, order.Remark, order.Phone, order.Address,
			order.Consignee, order.OrderTime, order.EstimatedDeliveryTime, order.TablewareNumber,
		).Scan(&created.ID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return domainErrors.ErrConflict
			}
			return err
		}

		const insertLine = `INSERT INTO order_lines
            (order_id, dish_id, setmeal_id, name, flavor, quantity, amount, image)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
		for _, line := range lines {
			if _, err := tx.Exec(ctx, insertLine, created.ID, line.DishID, line.SetmealID,
				line.Name, line.Flavor, line.Quantity, line.Amount, line.Image); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, order.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE number=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, number))
}

func (r *orderRepository) LinesByOrder(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	const query = `SELECT id, order_id, dish_id, setmeal_id, name, flavor, quantity, amount, image
                   FROM order_lines WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OrderLine
	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.DishID, &l.SetmealID, &l.Name,
			&l.Flavor, &l.Quantity, &l.Amount, &l.Image); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.Number, &o.UserID, &o.AddressID, &o.Status, &o.PayStatus,
			&o.PayMethod, &o.Amount, &o.Remark, &o.Phone, &o.Address, &o.Consignee,
			&o.CancelReason, &o.RejectionReason, &o.OrderTime, &o.CheckoutTime,
			&o.CancelTime, &o.EstimatedDeliveryTime, &o.DeliveryTime, &o.TablewareNumber); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) ListStaleByStatus(ctx context.Context, status model.OrderStatus, before time.Time) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status=$1 AND order_time < $2 ORDER BY order_time`
	rows, err := r.storage.pool.Query(ctx, query, status, before)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

// ListPage composes the WHERE clause from the set fields of the filter and
// runs a COUNT plus one page query over it.
func (r *orderRepository) ListPage(ctx context.Context, f repository.OrderPageFilter, offset, limit int) ([]model.Order, int64, error) {
	conds := []string{"TRUE"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.UserID != nil {
		conds = append(conds, "user_id="+arg(*f.UserID))
	}
	if f.Status != nil {
		conds = append(conds, "status="+arg(*f.Status))
	}
	if f.Number != "" {
		conds = append(conds, "number LIKE "+arg("%"+f.Number+"%"))
	}
	if f.Phone != "" {
		conds = append(conds, "phone LIKE "+arg("%"+f.Phone+"%"))
	}
	if f.From != nil {
		conds = append(conds, "order_time >= "+arg(*f.From))
	}
	if f.To != nil {
		conds = append(conds, "order_time <= "+arg(*f.To))
	}
	where := strings.Join(conds, " AND ")

	var total int64
	if err := r.storage.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + where +
		` ORDER BY order_time DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	orders, err := scanOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ApplyTransition performs a compare-and-set status update: the row is written
// only while its status (and optionally pay status) still matches the state
// the caller observed. Zero affected rows means the order vanished or a
// concurrent writer got there first.
func (r *orderRepository) ApplyTransition(ctx context.Context, tr repository.StatusTransition) error {
	const query = `UPDATE orders SET
            status=$1,
            pay_status=COALESCE($2, pay_status),
            cancel_reason=COALESCE($3, cancel_reason),
            rejection_reason=COALESCE($4, rejection_reason),
            cancel_time=COALESCE($5, cancel_time),
            checkout_time=COALESCE($6, checkout_time),
            delivery_time=COALESCE($7, delivery_time)
        WHERE id=$8 AND status=$9 AND ($10::int IS NULL OR pay_status=$10)`

	tag, err := r.storage.pool.Exec(ctx, query,
		tr.Status, payStatusArg(tr.PayStatus), textArg(tr.CancelReason), textArg(tr.RejectionReason),
		tr.CancelTime, tr.CheckoutTime, tr.DeliveryTime,
		tr.OrderID, tr.ExpectedStatus, payStatusArg(tr.ExpectedPayStatus))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, tr.OrderID); err != nil {
			return err
		}
		return domainErrors.ErrConflict
	}
	return nil
}

func payStatusArg(p *model.PayStatus) *int {
	if p == nil {
		return nil
	}
	v := int(*p)
	return &v
}

func textArg(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// --- AddressRepository implementation ---

func (r *addressRepository) GetByID(ctx context.Context, id int64) (*model.Address, error) {
	const query = `SELECT id, user_id, consignee, phone, detail FROM addresses WHERE id=$1`
	var a model.Address
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.UserID, &a.Consignee, &a.Phone, &a.Detail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrAddressNotFound
		}
		return nil, err
	}
	return &a, nil
}

// --- CartRepository implementation ---

func (r *cartRepository) ListByUser(ctx context.Context, userID int64) ([]model.CartItem, error) {
	const query = `SELECT id, user_id, dish_id, setmeal_id, name, flavor, quantity, amount, image, created_at
                   FROM cart_items WHERE user_id=$1 ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.CartItem
	for rows.Next() {
		var c model.CartItem
		if err := rows.Scan(&c.ID, &c.UserID, &c.DishID, &c.SetmealID, &c.Name,
			&c.Flavor, &c.Quantity, &c.Amount, &c.Image, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *cartRepository) AddBatch(ctx context.Context, items []model.CartItem) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertItem = `INSERT INTO cart_items
            (user_id, dish_id, setmeal_id, name, flavor, quantity, amount, image, created_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
		for _, item := range items {
			if _, err := tx.Exec(ctx, insertItem, item.UserID, item.DishID, item.SetmealID,
				item.Name, item.Flavor, item.Quantity, item.Amount, item.Image, item.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
