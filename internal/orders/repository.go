package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/optbazar/optbazar/internal/platform/db"
	"github.com/optbazar/optbazar/internal/shared"
)

// Repository persists orders.
type Repository interface {
	Create(ctx context.Context, order Order) error
	Get(ctx context.Context, id string) (Order, error)
	List(ctx context.Context, opts ListOptions) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create writes the order header and items in one transaction.
func (r *PGRepository) Create(ctx context.Context, o Order) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO orders (id, customer_name, customer_phone, customer_address, external_user_id,
			total_amount, status, source, comments, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			o.ID, o.Customer.Name, o.Customer.Phone, o.Customer.Address, o.Customer.ExternalUserID,
			o.TotalAmount, string(o.Status), string(o.Source), o.Comments, o.CreatedAt, o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("orders: insert order: %w", err)
		}
		batch := &pgx.Batch{}
		for i, item := range o.Items {
			batch.Queue(`INSERT INTO order_items (order_id, line_no, product_id, name, unit, price, quantity)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				o.ID, i+1, item.ProductID, item.Name, item.Unit, item.Price, item.Quantity)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("orders: insert items: %w", err)
		}
		return nil
	})
}

const orderColumns = `id::text, customer_name, customer_phone, customer_address, external_user_id,
	total_amount, status, source, comments, created_at, updated_at`

func (r *PGRepository) Get(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, shared.ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("orders: get order: %w", err)
	}
	byOrder, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return Order{}, err
	}
	o.Items = byOrder[o.ID]
	if o.Items == nil {
		o.Items = []Item{}
	}
	return o, nil
}

func (r *PGRepository) List(ctx context.Context, opts ListOptions) ([]Order, error) {
	var (
		where []string
		args  []any
	)
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if !opts.CreatedBefore.IsZero() {
		args = append(args, opts.CreatedBefore)
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)))
	}
	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if opts.Ascending {
		query += ` ORDER BY created_at ASC, id ASC`
	} else {
		query += ` ORDER BY created_at DESC, id DESC`
	}
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("orders: list orders: %w", err)
	}
	defer rows.Close()

	list := make([]Order, 0)
	ids := make([]string, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}

	byOrder, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Items = byOrder[list[i].ID]
		if list[i].Items == nil {
			list[i].Items = []Item{}
		}
	}
	return list, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`, id, string(status), updatedAt)
	if err != nil {
		return fmt.Errorf("orders: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) loadItems(ctx context.Context, ids []string) (map[string][]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT order_id::text, product_id, name, unit, price, quantity
		FROM order_items WHERE order_id = ANY($1::uuid[]) ORDER BY order_id, line_no`, ids)
	if err != nil {
		return nil, fmt.Errorf("orders: load items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]Item, len(ids))
	for rows.Next() {
		var (
			orderID string
			item    Item
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.Unit, &item.Price, &item.Quantity); err != nil {
			return nil, err
		}
		out[orderID] = append(out[orderID], item)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o              Order
		status, source string
	)
	err := row.Scan(&o.ID, &o.Customer.Name, &o.Customer.Phone, &o.Customer.Address, &o.Customer.ExternalUserID,
		&o.TotalAmount, &status, &source, &o.Comments, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	o.Source = Source(source)
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return o, nil
}

var _ Repository = (*PGRepository)(nil)
