package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/hotel-room-service/internal/model"
)

// OrderRepo persists order headers and lines.  Writes that must be atomic
// take a caller-owned *sql.Tx; the caller commits or rolls back.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to db.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the handle so callers can open transactions spanning
// several repository calls.
func (r *OrderRepo) DB() *sql.DB { return r.db }

const orderCols = `id, room_id, room_number, guest_name, phone, notes, payment_method,
       delivery_at, total, status, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (model.Order, error) {
	var (
		o                  model.Order
		name, phone, notes sql.NullString
	)
	err := row.Scan(&o.ID, &o.RoomID, &o.RoomNumber, &name, &phone, &notes, &o.PaymentMethod,
		&o.DeliveryAt, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return o, err
	}
	o.GuestName, o.Phone, o.Notes = name.String, phone.String, notes.String
	return o, nil
}

func collectOrders(rows *sql.Rows) ([]model.Order, error) {
	defer rows.Close()
	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// CreateTx inserts the order header inside tx and sets o.ID.  CreatedAt and
// UpdatedAt must already be set.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `INSERT INTO orders (room_id, room_number, guest_name, phone, notes, payment_method,
	               delivery_at, total, status, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		o.RoomID, o.RoomNumber, nullIfEmpty(o.GuestName), nullIfEmpty(o.Phone), nullIfEmpty(o.Notes),
		o.PaymentMethod, o.DeliveryAt.UTC(), o.Total.StringFixed(2), string(o.Status),
		o.CreatedAt.UTC(), o.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// CreateLinesBulkTx inserts all lines with one multi-row statement.  Each
// line's OrderID must be set.  An empty slice is a no-op.
func (r *OrderRepo) CreateLinesBulkTx(ctx context.Context, tx *sql.Tx, lines []model.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO order_lines (order_id, item_id, item_name, unit_price, quantity, line_total) VALUES `)
	args := make([]any, 0, len(lines)*6)
	for i, l := range lines {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?)")
		args = append(args, l.OrderID, l.ItemID, l.ItemName, l.UnitPrice.StringFixed(2), l.Quantity, l.LineTotal.StringFixed(2))
	}
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

// LockForUpdateTx reads an order header with a row lock held until tx ends,
// serialising concurrent status changes.  Lines are not loaded.
func (r *OrderRepo) LockForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Order, error) {
	o, err := scanOrder(tx.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return o, ErrNotFound
	}
	return o, err
}

// UpdateStatusTx writes a new status.
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.OrderStatus, at time.Time) error {
	_, err := tx.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), at.UTC(), id)
	return err
}

// GetByID loads an order with its lines, or ErrNotFound.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, item_id, item_name, unit_price, quantity, line_total
		 FROM order_lines WHERE order_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	o.Lines = []model.OrderLine{}
	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.ItemName, &l.UnitPrice, &l.Quantity, &l.LineTotal); err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// OrderFilter narrows List.  Zero values mean "no restriction".  DateField
// chooses which timestamp From/To apply to: "delivery" or "created".
type OrderFilter struct {
	Statuses  []model.OrderStatus
	RoomID    uint64
	From      *time.Time
	To        *time.Time
	DateField string
	Sort      string
	Desc      bool
	Limit     int
	Offset    int
}

var orderSortColumns = map[string]string{
	"created_at":  "created_at",
	"delivery_at": "delivery_at",
	"total":       "total",
	"room":        "room_number",
	"status":      "FIELD(status,'pending','confirmed','preparing','delivered','cancelled')",
}

func (f OrderFilter) where() (string, []any) {
	var (
		where []string
		args  []any
	)
	if len(f.Statuses) > 0 {
		where = append(where, "status IN ("+placeholders(len(f.Statuses))+")")
		for _, s := range f.Statuses {
			args = append(args, string(s))
		}
	}
	if f.RoomID > 0 {
		where = append(where, "room_id = ?")
		args = append(args, f.RoomID)
	}
	col := "created_at"
	if f.DateField == "delivery" {
		col = "delivery_at"
	}
	if f.From != nil {
		where = append(where, col+" >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		where = append(where, col+" < ?")
		args = append(args, f.To.UTC())
	}
	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// List returns one page of orders and the total number matching f.
func (r *OrderRepo) List(ctx context.Context, f OrderFilter) ([]model.Order, int, error) {
	where, args := f.where()

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	col, ok := orderSortColumns[f.Sort]
	if !ok {
		col = orderSortColumns["created_at"]
	}
	dir := " ASC"
	if f.Desc {
		dir = " DESC"
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	q := `SELECT ` + orderCols + ` FROM orders` + where + ` ORDER BY ` + col + dir + `, id` + dir + ` LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// CountByStatus returns the number of orders per status.  Statuses with no
// orders are present with a zero count.
func (r *OrderRepo) CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error) {
	out := make(map[model.OrderStatus]int, len(model.AllStatuses))
	for _, s := range model.AllStatuses {
		out[s] = 0
	}
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			s model.OrderStatus
			n int
		)
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

// ListUrgent returns open orders due between now and until, soonest first.
func (r *OrderRepo) ListUrgent(ctx context.Context, now, until time.Time) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderCols+` FROM orders
		 WHERE status IN ('pending','confirmed','preparing') AND delivery_at >= ? AND delivery_at <= ?
		 ORDER BY delivery_at, id`, now.UTC(), until.UTC())
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ListPastDue returns open orders whose delivery time has passed.
func (r *OrderRepo) ListPastDue(ctx context.Context, now time.Time) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderCols+` FROM orders
		 WHERE status IN ('pending','confirmed','preparing') AND delivery_at < ?
		 ORDER BY delivery_at, id`, now.UTC())
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}
