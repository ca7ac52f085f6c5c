package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/hotel-room-service/internal/availability"
	"github.com/iliyamo/hotel-room-service/internal/model"
)

// MenuRepo reads and writes the menu catalog.  Reads are never cached here;
// order validation depends on seeing the live price and active flags.
type MenuRepo struct{ db *sql.DB }

func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

const catalogSelect = `SELECT i.id, i.category_id, i.name, COALESCE(i.description, ''), i.price,
       i.available_from, i.available_to, i.is_active, i.sort_order,
       c.name, c.is_active, c.available_from, c.available_to
FROM menu_items i
JOIN menu_categories c ON c.id = i.category_id`

func scanCatalogItem(row interface{ Scan(...any) error }) (model.CatalogItem, error) {
	var (
		it                       model.CatalogItem
		itemFrom, itemTo         *availability.ClockTime
		categoryFrom, categoryTo *availability.ClockTime
	)
	err := row.Scan(&it.ID, &it.CategoryID, &it.Name, &it.Description, &it.Price,
		&itemFrom, &itemTo, &it.IsActive, &it.SortOrder,
		&it.CategoryName, &it.CategoryActive, &categoryFrom, &categoryTo)
	if err != nil {
		return it, err
	}
	it.Window = availability.NewWindow(itemFrom, itemTo)
	it.CategoryWindow = availability.NewWindow(categoryFrom, categoryTo)
	return it, nil
}

// ItemsByIDs resolves cart item ids in one query.  Missing ids are simply
// absent from the map.
func (r *MenuRepo) ItemsByIDs(ctx context.Context, ids []uint64) (map[uint64]model.CatalogItem, error) {
	out := make(map[uint64]model.CatalogItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, catalogSelect+` WHERE i.id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanCatalogItem(rows)
		if err != nil {
			return nil, err
		}
		out[it.ID] = it
	}
	return out, rows.Err()
}

// ItemFilter narrows ListItems.  Sort is name or price; anything else
// keeps menu display order.
type ItemFilter struct {
	CategoryID uint64
	Active     *bool
	Search     string
	Sort       string
	Desc       bool
}

var itemSortColumns = map[string]string{
	"name":  "i.name",
	"price": "i.price",
}

// ListItems returns catalog items joined with their category.
func (r *MenuRepo) ListItems(ctx context.Context, f ItemFilter) ([]model.CatalogItem, error) {
	var (
		where []string
		args  []any
	)
	if f.CategoryID > 0 {
		where = append(where, "i.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Active != nil {
		if *f.Active {
			where = append(where, "i.is_active = 1 AND c.is_active = 1")
		} else {
			where = append(where, "(i.is_active = 0 OR c.is_active = 0)")
		}
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "i.name LIKE ?")
		args = append(args, "%"+s+"%")
	}
	q := catalogSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	dir := " ASC"
	if f.Desc {
		dir = " DESC"
	}
	if col, ok := itemSortColumns[f.Sort]; ok {
		q += " ORDER BY " + col + dir + ", i.id"
	} else {
		q += " ORDER BY c.sort_order" + dir + ", i.sort_order" + dir + ", i.id"
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.CatalogItem{}
	for rows.Next() {
		it, err := scanCatalogItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetItem returns one catalog item or ErrNotFound.
func (r *MenuRepo) GetItem(ctx context.Context, id uint64) (model.CatalogItem, error) {
	it, err := scanCatalogItem(r.db.QueryRowContext(ctx, catalogSelect+` WHERE i.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return it, ErrNotFound
	}
	return it, err
}

// ListCategories returns categories in display order.
func (r *MenuRepo) ListCategories(ctx context.Context, activeOnly bool) ([]model.MenuCategory, error) {
	q := `SELECT id, name, sort_order, available_from, available_to, is_active FROM menu_categories`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY sort_order, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.MenuCategory{}
	for rows.Next() {
		var (
			c        model.MenuCategory
			from, to *availability.ClockTime
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.SortOrder, &from, &to, &c.IsActive); err != nil {
			return nil, err
		}
		c.Window = availability.NewWindow(from, to)
		out = append(out, c)
	}
	return out, rows.Err()
}

func windowArgs(w *availability.Window) (any, any) {
	if w == nil {
		return nil, nil
	}
	return w.Start, w.End
}

// CreateItem inserts an item and fills its ID.  A duplicate name inside the
// category yields ErrConflict.
func (r *MenuRepo) CreateItem(ctx context.Context, it *model.MenuItem) error {
	from, to := windowArgs(it.Window)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO menu_items (category_id, name, description, price, available_from, available_to, is_active, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		it.CategoryID, it.Name, nullIfEmpty(it.Description), it.Price.Round(2), from, to, it.IsActive, it.SortOrder)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

// UpdateItem overwrites every editable column of an item.
func (r *MenuRepo) UpdateItem(ctx context.Context, it *model.MenuItem) error {
	from, to := windowArgs(it.Window)
	res, err := r.db.ExecContext(ctx,
		`UPDATE menu_items SET category_id = ?, name = ?, description = ?, price = ?,
		        available_from = ?, available_to = ?, is_active = ?, sort_order = ?
		 WHERE id = ?`,
		it.CategoryID, it.Name, nullIfEmpty(it.Description), it.Price.Round(2), from, to, it.IsActive, it.SortOrder, it.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	return r.requireAffected(ctx, res, it.ID)
}

// SetItemActive toggles whether an item can be ordered.
func (r *MenuRepo) SetItemActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE menu_items SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return err
	}
	return r.requireAffected(ctx, res, id)
}

// requireAffected distinguishes "no such item" from "nothing changed",
// which MySQL reports identically as zero affected rows.
func (r *MenuRepo) requireAffected(ctx context.Context, res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil || n > 0 {
		return err
	}
	var one int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM menu_items WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// UpsertCategory inserts or updates a category by name, filling c.ID.
func (r *MenuRepo) UpsertCategory(ctx context.Context, c *model.MenuCategory) error {
	from, to := windowArgs(c.Window)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO menu_categories (name, sort_order, available_from, available_to, is_active)
		 VALUES (?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), sort_order = VALUES(sort_order),
		   available_from = VALUES(available_from), available_to = VALUES(available_to), is_active = VALUES(is_active)`,
		c.Name, c.SortOrder, from, to, c.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// UpsertItem inserts or updates an item by (category, name), filling it.ID.
func (r *MenuRepo) UpsertItem(ctx context.Context, it *model.MenuItem) error {
	from, to := windowArgs(it.Window)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO menu_items (category_id, name, description, price, available_from, available_to, is_active, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id), description = VALUES(description), price = VALUES(price),
		   available_from = VALUES(available_from), available_to = VALUES(available_to),
		   is_active = VALUES(is_active), sort_order = VALUES(sort_order)`,
		it.CategoryID, it.Name, nullIfEmpty(it.Description), it.Price.Round(2), from, to, it.IsActive, it.SortOrder)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}
