package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-room-service/internal/availability"
	"github.com/iliyamo/hotel-room-service/internal/model"
	"github.com/iliyamo/hotel-room-service/internal/repository"
)

// itemReq is the create/update body.  Both window bounds must be given
// together; an empty pair clears the item window so the category one applies.
type itemReq struct {
	CategoryID    uint64          `json:"category_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	AvailableFrom string          `json:"available_from"`
	AvailableTo   string          `json:"available_to"`
	IsActive      *bool           `json:"is_active"`
	SortOrder     int             `json:"sort_order"`
}

func (r itemReq) toItem() (model.MenuItem, error) {
	it := model.MenuItem{
		CategoryID:  r.CategoryID,
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Price:       r.Price.Round(2),
		IsActive:    r.IsActive == nil || *r.IsActive,
		SortOrder:   r.SortOrder,
	}
	if it.CategoryID == 0 || it.Name == "" {
		return it, errors.New("category_id and name required")
	}
	if len(it.Name) > 100 {
		return it, errors.New("name too long")
	}
	if it.Price.IsNegative() {
		return it, errors.New("price must not be negative")
	}
	from, to := strings.TrimSpace(r.AvailableFrom), strings.TrimSpace(r.AvailableTo)
	switch {
	case from == "" && to == "":
	case from == "" || to == "":
		return it, errors.New("available_from and available_to go together")
	default:
		start, err := availability.ParseClock(from)
		if err != nil {
			return it, err
		}
		end, err := availability.ParseClock(to)
		if err != nil {
			return it, err
		}
		w := availability.Window{Start: start, End: end}
		if err := w.Validate(); err != nil {
			return it, err
		}
		it.Window = &w
	}
	return it, nil
}

// ListItems handles GET /admin/api/menu/items with filters category,
// active (true|false), q, sort (name|price) and order (asc|desc).
func (h *AdminHandler) ListItems(c echo.Context) error {
	var f repository.ItemFilter
	if v := c.QueryParam("category"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
		}
		f.CategoryID = id
	}
	if v := c.QueryParam("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "active must be true or false"})
		}
		f.Active = &b
	}
	switch v := c.QueryParam("sort"); v {
	case "", "name", "price":
		f.Sort = v
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sort must be name or price"})
	}
	f.Desc = strings.EqualFold(c.QueryParam("order"), "desc")
	f.Search = c.QueryParam("q")

	items, err := h.Menu.ListItems(c.Request().Context(), f)
	if err != nil {
		h.Logger.Error().Err(err).Msg("item list failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load items"})
	}
	out := make([]echo.Map, len(items))
	for i, it := range items {
		out[i] = echo.Map{
			"item":            it,
			"price_formatted": h.Fmt.Money(it.Price),
			"orderable":       it.Orderable(),
			"window":          availability.Effective(it.Window, it.CategoryWindow),
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "count": len(out)})
}

// ListCategories handles GET /admin/api/menu/categories.
func (h *AdminHandler) ListCategories(c echo.Context) error {
	cats, err := h.Menu.ListCategories(c.Request().Context(), false)
	if err != nil {
		h.Logger.Error().Err(err).Msg("category list failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load categories"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": cats, "count": len(cats)})
}

// CreateItem handles POST /admin/api/menu/items.
func (h *AdminHandler) CreateItem(c echo.Context) error {
	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	it, err := req.toItem()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Menu.CreateItem(c.Request().Context(), &it); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "item name already used in this category"})
		}
		h.Logger.Error().Err(err).Msg("item create failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create item"})
	}
	return c.JSON(http.StatusCreated, it)
}

// UpdateItem handles PUT /admin/api/menu/items/:id.
func (h *AdminHandler) UpdateItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	it, err := req.toItem()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	it.ID = id
	switch err := h.Menu.UpdateItem(c.Request().Context(), &it); {
	case err == nil:
		return c.JSON(http.StatusOK, it)
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "item name already used in this category"})
	default:
		h.Logger.Error().Err(err).Uint64("item_id", id).Msg("item update failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update item"})
	}
}

// DeactivateItem handles DELETE /admin/api/menu/items/:id.  Items are never
// removed because order lines reference them.
func (h *AdminHandler) DeactivateItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	switch err := h.Menu.SetItemActive(c.Request().Context(), id, false); {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
	default:
		h.Logger.Error().Err(err).Uint64("item_id", id).Msg("item deactivate failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to deactivate item"})
	}
}
