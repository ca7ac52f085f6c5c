package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-room-service/internal/availability"
	"github.com/iliyamo/hotel-room-service/internal/model"
	"github.com/iliyamo/hotel-room-service/internal/repository"
)

var badgeLabels = map[availability.Badge]string{
	availability.BadgeAlways:      "Available 24h",
	availability.BadgeAvailable:   "Available now",
	availability.BadgeUnavailable: "Not available now",
}

type menuItemView struct {
	ID             uint64               `json:"id"`
	Name           string               `json:"name"`
	Description    string               `json:"description,omitempty"`
	Price          decimal.Decimal      `json:"price"`
	PriceFormatted string               `json:"price_formatted"`
	Available      bool                 `json:"available"`
	Badge          availability.Badge   `json:"badge"`
	BadgeLabel     string               `json:"badge_label"`
	Window         *availability.Window `json:"window,omitempty"`
}

type menuCategoryView struct {
	ID     uint64               `json:"id"`
	Name   string               `json:"name"`
	Window *availability.Window `json:"window,omitempty"`
	Items  []menuItemView       `json:"items"`
}

// buildMenu groups orderable items under their categories, in category
// display order, with availability evaluated at at.  Categories without
// items are omitted.
func buildMenu(cats []model.MenuCategory, items []model.CatalogItem, at time.Time, f *Formatter) []menuCategoryView {
	byCat := make(map[uint64][]menuItemView, len(cats))
	for _, it := range items {
		if !it.Orderable() {
			continue
		}
		res := availability.Evaluate(it.Window, it.CategoryWindow, at, f.Location())
		byCat[it.CategoryID] = append(byCat[it.CategoryID], menuItemView{
			ID:             it.ID,
			Name:           it.Name,
			Description:    it.Description,
			Price:          it.Price,
			PriceFormatted: f.Money(it.Price),
			Available:      res.Available,
			Badge:          res.Badge,
			BadgeLabel:     badgeLabels[res.Badge],
			Window:         res.Window,
		})
	}
	out := make([]menuCategoryView, 0, len(cats))
	for _, c := range cats {
		if !c.IsActive || len(byCat[c.ID]) == 0 {
			continue
		}
		out = append(out, menuCategoryView{ID: c.ID, Name: c.Name, Window: c.Window, Items: byCat[c.ID]})
	}
	return out
}

func loadMenu(ctx context.Context, menu MenuReader, categoryID uint64, at time.Time, f *Formatter) ([]menuCategoryView, error) {
	cats, err := menu.ListCategories(ctx, true)
	if err != nil {
		return nil, err
	}
	active := true
	items, err := menu.ListItems(ctx, repository.ItemFilter{CategoryID: categoryID, Active: &active})
	if err != nil {
		return nil, err
	}
	return buildMenu(cats, items, at, f), nil
}

// MenuHandler serves the browse-only public menu.  Badges reflect "now";
// ordering still re-validates against the requested delivery time.
type MenuHandler struct {
	Menu   MenuReader
	Fmt    *Formatter
	Logger zerolog.Logger
	now    func() time.Time
}

func NewMenuHandler(menu MenuReader, f *Formatter, logger zerolog.Logger) *MenuHandler {
	if menu == nil || f == nil {
		panic("nil dependency passed to NewMenuHandler")
	}
	return &MenuHandler{Menu: menu, Fmt: f, Logger: logger, now: time.Now}
}

// Public handles GET /menu[?category=<id>].
func (h *MenuHandler) Public(c echo.Context) error {
	var categoryID uint64
	if v := c.QueryParam("category"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
		}
		categoryID = id
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	now := h.now()
	cats, err := loadMenu(ctx, h.Menu, categoryID, now, h.Fmt)
	if err != nil {
		h.Logger.Error().Err(err).Msg("menu load failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load menu"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"categories":   cats,
		"evaluated_at": h.Fmt.Time(now),
	})
}
