package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/hotel-room-service/internal/model"
	"github.com/iliyamo/hotel-room-service/internal/ordering"
	"github.com/iliyamo/hotel-room-service/internal/repository"
)

var orderSorts = map[string]bool{"created_at": true, "delivery_at": true, "total": true, "room": true, "status": true}

// parseOrderFilter reads status, sort, order, date_from, date_to,
// date_field, room_id, limit and offset.  Dates are hotel-local calendar
// days and date_to is inclusive.
func parseOrderFilter(c echo.Context, loc *time.Location) (repository.OrderFilter, error) {
	f := repository.OrderFilter{Sort: "created_at", Desc: true, DateField: "created"}

	if v := strings.TrimSpace(c.QueryParam("status")); v != "" {
		for _, s := range strings.Split(v, ",") {
			st := model.OrderStatus(strings.ToLower(strings.TrimSpace(s)))
			if !st.Valid() {
				return f, fmt.Errorf("invalid status %q", s)
			}
			f.Statuses = append(f.Statuses, st)
		}
	}
	if v := c.QueryParam("sort"); v != "" {
		if !orderSorts[v] {
			return f, fmt.Errorf("invalid sort %q", v)
		}
		f.Sort = v
	}
	switch strings.ToLower(c.QueryParam("order")) {
	case "", "desc":
		f.Desc = true
	case "asc":
		f.Desc = false
	default:
		return f, errors.New("order must be asc or desc")
	}
	switch v := c.QueryParam("date_field"); v {
	case "", "created":
	case "delivery":
		f.DateField = v
	default:
		return f, errors.New("date_field must be created or delivery")
	}
	if v := c.QueryParam("date_from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, loc)
		if err != nil {
			return f, errors.New("date_from must be YYYY-MM-DD")
		}
		f.From = &t
	}
	if v := c.QueryParam("date_to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, loc)
		if err != nil {
			return f, errors.New("date_to must be YYYY-MM-DD")
		}
		t = t.AddDate(0, 0, 1)
		f.To = &t
	}
	if v := c.QueryParam("room_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return f, errors.New("invalid room_id")
		}
		f.RoomID = id
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, errors.New("invalid limit")
		}
		f.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errors.New("invalid offset")
		}
		f.Offset = n
	}
	return f, nil
}

// ListOrders handles GET /admin/api/orders.
func (h *AdminHandler) ListOrders(c echo.Context) error {
	f, err := parseOrderFilter(c, h.Fmt.Location())
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	orders, total, err := h.Orders.List(c.Request().Context(), f)
	if err != nil {
		h.Logger.Error().Err(err).Msg("order list failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load orders"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":           h.views(orders),
		"count":           len(orders),
		"total":           total,
		"total_formatted": h.Fmt.Count(total),
		"labels":          labels(),
	})
}

// GetOrder handles GET /admin/api/orders/:id.
func (h *AdminHandler) GetOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	o, err := h.Orders.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ordering.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		h.Logger.Error().Err(err).Uint64("order_id", id).Msg("order load failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order"})
	}
	lines := make([]echo.Map, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = echo.Map{
			"line":                 l,
			"unit_price_formatted": h.Fmt.Money(l.UnitPrice),
			"line_total_formatted": h.Fmt.Money(l.LineTotal),
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"order": h.view(*o), "lines": lines})
}

type statusReq struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /admin/api/orders/:id/status.
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	to := model.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))

	o, err := h.Orders.SetStatus(c.Request().Context(), id, to)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, h.view(*o))
	case errors.Is(err, ordering.ErrUnknownStatus):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	case errors.Is(err, ordering.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	case errors.Is(err, ordering.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition", "detail": err.Error()})
	default:
		h.Logger.Error().Err(err).Uint64("order_id", id).Msg("status update failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "please try again"})
	}
}

// Dashboard handles GET /admin/api/dashboard, polled by the staff screen.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	d, err := h.Orders.Dashboard(ctx, h.Opts.UrgentWindow)
	if err != nil {
		h.Logger.Error().Err(err).Msg("dashboard failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}
	unread, err := h.Messages.CountUnread(ctx)
	if err != nil {
		h.Logger.Error().Err(err).Msg("unread count failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}
	counts := make([]echo.Map, 0, len(model.AllStatuses))
	for _, s := range model.AllStatuses {
		counts = append(counts, echo.Map{
			"status": s, "label": statusLabel(s),
			"count": d.Counts[s], "count_formatted": h.Fmt.Count(d.Counts[s]),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"counts":          counts,
		"urgent":          h.views(d.Urgent),
		"past_due":        h.views(d.PastDue),
		"unread_messages": unread,
		"generated_at":    h.Fmt.Time(d.GeneratedAt),
	})
}

const exportPageSize = 200

// ExportOrders handles GET /admin/api/orders/export and streams the
// filtered orders as an .xlsx workbook, one row per order.
func (h *AdminHandler) ExportOrders(c echo.Context) error {
	f, err := parseOrderFilter(c, h.Fmt.Location())
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	f.Limit, f.Offset = exportPageSize, 0
	var all []model.Order
	for {
		page, total, err := h.Orders.List(ctx, f)
		if err != nil {
			h.Logger.Error().Err(err).Msg("export list failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
		}
		all = append(all, page...)
		f.Offset += len(page)
		if len(page) < exportPageSize || f.Offset >= total {
			break
		}
	}

	buf, err := h.writeWorkbook(all)
	if err != nil {
		h.Logger.Error().Err(err).Msg("workbook build failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}
	name := fmt.Sprintf("orders-%s.xlsx", time.Now().In(h.Fmt.Location()).Format("20060102-1504"))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

var exportColumns = []string{"Order", "Room", "Status", "Delivery", "Created", "Payment", "Guest", "Phone", "Total", "Notes"}

func (h *AdminHandler) writeWorkbook(orders []model.Order) (*bytes.Buffer, error) {
	const sheet = "Orders"
	xf := excelize.NewFile()
	defer func() { _ = xf.Close() }()
	if err := xf.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	if err := xf.SetSheetRow(sheet, "A1", &exportColumns); err != nil {
		return nil, err
	}
	if style, err := xf.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		end, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
		_ = xf.SetCellStyle(sheet, "A1", end, style)
	}

	for i, o := range orders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		total, _ := o.Total.Round(2).Float64()
		row := []interface{}{
			o.ID, o.RoomNumber, statusLabel(o.Status),
			h.Fmt.Time(o.DeliveryAt), h.Fmt.Time(o.CreatedAt),
			o.PaymentMethod, o.GuestName, o.Phone, total, o.Notes,
		}
		if err := xf.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return xf.WriteToBuffer()
}
