// Package ordering validates, prices and persists room-service orders and
// owns the order status lifecycle.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-room-service/internal/availability"
	"github.com/iliyamo/hotel-room-service/internal/model"
)

// Catalog resolves cart item ids against the live menu.
type Catalog interface {
	ItemsByIDs(ctx context.Context, ids []uint64) (map[uint64]model.CatalogItem, error)
}

// Rules are the hotel's ordering policies.
type Rules struct {
	MinLead         time.Duration
	MaxAdvance      time.Duration // 0 disables the upper bound
	MaxLineQuantity int           // 0 disables the cap
	PaymentMethods  []string
	Location        *time.Location
}

// Field length limits, in runes.
const (
	maxGuestName = 100
	maxPhone     = 30
	maxNotes     = 500
)

// Kind separates malformed requests from requests the hotel declines.
type Kind string

const (
	KindInput    Kind = "input"
	KindBusiness Kind = "business"
)

// Issue codes.
const (
	CodeEmptyCart       = "empty_cart"
	CodeMalformedCart   = "malformed_cart"
	CodeUnknownPayment  = "unknown_payment_method"
	CodeRequired        = "required"
	CodeInvalidDateTime = "invalid_datetime"
	CodeTooLong         = "too_long"
	CodeQuantityTooHigh = "quantity_too_high"
	CodeTooSoon         = "too_soon"
	CodeTooFar          = "too_far"
	CodeUnavailable     = "unavailable"
)

// Issue is one reason for rejecting an order.  Item fields are set when the
// issue concerns a cart line.
type Issue struct {
	Field   string               `json:"field"`
	ItemID  uint64               `json:"item_id,omitempty"`
	Item    string               `json:"item,omitempty"`
	Code    string               `json:"code"`
	Message string               `json:"message"`
	Window  *availability.Window `json:"window,omitempty"`
}

// Rejection is the expected-failure outcome of Validate.  It is a value,
// not an error: hard failures travel on the error return instead.
type Rejection struct {
	Kind   Kind    `json:"kind"`
	Issues []Issue `json:"issues"`
}

// Request is the parsed order form.  Room fields come from the room
// session and never from the body.
type Request struct {
	RoomID        uint64
	RoomNumber    string
	Items         string // JSON array of {id, quantity}
	PaymentMethod string
	Delivery      string
	GuestName     string
	Phone         string
	Notes         string
}

// ValidatedOrder is a fully priced order ready to persist.
type ValidatedOrder struct {
	RoomID        uint64
	RoomNumber    string
	GuestName     string
	Phone         string
	Notes         string
	PaymentMethod string
	DeliveryAt    time.Time // UTC
	Lines         []model.OrderLine
	Total         decimal.Decimal
	Dropped       int // submitted lines discarded as invalid
}

// Order builds the header to insert, in pending status.
func (v ValidatedOrder) Order(now time.Time) model.Order {
	return model.Order{
		RoomID:        v.RoomID,
		RoomNumber:    v.RoomNumber,
		GuestName:     v.GuestName,
		Phone:         v.Phone,
		Notes:         v.Notes,
		PaymentMethod: v.PaymentMethod,
		DeliveryAt:    v.DeliveryAt,
		Total:         v.Total,
		Status:        model.StatusPending,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
}

// Validator re-resolves and prices a cart.
type Validator struct {
	catalog  Catalog
	rules    Rules
	payments map[string]bool
	now      func() time.Time
}

func NewValidator(catalog Catalog, rules Rules) *Validator {
	if catalog == nil {
		panic("ordering: nil catalog")
	}
	if rules.Location == nil {
		rules.Location = time.UTC
	}
	payments := make(map[string]bool, len(rules.PaymentMethods))
	for _, p := range rules.PaymentMethods {
		payments[strings.ToLower(strings.TrimSpace(p))] = true
	}
	return &Validator{catalog: catalog, rules: rules, payments: payments, now: time.Now}
}

var deliveryLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseDelivery reads a local datetime in loc.  RFC 3339 input with an
// explicit offset is honoured as given.
func ParseDelivery(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range deliveryLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised datetime %q", s)
}

func tooLong(field, value string, max int) *Issue {
	if utf8.RuneCountInString(value) <= max {
		return nil
	}
	return &Issue{Field: field, Code: CodeTooLong, Message: fmt.Sprintf("%s must be at most %d characters", field, max)}
}

// Validate runs the ordering rules against req.  Exactly one of the order
// and the rejection is non-nil when err is nil; err reports catalog
// failures only.
func (v *Validator) Validate(ctx context.Context, req Request) (*ValidatedOrder, *Rejection, error) {
	var input []Issue

	// Input checks run together so the guest sees every form problem at once.
	cart, cartErr := ParseCart(req.Items)
	switch {
	case cartErr == nil:
	case errors.Is(cartErr, ErrEmptyCart):
		input = append(input, Issue{Field: "items", Code: CodeEmptyCart, Message: "the cart is empty"})
	default:
		input = append(input, Issue{Field: "items", Code: CodeMalformedCart, Message: "the cart could not be read"})
	}

	payment := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if !v.payments[payment] {
		input = append(input, Issue{Field: "payment_method", Code: CodeUnknownPayment, Message: "choose a valid payment method"})
	}

	var deliveryAt time.Time
	if strings.TrimSpace(req.Delivery) == "" {
		input = append(input, Issue{Field: "delivery_datetime", Code: CodeRequired, Message: "delivery time is required"})
	} else if t, err := ParseDelivery(req.Delivery, v.rules.Location); err != nil {
		input = append(input, Issue{Field: "delivery_datetime", Code: CodeInvalidDateTime, Message: "delivery time is not a valid date and time"})
	} else {
		deliveryAt = t
	}

	guest := strings.TrimSpace(req.GuestName)
	phone := strings.TrimSpace(req.Phone)
	notes := strings.TrimSpace(req.Notes)
	for _, is := range []*Issue{
		tooLong("guest_name", guest, maxGuestName),
		tooLong("phone", phone, maxPhone),
		tooLong("notes", notes, maxNotes),
	} {
		if is != nil {
			input = append(input, *is)
		}
	}

	lines, dropped := mergeLines(cart)

	// Lines pointing at missing or inactive items are discarded before the
	// quantity cap applies.
	type resolved struct {
		line CartLine
		item model.CatalogItem
	}
	var kept []resolved
	if len(lines) > 0 {
		ids := make([]uint64, len(lines))
		for i, l := range lines {
			ids[i] = l.ItemID
		}
		items, err := v.catalog.ItemsByIDs(ctx, ids)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve cart items: %w", err)
		}
		kept = make([]resolved, 0, len(lines))
		for _, l := range lines {
			it, ok := items[l.ItemID]
			if !ok || !it.Orderable() {
				dropped++
				continue
			}
			kept = append(kept, resolved{line: l, item: it})
		}
	}
	for _, r := range kept {
		if r.line.Quantity < 1 || (v.rules.MaxLineQuantity > 0 && r.line.Quantity > v.rules.MaxLineQuantity) {
			input = append(input, Issue{
				Field: "items", ItemID: r.item.ID, Item: r.item.Name, Code: CodeQuantityTooHigh,
				Message: fmt.Sprintf("at most %d of one item per order", v.rules.MaxLineQuantity),
			})
		}
	}
	if len(input) > 0 {
		return nil, &Rejection{Kind: KindInput, Issues: input}, nil
	}

	now := v.now()
	earliest := now.Add(v.rules.MinLead)
	if deliveryAt.Before(earliest) {
		return nil, business(Issue{
			Field: "delivery_datetime", Code: CodeTooSoon,
			Message: fmt.Sprintf("delivery must be at least %d minutes from now (earliest %s)",
				int(v.rules.MinLead.Minutes()), earliest.In(v.rules.Location).Format("15:04")),
		}), nil
	}
	if v.rules.MaxAdvance > 0 && deliveryAt.After(now.Add(v.rules.MaxAdvance)) {
		return nil, business(Issue{
			Field: "delivery_datetime", Code: CodeTooFar,
			Message: fmt.Sprintf("delivery can be scheduled at most %d days ahead", int(v.rules.MaxAdvance.Hours()/24)),
		}), nil
	}

	if len(kept) == 0 {
		return nil, business(Issue{Field: "items", Code: CodeEmptyCart, Message: "none of the items in the cart can be ordered"}), nil
	}

	var unavailable []Issue
	for _, r := range kept {
		res := availability.Evaluate(r.item.Window, r.item.CategoryWindow, deliveryAt, v.rules.Location)
		if res.Available {
			continue
		}
		unavailable = append(unavailable, Issue{
			Field: "items", ItemID: r.item.ID, Item: r.item.Name, Code: CodeUnavailable, Window: res.Window,
			Message: fmt.Sprintf("%s is only available %s", r.item.Name, res.Window),
		})
	}
	if len(unavailable) > 0 {
		return nil, &Rejection{Kind: KindBusiness, Issues: unavailable}, nil
	}

	out := &ValidatedOrder{
		RoomID:        req.RoomID,
		RoomNumber:    req.RoomNumber,
		GuestName:     guest,
		Phone:         phone,
		Notes:         notes,
		PaymentMethod: payment,
		DeliveryAt:    deliveryAt.UTC(),
		Lines:         make([]model.OrderLine, 0, len(kept)),
		Total:         decimal.Zero,
		Dropped:       dropped,
	}
	for _, r := range kept {
		unit := r.item.Price.Round(2)
		lineTotal := unit.Mul(decimal.NewFromInt(int64(r.line.Quantity))).Round(2)
		out.Lines = append(out.Lines, model.OrderLine{
			ItemID:    r.item.ID,
			ItemName:  r.item.Name,
			UnitPrice: unit,
			Quantity:  r.line.Quantity,
			LineTotal: lineTotal,
		})
		out.Total = out.Total.Add(lineTotal)
	}
	out.Total = out.Total.Round(2)
	return out, nil, nil
}

func business(is Issue) *Rejection {
	return &Rejection{Kind: KindBusiness, Issues: []Issue{is}}
}
