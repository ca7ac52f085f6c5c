package ordering

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-service/internal/availability"
	"github.com/iliyamo/hotel-room-service/internal/model"
)

type fakeCatalog struct {
	items map[uint64]model.CatalogItem
	calls int
	err   error
}

func (f *fakeCatalog) ItemsByIDs(_ context.Context, ids []uint64) (map[uint64]model.CatalogItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[uint64]model.CatalogItem, len(ids))
	for _, id := range ids {
		if it, ok := f.items[id]; ok {
			out[id] = it
		}
	}
	return out, nil
}

func item(id uint64, name, price string, active, catActive bool, win *availability.Window) model.CatalogItem {
	return model.CatalogItem{
		MenuItem: model.MenuItem{
			ID: id, CategoryID: 1, Name: name,
			Price: decimal.RequireFromString(price), Window: win, IsActive: active,
		},
		CategoryName:   "Menu",
		CategoryActive: catActive,
	}
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestValidator() (*Validator, *fakeCatalog) {
	breakfast := &availability.Window{Start: availability.Clock(7, 0, 0), End: availability.Clock(10, 30, 0)}
	cat := &fakeCatalog{items: map[uint64]model.CatalogItem{
		1: item(1, "Club Sandwich", "12.50", true, true, nil),
		2: item(2, "Sparkling Water", "0.10", true, true, nil),
		3: item(3, "Pancakes", "9.00", true, true, breakfast),
		4: item(4, "Retired Soup", "6.00", false, true, nil),
		5: item(5, "Hidden Cake", "5.00", true, false, nil),
	}}
	v := NewValidator(cat, Rules{
		MinLead:         30 * time.Minute,
		MaxAdvance:      7 * 24 * time.Hour,
		MaxLineQuantity: 50,
		PaymentMethods:  []string{"cash", "room_charge", "card"},
		Location:        time.UTC,
	})
	v.now = func() time.Time { return fixedNow }
	return v, cat
}

func baseRequest() Request {
	return Request{
		RoomID:        7,
		RoomNumber:    "207",
		Items:         `[{"id":1,"quantity":2}]`,
		PaymentMethod: "cash",
		Delivery:      "2026-03-10T13:00",
	}
}

func codes(r *Rejection) []string {
	out := make([]string, 0, len(r.Issues))
	for _, is := range r.Issues {
		out = append(out, is.Code)
	}
	return out
}

func TestValidateAcceptsAndPrices(t *testing.T) {
	v, _ := newTestValidator()
	req := baseRequest()
	req.GuestName = "  Ada  "

	out, rej, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, rej)
	require.NotNil(t, out)

	assert.Equal(t, uint64(7), out.RoomID)
	assert.Equal(t, "207", out.RoomNumber)
	assert.Equal(t, "Ada", out.GuestName)
	assert.Equal(t, "cash", out.PaymentMethod)
	require.Len(t, out.Lines, 1)
	assert.Equal(t, "Club Sandwich", out.Lines[0].ItemName)
	assert.Equal(t, "25.00", out.Lines[0].LineTotal.StringFixed(2))
	assert.Equal(t, "25.00", out.Total.StringFixed(2))
	assert.Equal(t, time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC), out.DeliveryAt)
}

func TestValidateIgnoresClientPrice(t *testing.T) {
	v, _ := newTestValidator()
	req := baseRequest()
	req.Items = `[{"id":1,"quantity":1,"price":0.01}]`

	out, rej, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, rej)
	assert.True(t, out.Total.Equal(decimal.RequireFromString("12.50")))
}

func TestValidateDecimalArithmetic(t *testing.T) {
	v, _ := newTestValidator()
	req := baseRequest()
	req.Items = `[{"id":2,"quantity":3}]`

	out, rej, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, rej)
	assert.Equal(t, "0.30", out.Total.StringFixed(2))
	assert.True(t, out.Total.Equal(decimal.RequireFromString("0.3")))
}

func TestValidateLeadTimeBoundary(t *testing.T) {
	v, _ := newTestValidator()

	req := baseRequest()
	req.Delivery = "2026-03-10T12:30"
	_, rej, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, rej, "exactly the minimum lead time is accepted")

	req.Delivery = "2026-03-10T12:29"
	_, rej, err = v.Validate(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, KindBusiness, rej.Kind)
	assert.Equal(t, []string{CodeTooSoon}, codes(rej))
	assert.Contains(t, rej.Issues[0].Message, "12:30")
}

func TestValidateTooFarAhead(t *testing.T) {
	v, _ := newTestValidator()
	req := baseRequest()
	req.Delivery = "2026-03-18T12:00"

	_, rej, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, KindBusiness, rej.Kind)
	assert.Equal(t, []string{CodeTooFar}, codes(rej))
}

func TestValidateDropsInvalidLines(t *testing.T) {
	v, _ := newTestValidator()
	req := baseRequest()
	// unknown id, inactive item, inactive category, zero quantity, one good line
	req.Items = `[{"id":99,"quantity":1},{"id":4,"quantity":1},{"id":5,"quantity":2},{"id":2,"quantity":0},{"id":1,"quantity":1}]`

	out, rej, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, rej)
	require.Len(t, out.Lines, 1)
	assert.Equal(t, uint64(1), out.Lines[0].ItemID)
	assert.Equal(t, 4, out.Dropped)
	assert.Equal(t, "12.50", out.Total.StringFixed(2))
}

func TestValidateAllLinesInvalid(t *testing.T) {
	v, _ := newTestValidator()
	req := baseRequest()
	req.Items = `[{"id":99,"quantity":1},{"id":4,"quantity":1}]`

	out, rej, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, out)
	require.NotNil(t, rej)
	assert.Equal(t, KindBusiness, rej.Kind)
	assert.Equal(t, []string{CodeEmptyCart}, codes(rej))
}

func TestValidateUnavailableItemNamesWindow(t *testing.T) {
	v, _ := newTestValidator()
	req := baseRequest()
	req.Items = `[{"id":3,"quantity":1},{"id":1,"quantity":1}]`

	_, rej, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, KindBusiness, rej.Kind)
	require.Len(t, rej.Issues, 1)
	is := rej.Issues[0]
	assert.Equal(t, CodeUnavailable, is.Code)
	assert.Equal(t, "Pancakes", is.Item)
	require.NotNil(t, is.Window)
	assert.Equal(t, availability.Clock(7, 0, 0), is.Window.Start)

	req.Delivery = "2026-03-11T08:00"
	out, rej, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, rej)
	assert.Equal(t, "21.50", out.Total.StringFixed(2))
}

func TestValidateInputIssuesReportedTogether(t *testing.T) {
	v, cat := newTestValidator()
	req := baseRequest()
	req.Items = `not json`
	req.PaymentMethod = "bitcoin"
	req.Delivery = "tomorrow-ish"

	_, rej, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, KindInput, rej.Kind)
	assert.ElementsMatch(t, []string{CodeMalformedCart, CodeUnknownPayment, CodeInvalidDateTime}, codes(rej))
	assert.Zero(t, cat.calls, "catalog must not be read for malformed input")
}

func TestValidateEmptyCartAndMissingDelivery(t *testing.T) {
	v, _ := newTestValidator()
	req := baseRequest()
	req.Items = `[]`
	req.Delivery = ""

	_, rej, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, KindInput, rej.Kind)
	assert.ElementsMatch(t, []string{CodeEmptyCart, CodeRequired}, codes(rej))
}

func TestValidateMergesDuplicatesAndCapsQuantity(t *testing.T) {
	v, _ := newTestValidator()
	req := baseRequest()
	req.Items = `[{"id":2,"quantity":"2"},{"id":2,"quantity":3}]`

	out, rej, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, rej)
	require.Len(t, out.Lines, 1)
	assert.Equal(t, 5, out.Lines[0].Quantity)

	req.Items = `[{"id":2,"quantity":30},{"id":2,"quantity":21}]`
	_, rej, err = v.Validate(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, KindInput, rej.Kind)
	assert.Equal(t, []string{CodeQuantityTooHigh}, codes(rej))
}

func TestValidateHugeQuantities(t *testing.T) {
	cases := map[string]struct {
		items string
		code  string
	}{
		"max int on one line":  {`[{"id":1,"quantity":9223372036854775807}]`, CodeQuantityTooHigh},
		"duplicates overflow":  {`[{"id":1,"quantity":9223372036854775807},{"id":1,"quantity":9223372036854775807}]`, CodeQuantityTooHigh},
		"large duplicates":     {`[{"id":1,"quantity":5000000000000000000},{"id":1,"quantity":5000000000000000000}]`, CodeQuantityTooHigh},
		"string max int":       {`[{"id":1,"quantity":"9223372036854775807"},{"id":1,"quantity":1}]`, CodeQuantityTooHigh},
		"float beyond int64":   {`[{"id":1,"quantity":1e20}]`, CodeMalformedCart},
		"float string too big": {`[{"id":1,"quantity":"99999999999999999999"}]`, CodeMalformedCart},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			v, _ := newTestValidator()
			req := baseRequest()
			req.Items = tc.items

			out, rej, err := v.Validate(context.Background(), req)
			require.NoError(t, err)
			assert.Nil(t, out)
			require.NotNil(t, rej)
			assert.Equal(t, KindInput, rej.Kind)
			assert.Equal(t, []string{tc.code}, codes(rej))
		})
	}
}

func TestValidateCapIgnoresDiscardedLines(t *testing.T) {
	v, _ := newTestValidator()
	req := baseRequest()
	// unknown and inactive items above the cap are dropped, not rejected
	req.Items = `[{"id":99,"quantity":60},{"id":4,"quantity":9223372036854775807},{"id":1,"quantity":1}]`

	out, rej, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	require.Nil(t, rej)
	require.Len(t, out.Lines, 1)
	assert.Equal(t, 1, out.Lines[0].Quantity)
	assert.Equal(t, 2, out.Dropped)
	assert.Equal(t, "12.50", out.Total.StringFixed(2))
}

func TestMergeLinesSaturates(t *testing.T) {
	lines, dropped := mergeLines([]CartLine{
		{ItemID: 1, Quantity: math.MaxInt},
		{ItemID: 1, Quantity: math.MaxInt},
		{ItemID: 2, Quantity: 0},
	})
	assert.Equal(t, 1, dropped)
	require.Len(t, lines, 1)
	assert.Equal(t, math.MaxInt, lines[0].Quantity)
}

func TestValidateFieldLengths(t *testing.T) {
	v, _ := newTestValidator()
	req := baseRequest()
	long := make([]rune, 501)
	for i := range long {
		long[i] = 'ä'
	}
	req.Notes = string(long)

	_, rej, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, rej)
	assert.Equal(t, []string{CodeTooLong}, codes(rej))
	assert.Equal(t, "notes", rej.Issues[0].Field)
}

func TestValidateCatalogFailureIsAnError(t *testing.T) {
	v, cat := newTestValidator()
	cat.err = errors.New("connection refused")

	out, rej, err := v.Validate(context.Background(), baseRequest())
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Nil(t, rej)
}

func TestParseDeliveryLocal(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	got, err := ParseDelivery("2026-07-01T19:30", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 1, 17, 30, 0, 0, time.UTC), got.UTC())

	got, err = ParseDelivery("2026-07-01T19:30:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, 19, got.UTC().Hour())

	_, err = ParseDelivery("01/07/2026", loc)
	assert.Error(t, err)
}

func TestParseCart(t *testing.T) {
	lines, err := ParseCart(`[{"id":"4","quantity":2.0}]`)
	require.NoError(t, err)
	assert.Equal(t, []CartLine{{ItemID: 4, Quantity: 2}}, lines)

	_, err = ParseCart(`[{"id":4,"quantity":1.5}]`)
	assert.ErrorIs(t, err, ErrMalformedCart)

	_, err = ParseCart("  ")
	assert.ErrorIs(t, err, ErrEmptyCart)
}
