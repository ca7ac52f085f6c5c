package ordering

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrMalformedCart = errors.New("cart is malformed")
)

// CartLine is one submitted (item, quantity) pair.  Any other field the
// browser sends, such as a displayed price, is ignored.
type CartLine struct {
	ItemID   uint64
	Quantity int
}

// flexInt accepts 3, 3.0 and "3".  Browsers serialize form state
// inconsistently; non-integral values are rejected.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexInt(n)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
		return ErrMalformedCart
	}
	*f = flexInt(int64(v))
	return nil
}

type rawCartLine struct {
	ID       flexInt `json:"id"`
	Quantity flexInt `json:"quantity"`
}

// ParseCart decodes the JSON array posted in the "items" field.
func ParseCart(raw string) ([]CartLine, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyCart
	}
	var in []rawCartLine
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, ErrMalformedCart
	}
	if len(in) == 0 {
		return nil, ErrEmptyCart
	}
	out := make([]CartLine, 0, len(in))
	for _, l := range in {
		id := uint64(0)
		if l.ID > 0 {
			id = uint64(l.ID)
		}
		q := int(l.Quantity)
		if int64(q) != int64(l.Quantity) {
			q = 0
		}
		out = append(out, CartLine{ItemID: id, Quantity: q})
	}
	return out, nil
}

// mergeLines drops lines with quantity < 1 or no item id and sums
// duplicates, keeping first-seen order.  Sums saturate at math.MaxInt.
// It returns the surviving lines and how many submitted lines were
// discarded.
func mergeLines(lines []CartLine) ([]CartLine, int) {
	idx := make(map[uint64]int, len(lines))
	out := make([]CartLine, 0, len(lines))
	dropped := 0
	for _, l := range lines {
		if l.Quantity < 1 || l.ItemID == 0 {
			dropped++
			continue
		}
		if i, ok := idx[l.ItemID]; ok {
			if l.Quantity > math.MaxInt-out[i].Quantity {
				out[i].Quantity = math.MaxInt
			} else {
				out[i].Quantity += l.Quantity
			}
			continue
		}
		idx[l.ItemID] = len(out)
		out = append(out, l)
	}
	return out, dropped
}
