package availability

import "time"

// Badge is the UI classification attached to each menu item.
type Badge string

const (
	BadgeAlways      Badge = "24h"
	BadgeAvailable   Badge = "available"
	BadgeUnavailable Badge = "unavailable"
)

// Result is the outcome of Evaluate.  Window is the window that applied, nil
// when the item has none.
type Result struct {
	Available bool    `json:"available"`
	Window    *Window `json:"window,omitempty"`
	Badge     Badge   `json:"badge"`
}

// Effective returns the window that governs an item: its own when set,
// otherwise the category default.
func Effective(item, category *Window) *Window {
	if item != nil {
		return item
	}
	return category
}

// Evaluate decides availability at instant at, read as wall-clock time in loc.
func Evaluate(item, category *Window, at time.Time, loc *time.Location) Result {
	w := Effective(item, category)
	if w == nil {
		return Result{Available: true, Badge: BadgeAlways}
	}
	win := *w
	if win.Contains(ClockOf(at, loc)) {
		return Result{Available: true, Window: &win, Badge: BadgeAvailable}
	}
	return Result{Available: false, Window: &win, Badge: BadgeUnavailable}
}
