package model

import (
    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-room-service/internal/availability"
)

// MenuCategory groups menu items and carries the default availability
// window inherited by items that have none of their own.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name, unique.
//  SortOrder – ascending display order.
//  Window    – default daily window; nil means no restriction.
//  IsActive  – inactive categories hide all their items.
type MenuCategory struct {
    ID        uint64               `json:"id"`         // menu_categories.id
    Name      string               `json:"name"`       // menu_categories.name
    SortOrder int                  `json:"sort_order"` // menu_categories.sort_order
    Window    *availability.Window `json:"window,omitempty"`
    IsActive  bool                 `json:"is_active"`
}

// MenuItem is an orderable product.  Price is the authoritative unit price;
// client-submitted prices are never used.
//
// Fields:
//  ID          – primary key identifier.
//  CategoryID  – owning category.
//  Name        – display name.
//  Description – optional text.
//  Price       – unit price, non-negative, two decimals.
//  Window      – item-specific window overriding the category one.
//  IsActive    – inactive items cannot be ordered.
//  SortOrder   – display order within the category.
type MenuItem struct {
    ID          uint64               `json:"id"`          // menu_items.id
    CategoryID  uint64               `json:"category_id"` // menu_items.category_id
    Name        string               `json:"name"`        // menu_items.name
    Description string               `json:"description,omitempty"`
    Price       decimal.Decimal      `json:"price"` // menu_items.price DECIMAL(10,2)
    Window      *availability.Window `json:"window,omitempty"`
    IsActive    bool                 `json:"is_active"`
    SortOrder   int                  `json:"sort_order"`
}

// CatalogItem is a menu item joined with the fields of its category that
// ordering needs.  It is what the validator resolves cart lines against.
type CatalogItem struct {
    MenuItem
    CategoryName   string               `json:"category_name"`
    CategoryActive bool                 `json:"category_active"`
    CategoryWindow *availability.Window `json:"category_window,omitempty"`
}

// Orderable reports whether the item may appear on an order at all, before
// any time window is considered.
func (c CatalogItem) Orderable() bool { return c.IsActive && c.CategoryActive }
