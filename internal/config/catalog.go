package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/hotel-room-service/internal/availability"
)

// RoomSeed is one room row in the seed file.
type RoomSeed struct {
	Number   string `yaml:"number"`
	Floor    *int   `yaml:"floor,omitempty"`
	IsActive *bool  `yaml:"is_active,omitempty"`
}

// ItemSeed is one menu item inside a category.
type ItemSeed struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description,omitempty"`
	Price       decimal.Decimal      `yaml:"price"`
	Window      *availability.Window `yaml:"window,omitempty"`
	IsActive    *bool                `yaml:"is_active,omitempty"`
}

// CategorySeed groups items and carries their default window.
type CategorySeed struct {
	Name     string               `yaml:"name"`
	Window   *availability.Window `yaml:"window,omitempty"`
	IsActive *bool                `yaml:"is_active,omitempty"`
	Items    []ItemSeed           `yaml:"items"`
}

// CatalogSeed is the root of catalog.yaml.
type CatalogSeed struct {
	Rooms      []RoomSeed     `yaml:"rooms"`
	Categories []CategorySeed `yaml:"categories"`
}

// LoadCatalogSeed reads and validates a seed file.
func LoadCatalogSeed(path string) (*CatalogSeed, error) {
	if path == "" {
		path = "configs/catalog.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}
	return ParseCatalogSeed(data)
}

// ParseCatalogSeed decodes and validates seed YAML.
func ParseCatalogSeed(data []byte) (*CatalogSeed, error) {
	var seed CatalogSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog seed: %w", err)
	}
	return &seed, nil
}

// Validate rejects duplicate names, negative prices and windows that
// cannot be evaluated.
func (s *CatalogSeed) Validate() error {
	rooms := map[string]bool{}
	for i, r := range s.Rooms {
		n := strings.TrimSpace(r.Number)
		if n == "" {
			return fmt.Errorf("room %d: number is required", i+1)
		}
		if rooms[n] {
			return fmt.Errorf("room %s: duplicate number", n)
		}
		rooms[n] = true
	}

	cats := map[string]bool{}
	for _, c := range s.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return errors.New("category name is required")
		}
		if cats[name] {
			return fmt.Errorf("category %s: duplicate name", name)
		}
		cats[name] = true
		if c.Window != nil {
			if err := c.Window.Validate(); err != nil {
				return fmt.Errorf("category %s: %w", name, err)
			}
		}
		items := map[string]bool{}
		for _, it := range c.Items {
			iname := strings.TrimSpace(it.Name)
			if iname == "" {
				return fmt.Errorf("category %s: item name is required", name)
			}
			if items[iname] {
				return fmt.Errorf("category %s: duplicate item %s", name, iname)
			}
			items[iname] = true
			if it.Price.IsNegative() {
				return fmt.Errorf("item %s: price must not be negative", iname)
			}
			if it.Window != nil {
				if err := it.Window.Validate(); err != nil {
					return fmt.Errorf("item %s: %w", iname, err)
				}
			}
		}
	}
	return nil
}

// Active resolves an optional is_active flag; absent means active.
func Active(b *bool) bool { return b == nil || *b }
