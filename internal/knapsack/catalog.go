package knapsack

import (
	"fmt"
	"math"
	"sort"
)

// CatalogItem is an item together with its density and its position in the
// caller's input. The sentinel has Position -1.
type CatalogItem struct {
	Value    int
	Weight   int
	Density  float64
	Position int
}

func newCatalogItem(item Item, position int) CatalogItem {
	return catalogItemWithDensity(item, float64(item.Value)/float64(item.Weight), position)
}

func catalogItemWithDensity(item Item, density float64, position int) CatalogItem {
	return CatalogItem{
		Value:    item.Value,
		Weight:   item.Weight,
		Density:  density,
		Position: position,
	}
}

func sentinelItem() CatalogItem {
	return catalogItemWithDensity(Item{}, 0, -1)
}

// Catalog is the density-ordered item sequence the engine walks.
// Index 0 is always the sentinel; indexes 1..Len() are the real items.
type Catalog struct {
	items []CatalogItem
}

// BuildCatalog validates the items, sorts them by descending density (stable on
// input order) and prepends the sentinel.
func BuildCatalog(items []Item) (*Catalog, error) {
	entries := make([]CatalogItem, 0, len(items)+1)
	entries = append(entries, sentinelItem())

	total := 0
	for i, item := range items {
		if item.Weight <= 0 {
			return nil, fmt.Errorf("%w: item %d has weight %d", ErrInvalidInput, i, item.Weight)
		}
		if item.Value < 0 {
			return nil, fmt.Errorf("%w: item %d has value %d", ErrInvalidInput, i, item.Value)
		}
		if item.Value > math.MaxInt-total {
			return nil, fmt.Errorf("%w: total value overflows at item %d", ErrInvalidInput, i)
		}
		total += item.Value
		entries = append(entries, newCatalogItem(item, i))
	}

	ranked := entries[1:]
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Density > ranked[j].Density
	})

	return &Catalog{items: entries}, nil
}

// Len returns the number of real items.
func (c *Catalog) Len() int {
	return len(c.items) - 1
}

// At returns the entry at catalog index i.
func (c *Catalog) At(i int) CatalogItem {
	return c.items[i]
}

// positions maps catalog indexes to sorted input positions.
func (c *Catalog) positions(indexes []int) []int {
	out := make([]int, 0, len(indexes))
	for _, idx := range indexes {
		out = append(out, c.items[idx].Position)
	}
	sort.Ints(out)
	return out
}
