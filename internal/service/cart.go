package service

import "github.com/jcondori/biblioteca-api/internal/models"

// Cart is the selection cart of a checkout desk session: an ordered,
// duplicate-free set of catalog items keyed by asset ID. It performs no I/O;
// the owning session serializes access.
type Cart struct {
	items []models.AssetOption
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// Toggle adds the item when absent and removes it when present. It reports
// whether the item is selected after the call.
func (c *Cart) Toggle(item models.AssetOption) bool {
	for i, existing := range c.items {
		if existing.ID == item.ID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return false
		}
	}
	c.items = append(c.items, item)
	return true
}

// Contains reports whether the asset is currently selected.
func (c *Cart) Contains(assetID string) bool {
	for _, item := range c.items {
		if item.ID == assetID {
			return true
		}
	}
	return false
}

// Items returns the selection in insertion order. The slice is a copy.
func (c *Cart) Items() []models.AssetOption {
	out := make([]models.AssetOption, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of selected items.
func (c *Cart) Len() int {
	return len(c.items)
}

// HasThesis reports whether any selected item is a grade work.
func (c *Cart) HasThesis() bool {
	for _, item := range c.items {
		if item.Tipo == models.AssetKindThesis {
			return true
		}
	}
	return false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}
