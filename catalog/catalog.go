// Package catalog caches the fetched menu and a filtered view of it.
package catalog

import (
	"strings"

	"restaurant-pos/models"
)

// Catalog holds the full item list in fetch order and the subset whose name
// matches the current query. It is not safe for concurrent use.
type Catalog struct {
	items   []models.Item
	query   string
	visible []models.Item
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{}
}

// Load replaces the cached items and refilters them.
func (c *Catalog) Load(items []models.Item) {
	c.items = make([]models.Item, len(items))
	copy(c.items, items)
	c.refilter()
}

// SetQuery stores the search text and refilters.
func (c *Catalog) SetQuery(query string) {
	c.query = query
	c.refilter()
}

// Query returns the current search text.
func (c *Catalog) Query() string {
	return c.query
}

// Items returns every cached item in fetch order.
func (c *Catalog) Items() []models.Item {
	out := make([]models.Item, len(c.items))
	copy(out, c.items)
	return out
}

// Visible returns the items whose name contains the query, case-insensitively.
func (c *Catalog) Visible() []models.Item {
	out := make([]models.Item, len(c.visible))
	copy(out, c.visible)
	return out
}

// ByCategory returns the visible items tagged with category.
// An empty category returns every visible item.
func (c *Catalog) ByCategory(category string) []models.Item {
	if strings.TrimSpace(category) == "" {
		return c.Visible()
	}
	var out []models.Item
	for _, it := range c.visible {
		if strings.EqualFold(it.Category, category) {
			out = append(out, it)
		}
	}
	return out
}

// Find looks an item up by id in the full list.
func (c *Catalog) Find(id int64) (models.Item, bool) {
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return models.Item{}, false
}

func (c *Catalog) refilter() {
	if c.query == "" {
		c.visible = c.items
		return
	}
	needle := strings.ToLower(c.query)
	visible := make([]models.Item, 0, len(c.items))
	for _, it := range c.items {
		if strings.Contains(strings.ToLower(it.Name), needle) {
			visible = append(visible, it)
		}
	}
	c.visible = visible
}
