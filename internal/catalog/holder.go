package catalog

import "sync/atomic"

// Holder publishes the current catalog snapshot. Readers always see a
// complete catalog; a reload replaces the snapshot as a whole.
type Holder struct {
	current atomic.Pointer[Catalog]
}

// NewHolder creates a holder with an initial catalog. A nil catalog is
// replaced by an empty one.
func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.Swap(c)
	return h
}

// Load returns the current catalog
func (h *Holder) Load() *Catalog {
	return h.current.Load()
}

// Swap installs a new catalog and returns the previous one
func (h *Holder) Swap(c *Catalog) *Catalog {
	if c == nil {
		c = &Catalog{byID: map[string]int{}}
	}
	return h.current.Swap(c)
}
