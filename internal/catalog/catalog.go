// Package catalog holds the immutable list of membership partner stores.
//
// A Catalog is validated once when it is built and never mutated afterwards.
// Catalog order is significant: every query returns stores in the order they
// were loaded.
package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/itplace/locator-backend-go/internal/models"
	"github.com/itplace/locator-backend-go/internal/spatial"
)

// GeohashPrecision is the precision used for the geohash stored with each store
const GeohashPrecision = 8

// ErrInvalidStore is returned when a catalog entry fails validation
var ErrInvalidStore = errors.New("invalid store")

// Catalog is an ordered, read-only set of stores
type Catalog struct {
	stores []models.Store
	byID   map[string]int
}

// New validates stores and builds a catalog from them.
// Stores without an ID get one derived from their 1-based position.
func New(stores []models.Store) (*Catalog, error) {
	c := &Catalog{
		stores: make([]models.Store, len(stores)),
		byID:   make(map[string]int, len(stores)),
	}

	for i, s := range stores {
		row := i + 1
		s.ID = strings.TrimSpace(s.ID)
		s.Name = strings.TrimSpace(s.Name)
		s.Benefit = strings.TrimSpace(s.Benefit)
		if s.ID == "" {
			s.ID = "store-" + strconv.Itoa(row)
		}

		if s.Name == "" {
			return nil, fmt.Errorf("%w: row %d: name is empty", ErrInvalidStore, row)
		}
		if !spatial.ValidCoordinate(s.Location) {
			return nil, fmt.Errorf("%w: row %d (%s): coordinate (%v, %v) out of range",
				ErrInvalidStore, row, s.Name, s.Location.Latitude, s.Location.Longitude)
		}
		if prev, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: row %d (%s): id %q already used by row %d",
				ErrInvalidStore, row, s.Name, s.ID, prev+1)
		}

		s.Geohash = spatial.EncodeGeohash(s.Location.Latitude, s.Location.Longitude, GeohashPrecision)
		c.stores[i] = s
		c.byID[s.ID] = i
	}

	return c, nil
}

// Len returns the number of stores
func (c *Catalog) Len() int {
	return len(c.stores)
}

// Stores returns a copy of all stores in catalog order
func (c *Catalog) Stores() []models.Store {
	out := make([]models.Store, len(c.stores))
	copy(out, c.stores)
	return out
}

// Get returns the store with the given ID
func (c *Catalog) Get(id string) (models.Store, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Store{}, false
	}
	return c.stores[i], true
}

// Filter returns stores matching a keyword (name or benefit, case-insensitive)
// and a geohash prefix. Empty arguments match everything.
func (c *Catalog) Filter(keyword, geohashPrefix string) []models.Store {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	geohashPrefix = strings.ToLower(strings.TrimSpace(geohashPrefix))

	out := make([]models.Store, 0)
	for _, s := range c.stores {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(s.Name), keyword) &&
			!strings.Contains(strings.ToLower(s.Benefit), keyword) {
			continue
		}
		if geohashPrefix != "" && !strings.HasPrefix(s.Geohash, geohashPrefix) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// WithinRadius returns the stores within radius meters of center, annotated
// with their distance
func (c *Catalog) WithinRadius(center models.GeoCoordinate, radius float64) []models.NearbyStore {
	out := make([]models.NearbyStore, 0)
	if radius < 0 {
		return out
	}

	bound := spatial.RadiusBound(center, radius)
	for _, s := range c.stores {
		if !bound.ContainsLatLng(spatial.LatLng(s.Location)) {
			continue
		}
		d := spatial.HaversineDistance(center, s.Location)
		if d <= radius {
			out = append(out, models.NearbyStore{Store: s, DistanceMeters: d})
		}
	}
	return out
}
