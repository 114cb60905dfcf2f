package models

// GeoCoordinate is a point on the Earth's surface in decimal degrees
type GeoCoordinate struct {
	Latitude  float64 `json:"latitude"`  // -90 to 90
	Longitude float64 `json:"longitude"` // -180 to 180
}

// Store represents a membership partner store
type Store struct {
	ID       string        `json:"id" db:"id"`
	Name     string        `json:"name" db:"name"`
	Benefit  string        `json:"benefit" db:"benefit"`
	Location GeoCoordinate `json:"location"`
	Geohash  string        `json:"geohash,omitempty" db:"geohash"`
}

// NearbyStore is a store annotated with its distance from a query point
type NearbyStore struct {
	Store          Store   `json:"store"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// StoresResponse represents a paginated response of stores
type StoresResponse struct {
	Data       []Store `json:"data"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}

// CatalogImport records one replacement of the store catalog
type CatalogImport struct {
	ID         int64  `json:"id" db:"id"`
	Source     string `json:"source" db:"source"`
	StoreCount int    `json:"storeCount" db:"store_count"`
	ImportedAt string `json:"importedAt" db:"imported_at"`
}
