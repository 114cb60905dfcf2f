package models

// StoreFilter represents filter parameters for listing stores
type StoreFilter struct {
	Keyword  string `form:"keyword"` // Matches name or benefit, case-insensitive
	Geohash  string `form:"geohash"` // Geohash prefix
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// NearbyFilter represents query parameters for a radius search
type NearbyFilter struct {
	Lat    *float64 `form:"lat" binding:"required"`
	Lon    *float64 `form:"lon" binding:"required"`
	Radius *float64 `form:"radius"` // Meters; absent means the default radius
}

// VisibilityQuery represents query parameters for a stateless visibility lookup
type VisibilityQuery struct {
	Lat     *float64 `form:"lat"`
	Lon     *float64 `form:"lon"`
	Heading *float64 `form:"heading"`
}
