package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/itplace/locator-backend-go/internal/catalog"
	"github.com/itplace/locator-backend-go/internal/metrics"
	"github.com/itplace/locator-backend-go/internal/models"
	"github.com/itplace/locator-backend-go/internal/repository"
	"github.com/itplace/locator-backend-go/internal/spatial"
)

// StoreService handles business logic for the store catalog
type StoreService struct {
	repo          *repository.StoreRepository
	holder        *catalog.Holder
	defaultRadius float64
	maxRadius     float64
}

// NewStoreService creates a new store service
func NewStoreService(repo *repository.StoreRepository, holder *catalog.Holder, defaultRadius, maxRadius float64) *StoreService {
	return &StoreService{
		repo:          repo,
		holder:        holder,
		defaultRadius: defaultRadius,
		maxRadius:     maxRadius,
	}
}

// Catalog returns the current catalog snapshot
func (s *StoreService) Catalog() *catalog.Catalog {
	return s.holder.Load()
}

// Reload rebuilds the in-memory catalog from the database
func (s *StoreService) Reload(ctx context.Context) error {
	stores, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	c, err := catalog.New(stores)
	if err != nil {
		return fmt.Errorf("stored catalog is invalid: %w", err)
	}

	s.install(c)
	return nil
}

// Import validates stores, persists them and publishes the new catalog.
// Nothing is persisted when validation fails.
func (s *StoreService) Import(ctx context.Context, stores []models.Store, source string) (*catalog.Catalog, error) {
	c, err := catalog.New(stores)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceAll(ctx, c.Stores(), source); err != nil {
		return nil, err
	}

	s.install(c)
	log.Printf("Imported %d stores from %s", c.Len(), source)
	return c, nil
}

// ImportFile imports a catalog file
func (s *StoreService) ImportFile(ctx context.Context, path string) (*catalog.Catalog, error) {
	stores, err := catalog.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, stores, path)
}

// SeedIfEmpty imports path when the database holds no stores yet
func (s *StoreService) SeedIfEmpty(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}

	n, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("Catalog already has %d stores, skipping seed from %s", n, path)
		return nil
	}

	_, err = s.ImportFile(ctx, path)
	return err
}

// LastImport returns the most recent import record
func (s *StoreService) LastImport(ctx context.Context) (*models.CatalogImport, error) {
	return s.repo.LastImport(ctx)
}

func (s *StoreService) install(c *catalog.Catalog) {
	s.holder.Swap(c)
	metrics.CatalogStores.Set(float64(c.Len()))
}

// GetStores returns one page of stores matching filter, in catalog order.
// The response carries the page and page size actually applied.
func (s *StoreService) GetStores(filter models.StoreFilter) (*models.StoresResponse, error) {
	if filter.Geohash != "" && !spatial.ValidGeohash(filter.Geohash) {
		return nil, fmt.Errorf("%w: geohash %q", ErrInvalidQuery, filter.Geohash)
	}

	matched := s.holder.Load().Filter(filter.Keyword, filter.Geohash)
	page, pageSize := normalizePage(filter.Page, filter.PageSize)

	resp := &models.StoresResponse{
		Data:       []models.Store{},
		Total:      int64(len(matched)),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (len(matched) + pageSize - 1) / pageSize,
	}

	start := (page - 1) * pageSize
	if start < len(matched) {
		end := start + pageSize
		if end > len(matched) {
			end = len(matched)
		}
		resp.Data = matched[start:end]
	}
	return resp, nil
}

// GetStoreByID retrieves a single store by ID
func (s *StoreService) GetStoreByID(id string) (*models.Store, error) {
	store, ok := s.holder.Load().Get(id)
	if !ok {
		return nil, nil
	}
	return &store, nil
}

// Nearby returns the stores within radius meters of (lat, lon). A nil
// radius means the configured default.
func (s *StoreService) Nearby(lat, lon float64, radiusMeters *float64) ([]models.NearbyStore, float64, error) {
	center := models.GeoCoordinate{Latitude: lat, Longitude: lon}
	if !spatial.ValidCoordinate(center) {
		return nil, 0, fmt.Errorf("%w: coordinate (%v, %v) out of range", ErrInvalidQuery, lat, lon)
	}

	radius := s.defaultRadius
	if radiusMeters != nil {
		radius = *radiusMeters
	}
	if math.IsNaN(radius) || radius < 0 || radius > s.maxRadius {
		return nil, 0, fmt.Errorf("%w: radius must be between 0 and %v meters", ErrInvalidQuery, s.maxRadius)
	}

	return s.holder.Load().WithinRadius(center, radius), radius, nil
}

// Export writes the current catalog as a workbook
func (s *StoreService) Export(w io.Writer) error {
	return catalog.WriteXLSX(w, s.holder.Load().Stores())
}

// normalizePage applies pagination defaults and limits
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}
	if pageSize > 1000 {
		pageSize = 1000
	}
	return page, pageSize
}
