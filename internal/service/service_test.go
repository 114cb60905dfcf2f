package service

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/itplace/locator-backend-go/internal/catalog"
	"github.com/itplace/locator-backend-go/internal/database"
	"github.com/itplace/locator-backend-go/internal/models"
	"github.com/itplace/locator-backend-go/internal/repository"
	"github.com/itplace/locator-backend-go/internal/spatial"
	"github.com/itplace/locator-backend-go/internal/tracker"
	"github.com/itplace/locator-backend-go/internal/visibility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cityHall = models.GeoCoordinate{Latitude: 37.5665, Longitude: 126.9780}

type fixture struct {
	stores  *StoreService
	viewers *ViewerService
	repo    *repository.StoreRepository
	holder  *catalog.Holder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "locator.db")})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	sessions := tracker.NewMemoryStore(time.Hour)
	t.Cleanup(func() { sessions.Close() })

	engine, err := visibility.NewEngine(visibility.DefaultConfig())
	require.NoError(t, err)

	repo := repository.NewStoreRepository(conn)
	holder := catalog.NewHolder(nil)
	return &fixture{
		stores:  NewStoreService(repo, holder, 50, 5000),
		viewers: NewViewerService(sessions, holder, engine),
		repo:    repo,
		holder:  holder,
	}
}

func sampleStores() []models.Store {
	return []models.Store{
		{ID: "a", Name: "Store A", Benefit: "10% off", Location: spatial.DestinationPoint(cityHall, 10, 500)},
		{ID: "b", Name: "Store B", Benefit: "free drink", Location: spatial.DestinationPoint(cityHall, 200, 500)},
		{ID: "c", Name: "Corner Cafe", Benefit: "free size up", Location: spatial.DestinationPoint(cityHall, 90, 30)},
	}
}

func ptr(v float64) *float64 { return &v }

func TestStoreServiceImportAndReload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c, err := f.stores.Import(ctx, sampleStores(), "test")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Same(t, c, f.stores.Catalog())

	// A fresh holder picks the catalog up from the database
	f.holder.Swap(nil)
	require.NoError(t, f.stores.Reload(ctx))
	assert.Equal(t, c.Stores(), f.stores.Catalog().Stores())
}

func TestStoreServiceImportRejectsInvalidCatalog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.stores.Import(ctx, sampleStores(), "good")
	require.NoError(t, err)

	bad := append(sampleStores(), models.Store{Name: "Nowhere", Location: models.GeoCoordinate{Latitude: 120, Longitude: 0}})
	_, err = f.stores.Import(ctx, bad, "bad")
	assert.ErrorIs(t, err, catalog.ErrInvalidStore)

	assert.Equal(t, 3, f.stores.Catalog().Len())
	n, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestStoreServiceSeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	path := filepath.Join(t.TempDir(), "stores.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Seed","benefit":"x","lat":37.5,"lng":127.0}]`), 0o644))

	require.NoError(t, f.stores.SeedIfEmpty(ctx, ""))
	assert.Equal(t, 0, f.stores.Catalog().Len())

	require.NoError(t, f.stores.SeedIfEmpty(ctx, path))
	assert.Equal(t, 1, f.stores.Catalog().Len())

	_, err := f.stores.Import(ctx, sampleStores(), "later")
	require.NoError(t, err)
	require.NoError(t, f.stores.SeedIfEmpty(ctx, path))
	assert.Equal(t, 3, f.stores.Catalog().Len(), "seed does not overwrite an existing catalog")

	imp, err := f.stores.LastImport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "later", imp.Source)
}

func TestStoreServiceGetStores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.stores.Import(ctx, sampleStores(), "test")
	require.NoError(t, err)

	resp, err := f.stores.GetStores(models.StoreFilter{Keyword: "free"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, "b", resp.Data[0].ID)
	assert.Equal(t, "c", resp.Data[1].ID)

	resp, err = f.stores.GetStores(models.StoreFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "c", resp.Data[0].ID)

	resp, err = f.stores.GetStores(models.StoreFilter{Page: 5, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
	assert.NotNil(t, resp.Data)

	_, err = f.stores.GetStores(models.StoreFilter{Geohash: "not-a-hash"})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	store, err := f.stores.GetStoreByID("b")
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, "Store B", store.Name)

	store, err = f.stores.GetStoreByID("zzz")
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestStoreServiceGetStoresReportsAppliedPaging(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.stores.Import(ctx, sampleStores(), "test")
	require.NoError(t, err)

	tests := []struct {
		name             string
		filter           models.StoreFilter
		page, pageSize   int
		totalPages, size int
	}{
		{"defaults", models.StoreFilter{}, 1, 100, 1, 3},
		{"negative page", models.StoreFilter{Page: -3, PageSize: 1}, 1, 1, 3, 1},
		{"oversized page", models.StoreFilter{PageSize: 5000}, 1, 1000, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.stores.GetStores(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.page, resp.Page)
			assert.Equal(t, tt.pageSize, resp.PageSize)
			assert.Equal(t, tt.totalPages, resp.TotalPages)
			assert.Len(t, resp.Data, tt.size)
		})
	}
}

func TestStoreServiceNearby(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.stores.Import(ctx, sampleStores(), "test")
	require.NoError(t, err)

	near, radius, err := f.stores.Nearby(cityHall.Latitude, cityHall.Longitude, nil)
	require.NoError(t, err)
	assert.Equal(t, 50.0, radius)
	require.Len(t, near, 1)
	assert.Equal(t, "c", near[0].Store.ID)

	near, radius, err = f.stores.Nearby(cityHall.Latitude, cityHall.Longitude, ptr(0))
	require.NoError(t, err)
	assert.Equal(t, 0.0, radius, "an explicit zero is not the default")
	assert.Empty(t, near)

	// Zero radius still matches a store standing exactly on the point
	c := sampleStores()[2].Location
	near, _, err = f.stores.Nearby(c.Latitude, c.Longitude, ptr(0))
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Equal(t, "c", near[0].Store.ID)

	near, _, err = f.stores.Nearby(cityHall.Latitude, cityHall.Longitude, ptr(600))
	require.NoError(t, err)
	assert.Len(t, near, 3)

	_, _, err = f.stores.Nearby(cityHall.Latitude, cityHall.Longitude, ptr(10000))
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, _, err = f.stores.Nearby(cityHall.Latitude, cityHall.Longitude, ptr(-1))
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, _, err = f.stores.Nearby(95, 0, ptr(100))
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestStoreServiceExport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.stores.Import(ctx, sampleStores(), "test")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.stores.Export(&buf))

	stores, err := catalog.LoadXLSX(&buf, catalog.ExportSheet)
	require.NoError(t, err)
	assert.Len(t, stores, 3)
}

func TestViewerServiceVisible(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.stores.Import(ctx, sampleStores(), "test")
	require.NoError(t, err)

	session, err := f.viewers.CreateSession(ctx)
	require.NoError(t, err)

	resp, err := f.viewers.Visible(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.Entries)
	assert.False(t, resp.HasPosition)
	assert.False(t, resp.HasHeading)

	_, err = f.viewers.RecordPosition(ctx, session.ID, models.PositionRequest{
		Latitude:  ptr(cityHall.Latitude),
		Longitude: ptr(cityHall.Longitude),
		Accuracy:  ptr(5),
	})
	require.NoError(t, err)

	resp, err = f.viewers.Visible(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.Entries, "no heading yet")
	assert.True(t, resp.HasPosition)

	_, err = f.viewers.RecordHeading(ctx, session.ID, models.HeadingRequest{Heading: ptr(360)})
	require.NoError(t, err)

	resp, err = f.viewers.Visible(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "a", resp.Entries[0].Store.ID)
	assert.InDelta(t, 10, resp.Entries[0].AngularOffsetDegrees, 0.01)
	assert.Equal(t, 1000.0, resp.MaxRangeMeters)
	assert.Equal(t, 45.0, resp.HalfAngle)

	// Turning toward north-east keeps A and brings the corner cafe into view
	_, err = f.viewers.RecordHeading(ctx, session.ID, models.HeadingRequest{Heading: ptr(50)})
	require.NoError(t, err)
	resp, err = f.viewers.Visible(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "a", resp.Entries[0].Store.ID)
	assert.Equal(t, "c", resp.Entries[1].Store.ID)
}

func TestViewerServiceRejectsMalformedSamples(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	session, err := f.viewers.CreateSession(ctx)
	require.NoError(t, err)

	positions := []models.PositionRequest{
		{Latitude: ptr(math.NaN()), Longitude: ptr(127)},
		{Latitude: ptr(37), Longitude: ptr(200)},
		{Latitude: ptr(37)},
		{Latitude: ptr(37), Longitude: ptr(127), Accuracy: ptr(-1)},
	}
	for _, p := range positions {
		_, err := f.viewers.RecordPosition(ctx, session.ID, p)
		assert.ErrorIs(t, err, ErrInvalidSample)
	}

	headings := []models.HeadingRequest{
		{},
		{Heading: ptr(math.NaN())},
		{Heading: ptr(math.Inf(-1))},
	}
	for _, h := range headings {
		_, err := f.viewers.RecordHeading(ctx, session.ID, h)
		assert.ErrorIs(t, err, ErrInvalidSample)
	}

	got, err := f.viewers.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Position)
	assert.Nil(t, got.Heading)
}

func TestViewerServiceHeadingNormalized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	session, err := f.viewers.CreateSession(ctx)
	require.NoError(t, err)

	got, err := f.viewers.RecordHeading(ctx, session.ID, models.HeadingRequest{Heading: ptr(-90), Timestamp: 1760000000000})
	require.NoError(t, err)
	assert.Equal(t, 270.0, got.Heading.HeadingDegrees)
	require.NotNil(t, got.Heading.DeviceTimestamp)
	assert.Equal(t, time.UnixMilli(1760000000000), *got.Heading.DeviceTimestamp)
}

func TestViewerServiceOrdersSamplesByArrival(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	f.viewers.now = func() time.Time { return now }
	tick := func() { now = now.Add(50 * time.Millisecond) }

	heading := func(t *testing.T, id string, deg float64, ms int64) float64 {
		t.Helper()
		tick()
		got, err := f.viewers.RecordHeading(ctx, id, models.HeadingRequest{Heading: ptr(deg), Timestamp: ms})
		require.NoError(t, err)
		return got.Heading.HeadingDegrees
	}

	t.Run("device clock ahead of the server", func(t *testing.T) {
		session, err := f.viewers.CreateSession(ctx)
		require.NoError(t, err)

		heading(t, session.ID, 10, now.Add(24*time.Hour).UnixMilli())
		assert.Equal(t, 200.0, heading(t, session.ID, 200, 0))
		assert.Equal(t, 250.0, heading(t, session.ID, 250, now.UnixMilli()))
	})

	t.Run("device clock behind the server", func(t *testing.T) {
		session, err := f.viewers.CreateSession(ctx)
		require.NoError(t, err)

		heading(t, session.ID, 10, 0)
		assert.Equal(t, 90.0, heading(t, session.ID, 90, now.Add(-3*time.Second).UnixMilli()))
	})

	t.Run("positions", func(t *testing.T) {
		session, err := f.viewers.CreateSession(ctx)
		require.NoError(t, err)

		_, err = f.viewers.RecordPosition(ctx, session.ID, models.PositionRequest{
			Latitude: ptr(37.0), Longitude: ptr(127.0), Timestamp: now.Add(time.Hour).UnixMilli(),
		})
		require.NoError(t, err)
		tick()
		got, err := f.viewers.RecordPosition(ctx, session.ID, models.PositionRequest{
			Latitude: ptr(37.5), Longitude: ptr(127.0), Timestamp: now.Add(-time.Minute).UnixMilli(),
		})
		require.NoError(t, err)
		assert.Equal(t, 37.5, got.Position.Location.Latitude)
		assert.True(t, now.Equal(got.Position.Timestamp))
	})
}

func TestViewerServiceUnknownSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.viewers.Visible(ctx, "missing")
	assert.ErrorIs(t, err, tracker.ErrSessionNotFound)
	_, err = f.viewers.RecordHeading(ctx, "missing", models.HeadingRequest{Heading: ptr(1)})
	assert.ErrorIs(t, err, tracker.ErrSessionNotFound)
	assert.ErrorIs(t, f.viewers.DeleteSession(ctx, "missing"), tracker.ErrSessionNotFound)
}

func TestViewerServiceVisibleAt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.stores.Import(ctx, sampleStores(), "test")
	require.NoError(t, err)

	resp, err := f.viewers.VisibleAt(models.VisibilityQuery{})
	require.NoError(t, err)
	assert.Empty(t, resp.Entries)

	resp, err = f.viewers.VisibleAt(models.VisibilityQuery{Lat: ptr(cityHall.Latitude), Lon: ptr(cityHall.Longitude)})
	require.NoError(t, err)
	assert.Empty(t, resp.Entries)

	resp, err = f.viewers.VisibleAt(models.VisibilityQuery{
		Lat:     ptr(cityHall.Latitude),
		Lon:     ptr(cityHall.Longitude),
		Heading: ptr(200),
	})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "b", resp.Entries[0].Store.ID)

	_, err = f.viewers.VisibleAt(models.VisibilityQuery{Lat: ptr(37)})
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, err = f.viewers.VisibleAt(models.VisibilityQuery{Lat: ptr(100), Lon: ptr(0), Heading: ptr(0)})
	assert.ErrorIs(t, err, ErrInvalidSample)
}
