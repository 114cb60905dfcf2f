package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itplace/locator-backend-go/internal/catalog"
	"github.com/itplace/locator-backend-go/internal/models"
	"github.com/itplace/locator-backend-go/internal/service"
	"github.com/itplace/locator-backend-go/pkg/response"
)

// maxImportSize caps uploaded catalog files
const maxImportSize = 10 << 20

// StoreHandler handles HTTP requests for the store catalog
type StoreHandler struct {
	service *service.StoreService
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(service *service.StoreService) *StoreHandler {
	return &StoreHandler{service: service}
}

// GetStores handles GET /api/v1/stores
func (h *StoreHandler) GetStores(c *gin.Context) {
	var filter models.StoreFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	resp, err := h.service.GetStores(filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuery) {
			response.BadRequest(c, "Invalid query parameters", err)
			return
		}
		response.InternalError(c, "Failed to get stores", err)
		return
	}

	response.Success(c, resp)
}

// GetStoreByID handles GET /api/v1/stores/:id
func (h *StoreHandler) GetStoreByID(c *gin.Context) {
	store, err := h.service.GetStoreByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to get store", err)
		return
	}

	if store == nil {
		response.NotFound(c, "Store not found")
		return
	}

	response.Success(c, store)
}

// GetNearby handles GET /api/v1/stores/nearby
func (h *StoreHandler) GetNearby(c *gin.Context) {
	var filter models.NearbyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "lat and lon are required", err)
		return
	}

	stores, radius, err := h.service.Nearby(*filter.Lat, *filter.Lon, filter.Radius)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuery) {
			response.BadRequest(c, "Invalid query parameters", err)
			return
		}
		response.InternalError(c, "Failed to search nearby stores", err)
		return
	}

	response.Success(c, gin.H{
		"radiusMeters": radius,
		"stores":       stores,
	})
}

// Import handles POST /api/v1/stores/import
func (h *StoreHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "Missing catalog file", err)
		return
	}

	format, err := catalog.FormatFromFilename(file.Filename)
	if err != nil {
		response.BadRequest(c, "Unsupported catalog file", err)
		return
	}

	f, err := file.Open()
	if err != nil {
		response.InternalError(c, "Failed to read catalog file", err)
		return
	}
	defer f.Close()

	stores, err := catalog.Load(f, format)
	if err != nil {
		response.BadRequest(c, "Failed to parse catalog file", err)
		return
	}

	source := fmt.Sprintf("upload:%s by %s", file.Filename, c.GetString("subject"))
	imported, err := h.service.Import(c.Request.Context(), stores, source)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidStore) {
			response.Error(c, http.StatusUnprocessableEntity, "Catalog rejected", err)
			return
		}
		response.InternalError(c, "Failed to import catalog", err)
		return
	}

	response.Success(c, gin.H{
		"storeCount": imported.Len(),
	})
}

// Export handles GET /api/v1/stores/export
func (h *StoreHandler) Export(c *gin.Context) {
	filename := fmt.Sprintf("stores-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.service.Export(c.Writer); err != nil {
		// Headers may already be written; record the error for the request log
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
	}
}

// GetCatalogInfo handles GET /api/v1/stores/catalog
func (h *StoreHandler) GetCatalogInfo(c *gin.Context) {
	last, err := h.service.LastImport(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to get catalog info", err)
		return
	}

	response.Success(c, gin.H{
		"storeCount": h.service.Catalog().Len(),
		"lastImport": last,
	})
}
