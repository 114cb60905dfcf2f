package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itplace/locator-backend-go/internal/models"
	"github.com/itplace/locator-backend-go/internal/service"
	"github.com/itplace/locator-backend-go/internal/tracker"
	"github.com/itplace/locator-backend-go/pkg/response"
)

// ViewerHandler handles HTTP requests for viewer sessions and visibility
type ViewerHandler struct {
	service *service.ViewerService
}

// NewViewerHandler creates a new viewer handler
func NewViewerHandler(service *service.ViewerService) *ViewerHandler {
	return &ViewerHandler{service: service}
}

// CreateSession handles POST /api/v1/viewers
func (h *ViewerHandler) CreateSession(c *gin.Context) {
	session, err := h.service.CreateSession(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to create viewer session", err)
		return
	}
	response.Created(c, session)
}

// GetSession handles GET /api/v1/viewers/:id
func (h *ViewerHandler) GetSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, session)
}

// DeleteSession handles DELETE /api/v1/viewers/:id
func (h *ViewerHandler) DeleteSession(c *gin.Context) {
	if err := h.service.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdatePosition handles PUT /api/v1/viewers/:id/position
func (h *ViewerHandler) UpdatePosition(c *gin.Context) {
	var req models.PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid position sample", err)
		return
	}

	session, err := h.service.RecordPosition(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, session)
}

// UpdateHeading handles PUT /api/v1/viewers/:id/heading
func (h *ViewerHandler) UpdateHeading(c *gin.Context) {
	var req models.HeadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid heading sample", err)
		return
	}

	session, err := h.service.RecordHeading(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, session)
}

// GetVisible handles GET /api/v1/viewers/:id/visible
func (h *ViewerHandler) GetVisible(c *gin.Context) {
	resp, err := h.service.Visible(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, resp)
}

// GetVisibleAt handles GET /api/v1/visibility
func (h *ViewerHandler) GetVisibleAt(c *gin.Context) {
	var q models.VisibilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}

	resp, err := h.service.VisibleAt(q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, resp)
}

// fail maps service errors to responses
func (h *ViewerHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tracker.ErrSessionNotFound):
		response.NotFound(c, "Viewer session not found")
	case errors.Is(err, service.ErrInvalidSample), errors.Is(err, service.ErrInvalidQuery):
		response.BadRequest(c, "Invalid sample", err)
	default:
		response.InternalError(c, "Viewer request failed", err)
	}
}
