package handler

import (
	"net/http"

	"standardops/internal/middleware"
	"standardops/internal/service"
	"standardops/pkg/pagination"
	"standardops/pkg/response"

	"github.com/gin-gonic/gin"
)

type ObservationHandler struct {
	observationService service.ObservationService
}

func NewObservationHandler(observationService service.ObservationService) *ObservationHandler {
	return &ObservationHandler{observationService: observationService}
}

func (h *ObservationHandler) RegisterRoutes(router *gin.RouterGroup) {
	observations := router.Group("/api/observations")
	{
		observations.POST("", middleware.RequirePermission("create_observations"), h.CreateObservation)
		observations.GET("", middleware.RequirePermission("view_observations"), h.ListObservations)
		observations.GET("/:id", middleware.RequirePermission("view_observations"), h.GetObservation)
	}
}

// CreateObservation records a timed observation against a standard
// @Summary      Create observation
// @Tags         observations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateObservationRequest  true  "Observation"
// @Success      201      {object}  response.Response{data=service.ObservationResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/observations [post]
func (h *ObservationHandler) CreateObservation(c *gin.Context) {
	var req service.CreateObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	observerID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "unauthorized"))
		return
	}
	tc, _ := middleware.GetTenantContext(c)

	obs, err := h.observationService.CreateObservation(c.Request.Context(), tc, observerID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, obs))
}

// ListObservations returns observations visible to the caller
func (h *ObservationHandler) ListObservations(c *gin.Context) {
	tc, _ := middleware.GetTenantContext(c)
	params := pagination.Parse(c)

	observations, total, err := h.observationService.ListObservations(c.Request.Context(), tc, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal server error"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"observations": observations,
		"total":        total,
		"page":         params.Page,
		"limit":        params.Limit,
	}))
}

// GetObservation returns one observation with its entries
func (h *ObservationHandler) GetObservation(c *gin.Context) {
	tc, _ := middleware.GetTenantContext(c)

	obs, err := h.observationService.GetObservation(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "observation not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, obs))
}
