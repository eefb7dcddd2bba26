package handler

import (
	"errors"
	"net/http"

	"standardops/internal/middleware"
	"standardops/internal/service"
	"standardops/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrganizationHandler struct {
	orgService service.OrganizationService
}

func NewOrganizationHandler(orgService service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

func (h *OrganizationHandler) RegisterRoutes(router *gin.RouterGroup) {
	orgs := router.Group("/api/organizations")
	{
		orgs.POST("", middleware.RequirePermission("manage_organizations"), h.CreateOrganization)
		orgs.GET("", middleware.RequireAuth(), h.ListOrganizations)
		orgs.GET("/:id", middleware.RequireAuth(), h.GetOrganization)
		orgs.GET("/:id/roles", middleware.RequirePermission("manage_roles"), h.ListOrganizationRoles)
	}

	// Read-only hierarchy navigation, scoped to the caller's tenant
	router.GET("/api/facilities", middleware.RequireAuth(), h.ListFacilities)
	router.GET("/api/facilities/:id/departments", middleware.RequireAuth(), h.ListDepartments)
	router.GET("/api/departments/:id/areas", middleware.RequireAuth(), h.ListAreas)
}

// CreateOrganization onboards a new tenant with its default roles
// @Summary      Create organization
// @Description  Creates an organization and provisions its role templates
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateOrganizationRequest  true  "Organization"
// @Success      201      {object}  response.Response{data=service.OrganizationResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/organizations [post]
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	var req service.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	org, err := h.orgService.CreateOrganization(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrOrganizationExists) {
			c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal server error"))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, org))
}

// ListOrganizations returns the organizations visible to the caller
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		c.JSON(http.StatusOK, response.Success(http.StatusOK, []service.OrganizationResponse{}))
		return
	}

	orgs, err := h.orgService.ListOrganizations(c.Request.Context(), tc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal server error"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, orgs))
}

// GetOrganization returns one organization if the caller may see it
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "organization not found"))
		return
	}

	org, err := h.orgService.GetOrganization(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, org))
}

// ListOrganizationRoles returns the roles assignable within an organization
// @Summary      List organization roles
// @Tags         organizations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Organization ID"
// @Success      200  {object}  response.Response{data=[]service.RoleResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/organizations/{id}/roles [get]
func (h *OrganizationHandler) ListOrganizationRoles(c *gin.Context) {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "organization not found"))
		return
	}

	roles, err := h.orgService.ListOrganizationRoles(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, roles))
}

// ListFacilities returns the caller's visible facilities
func (h *OrganizationHandler) ListFacilities(c *gin.Context) {
	tc, _ := middleware.GetTenantContext(c)

	facilities, err := h.orgService.ListFacilities(c.Request.Context(), tc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal server error"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, facilities))
}

// ListDepartments returns the departments under a facility
func (h *OrganizationHandler) ListDepartments(c *gin.Context) {
	tc, _ := middleware.GetTenantContext(c)

	departments, err := h.orgService.ListDepartments(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, departments))
}

// ListAreas returns the areas under a department
func (h *OrganizationHandler) ListAreas(c *gin.Context) {
	tc, _ := middleware.GetTenantContext(c)

	areas, err := h.orgService.ListAreas(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, areas))
}
