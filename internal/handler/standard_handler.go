package handler

import (
	"io"
	"net/http"
	"strings"

	"standardops/internal/middleware"
	"standardops/internal/service"
	"standardops/pkg/pagination"
	"standardops/pkg/response"

	"github.com/gin-gonic/gin"
)

type StandardHandler struct {
	standardService service.StandardService
	importService   service.ImportService
}

func NewStandardHandler(standardService service.StandardService, importService service.ImportService) *StandardHandler {
	return &StandardHandler{standardService: standardService, importService: importService}
}

func (h *StandardHandler) RegisterRoutes(router *gin.RouterGroup) {
	standards := router.Group("/api/standards")
	{
		standards.GET("", middleware.RequirePermission("view_standards"), h.ListStandards)
		// Fixed paths before the :id wildcard
		standards.GET("/template", middleware.RequirePermission("manage_standards"), h.DownloadTemplate)
		standards.POST("/upload", middleware.RequirePermission("manage_standards"), h.UploadStandards)
		standards.GET("/:id", middleware.RequirePermission("view_standards"), h.GetStandard)
	}
}

// ListStandards returns the standards visible to the caller
// @Summary      List standards
// @Tags         standards
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=[]service.StandardResponse}
// @Router       /api/standards [get]
func (h *StandardHandler) ListStandards(c *gin.Context) {
	tc, _ := middleware.GetTenantContext(c)
	params := pagination.Parse(c)

	standards, total, err := h.standardService.ListStandards(c.Request.Context(), tc, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal server error"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"standards": standards,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
	}))
}

// GetStandard returns one standard with its unit-of-measure entries
func (h *StandardHandler) GetStandard(c *gin.Context) {
	tc, _ := middleware.GetTenantContext(c)

	standard, err := h.standardService.GetStandard(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "standard not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, standard))
}

// DownloadTemplate serves the CSV import template
// @Summary      Download import template
// @Tags         standards
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200  {string}  string  "CSV template"
// @Router       /api/standards/template [get]
func (h *StandardHandler) DownloadTemplate(c *gin.Context) {
	filename, content := h.importService.Template()
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", []byte(content))
}

// UploadStandards ingests a CSV file of standards
// @Summary      Bulk import standards
// @Description  Validates the whole file first; any invalid row rejects the entire import
// @Tags         standards
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "CSV file"
// @Success      200   {object}  service.ImportResult
// @Failure      400   {object}  service.ImportResult
// @Router       /api/standards/upload [post]
func (h *StandardHandler) UploadStandards(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .csv files are accepted"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded file"})
		return
	}

	result, err := h.importService.ImportStandards(c.Request.Context(), string(data))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Validation rejections come back as a result with errors and no details.
	if !result.Success && len(result.Details) == 0 {
		c.JSON(http.StatusBadRequest, result)
		return
	}

	c.JSON(http.StatusOK, result)
}
