package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jcondori/biblioteca-api/internal/middleware"
	"github.com/jcondori/biblioteca-api/internal/models"
	"github.com/jcondori/biblioteca-api/internal/service"
	appErrors "github.com/jcondori/biblioteca-api/pkg/errors"
	"github.com/jcondori/biblioteca-api/pkg/response"
)

// LoanHandler exposes the loan registry endpoints.
type LoanHandler struct {
	loans  *service.LoanService
	export *service.ExportService
}

// NewLoanHandler constructs LoanHandler.
func NewLoanHandler(loans *service.LoanService, export *service.ExportService) *LoanHandler {
	return &LoanHandler{loans: loans, export: export}
}

func loanFilterFromQuery(c *gin.Context) models.LoanFilter {
	var filter models.LoanFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if estado := strings.TrimSpace(c.Query("estado")); estado != "" {
		status := models.LoanStatus(estado)
		filter.Estado = &status
	}
	if tipo := strings.TrimSpace(c.Query("tipo")); tipo != "" {
		loanType := models.LoanType(tipo)
		filter.Tipo = &loanType
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter
}

// List godoc
// @Summary List loans
// @Tags Prestamos
// @Produce json
// @Param search query string false "Search by student, CI, title or code"
// @Param estado query string false "Filter by status (VIGENTE, DEVUELTO)"
// @Param tipo query string false "Filter by type (SALA, DOMICILIO)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /prestamos [get]
func (h *LoanHandler) List(c *gin.Context) {
	loans, pagination, err := h.loans.List(c.Request.Context(), loanFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, loans, pagination)
}

// Create godoc
// @Summary Register a loan
// @Tags Prestamos
// @Accept json
// @Produce json
// @Param payload body models.CreateLoanRequest true "Loan payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /prestamos [post]
func (h *LoanHandler) Create(c *gin.Context) {
	var req models.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	loan, err := h.loans.Create(c.Request.Context(), req, middleware.CurrentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, loan)
}

// Return godoc
// @Summary Mark a loan as returned
// @Tags Prestamos
// @Produce json
// @Param id path string true "Loan ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /prestamos/{id}/devolver [post]
func (h *LoanHandler) Return(c *gin.Context) {
	loan, err := h.loans.Return(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, loan, nil)
}

// Report godoc
// @Summary Export the loan register
// @Tags Prestamos
// @Produce text/csv
// @Produce application/pdf
// @Param formato query string false "csv or pdf (default csv)"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /prestamos/reporte [get]
func (h *LoanHandler) Report(c *gin.Context) {
	format := service.ReportFormat(strings.ToLower(c.DefaultQuery("formato", "csv")))
	result, err := h.export.LoanRegister(c.Request.Context(), format, loanFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}

// PublicActive godoc
// @Summary IDs of assets currently on loan
// @Tags Prestamos
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /prestados-publico [get]
func (h *LoanHandler) PublicActive(c *gin.Context) {
	ids, err := h.loans.ActiveAssetIDs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ids, nil)
}
