package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jcondori/biblioteca-api/internal/middleware"
	"github.com/jcondori/biblioteca-api/internal/models"
	"github.com/jcondori/biblioteca-api/internal/service"
	appErrors "github.com/jcondori/biblioteca-api/pkg/errors"
	"github.com/jcondori/biblioteca-api/pkg/response"
)

// HistorialHandler exposes the audit trail endpoints.
type HistorialHandler struct {
	historial *service.HistorialService
}

// NewHistorialHandler constructs HistorialHandler.
func NewHistorialHandler(historial *service.HistorialService) *HistorialHandler {
	return &HistorialHandler{historial: historial}
}

// List godoc
// @Summary List audit entries
// @Tags Historial
// @Produce json
// @Param modelo query string false "Filter by model (LIBRO, TESIS)"
// @Param accion query string false "Filter by action (+, ~, -)"
// @Param search query string false "Search by title, code or username"
// @Param desde query string false "From date (YYYY-MM-DD)"
// @Param hasta query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /historial [get]
func (h *HistorialHandler) List(c *gin.Context) {
	var filter models.HistorialFilter
	filter.Modelo = strings.ToUpper(strings.TrimSpace(c.Query("modelo")))
	filter.Accion = models.HistorialAction(strings.TrimSpace(c.Query("accion")))
	filter.Search = strings.TrimSpace(c.Query("search"))
	if raw := strings.TrimSpace(c.Query("desde")); raw != "" {
		if from, err := time.Parse("2006-01-02", raw); err == nil {
			filter.From = &from
		}
	}
	if raw := strings.TrimSpace(c.Query("hasta")); raw != "" {
		if to, err := time.Parse("2006-01-02", raw); err == nil {
			end := to.AddDate(0, 0, 1)
			filter.To = &end
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	entries, pagination, err := h.historial.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// Restore godoc
// @Summary Restore a catalog snapshot
// @Tags Historial
// @Produce json
// @Param modelo path string true "Model (libro or tesis)"
// @Param historyId path int true "History entry ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /restaurar/{modelo}/{historyId} [post]
func (h *HistorialHandler) Restore(c *gin.Context) {
	historyID, err := strconv.ParseInt(c.Param("historyId"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid history id"))
		return
	}
	asset, err := h.historial.Restore(c.Request.Context(), c.Param("modelo"), historyID, middleware.CurrentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, asset, nil)
}
