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

// AssetHandler exposes the catalog endpoints. The same handler serves both
// the books and the theses routes; the kind is fixed at registration time.
type AssetHandler struct {
	assets *service.AssetService
}

// NewAssetHandler constructs AssetHandler.
func NewAssetHandler(assets *service.AssetService) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// List godoc
// @Summary List catalog assets of one kind
// @Tags Catalogo
// @Produce json
// @Param search query string false "Search by title, code, author, subject or tutor"
// @Param estado query string false "Filter by condition"
// @Param seccion query string false "Filter by shelf section"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /libros [get]
func (h *AssetHandler) List(kind models.AssetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.AssetFilter{Tipo: kind}
		filter.Search = strings.TrimSpace(c.Query("search"))
		filter.Seccion = strings.TrimSpace(c.Query("seccion"))
		if estado := strings.TrimSpace(c.Query("estado")); estado != "" {
			condition := models.AssetCondition(estado)
			filter.Estado = &condition
		}
		if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
			filter.Page = page
		}
		if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
			filter.PageSize = size
		}
		filter.SortBy = c.Query("sort")
		filter.SortOrder = c.Query("order")

		assets, pagination, err := h.assets.List(c.Request.Context(), filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, assets, pagination)
	}
}

// Get returns one asset of the route's kind.
func (h *AssetHandler) Get(kind models.AssetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		asset, err := h.assets.Get(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, asset, nil)
	}
}

// Create registers a new asset of the route's kind.
func (h *AssetHandler) Create(kind models.AssetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateAssetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
		asset, err := h.assets.Create(c.Request.Context(), kind, req, middleware.CurrentUser(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, asset)
	}
}

// Update modifies an asset of the route's kind.
func (h *AssetHandler) Update(kind models.AssetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UpdateAssetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
		asset, err := h.assets.Update(c.Request.Context(), kind, c.Param("id"), req, middleware.CurrentUser(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, asset, nil)
	}
}

// Delete removes an asset of the route's kind.
func (h *AssetHandler) Delete(kind models.AssetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.assets.Delete(c.Request.Context(), kind, c.Param("id"), middleware.CurrentUser(c)); err != nil {
			response.Error(c, err)
			return
		}
		response.NoContent(c)
	}
}

// Options godoc
// @Summary Combined lightweight asset selector
// @Tags Catalogo
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /activos [get]
func (h *AssetHandler) Options(c *gin.Context) {
	options, err := h.assets.Options(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

// NextCode godoc
// @Summary Suggest the next free catalog code for a section
// @Tags Catalogo
// @Produce json
// @Param seccion query string true "Shelf section"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /siguiente-codigo [get]
func (h *AssetHandler) NextCode(c *gin.Context) {
	code, err := h.assets.NextCode(c.Request.Context(), c.Query("seccion"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"codigo": code}, nil)
}

// Sections godoc
// @Summary List shelf sections in use
// @Tags Catalogo
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /secciones-disponibles [get]
func (h *AssetHandler) Sections(c *gin.Context) {
	sections, err := h.assets.Sections(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}
