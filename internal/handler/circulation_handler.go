package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jcondori/biblioteca-api/internal/middleware"
	"github.com/jcondori/biblioteca-api/internal/models"
	"github.com/jcondori/biblioteca-api/internal/service"
	appErrors "github.com/jcondori/biblioteca-api/pkg/errors"
	"github.com/jcondori/biblioteca-api/pkg/response"
)

// CirculationHandler exposes the checkout desk session endpoints.
type CirculationHandler struct {
	circulation *service.CirculationService
}

// NewCirculationHandler constructs CirculationHandler.
func NewCirculationHandler(circulation *service.CirculationService) *CirculationHandler {
	return &CirculationHandler{circulation: circulation}
}

type setStudentRequest struct {
	CI     string `json:"ci"`
	Nombre string `json:"nombre_completo"`
}

type setTypeRequest struct {
	Tipo models.LoanType `json:"tipo"`
}

// Open godoc
// @Summary Open a checkout desk session
// @Tags Circulacion
// @Produce json
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /circulacion/sesiones [post]
func (h *CirculationHandler) Open(c *gin.Context) {
	view, err := h.circulation.Open(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Get godoc
// @Summary Inspect a desk session
// @Tags Circulacion
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /circulacion/sesiones/{id} [get]
func (h *CirculationHandler) Get(c *gin.Context) {
	view, err := h.circulation.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// ToggleItem godoc
// @Summary Add or remove one catalog item from the session cart
// @Tags Circulacion
// @Produce json
// @Param id path string true "Session ID"
// @Param assetId path string true "Asset ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /circulacion/sesiones/{id}/items/{assetId} [post]
func (h *CirculationHandler) ToggleItem(c *gin.Context) {
	view, err := h.circulation.ToggleItem(c.Request.Context(), c.Param("id"), c.Param("assetId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// SetStudent godoc
// @Summary Apply borrower field edits, resolving the CI against the roster
// @Tags Circulacion
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body setStudentRequest true "Borrower fields"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /circulacion/sesiones/{id}/estudiante [put]
func (h *CirculationHandler) SetStudent(c *gin.Context) {
	var req setStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.circulation.SetStudent(c.Param("id"), req.CI, req.Nombre)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// SetType godoc
// @Summary Set the session loan type
// @Tags Circulacion
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body setTypeRequest true "Loan type"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /circulacion/sesiones/{id}/tipo [put]
func (h *CirculationHandler) SetType(c *gin.Context) {
	var req setTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.circulation.SetType(c.Param("id"), req.Tipo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Confirm godoc
// @Summary Submit the session, registering one loan per cart item
// @Tags Circulacion
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.ConfirmSessionRequest true "Confirmation"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /circulacion/sesiones/{id}/confirmar [post]
func (h *CirculationHandler) Confirm(c *gin.Context) {
	var req service.ConfirmSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.circulation.Confirm(c.Request.Context(), c.Param("id"), req, middleware.CurrentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Cancel godoc
// @Summary Discard a desk session
// @Tags Circulacion
// @Param id path string true "Session ID"
// @Success 204
// @Security BearerAuth
// @Router /circulacion/sesiones/{id} [delete]
func (h *CirculationHandler) Cancel(c *gin.Context) {
	if err := h.circulation.Cancel(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
