package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venuehub/allocation-api/internal/dto"
	"github.com/venuehub/allocation-api/internal/middleware"
	"github.com/venuehub/allocation-api/internal/service"
	appErrors "github.com/venuehub/allocation-api/pkg/errors"
	"github.com/venuehub/allocation-api/pkg/response"
)

// SelectionHandler exposes the slot selection state machine.
type SelectionHandler struct {
	selections *service.SelectionService
}

// NewSelectionHandler constructs handler.
func NewSelectionHandler(selections *service.SelectionService) *SelectionHandler {
	return &SelectionHandler{selections: selections}
}

// Begin godoc
// @Summary Start a fresh selection at one slot
// @Tags Selection
// @Accept json
// @Produce json
// @Param request body dto.BeginSelectionRequest true "Begin payload"
// @Success 200 {object} response.Envelope
// @Router /selection/begin [post]
func (h *SelectionHandler) Begin(c *gin.Context) {
	var req dto.BeginSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	state, err := h.selections.Begin(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// Extend godoc
// @Summary Grow the selection by one adjacent slot
// @Tags Selection
// @Accept json
// @Produce json
// @Param request body dto.ExtendSelectionRequest true "Extend payload"
// @Success 200 {object} response.Envelope
// @Router /selection/extend [post]
func (h *SelectionHandler) Extend(c *gin.Context) {
	var req dto.ExtendSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	state, err := h.selections.Extend(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// Finish godoc
// @Summary Freeze the selection and paint intersecting events
// @Tags Selection
// @Accept json
// @Produce json
// @Param request body dto.FinishSelectionRequest true "Finish payload"
// @Success 200 {object} response.Envelope
// @Router /selection/finish [post]
func (h *SelectionHandler) Finish(c *gin.Context) {
	var req dto.FinishSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	state, err := h.selections.Finish(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// SetRange godoc
// @Summary Replace the selection with a contiguous day/time range
// @Tags Selection
// @Accept json
// @Produce json
// @Param request body dto.SetRangeRequest true "Range payload"
// @Success 200 {object} response.Envelope
// @Router /selection/range [post]
func (h *SelectionHandler) SetRange(c *gin.Context) {
	var req dto.SetRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	state, err := h.selections.SetRange(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// Clear godoc
// @Summary Drop the selection back to idle
// @Tags Selection
// @Accept json
// @Produce json
// @Param request body dto.ClearSelectionRequest true "Clear payload"
// @Success 200 {object} response.Envelope
// @Router /selection [delete]
func (h *SelectionHandler) Clear(c *gin.Context) {
	var req dto.ClearSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	state, err := h.selections.Clear(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}
