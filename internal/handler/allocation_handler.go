package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/venuehub/allocation-api/internal/dto"
	"github.com/venuehub/allocation-api/internal/middleware"
	"github.com/venuehub/allocation-api/internal/service"
	appErrors "github.com/venuehub/allocation-api/pkg/errors"
	"github.com/venuehub/allocation-api/pkg/response"
)

// AllocationHandler exposes the allocation calendar and decision endpoints.
type AllocationHandler struct {
	view       *service.AllocationViewService
	allocation *service.AllocationService
	selections *service.SelectionService
}

// NewAllocationHandler constructs handler.
func NewAllocationHandler(view *service.AllocationViewService, allocation *service.AllocationService, selections *service.SelectionService) *AllocationHandler {
	return &AllocationHandler{view: view, allocation: allocation, selections: selections}
}

func pathInt64(c *gin.Context, name string) (int64, bool) {
	value, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || value <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return 0, false
	}
	return value, true
}

// RoundStatus godoc
// @Summary Application round allocation status
// @Tags Allocation
// @Produce json
// @Param id path int true "Application round pk"
// @Success 200 {object} response.Envelope
// @Router /application-rounds/{id}/status [get]
func (h *AllocationHandler) RoundStatus(c *gin.Context) {
	roundPk, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	status, err := h.view.RoundStatus(c.Request.Context(), roundPk)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}

// UnitEvents godoc
// @Summary Application events of a reservation unit, grouped by decision state
// @Tags Allocation
// @Produce json
// @Param id path int true "Application round pk"
// @Param unitId path int true "Reservation unit pk"
// @Success 200 {object} response.Envelope
// @Router /application-rounds/{id}/reservation-units/{unitId}/events [get]
func (h *AllocationHandler) UnitEvents(c *gin.Context) {
	roundPk, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	unitPk, ok := pathInt64(c, "unitId")
	if !ok {
		return
	}

	// The caller's confirmed selection drives the painted action panel.
	var selection []string
	if h.selections != nil {
		state := h.selections.Current(middleware.CurrentUserID(c), roundPk, unitPk)
		if state.Status == service.SelectionConfirmed {
			selection = state.Keys
		}
	}

	events, err := h.view.UnitEvents(c.Request.Context(), roundPk, unitPk, selection)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events)
}

// Grid godoc
// @Summary Weekly allocation grid with per-slot occupancy
// @Tags Allocation
// @Produce json
// @Param id path int true "Application round pk"
// @Param unitId path int true "Reservation unit pk"
// @Param activeEvent query int false "Active application event pk for outline rendering"
// @Success 200 {object} response.Envelope
// @Router /application-rounds/{id}/reservation-units/{unitId}/grid [get]
func (h *AllocationHandler) Grid(c *gin.Context) {
	roundPk, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	unitPk, ok := pathInt64(c, "unitId")
	if !ok {
		return
	}

	var activeEventPk int64
	if raw := c.Query("activeEvent"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid activeEvent"))
			return
		}
		activeEventPk = parsed
	}

	grid, err := h.view.Grid(c.Request.Context(), roundPk, unitPk, activeEventPk)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid)
}

// Accept godoc
// @Summary Submit an accept decision for the selected slots
// @Tags Allocation
// @Accept json
// @Produce json
// @Param request body dto.AcceptAllocationRequest true "Accept payload"
// @Success 201 {object} response.Envelope
// @Router /allocations [post]
func (h *AllocationHandler) Accept(c *gin.Context) {
	var req dto.AcceptAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	result, err := h.allocation.Accept(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Decline godoc
// @Summary Decline one application event schedule
// @Tags Allocation
// @Accept json
// @Produce json
// @Param request body dto.DeclineAllocationRequest true "Decline payload"
// @Success 204
// @Router /allocations/decline [post]
func (h *AllocationHandler) Decline(c *gin.Context) {
	var req dto.DeclineAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	if err := h.allocation.Decline(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
