package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/allocation-api/internal/dto"
	"github.com/venuehub/allocation-api/internal/service"
)

func newSelectionHandlerFixture() *SelectionHandler {
	events := &fakeEventSource{events: floorballEvents()}
	return NewSelectionHandler(service.NewSelectionService(events, time.Minute, nil, nil, nil))
}

func decodeSelection(t *testing.T, body []byte) dto.SelectionResponse {
	t.Helper()
	var envelope struct {
		Data dto.SelectionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Data
}

func TestSelectionHandlerFlow(t *testing.T) {
	handler := newSelectionHandlerFixture()

	c, rec := testContext(t, http.MethodPost, "/selection/begin", dto.BeginSelectionRequest{
		ApplicationRoundPk: 1, ReservationUnitPk: 7, SlotKey: "1-14-00",
	})
	handler.Begin(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.SelectionSelecting, decodeSelection(t, rec.Body.Bytes()).Status)

	c, rec = testContext(t, http.MethodPost, "/selection/extend", dto.ExtendSelectionRequest{
		ApplicationRoundPk: 1, ReservationUnitPk: 7, SlotKey: "1-14-30",
	})
	handler.Extend(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"1-14-00", "1-14-30"}, decodeSelection(t, rec.Body.Bytes()).SlotKeys)

	c, rec = testContext(t, http.MethodPost, "/selection/finish", dto.FinishSelectionRequest{
		ApplicationRoundPk: 1, ReservationUnitPk: 7,
	})
	handler.Finish(c)
	require.Equal(t, http.StatusOK, rec.Code)
	confirmed := decodeSelection(t, rec.Body.Bytes())
	assert.Equal(t, service.SelectionConfirmed, confirmed.Status)
	assert.Equal(t, []int64{11}, confirmed.PaintedEvents)

	c, rec = testContext(t, http.MethodDelete, "/selection", dto.ClearSelectionRequest{
		ApplicationRoundPk: 1, ReservationUnitPk: 7,
	})
	handler.Clear(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.SelectionIdle, decodeSelection(t, rec.Body.Bytes()).Status)
}

func TestSelectionHandlerSetRange(t *testing.T) {
	handler := newSelectionHandlerFixture()

	c, rec := testContext(t, http.MethodPost, "/selection/range", dto.SetRangeRequest{
		ApplicationRoundPk: 1, ReservationUnitPk: 7,
		Day: 1, Begin: "14:00", End: "15:30",
	})
	handler.SetRange(c)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeSelection(t, rec.Body.Bytes())
	assert.Equal(t, service.SelectionConfirmed, resp.Status)
	assert.Equal(t, []string{"1-14-00", "1-14-30", "1-15-00"}, resp.SlotKeys)
}

func TestSelectionHandlerValidation(t *testing.T) {
	handler := newSelectionHandlerFixture()

	c, rec := testContext(t, http.MethodPost, "/selection/begin", dto.BeginSelectionRequest{
		ApplicationRoundPk: 1, ReservationUnitPk: 7, SlotKey: "2-9-15",
	})
	handler.Begin(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = testContext(t, http.MethodPost, "/selection/begin", nil)
	handler.Begin(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
