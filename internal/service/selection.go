package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/venuehub/allocation-api/internal/dto"
	"github.com/venuehub/allocation-api/internal/models"
	appErrors "github.com/venuehub/allocation-api/pkg/errors"
)

// Selection lifecycle states.
const (
	SelectionIdle      = "idle"
	SelectionSelecting = "selecting"
	SelectionConfirmed = "confirmed"
)

// SelectionState is the reducer state: the lifecycle status plus the
// contiguous, same-day, time-sorted run of selected slot keys.
type SelectionState struct {
	Status string
	Keys   []string
}

// NewSelectionState returns the idle state.
func NewSelectionState() SelectionState {
	return SelectionState{Status: SelectionIdle, Keys: []string{}}
}

// BeginSelection starts a fresh selection at one slot from any state.
func BeginSelection(_ SelectionState, key string) SelectionState {
	if _, err := models.ParseSlotKey(key); err != nil {
		return NewSelectionState()
	}
	return SelectionState{Status: SelectionSelecting, Keys: []string{key}}
}

// ExtendSelection grows a growing selection by one adjacent slot, inserted in
// sorted position. Non-adjacent slots and non-selecting states leave the
// state unchanged.
func ExtendSelection(state SelectionState, key string) SelectionState {
	if state.Status != SelectionSelecting {
		return state
	}
	if !IsSlotAdjacent(state.Keys, key) {
		return state
	}

	keys := append(append([]string{}, state.Keys...), key)
	sortSlotKeys(keys)
	return SelectionState{Status: SelectionSelecting, Keys: keys}
}

// FinishSelection freezes a growing selection.
func FinishSelection(state SelectionState) SelectionState {
	if state.Status != SelectionSelecting || len(state.Keys) == 0 {
		return state
	}
	return SelectionState{Status: SelectionConfirmed, Keys: state.Keys}
}

// ClearSelection drops everything back to idle.
func ClearSelection(SelectionState) SelectionState {
	return NewSelectionState()
}

// RangeSelection replaces the selection with a contiguous confirmed run
// between two clock times on one day. End hour 24 denotes midnight.
func RangeSelection(day int, begin, end string) (SelectionState, error) {
	keys := contiguousRun(day, begin, end)
	if len(keys) == 0 {
		return NewSelectionState(), appErrors.Clone(appErrors.ErrValidation, "selection range is empty or malformed")
	}
	return SelectionState{Status: SelectionConfirmed, Keys: keys}, nil
}

// contiguousRun generates every half-hour key in [begin, end) without the
// preceding-cell drop used for requested schedules.
func contiguousRun(day int, begin, end string) []string {
	beginMinutes, ok := ParseClock(begin)
	if !ok || day < 0 || day > 6 {
		return nil
	}
	endMinutes, ok := ParseClock(end)
	if !ok {
		return nil
	}
	if endMinutes == 0 {
		endMinutes = minutesPerDay
	}
	if beginMinutes >= endMinutes {
		return nil
	}

	beginMinutes -= beginMinutes % models.SlotDuration
	keys := make([]string, 0, (endMinutes-beginMinutes)/models.SlotDuration)
	for cursor := beginMinutes; cursor < endMinutes; cursor += models.SlotDuration {
		keys = append(keys, models.Slot{Day: day, Hour: cursor / 60, Minute: cursor % 60}.Key())
	}
	return keys
}

// IsSlotAdjacent reports whether key is exactly one half-hour before the
// first selected slot or after the last, on the same day. An empty selection
// accepts any valid key.
func IsSlotAdjacent(selection []string, key string) bool {
	slot, err := models.ParseSlotKey(key)
	if err != nil {
		return false
	}
	if len(selection) == 0 {
		return true
	}

	first, err := models.ParseSlotKey(selection[0])
	if err != nil {
		return false
	}
	last, err := models.ParseSlotKey(selection[len(selection)-1])
	if err != nil {
		return false
	}
	if slot.Day != first.Day {
		return false
	}
	return slot == first.Prev() || slot == last.Next()
}

// IsSlotFirst reports whether the slot is the true start of the selected run:
// it is selected and no adjacent-earlier slot is.
func IsSlotFirst(selection []string, key string) bool {
	slot, err := models.ParseSlotKey(key)
	if err != nil || !containsKey(selection, key) {
		return false
	}
	return !containsKey(selection, slot.Prev().Key())
}

// IsSlotLast reports whether the slot is the true end of the selected run.
func IsSlotLast(selection []string, key string) bool {
	slot, err := models.ParseSlotKey(key)
	if err != nil || !containsKey(selection, key) {
		return false
	}
	return !containsKey(selection, slot.Next().Key())
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func sortSlotKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a, errA := models.ParseSlotKey(keys[i])
		b, errB := models.ParseSlotKey(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		return a.Minutes() < b.Minutes()
	})
}

type selectionEntry struct {
	state     SelectionState
	expiresAt time.Time
}

// selectionStore holds per-caller selection state with a TTL, keyed by
// user, round and reservation unit.
type selectionStore struct {
	mu      sync.Mutex
	entries map[string]selectionEntry
	ttl     time.Duration
}

func newSelectionStore(ttl time.Duration) *selectionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &selectionStore{entries: make(map[string]selectionEntry), ttl: ttl}
}

func selectionKey(userID string, roundPk, unitPk int64) string {
	return fmt.Sprintf("%s:%d:%d", userID, roundPk, unitPk)
}

func (s *selectionStore) get(key string) SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return NewSelectionState()
	}
	return entry.state
}

func (s *selectionStore) put(key string, state SelectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for k, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[key] = selectionEntry{state: state, expiresAt: now.Add(s.ttl)}
}

func (s *selectionStore) drop(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// SelectionEventSource loads the events needed to paint a confirmed selection.
type SelectionEventSource interface {
	ListByUnit(ctx context.Context, roundPk, unitPk int64) ([]models.ApplicationEvent, error)
}

// SelectionService applies reducer transitions to per-caller stored state.
type SelectionService struct {
	events   SelectionEventSource
	store    *selectionStore
	metrics  *MetricsService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewSelectionService constructs the service.
func NewSelectionService(events SelectionEventSource, ttl time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SelectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionService{
		events:   events,
		store:    newSelectionStore(ttl),
		metrics:  metrics,
		validate: validate,
		logger:   logger,
	}
}

// Begin starts a fresh selection at the given slot.
func (s *SelectionService) Begin(ctx context.Context, userID string, req dto.BeginSelectionRequest) (*dto.SelectionResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection request")
	}
	if _, err := models.ParseSlotKey(req.SlotKey); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	key := selectionKey(userID, req.ApplicationRoundPk, req.ReservationUnitPk)
	state := BeginSelection(s.store.get(key), req.SlotKey)
	s.store.put(key, state)
	s.recordTransition("begin")
	return s.respond(ctx, req.ApplicationRoundPk, req.ReservationUnitPk, state)
}

// Extend grows the selection by one adjacent slot. Non-adjacent slots are
// ignored, mirroring hover behaviour.
func (s *SelectionService) Extend(ctx context.Context, userID string, req dto.ExtendSelectionRequest) (*dto.SelectionResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection request")
	}

	key := selectionKey(userID, req.ApplicationRoundPk, req.ReservationUnitPk)
	state := ExtendSelection(s.store.get(key), req.SlotKey)
	s.store.put(key, state)
	s.recordTransition("extend")
	return s.respond(ctx, req.ApplicationRoundPk, req.ReservationUnitPk, state)
}

// Finish freezes the selection and paints the intersecting events.
func (s *SelectionService) Finish(ctx context.Context, userID string, req dto.FinishSelectionRequest) (*dto.SelectionResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection request")
	}

	key := selectionKey(userID, req.ApplicationRoundPk, req.ReservationUnitPk)
	state := FinishSelection(s.store.get(key))
	s.store.put(key, state)
	s.recordTransition("finish")
	return s.respond(ctx, req.ApplicationRoundPk, req.ReservationUnitPk, state)
}

// SetRange replaces the selection with a contiguous run between two clock
// times, as the start/end time pickers do.
func (s *SelectionService) SetRange(ctx context.Context, userID string, req dto.SetRangeRequest) (*dto.SelectionResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection request")
	}

	state, err := RangeSelection(req.Day, req.Begin, req.End)
	if err != nil {
		return nil, err
	}
	key := selectionKey(userID, req.ApplicationRoundPk, req.ReservationUnitPk)
	s.store.put(key, state)
	s.recordTransition("range")
	return s.respond(ctx, req.ApplicationRoundPk, req.ReservationUnitPk, state)
}

// Clear drops the selection back to idle.
func (s *SelectionService) Clear(ctx context.Context, userID string, req dto.ClearSelectionRequest) (*dto.SelectionResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection request")
	}

	key := selectionKey(userID, req.ApplicationRoundPk, req.ReservationUnitPk)
	s.store.drop(key)
	s.recordTransition("clear")
	return s.respond(ctx, req.ApplicationRoundPk, req.ReservationUnitPk, NewSelectionState())
}

// Current returns the stored selection for the caller, idle when expired.
func (s *SelectionService) Current(userID string, roundPk, unitPk int64) SelectionState {
	return s.store.get(selectionKey(userID, roundPk, unitPk))
}

func (s *SelectionService) respond(ctx context.Context, roundPk, unitPk int64, state SelectionState) (*dto.SelectionResponse, error) {
	resp := &dto.SelectionResponse{
		Status:   state.Status,
		SlotKeys: append([]string{}, state.Keys...),
	}
	if len(state.Keys) > 0 {
		resp.FirstSlotKey = state.Keys[0]
		resp.LastSlotKey = state.Keys[len(state.Keys)-1]
	}

	if state.Status == SelectionConfirmed && s.events != nil {
		events, err := s.events.ListByUnit(ctx, roundPk, unitPk)
		if err != nil {
			s.logger.Warn("paint lookup failed", zap.Int64("unit_pk", unitPk), zap.Error(err))
		} else {
			for _, event := range SlotEvents(state.Keys, events) {
				resp.PaintedEvents = append(resp.PaintedEvents, event.Pk)
			}
		}
	}
	return resp, nil
}

func (s *SelectionService) recordTransition(kind string) {
	if s.metrics != nil {
		s.metrics.RecordSelectionTransition(kind)
	}
}
