package dto

// BeginSelectionRequest starts a fresh selection at one slot.
type BeginSelectionRequest struct {
	ApplicationRoundPk int64  `json:"applicationRoundPk" validate:"required,gt=0"`
	ReservationUnitPk  int64  `json:"reservationUnitPk" validate:"required,gt=0"`
	SlotKey            string `json:"slotKey" validate:"required"`
}

// ExtendSelectionRequest grows the active selection by one adjacent slot.
type ExtendSelectionRequest struct {
	ApplicationRoundPk int64  `json:"applicationRoundPk" validate:"required,gt=0"`
	ReservationUnitPk  int64  `json:"reservationUnitPk" validate:"required,gt=0"`
	SlotKey            string `json:"slotKey" validate:"required"`
}

// FinishSelectionRequest freezes the active selection.
type FinishSelectionRequest struct {
	ApplicationRoundPk int64 `json:"applicationRoundPk" validate:"required,gt=0"`
	ReservationUnitPk  int64 `json:"reservationUnitPk" validate:"required,gt=0"`
}

// SetRangeRequest replaces the selection with a contiguous run between two
// clock times on one day. End "0:00" means midnight (hour 24).
type SetRangeRequest struct {
	ApplicationRoundPk int64  `json:"applicationRoundPk" validate:"required,gt=0"`
	ReservationUnitPk  int64  `json:"reservationUnitPk" validate:"required,gt=0"`
	Day                int    `json:"day" validate:"min=0,max=6"`
	Begin              string `json:"begin" validate:"required"`
	End                string `json:"end" validate:"required"`
}

// ClearSelectionRequest drops the active selection.
type ClearSelectionRequest struct {
	ApplicationRoundPk int64 `json:"applicationRoundPk" validate:"required,gt=0"`
	ReservationUnitPk  int64 `json:"reservationUnitPk" validate:"required,gt=0"`
}

// SelectionResponse describes the selection state after a transition.
type SelectionResponse struct {
	Status        string   `json:"status"`
	SlotKeys      []string `json:"slotKeys"`
	FirstSlotKey  string   `json:"firstSlotKey,omitempty"`
	LastSlotKey   string   `json:"lastSlotKey,omitempty"`
	PaintedEvents []int64  `json:"paintedEventPks,omitempty"`
}
