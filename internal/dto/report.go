package dto

// CreateReportRequest queues an allocation-results export.
type CreateReportRequest struct {
	ApplicationRoundPk int64  `json:"applicationRoundPk" validate:"required,gt=0"`
	ReservationUnitPk  int64  `json:"reservationUnitPk" validate:"required,gt=0"`
	Format             string `json:"format" validate:"required,oneof=csv pdf"`
}
