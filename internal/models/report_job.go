package models

import "time"

// Report job states.
const (
	ReportStatusPending   = "pending"
	ReportStatusRunning   = "running"
	ReportStatusCompleted = "completed"
	ReportStatusFailed    = "failed"
)

// Report output formats.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

// ReportJob tracks one asynchronous allocation-results export.
type ReportJob struct {
	ID                 string     `json:"id"`
	ApplicationRoundPk int64      `json:"applicationRoundPk"`
	ReservationUnitPk  int64      `json:"reservationUnitPk"`
	Format             string     `json:"format"`
	Status             string     `json:"status"`
	FilePath           string     `json:"-"`
	DownloadURL        string     `json:"downloadUrl,omitempty"`
	ExpiresAt          *time.Time `json:"expiresAt,omitempty"`
	Error              string     `json:"error,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
}
