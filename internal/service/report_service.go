package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venuehub/allocation-api/internal/dto"
	"github.com/venuehub/allocation-api/internal/models"
	appErrors "github.com/venuehub/allocation-api/pkg/errors"
	"github.com/venuehub/allocation-api/pkg/export"
	"github.com/venuehub/allocation-api/pkg/jobs"
	"github.com/venuehub/allocation-api/pkg/storage"
)

const reportJobType = "allocation-report"

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File     *os.File
	Filename string
	Format   string
}

// reportJobStore keeps job metadata in memory. Jobs are ephemeral: the
// signed URL is the durable handle to a finished report file.
type reportJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.ReportJob
}

func newReportJobStore() *reportJobStore {
	return &reportJobStore{jobs: make(map[string]*models.ReportJob)}
}

func (s *reportJobStore) put(job *models.ReportJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *reportJobStore) get(id string) (*models.ReportJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	copied := *job
	return &copied, true
}

func (s *reportJobStore) update(id string, fn func(*models.ReportJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
	}
}

// ReportService produces asynchronous allocation-results exports per
// reservation unit, in CSV or PDF form, served through signed URLs.
type ReportService struct {
	events   AllocationEventSource
	rounds   RoundSource
	store    *reportJobStore
	queue    jobDispatcher
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	files    *storage.LocalStorage
	signer   *storage.SignedURLSigner
	validate *validator.Validate
	logger   *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(
	events AllocationEventSource,
	rounds RoundSource,
	queue jobDispatcher,
	files *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	validate *validator.Validate,
	logger *zap.Logger,
) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		events:   events,
		rounds:   rounds,
		store:    newReportJobStore(),
		queue:    queue,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		files:    files,
		signer:   signer,
		validate: validate,
		logger:   logger,
	}
}

// CreateJob validates the request, records the job and enqueues processing.
func (s *ReportService) CreateJob(ctx context.Context, req dto.CreateReportRequest) (*models.ReportJob, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report request")
	}
	if _, err := s.rounds.GetUnit(ctx, req.ApplicationRoundPk, req.ReservationUnitPk); err != nil {
		return nil, err
	}

	job := &models.ReportJob{
		ID:                 uuid.NewString(),
		ApplicationRoundPk: req.ApplicationRoundPk,
		ReservationUnitPk:  req.ReservationUnitPk,
		Format:             req.Format,
		Status:             models.ReportStatusPending,
		CreatedAt:          time.Now().UTC(),
	}
	s.store.put(job)

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: reportJobType, Payload: req}); err != nil {
		s.store.update(job.ID, func(j *models.ReportJob) {
			j.Status = models.ReportStatusFailed
			j.Error = "failed to enqueue report job"
		})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}

	stored, _ := s.store.get(job.ID)
	return stored, nil
}

// GetJob exposes job metadata.
func (s *ReportService) GetJob(id string) (*models.ReportJob, error) {
	job, ok := s.store.get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	return job, nil
}

// Process is the queue handler: it renders the report and stores the file.
func (s *ReportService) Process(ctx context.Context, job jobs.Job) error {
	stored, ok := s.store.get(job.ID)
	if !ok {
		return fmt.Errorf("unknown report job %s", job.ID)
	}
	s.store.update(job.ID, func(j *models.ReportJob) {
		j.Status = models.ReportStatusRunning
	})

	if err := s.render(ctx, stored); err != nil {
		s.store.update(job.ID, func(j *models.ReportJob) {
			j.Status = models.ReportStatusFailed
			j.Error = err.Error()
		})
		return err
	}
	return nil
}

func (s *ReportService) render(ctx context.Context, job *models.ReportJob) error {
	events, err := s.events.ListByUnit(ctx, job.ApplicationRoundPk, job.ReservationUnitPk)
	if err != nil {
		return err
	}

	dataset := allocationDataset(events)

	var payload []byte
	switch job.Format {
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Allocation results")
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return err
	}

	relPath := fmt.Sprintf("allocations/%s.%s", job.ID, job.Format)
	if _, err := s.files.Save(relPath, payload); err != nil {
		return err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	s.store.update(job.ID, func(j *models.ReportJob) {
		j.Status = models.ReportStatusCompleted
		j.FilePath = relPath
		j.DownloadURL = "/reports/download?token=" + token
		j.ExpiresAt = &expiresAt
		j.CompletedAt = &now
	})
	s.logger.Info("report generated",
		zap.String("job_id", job.ID),
		zap.String("format", job.Format),
		zap.Int64("unit_pk", job.ReservationUnitPk))
	return nil
}

// ResolveDownload validates a signed token and opens the stored file.
func (s *ReportService) ResolveDownload(token string) (*ReportDownload, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token")
	}
	job, ok := s.store.get(jobID)
	if !ok || job.Status != models.ReportStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not available")
	}

	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report file missing")
	}
	return &ReportDownload{
		File:     file,
		Filename: fmt.Sprintf("allocations-%d.%s", job.ReservationUnitPk, job.Format),
		Format:   job.Format,
	}, nil
}

// StartCleanup periodically removes expired report files.
func (s *ReportService) StartCleanup(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := s.files.CleanupOlderThan(ttl)
				if err != nil {
					s.logger.Warn("report cleanup failed", zap.Error(err))
					continue
				}
				if len(deleted) > 0 {
					s.logger.Info("expired reports removed", zap.Int("count", len(deleted)))
				}
			}
		}
	}()
}

// allocationDataset flattens schedules and results into tabular rows.
func allocationDataset(events []models.ApplicationEvent) export.Dataset {
	headers := []string{"event", "schedule", "priority", "day", "requested", "status", "allocated"}
	rows := make([]map[string]string, 0)

	for _, event := range events {
		for _, schedule := range event.Schedules {
			status := "pending"
			allocated := ""
			if schedule.Result != nil {
				switch {
				case schedule.Result.Accepted:
					status = "accepted"
					if schedule.Result.AllocatedDay != nil && schedule.Result.AllocatedBegin != nil && schedule.Result.AllocatedEnd != nil {
						allocated = fmt.Sprintf("day %d %s-%s",
							*schedule.Result.AllocatedDay,
							*schedule.Result.AllocatedBegin,
							*schedule.Result.AllocatedEnd)
					}
				case schedule.Result.Declined:
					status = "declined"
				}
			}
			rows = append(rows, map[string]string{
				"event":     event.Name,
				"schedule":  fmt.Sprintf("%d", schedule.Pk),
				"priority":  fmt.Sprintf("%d", schedule.Priority),
				"day":       fmt.Sprintf("%d", schedule.Day),
				"requested": fmt.Sprintf("%s-%s", schedule.Begin, schedule.End),
				"status":    status,
				"allocated": allocated,
			})
		}
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
