package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sahulatbazaar/sahulat-backend/pkg/enums"
	pkgerrors "github.com/sahulatbazaar/sahulat-backend/pkg/errors"
)

const exportRecordBytes = 150

// sizeMultiplier scales the synthetic file size per format. Binary
// formats carry framing overhead the plain csv does not.
func sizeMultiplier(format enums.ExportFormat) float64 {
	switch format {
	case enums.ExportFormatXLSX:
		return 1.2
	case enums.ExportFormatPDF:
		return 1.5
	default:
		return 1.0
	}
}

// Export creates an export job and runs it in the background. The
// returned snapshot is the job right after creation, at progress zero;
// callers poll ExportJobByID for progress and the terminal state.
func (s *Service) Export(ctx context.Context, reportType enums.ReportType, format enums.ExportFormat, filters Filters) (ExportJob, error) {
	if reportType != enums.ReportTypePaymentVerification {
		return ExportJob{}, pkgerrors.New(pkgerrors.CodeUnknownReportType,
			fmt.Sprintf("unknown report type %q", reportType))
	}
	if !format.IsValid() {
		return ExportJob{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid export format %q", format))
	}
	if err := validateFilters(filters); err != nil {
		return ExportJob{}, err
	}

	job := &ExportJob{
		ID:         uuid.NewString(),
		ReportType: reportType,
		Format:     format,
		Filters:    filters,
		Status:     enums.ExportStatusProcessing,
		CreatedAt:  s.now(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	jobCtx := s.logg.WithExportJobID(context.WithoutCancel(ctx), job.ID)
	go s.runExport(jobCtx, job.ID)

	return *job, nil
}

// ExportJobByID returns a snapshot of the job.
func (s *Service) ExportJobByID(id string) (ExportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ExportJob{}, pkgerrors.New(pkgerrors.CodeNotFound, "export job not found")
	}
	return *job, nil
}

// ExportJobs returns snapshots of all jobs, newest first.
func (s *Service) ExportJobs() []ExportJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ExportJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, *job)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

func (s *Service) runExport(ctx context.Context, jobID string) {
	started := s.now()
	var format enums.ExportFormat
	s.withJob(jobID, func(job *ExportJob) {
		format = job.Format
	})

	fail := func(err error) {
		failedAt := s.now()
		s.withJob(jobID, func(job *ExportJob) {
			job.Status = enums.ExportStatusFailed
			job.FailedAt = &failedAt
			job.Error = err.Error()
		})
		s.metrics.IncExportFailure(string(format))
		s.logg.Error(ctx, "export job failed", err)
	}

	// Gathering the rows.
	s.sleepStep()
	s.withJob(jobID, func(job *ExportJob) { job.Progress = 25 })

	var filters Filters
	var reportType enums.ReportType
	s.withJob(jobID, func(job *ExportJob) {
		filters = job.Filters
		reportType = job.ReportType
	})
	report, err := s.PaymentVerificationReport(ctx, filters)
	if err != nil {
		fail(err)
		return
	}

	// Rendering the artifact.
	s.sleepStep()
	s.withJob(jobID, func(job *ExportJob) { job.Progress = 75 })
	s.sleepStep()

	completedAt := s.now()
	fileName := fmt.Sprintf("%s_%d.%s", reportType, completedAt.UnixMilli(), format)
	fileSize := int64(float64(report.Metadata.RecordCount*exportRecordBytes) * sizeMultiplier(format))
	s.withJob(jobID, func(job *ExportJob) {
		job.Progress = 100
		job.Status = enums.ExportStatusCompleted
		job.RecordCount = report.Metadata.RecordCount
		job.FileName = fileName
		job.FileURL = fmt.Sprintf("https://%s/exports/%s", s.cfg.ExportHost, fileName)
		job.FileSize = fileSize
		job.CompletedAt = &completedAt
	})
	s.metrics.ObserveExportDuration(string(format), s.now().Sub(started))
	s.metrics.IncExportSuccess(string(format))
	s.logg.Info(ctx, "export job completed")
}

func (s *Service) withJob(jobID string, fn func(job *ExportJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		fn(job)
	}
}

func (s *Service) sleepStep() {
	if s.cfg.ExportStepDelay > 0 {
		time.Sleep(s.cfg.ExportStepDelay)
	}
}
