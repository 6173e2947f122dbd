package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermaplan/booking-api/internal/dto"
	"github.com/dermaplan/booking-api/internal/models"
	"github.com/dermaplan/booking-api/internal/repository"
	appErrors "github.com/dermaplan/booking-api/pkg/errors"
	"github.com/dermaplan/booking-api/pkg/jobs"
)

type exportJobStoreStub struct {
	jobs      map[string]*models.ExportJob
	createErr error
	updates   []repository.UpdateExportJobParams
	listCalls int
	cleared   []string
}

func (s *exportJobStoreStub) Create(ctx context.Context, job *models.ExportJob) error {
	if s.createErr != nil {
		return s.createErr
	}
	if job.ID == "" {
		job.ID = "job-1"
	}
	if s.jobs == nil {
		s.jobs = map[string]*models.ExportJob{}
	}
	s.jobs[job.ID] = job
	return nil
}

func (s *exportJobStoreStub) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	if job, ok := s.jobs[id]; ok {
		return job, nil
	}
	return nil, errors.New("not found")
}

func (s *exportJobStoreStub) Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error {
	s.updates = append(s.updates, params)
	job, ok := s.jobs[id]
	if !ok {
		return errors.New("not found")
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	return nil
}

func (s *exportJobStoreStub) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	var queued []models.ExportJob
	for _, job := range s.jobs {
		if job.Status == models.ExportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (s *exportJobStoreStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	s.listCalls++
	var finished []models.ExportJob
	for _, job := range s.jobs {
		if job.Status != models.ExportStatusFinished || job.ResultURL == nil {
			continue
		}
		if job.FinishedAt == nil || !job.FinishedAt.Before(cutoff) {
			continue
		}
		finished = append(finished, *job)
		if len(finished) == limit {
			break
		}
	}
	return finished, nil
}

func (s *exportJobStoreStub) ClearResultURLs(ctx context.Context, ids []string) error {
	s.cleared = append(s.cleared, ids...)
	for _, id := range ids {
		if job, ok := s.jobs[id]; ok {
			job.ResultURL = nil
		}
	}
	return nil
}

type queueStub struct {
	enqueued []jobs.Job
	err      error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, job)
	return nil
}

type fileManagerStub struct {
	deleted []string
	swept   int
}

func (f *fileManagerStub) ParseToken(token string, allowExpired bool) (string, string, time.Time, error) {
	return "", "exports/" + token + ".csv", time.Time{}, nil
}

func (f *fileManagerStub) Open(relPath string) (*os.File, error) {
	return nil, errors.New("not implemented")
}

func (f *fileManagerStub) Delete(relPath string) error {
	f.deleted = append(f.deleted, relPath)
	return nil
}

func (f *fileManagerStub) Cleanup(ttl time.Duration) ([]string, error) {
	f.swept++
	return nil, nil
}

type generatorStub struct {
	result *ExportResult
	err    error
}

func (g *generatorStub) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func TestExportJobCreateEnqueues(t *testing.T) {
	store := &exportJobStoreStub{}
	queue := &queueStub{}
	svc := NewExportJobService(store, queue, nil, nil, ExportJobServiceConfig{})

	resp, err := svc.CreateJob(context.Background(), dto.ExportRequest{
		Type:   models.ExportTypeAppointments,
		Format: models.ExportFormatCSV,
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, resp.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, resp.ID, queue.enqueued[0].ID)
}

func TestExportJobCreateRejectsBadType(t *testing.T) {
	svc := NewExportJobService(&exportJobStoreStub{}, &queueStub{}, nil, nil, ExportJobServiceConfig{})
	_, err := svc.CreateJob(context.Background(), dto.ExportRequest{
		Type:   models.ExportType("invoices"),
		Format: models.ExportFormatCSV,
	}, "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportJobCreateRejectsInvertedRange(t *testing.T) {
	svc := NewExportJobService(&exportJobStoreStub{}, &queueStub{}, nil, nil, ExportJobServiceConfig{})
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(-24 * time.Hour)
	_, err := svc.CreateJob(context.Background(), dto.ExportRequest{
		Type:   models.ExportTypeAppointments,
		Format: models.ExportFormatCSV,
		From:   &from,
		To:     &to,
	}, "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportJobCreateMarksFailedWhenEnqueueFails(t *testing.T) {
	store := &exportJobStoreStub{}
	queue := &queueStub{err: errors.New("queue closed")}
	svc := NewExportJobService(store, queue, nil, nil, ExportJobServiceConfig{})

	_, err := svc.CreateJob(context.Background(), dto.ExportRequest{
		Type:   models.ExportTypeCustomers,
		Format: models.ExportFormatPDF,
	}, "admin")
	require.Error(t, err)
	require.Len(t, store.updates, 1)
	require.NotNil(t, store.updates[0].Status)
	assert.Equal(t, models.ExportStatusFailed, *store.updates[0].Status)
}

func TestExportJobCleanupDrainsAllExpiredBatches(t *testing.T) {
	// More expired jobs than one cleanup batch: every batch must be removed
	// from the candidate set or the loop would re-fetch the same rows forever.
	finishedAt := time.Now().Add(-72 * time.Hour)
	store := &exportJobStoreStub{jobs: map[string]*models.ExportJob{}}
	for i := 0; i < 150; i++ {
		id := fmt.Sprintf("job-%03d", i)
		url := "/api/v1/admin/exports/download/tok-" + id
		store.jobs[id] = &models.ExportJob{
			ID:         id,
			Type:       models.ExportTypeAppointments,
			Status:     models.ExportStatusFinished,
			ResultURL:  &url,
			FinishedAt: &finishedAt,
		}
	}
	files := &fileManagerStub{}
	svc := NewExportJobService(store, &queueStub{}, files, nil, ExportJobServiceConfig{ResultTTL: 24 * time.Hour})

	svc.cleanupExpired(context.Background())

	assert.Len(t, files.deleted, 150)
	assert.Len(t, store.cleared, 150)
	for id, job := range store.jobs {
		assert.Nilf(t, job.ResultURL, "job %s still has a result url", id)
	}
	// 100 + 50; a third fetch would mean the loop revisited cleaned rows.
	assert.LessOrEqual(t, store.listCalls, 2)
	assert.Equal(t, 1, files.swept)
}

func TestExportWorkerHandleFinishesJob(t *testing.T) {
	store := &exportJobStoreStub{jobs: map[string]*models.ExportJob{
		"job-1": {
			ID:     "job-1",
			Type:   models.ExportTypeAppointments,
			Status: models.ExportStatusQueued,
			Params: models.ExportJobParams{Format: models.ExportFormatCSV},
		},
	}}
	generator := &generatorStub{result: &ExportResult{URL: "/api/v1/admin/exports/download/tok"}}
	worker := NewExportWorker(store, generator, 3, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1})
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, store.jobs["job-1"].Status)
	require.NotNil(t, store.jobs["job-1"].ResultURL)
	assert.Equal(t, "/api/v1/admin/exports/download/tok", *store.jobs["job-1"].ResultURL)
}

func TestExportWorkerHandleRequeuesOnRetryableFailure(t *testing.T) {
	store := &exportJobStoreStub{jobs: map[string]*models.ExportJob{
		"job-1": {
			ID:     "job-1",
			Type:   models.ExportTypeAppointments,
			Status: models.ExportStatusQueued,
			Params: models.ExportJobParams{Format: models.ExportFormatCSV},
		},
	}}
	generator := &generatorStub{err: errors.New("render failed")}
	worker := NewExportWorker(store, generator, 3, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1})
	require.Error(t, err)
	assert.Equal(t, models.ExportStatusQueued, store.jobs["job-1"].Status)

	err = worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 3})
	require.Error(t, err)
	assert.Equal(t, models.ExportStatusFailed, store.jobs["job-1"].Status)
}
