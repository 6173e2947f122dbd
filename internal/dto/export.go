package dto

import (
	"time"

	"github.com/dermaplan/booking-api/internal/models"
)

// ExportRequest captures POST /admin/exports payload.
type ExportRequest struct {
	Type   models.ExportType   `json:"type"`
	Format models.ExportFormat `json:"format"`
	From   *time.Time          `json:"from,omitempty"`
	To     *time.Time          `json:"to,omitempty"`
	Status *string             `json:"status,omitempty"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
