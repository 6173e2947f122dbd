package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dermaplan/booking-api/internal/dto"
	"github.com/dermaplan/booking-api/internal/models"
	"github.com/dermaplan/booking-api/internal/service"
	appErrors "github.com/dermaplan/booking-api/pkg/errors"
	"github.com/dermaplan/booking-api/pkg/response"
)

type exportJobManager interface {
	CreateJob(ctx context.Context, req dto.ExportRequest, actorID string) (*dto.ExportJobResponse, error)
	GetStatus(ctx context.Context, id string) (*dto.ExportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler exposes async export jobs: enqueue, poll, download.
type ExportHandler struct {
	exports exportJobManager
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports exportJobManager) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Create godoc
// @Summary Enqueue an export job
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.ExportRequest true "Export parameters"
// @Success 202 {object} response.Envelope
// @Router /admin/exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	var actorID string
	if claims := claimsFromContext(c); claims != nil {
		actorID = claims.UserID
	}
	job, err := h.exports.CreateJob(c.Request.Context(), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /admin/exports/status/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	status, err := h.exports.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download a finished export
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /admin/exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	download, err := h.exports.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "export file unavailable"))
		return
	}
	mimeType := "text/csv"
	if download.Format == models.ExportFormatPDF {
		mimeType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", download.Filename))
	c.DataFromReader(http.StatusOK, info.Size(), mimeType, download.File, nil)
}
