package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dermaplan/booking-api/internal/models"
	"github.com/dermaplan/booking-api/pkg/export"
	"github.com/dermaplan/booking-api/pkg/storage"
)

type exportAppointmentSource interface {
	ListForExport(ctx context.Context, from, to *time.Time, status *string) ([]models.AppointmentExportRow, error)
}

type exportCustomerSource interface {
	ListForExport(ctx context.Context) ([]models.Customer, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService builds export datasets and persists rendered files.
type ExportService struct {
	appointments exportAppointmentSource
	customers    exportCustomerSource
	storage      fileStorage
	csv          csvRenderer
	pdf          pdfRenderer
	signer       *storage.SignedURLSigner
	logger       *zap.Logger
	cfg          ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(appointments exportAppointmentSource, customers exportCustomerSource, fileStore fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		appointments: appointments,
		customers:    customers,
		storage:      fileStore,
		csv:          csv,
		pdf:          pdf,
		signer:       signer,
		logger:       logger,
		cfg:          cfg,
	}
}

// Generate builds the dataset for the job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/admin/exports/download/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", strings.ToLower(string(job.Type)), timestamp, job.Params.Format)
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ExportTypeAppointments:
		return s.buildAppointmentDataset(ctx, job.Params)
	case models.ExportTypeCustomers:
		return s.buildCustomerDataset(ctx)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported export type %s", job.Type)
	}
}

func (s *ExportService) buildAppointmentDataset(ctx context.Context, params models.ExportJobParams) (export.Dataset, string, error) {
	rows, err := s.appointments.ListForExport(ctx, params.From, params.To, params.Status)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"ID":       row.ID,
			"Start":    row.StartAt.UTC().Format(time.RFC3339),
			"End":      row.EndAt.UTC().Format(time.RFC3339),
			"Status":   row.Status,
			"Service":  row.ServiceName,
			"Customer": row.CustomerName,
			"Email":    row.Email,
			"Phone":    row.Phone,
		})
	}
	dataset := export.Dataset{
		Headers: []string{"ID", "Start", "End", "Status", "Service", "Customer", "Email", "Phone"},
		Rows:    dataRows,
	}
	return dataset, "Appointments Export", nil
}

func (s *ExportService) buildCustomerDataset(ctx context.Context) (export.Dataset, string, error) {
	customers, err := s.customers.ListForExport(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(customers))
	for _, customer := range customers {
		dataRows = append(dataRows, map[string]string{
			"ID":         customer.ID,
			"Name":       customer.FullName,
			"Email":      customer.Email,
			"Phone":      customer.Phone,
			"First Seen": customer.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"ID", "Name", "Email", "Phone", "First Seen"},
		Rows:    dataRows,
	}
	return dataset, "Customers Export", nil
}
