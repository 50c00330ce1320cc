package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.opentelemetry.io/otel/attribute"

	"sipoma/internal/common"
	"sipoma/internal/logging"
	"sipoma/internal/models"
	"sipoma/internal/repositories"
	"sipoma/internal/tracing"
)

var exportHeader = []string{"id", "email", "full_name", "status", "role", "created_at"}

// ExportFormat selects how the user listing is rendered.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ParseExportFormat maps a request value to a format. Empty means CSV.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExportCSV:
		return ExportCSV, nil
	case ExportPDF:
		return ExportPDF, nil
	}
	return "", common.NewValidationError("format", "must be csv or pdf")
}

func (f ExportFormat) contentType() string {
	if f == ExportPDF {
		return "application/pdf"
	}
	return "text/csv"
}

type ExportResult struct {
	Object    string       `json:"object"`
	Format    ExportFormat `json:"format"`
	URL       string       `json:"url"`
	Count     int          `json:"count"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// ExportService writes user listings to object storage.
type ExportService interface {
	ExportUsers(ctx context.Context, format ExportFormat) (*ExportResult, error)
}

type exportService struct {
	users      repositories.UserRepository
	storage    MinioService
	bucket     string
	presignTTL time.Duration
	log        logging.Logger
	now        func() time.Time
}

func NewExportService(users repositories.UserRepository, storage MinioService, bucket string, presignTTL time.Duration, log logging.Logger) ExportService {
	return &exportService{
		users:      users,
		storage:    storage,
		bucket:     bucket,
		presignTTL: presignTTL,
		log:        log.With("component", "export"),
		now:        time.Now,
	}
}

func (s *exportService) ExportUsers(ctx context.Context, format ExportFormat) (result *ExportResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "export.users",
		attribute.String("bucket", s.bucket),
		attribute.String("format", string(format)),
	)
	defer func() { span.End(err) }()

	users, err := s.allUsers(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var body []byte
	switch format {
	case ExportCSV:
		body, err = renderCSV(users)
	case ExportPDF:
		body, err = renderPDF(users, now)
	default:
		return nil, common.NewValidationError("format", "must be csv or pdf")
	}
	if err != nil {
		return nil, err
	}

	if err := s.storage.EnsureBucketExists(ctx, s.bucket); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket %s: %w", s.bucket, err)
	}

	object := fmt.Sprintf("exports/users-%s.%s", now.Format("20060102T150405Z"), format)
	if err := s.storage.UploadObject(ctx, s.bucket, object, bytes.NewReader(body), int64(len(body)), format.contentType()); err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.bucket, object, s.presignTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to presign export: %w", err)
	}

	s.log.Info(ctx, "users exported", "object", object, "count", len(users))

	return &ExportResult{
		Object:    object,
		Format:    format,
		URL:       url,
		Count:     len(users),
		ExpiresAt: now.Add(s.presignTTL),
	}, nil
}

func (s *exportService) allUsers(ctx context.Context) ([]*models.User, error) {
	var all []*models.User
	for offset := 0; ; offset += common.MaxPageLimit {
		page, err := s.users.List(ctx, common.MaxPageLimit, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < common.MaxPageLimit {
			return all, nil
		}
	}
}

func renderCSV(users []*models.User) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, u := range users {
		if err := w.Write(exportRecord(u)); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// column widths in mm, landscape A4 minus margins
var pdfColumnWidths = []float64{70, 70, 60, 22, 18, 37}

func renderPDF(users []*models.User, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "SIPOMA user report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s, %d user(s)", generatedAt.Format("02-Jan-2006 15:04 MST"), len(users)))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range exportHeader {
		pdf.CellFormat(pdfColumnWidths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, u := range users {
		for i, v := range exportRecord(u) {
			pdf.CellFormat(pdfColumnWidths[i], 6, tr(v), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func exportRecord(u *models.User) []string {
	return []string{
		u.ID.String(),
		u.Email,
		u.FullName,
		string(u.Status),
		string(u.Role),
		u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
