package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jcondori/biblioteca-api/internal/models"
	appErrors "github.com/jcondori/biblioteca-api/pkg/errors"
	"github.com/jcondori/biblioteca-api/pkg/export"
)

// ReportFormat enumerates supported loan register export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type loanLister interface {
	ListAll(ctx context.Context, filter models.LoanFilter, limit int) ([]models.LoanDetail, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered loan register report.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the loan register as CSV or PDF.
type ExportService struct {
	loans   loanLister
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
	maxRows int
}

// NewExportService constructs an ExportService.
func NewExportService(loans loanLister, logger *zap.Logger, maxRows int, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRows <= 0 {
		maxRows = 5000
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{loans: loans, csv: csv, pdf: pdf, logger: logger, maxRows: maxRows}
}

var loanRegisterHeaders = []string{
	"Codigo", "Titulo", "Tipo Activo", "Estudiante", "CI", "Carrera",
	"Tipo Prestamo", "Estado", "Fecha Prestamo", "Fecha Limite", "Fecha Devolucion",
}

// LoanRegister renders the filtered loan register in the requested format.
// The full register is read through the unpaginated path, capped at maxRows.
func (s *ExportService) LoanRegister(ctx context.Context, format ReportFormat, filter models.LoanFilter) (*ExportResult, error) {
	loans, err := s.loans.ListAll(ctx, filter, s.maxRows)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]string, 0, len(loans))
	for _, loan := range loans {
		rows = append(rows, map[string]string{
			"Codigo":           loan.ActivoCodigo,
			"Titulo":           loan.ActivoTitulo,
			"Tipo Activo":      string(loan.ActivoTipo),
			"Estudiante":       loan.EstudianteNombre,
			"CI":               loan.EstudianteCI,
			"Carrera":          loan.EstudianteCarrera,
			"Tipo Prestamo":    string(loan.Tipo),
			"Estado":           string(loan.Estado),
			"Fecha Prestamo":   loan.FechaPrestamo.Format("2006-01-02 15:04"),
			"Fecha Limite":     loan.FechaLimite.Format("2006-01-02 15:04"),
			"Fecha Devolucion": formatReturnTime(loan.FechaDevuelto),
		})
	}
	dataset := export.Dataset{Headers: loanRegisterHeaders, Rows: rows}

	timestamp := time.Now().UTC().Format("20060102_150405")
	switch format {
	case ReportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("prestamos_%s.csv", timestamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case ReportFormatPDF:
		payload, err := s.pdf.Render(dataset, "Registro de Prestamos")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("prestamos_%s.pdf", timestamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported format "+strings.ToLower(string(format)))
	}
}

func formatReturnTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
