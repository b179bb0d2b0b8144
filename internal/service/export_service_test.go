package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jcondori/biblioteca-api/internal/models"
	appErrors "github.com/jcondori/biblioteca-api/pkg/errors"
	"github.com/jcondori/biblioteca-api/pkg/export"
)

type mockLoanLister struct {
	loans      []models.LoanDetail
	lastFilter models.LoanFilter
	lastLimit  int
}

func (m *mockLoanLister) ListAll(ctx context.Context, filter models.LoanFilter, limit int) ([]models.LoanDetail, error) {
	m.lastFilter = filter
	m.lastLimit = limit
	return m.loans, nil
}

type capturedRender struct {
	dataset export.Dataset
	title   string
}

type mockCSVRenderer struct {
	captured *capturedRender
}

func (m *mockCSVRenderer) Render(data export.Dataset) ([]byte, error) {
	m.captured = &capturedRender{dataset: data}
	return []byte("csv-bytes"), nil
}

type mockPDFRenderer struct {
	captured *capturedRender
}

func (m *mockPDFRenderer) Render(data export.Dataset, title string) ([]byte, error) {
	m.captured = &capturedRender{dataset: data, title: title}
	return []byte("pdf-bytes"), nil
}

func sampleLoanDetail() models.LoanDetail {
	returned := time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC)
	return models.LoanDetail{
		Loan: models.Loan{
			ID:            "l1",
			Tipo:          models.LoanTypeSala,
			Estado:        models.LoanStatusReturned,
			FechaPrestamo: time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC),
			FechaLimite:   time.Date(2026, time.March, 10, 23, 59, 59, 0, time.UTC),
			FechaDevuelto: &returned,
		},
		ActivoCodigo:      "INF-001",
		ActivoTitulo:      "Algoritmos",
		ActivoTipo:        models.AssetKindBook,
		EstudianteNombre:  "Ana Quispe",
		EstudianteCI:      "1234567",
		EstudianteCarrera: "SISTEMAS",
	}
}

func TestExportLoanRegisterCSV(t *testing.T) {
	lister := &mockLoanLister{loans: []models.LoanDetail{sampleLoanDetail()}}
	csv := &mockCSVRenderer{}
	svc := NewExportService(lister, zap.NewNop(), 100, csv, &mockPDFRenderer{})

	result, err := svc.LoanRegister(context.Background(), ReportFormatCSV, models.LoanFilter{})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasPrefix(result.Filename, "prestamos_"))
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))
	assert.Equal(t, []byte("csv-bytes"), result.Payload)

	require.NotNil(t, csv.captured)
	require.Len(t, csv.captured.dataset.Rows, 1)
	row := csv.captured.dataset.Rows[0]
	assert.Equal(t, "INF-001", row["Codigo"])
	assert.Equal(t, "Ana Quispe", row["Estudiante"])
	assert.Equal(t, "2026-03-11 09:00", row["Fecha Devolucion"])
}

func TestExportLoanRegisterPDF(t *testing.T) {
	lister := &mockLoanLister{loans: []models.LoanDetail{sampleLoanDetail()}}
	pdf := &mockPDFRenderer{}
	svc := NewExportService(lister, zap.NewNop(), 100, &mockCSVRenderer{}, pdf)

	result, err := svc.LoanRegister(context.Background(), ReportFormatPDF, models.LoanFilter{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))

	require.NotNil(t, pdf.captured)
	assert.Equal(t, "Registro de Prestamos", pdf.captured.title)
}

func TestExportReadsFullRegisterUpToMaxRows(t *testing.T) {
	lister := &mockLoanLister{}
	svc := NewExportService(lister, zap.NewNop(), 250, &mockCSVRenderer{}, &mockPDFRenderer{})

	estado := models.LoanStatusActive
	_, err := svc.LoanRegister(context.Background(), ReportFormatCSV, models.LoanFilter{Estado: &estado})
	require.NoError(t, err)
	assert.Equal(t, 250, lister.lastLimit)
	require.NotNil(t, lister.lastFilter.Estado)
	assert.Equal(t, estado, *lister.lastFilter.Estado)
}

func TestExportUnknownFormat(t *testing.T) {
	svc := NewExportService(&mockLoanLister{}, zap.NewNop(), 100, &mockCSVRenderer{}, &mockPDFRenderer{})

	_, err := svc.LoanRegister(context.Background(), ReportFormat("xlsx"), models.LoanFilter{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestExportRealCSVExporter(t *testing.T) {
	lister := &mockLoanLister{loans: []models.LoanDetail{sampleLoanDetail()}}
	svc := NewExportService(lister, zap.NewNop(), 100, nil, nil)

	result, err := svc.LoanRegister(context.Background(), ReportFormatCSV, models.LoanFilter{})
	require.NoError(t, err)

	content := string(result.Payload)
	assert.Contains(t, content, "Codigo")
	assert.Contains(t, content, "INF-001")
	assert.Contains(t, content, "Ana Quispe")
}
