package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jcondori/biblioteca-api/internal/models"
	appErrors "github.com/jcondori/biblioteca-api/pkg/errors"
)

type mockLoanRepo struct {
	loans   map[string]*models.Loan
	details map[string]*models.LoanDetail
	active  map[string]*models.LoanDetail
	created []*models.Loan
	seq     int
}

func newMockLoanRepo() *mockLoanRepo {
	return &mockLoanRepo{
		loans:   make(map[string]*models.Loan),
		details: make(map[string]*models.LoanDetail),
		active:  make(map[string]*models.LoanDetail),
	}
}

func (m *mockLoanRepo) List(ctx context.Context, filter models.LoanFilter) ([]models.LoanDetail, int, error) {
	return nil, 0, nil
}

func (m *mockLoanRepo) FindByID(ctx context.Context, id string) (*models.Loan, error) {
	if loan, ok := m.loans[id]; ok {
		cp := *loan
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLoanRepo) FindDetailByID(ctx context.Context, id string) (*models.LoanDetail, error) {
	if detail, ok := m.details[id]; ok {
		cp := *detail
		return &cp, nil
	}
	if loan, ok := m.loans[id]; ok {
		return &models.LoanDetail{Loan: *loan}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLoanRepo) FindActiveByAsset(ctx context.Context, assetID string) (*models.LoanDetail, error) {
	if detail, ok := m.active[assetID]; ok {
		cp := *detail
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLoanRepo) Create(ctx context.Context, loan *models.Loan) error {
	m.seq++
	loan.ID = fmt.Sprintf("loan-%d", m.seq)
	cp := *loan
	m.loans[loan.ID] = &cp
	m.created = append(m.created, &cp)
	m.active[loan.ActivoID] = &models.LoanDetail{Loan: cp}
	return nil
}

func (m *mockLoanRepo) MarkReturned(ctx context.Context, id string, returnedAt time.Time) (bool, error) {
	loan, ok := m.loans[id]
	if !ok || loan.Estado != models.LoanStatusActive {
		return false, nil
	}
	loan.Estado = models.LoanStatusReturned
	loan.FechaDevuelto = &returnedAt
	delete(m.active, loan.ActivoID)
	return true, nil
}

func (m *mockLoanRepo) ActiveAssetIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.active))
	for id := range m.active {
		ids = append(ids, id)
	}
	return ids, nil
}

type mockLoanStudentRepo struct {
	byID    map[string]*models.Student
	byCI    map[string]*models.Student
	created []*models.Student
}

func newMockLoanStudentRepo() *mockLoanStudentRepo {
	return &mockLoanStudentRepo{byID: make(map[string]*models.Student), byCI: make(map[string]*models.Student)}
}

func (m *mockLoanStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.byID[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLoanStudentRepo) FindByCI(ctx context.Context, ci string) (*models.Student, error) {
	if s, ok := m.byCI[ci]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLoanStudentRepo) Create(ctx context.Context, student *models.Student) error {
	student.ID = "student-new"
	cp := *student
	m.byID[student.ID] = &cp
	m.byCI[student.CI] = &cp
	m.created = append(m.created, &cp)
	return nil
}

type mockLoanAssetRepo struct {
	assets map[string]*models.Asset
}

func (m *mockLoanAssetRepo) FindByID(ctx context.Context, id string) (*models.Asset, error) {
	if a, ok := m.assets[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func newLoanFixture() (*LoanService, *mockLoanRepo, *mockLoanStudentRepo, *mockLoanAssetRepo) {
	loans := newMockLoanRepo()
	students := newMockLoanStudentRepo()
	students.byID["s1"] = &models.Student{ID: "s1", NombreCompleto: "Ana Quispe", CI: "1234567"}
	students.byCI["1234567"] = students.byID["s1"]
	assets := &mockLoanAssetRepo{assets: map[string]*models.Asset{
		"a1": {ID: "a1", Tipo: models.AssetKindBook, CodigoNuevo: "INF-001", Titulo: "Algoritmos"},
		"t1": {ID: "t1", Tipo: models.AssetKindThesis, CodigoNuevo: "TES-001", Titulo: "Tesis de Grado"},
	}}
	svc := NewLoanService(loans, students, assets, validator.New(), zap.NewNop(), 2, nil)
	return svc, loans, students, assets
}

func TestLoanCreateForExistingStudent(t *testing.T) {
	svc, loans, _, _ := newLoanFixture()
	actor := &models.JWTClaims{UserID: "u1"}

	detail, err := svc.Create(context.Background(), models.CreateLoanRequest{
		ActivoID:   "a1",
		Tipo:       models.LoanTypeSala,
		Estudiante: models.ExistingStudent("s1"),
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusActive, detail.Estado)
	assert.Equal(t, "s1", detail.EstudianteID)
	require.Len(t, loans.created, 1)
	require.NotNil(t, loans.created[0].UsuarioPrestamo)
	assert.Equal(t, "u1", *loans.created[0].UsuarioPrestamo)
}

func TestLoanCreateRejectsBusyAssetNamingBorrower(t *testing.T) {
	svc, loans, _, _ := newLoanFixture()
	loans.active["a1"] = &models.LoanDetail{
		Loan:             models.Loan{ID: "prev", ActivoID: "a1", Estado: models.LoanStatusActive},
		EstudianteNombre: "Luis Mamani",
	}

	_, err := svc.Create(context.Background(), models.CreateLoanRequest{
		ActivoID:   "a1",
		Tipo:       models.LoanTypeSala,
		Estudiante: models.ExistingStudent("s1"),
	}, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrItemOnLoan))
	assert.Contains(t, appErrors.FromError(err).Message, "Luis Mamani")
	assert.Empty(t, loans.created)
}

func TestLoanCreateRejectsThesisTakeHome(t *testing.T) {
	svc, loans, _, _ := newLoanFixture()

	_, err := svc.Create(context.Background(), models.CreateLoanRequest{
		ActivoID:   "t1",
		Tipo:       models.LoanTypeDomicilio,
		Estudiante: models.ExistingStudent("s1"),
	}, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrLoanTypeNotAllowed))
	assert.Empty(t, loans.created)
}

func TestLoanCreateAllowsThesisInLibrary(t *testing.T) {
	svc, _, _, _ := newLoanFixture()

	detail, err := svc.Create(context.Background(), models.CreateLoanRequest{
		ActivoID:   "t1",
		Tipo:       models.LoanTypeSala,
		Estudiante: models.ExistingStudent("s1"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.LoanTypeSala, detail.Tipo)
}

func TestLoanCreateUnknownAsset(t *testing.T) {
	svc, _, _, _ := newLoanFixture()

	_, err := svc.Create(context.Background(), models.CreateLoanRequest{
		ActivoID:   "missing",
		Tipo:       models.LoanTypeSala,
		Estudiante: models.ExistingStudent("s1"),
	}, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestLoanCreateInlineStudentRegistersOnce(t *testing.T) {
	svc, _, students, _ := newLoanFixture()

	_, err := svc.Create(context.Background(), models.CreateLoanRequest{
		ActivoID:   "a1",
		Tipo:       models.LoanTypeSala,
		Estudiante: models.InlineStudent("Maria Flores", " 5555555 "),
	}, nil)
	require.NoError(t, err)
	require.Len(t, students.created, 1)
	assert.Equal(t, "5555555", students.created[0].CI)
	assert.Equal(t, models.DefaultCarrera, students.created[0].Carrera)

	// A second inline submission with the same CI reuses the record.
	_, err = svc.Create(context.Background(), models.CreateLoanRequest{
		ActivoID:   "t1",
		Tipo:       models.LoanTypeSala,
		Estudiante: models.InlineStudent("Maria Flores", "5555555"),
	}, nil)
	require.NoError(t, err)
	assert.Len(t, students.created, 1)
}

func TestLoanCreateInlineReusesExistingCI(t *testing.T) {
	svc, loans, students, _ := newLoanFixture()

	_, err := svc.Create(context.Background(), models.CreateLoanRequest{
		ActivoID:   "a1",
		Tipo:       models.LoanTypeSala,
		Estudiante: models.InlineStudent("Ana Q.", "1234567"),
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, students.created)
	require.Len(t, loans.created, 1)
	assert.Equal(t, "s1", loans.created[0].EstudianteID)
}

func TestLoanDueDateInLibrary(t *testing.T) {
	svc, loans, _, _ := newLoanFixture()
	svc.now = func() time.Time {
		return time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)
	}

	_, err := svc.Create(context.Background(), models.CreateLoanRequest{
		ActivoID:   "a1",
		Tipo:       models.LoanTypeSala,
		Estudiante: models.ExistingStudent("s1"),
	}, nil)
	require.NoError(t, err)

	want := time.Date(2026, time.March, 10, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, want, loans.created[0].FechaLimite)
}

func TestLoanDueDateTakeHome(t *testing.T) {
	svc, loans, _, _ := newLoanFixture()
	svc.now = func() time.Time {
		return time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)
	}

	_, err := svc.Create(context.Background(), models.CreateLoanRequest{
		ActivoID:   "a1",
		Tipo:       models.LoanTypeDomicilio,
		Estudiante: models.ExistingStudent("s1"),
	}, nil)
	require.NoError(t, err)

	want := time.Date(2026, time.March, 12, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, want, loans.created[0].FechaLimite)
}

func TestLoanReturn(t *testing.T) {
	svc, loans, _, _ := newLoanFixture()
	loans.loans["l1"] = &models.Loan{ID: "l1", ActivoID: "a1", Estado: models.LoanStatusActive}

	detail, err := svc.Return(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusReturned, detail.Estado)
	assert.NotNil(t, detail.FechaDevuelto)
}

func TestLoanReturnTwiceFails(t *testing.T) {
	svc, loans, _, _ := newLoanFixture()
	loans.loans["l1"] = &models.Loan{ID: "l1", ActivoID: "a1", Estado: models.LoanStatusActive}

	_, err := svc.Return(context.Background(), "l1")
	require.NoError(t, err)
	returnedAt := loans.loans["l1"].FechaDevuelto
	require.NotNil(t, returnedAt)

	_, err = svc.Return(context.Background(), "l1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyReturned))
	// The original return timestamp survives the second attempt.
	assert.Equal(t, returnedAt, loans.loans["l1"].FechaDevuelto)
}

func TestLoanReturnFreesAssetForNewLoan(t *testing.T) {
	svc, loans, _, _ := newLoanFixture()

	detail, err := svc.Create(context.Background(), models.CreateLoanRequest{
		ActivoID:   "a1",
		Tipo:       models.LoanTypeSala,
		Estudiante: models.ExistingStudent("s1"),
	}, nil)
	require.NoError(t, err)

	_, err = svc.Return(context.Background(), detail.ID)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), models.CreateLoanRequest{
		ActivoID:   "a1",
		Tipo:       models.LoanTypeSala,
		Estudiante: models.ExistingStudent("s1"),
	}, nil)
	require.NoError(t, err)
	assert.Len(t, loans.created, 2)
}

func TestLoanCreateAndReturnInvalidateDashboard(t *testing.T) {
	loans := newMockLoanRepo()
	students := newMockLoanStudentRepo()
	students.byID["s1"] = &models.Student{ID: "s1", NombreCompleto: "Ana Quispe", CI: "1234567"}
	assets := &mockLoanAssetRepo{assets: map[string]*models.Asset{
		"a1": {ID: "a1", Tipo: models.AssetKindBook, CodigoNuevo: "INF-001"},
	}}
	invalidator := &mockDashboardInvalidator{}
	svc := NewLoanService(loans, students, assets, validator.New(), zap.NewNop(), 2, invalidator)

	detail, err := svc.Create(context.Background(), models.CreateLoanRequest{
		ActivoID:   "a1",
		Tipo:       models.LoanTypeSala,
		Estudiante: models.ExistingStudent("s1"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, invalidator.calls)

	// A conflicting create changes nothing, so the cache stays.
	_, err = svc.Create(context.Background(), models.CreateLoanRequest{
		ActivoID:   "a1",
		Tipo:       models.LoanTypeSala,
		Estudiante: models.ExistingStudent("s1"),
	}, nil)
	require.Error(t, err)
	assert.Equal(t, 1, invalidator.calls)

	_, err = svc.Return(context.Background(), detail.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, invalidator.calls)

	_, err = svc.Return(context.Background(), detail.ID)
	require.Error(t, err)
	assert.Equal(t, 2, invalidator.calls)
}

func TestLoanActiveAssetIDsNeverNil(t *testing.T) {
	svc, _, _, _ := newLoanFixture()

	ids, err := svc.ActiveAssetIDs(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}
