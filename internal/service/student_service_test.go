package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jcondori/biblioteca-api/internal/models"
	appErrors "github.com/jcondori/biblioteca-api/pkg/errors"
)

type mockStudentRepo struct {
	items   map[string]*models.Student
	ciIndex map[string]string
	active  map[string]int
	deleted []string
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{
		items:   make(map[string]*models.Student),
		ciIndex: make(map[string]string),
		active:  make(map[string]int),
	}
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	return nil, 0, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByCI(ctx context.Context, ci, excludeID string) (bool, error) {
	if owner, ok := m.ciIndex[ci]; ok {
		if excludeID == "" || owner != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) ActiveLoanCount(ctx context.Context, id string) (int, error) {
	return m.active[id], nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = "student-generated"
	}
	cp := *student
	m.items[student.ID] = &cp
	m.ciIndex[student.CI] = student.ID
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	cp := *student
	m.items[student.ID] = &cp
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

func TestStudentCreateTrimsCI(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	student, err := svc.Create(context.Background(), models.CreateStudentRequest{
		NombreCompleto: "Ana Quispe",
		CI:             "  1234567  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "1234567", student.CI)
}

func TestStudentCreateDuplicateCI(t *testing.T) {
	repo := newMockStudentRepo()
	repo.ciIndex["1234567"] = "other"
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), models.CreateStudentRequest{
		NombreCompleto: "Ana Quispe",
		CI:             "1234567",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestStudentDeleteBlockedByActiveLoans(t *testing.T) {
	repo := newMockStudentRepo()
	repo.items["s1"] = &models.Student{ID: "s1", NombreCompleto: "Ana Quispe", CI: "1234567"}
	repo.active["s1"] = 2
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "s1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Empty(t, repo.deleted)
}

func TestStudentDeleteWithoutLoans(t *testing.T) {
	repo := newMockStudentRepo()
	repo.items["s1"] = &models.Student{ID: "s1", NombreCompleto: "Ana Quispe", CI: "1234567"}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "s1"))
	assert.Equal(t, []string{"s1"}, repo.deleted)
}

func TestStudentUpdateDefaultsCarrera(t *testing.T) {
	repo := newMockStudentRepo()
	repo.items["s1"] = &models.Student{ID: "s1", NombreCompleto: "Ana Quispe", CI: "1234567", Carrera: "SISTEMAS"}
	repo.ciIndex["1234567"] = "s1"
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	updated, err := svc.Update(context.Background(), "s1", models.UpdateStudentRequest{
		NombreCompleto: "Ana Quispe Mamani",
		CI:             "1234567",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCarrera, updated.Carrera)
}

func TestStudentGetUnknown(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
