package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jcondori/biblioteca-api/internal/models"
)

// StudentRepository manages persistence for borrower records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters, with their active loan
// count attached.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	base := "FROM estudiantes e"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Carrera != "" {
		conditions = append(conditions, fmt.Sprintf("e.carrera = $%d", len(args)+1))
		args = append(args, filter.Carrera)
	}
	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(e.nombre_completo) LIKE $%d OR LOWER(e.ci) LIKE $%d OR LOWER(COALESCE(e.carnet_universitario, '')) LIKE $%d)", n, n, n))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"nombre_completo": "e.nombre_completo",
		"ci":              "e.ci",
		"created_at":      "e.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "e.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT e.id, e.nombre_completo, e.ci, e.carnet_universitario, e.carrera, e.email, e.telefono, e.created_at, e.updated_at,
        (SELECT COUNT(*) FROM prestamos p WHERE p.estudiante_id = e.id AND p.estado = 'VIGENTE') AS prestamos_activos
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListAll returns the full borrower roster, used to seed the desk session
// resolver when the workflow opens.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT id, nombre_completo, ci, carnet_universitario, carrera, email, telefono, created_at, updated_at
        FROM estudiantes ORDER BY nombre_completo`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list all students: %w", err)
	}
	return students, nil
}

// FindByID fetches one student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, nombre_completo, ci, carnet_universitario, carrera, email, telefono, created_at, updated_at
        FROM estudiantes WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByCI fetches a student by exact CI. Callers trim the input first.
func (r *StudentRepository) FindByCI(ctx context.Context, ci string) (*models.Student, error) {
	const query = `SELECT id, nombre_completo, ci, carnet_universitario, carrera, email, telefono, created_at, updated_at
        FROM estudiantes WHERE ci = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, ci); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByCI checks CI uniqueness, optionally excluding an ID.
func (r *StudentRepository) ExistsByCI(ctx context.Context, ci string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM estudiantes WHERE ci = $1"
	args := []interface{}{ci}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("check ci: %w", err)
	}
	return true, nil
}

// ActiveLoanCount counts VIGENTE loans held by a student.
func (r *StudentRepository) ActiveLoanCount(ctx context.Context, id string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM prestamos WHERE estudiante_id = $1 AND estado = 'VIGENTE'", id); err != nil {
		return 0, fmt.Errorf("active loan count: %w", err)
	}
	return count, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.Carrera == "" {
		student.Carrera = models.DefaultCarrera
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO estudiantes (id, nombre_completo, ci, carnet_universitario, carrera, email, telefono, created_at, updated_at)
        VALUES (:id, :nombre_completo, :ci, :carnet_universitario, :carrera, :email, :telefono, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE estudiantes SET nombre_completo = :nombre_completo, ci = :ci, carnet_universitario = :carnet_universitario,
        carrera = :carrera, email = :email, telefono = :telefono, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student record.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM estudiantes WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
