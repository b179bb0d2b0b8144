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

const loanDetailColumns = `p.id, p.estudiante_id, p.activo_id, p.tipo, p.estado, p.observaciones, p.usuario_prestamo,
    p.fecha_prestamo, p.fecha_devolucion_estimada, p.fecha_devolucion_real,
    a.titulo AS activo_titulo, a.codigo_nuevo AS activo_codigo, a.tipo AS activo_tipo,
    e.nombre_completo AS estudiante_nombre, e.ci AS estudiante_ci, e.carnet_universitario AS estudiante_carnet,
    e.carrera AS estudiante_carrera, u.full_name AS usuario_nombre`

const loanDetailJoins = `FROM prestamos p
    JOIN activos a ON a.id = p.activo_id
    JOIN estudiantes e ON e.id = p.estudiante_id
    LEFT JOIN usuarios u ON u.id = p.usuario_prestamo`

// LoanRepository manages the loan register.
type LoanRepository struct {
	db *sqlx.DB
}

// NewLoanRepository constructs a LoanRepository.
func NewLoanRepository(db *sqlx.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

func loanFilterWhere(filter models.LoanFilter) (string, []interface{}) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Estado != nil {
		conditions = append(conditions, fmt.Sprintf("p.estado = $%d", len(args)+1))
		args = append(args, *filter.Estado)
	}
	if filter.Tipo != nil {
		conditions = append(conditions, fmt.Sprintf("p.tipo = $%d", len(args)+1))
		args = append(args, *filter.Tipo)
	}
	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(e.nombre_completo) LIKE $%d OR LOWER(e.ci) LIKE $%d OR LOWER(a.titulo) LIKE $%d OR LOWER(a.codigo_nuevo) LIKE $%d)", n, n, n, n))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	return strings.Join(conditions, " AND "), args
}

// List returns the joined loan register matching the filter.
func (r *LoanRepository) List(ctx context.Context, filter models.LoanFilter) ([]models.LoanDetail, int, error) {
	where, args := loanFilterWhere(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY p.fecha_prestamo DESC LIMIT %d OFFSET %d",
		loanDetailColumns, loanDetailJoins, where, size, offset)

	var loans []models.LoanDetail
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list loans: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", loanDetailJoins, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count loans: %w", err)
	}
	return loans, total, nil
}

// ListAll returns up to limit matching loans in register order, without the
// page-size normalization List applies. The report export reads through this
// so it is not capped at one page.
func (r *LoanRepository) ListAll(ctx context.Context, filter models.LoanFilter, limit int) ([]models.LoanDetail, error) {
	if limit <= 0 {
		limit = 5000
	}
	where, args := loanFilterWhere(filter)

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY p.fecha_prestamo DESC LIMIT %d",
		loanDetailColumns, loanDetailJoins, where, limit)

	var loans []models.LoanDetail
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, fmt.Errorf("list all loans: %w", err)
	}
	return loans, nil
}

// FindByID fetches a bare loan row.
func (r *LoanRepository) FindByID(ctx context.Context, id string) (*models.Loan, error) {
	const query = `SELECT id, estudiante_id, activo_id, tipo, estado, observaciones, usuario_prestamo,
        fecha_prestamo, fecha_devolucion_estimada, fecha_devolucion_real FROM prestamos WHERE id = $1`
	var loan models.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}
	return &loan, nil
}

// FindDetailByID fetches a loan with borrower and asset display fields.
func (r *LoanRepository) FindDetailByID(ctx context.Context, id string) (*models.LoanDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE p.id = $1", loanDetailColumns, loanDetailJoins)
	var loan models.LoanDetail
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}
	return &loan, nil
}

// FindActiveByAsset returns the VIGENTE loan holding an asset, if any. The
// joined detail is needed so conflicts can name the current borrower.
func (r *LoanRepository) FindActiveByAsset(ctx context.Context, assetID string) (*models.LoanDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE p.activo_id = $1 AND p.estado = 'VIGENTE'", loanDetailColumns, loanDetailJoins)
	var loan models.LoanDetail
	if err := r.db.GetContext(ctx, &loan, query, assetID); err != nil {
		return nil, err
	}
	return &loan, nil
}

// Create inserts a new loan row.
func (r *LoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	if loan.ID == "" {
		loan.ID = uuid.NewString()
	}
	if loan.Estado == "" {
		loan.Estado = models.LoanStatusActive
	}
	const query = `INSERT INTO prestamos (id, estudiante_id, activo_id, tipo, estado, observaciones, usuario_prestamo,
        fecha_prestamo, fecha_devolucion_estimada, fecha_devolucion_real)
        VALUES (:id, :estudiante_id, :activo_id, :tipo, :estado, :observaciones, :usuario_prestamo,
        :fecha_prestamo, :fecha_devolucion_estimada, :fecha_devolucion_real)`
	if _, err := r.db.NamedExecContext(ctx, query, loan); err != nil {
		return fmt.Errorf("create loan: %w", err)
	}
	return nil
}

// MarkReturned flips a VIGENTE loan to DEVUELTO and stamps the real return
// time. The estado guard in the WHERE clause makes the transition a no-op for
// already returned loans; callers distinguish that via the affected count.
func (r *LoanRepository) MarkReturned(ctx context.Context, id string, returnedAt time.Time) (bool, error) {
	const query = `UPDATE prestamos SET estado = 'DEVUELTO', fecha_devolucion_real = $2
        WHERE id = $1 AND estado = 'VIGENTE'`
	result, err := r.db.ExecContext(ctx, query, id, returnedAt)
	if err != nil {
		return false, fmt.Errorf("mark returned: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark returned: %w", err)
	}
	return affected == 1, nil
}

// ActiveAssetIDs lists the IDs of assets currently out on a VIGENTE loan.
func (r *LoanRepository) ActiveAssetIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, "SELECT activo_id FROM prestamos WHERE estado = 'VIGENTE'"); err != nil {
		return nil, fmt.Errorf("active asset ids: %w", err)
	}
	return ids, nil
}

// CountActive counts VIGENTE loans, for the dashboard.
func (r *LoanRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM prestamos WHERE estado = 'VIGENTE'"); err != nil {
		return 0, fmt.Errorf("count active loans: %w", err)
	}
	return count, nil
}
