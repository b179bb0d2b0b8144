package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcondori/biblioteca-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var loanDetailTestColumns = []string{
	"id", "estudiante_id", "activo_id", "tipo", "estado", "observaciones", "usuario_prestamo",
	"fecha_prestamo", "fecha_devolucion_estimada", "fecha_devolucion_real",
	"activo_titulo", "activo_codigo", "activo_tipo",
	"estudiante_nombre", "estudiante_ci", "estudiante_carnet", "estudiante_carrera", "usuario_nombre",
}

func loanDetailRow(rows *sqlmock.Rows, id, assetID, estado, borrower string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, "s1", assetID, "SALA", estado, nil, nil,
		now, now, nil,
		"Algoritmos", "INF-001", "LIBRO",
		borrower, "1234567", nil, "SISTEMAS", nil)
}

func TestLoanRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	rows := loanDetailRow(sqlmock.NewRows(loanDetailTestColumns), "l1", "a1", "VIGENTE", "Ana Quispe")
	mock.ExpectQuery(`SELECT (.+) FROM prestamos p(.+)WHERE 1=1 AND p\.estado = \$1 ORDER BY p\.fecha_prestamo DESC LIMIT 20 OFFSET 0`).
		WithArgs("VIGENTE").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM prestamos p`).
		WithArgs("VIGENTE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	estado := models.LoanStatusActive
	loans, total, err := repo.List(context.Background(), models.LoanFilter{Estado: &estado})
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Ana Quispe", loans[0].EstudianteNombre)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepositoryListNormalizesOversizedPage(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	// Interactive listing falls back to the default page size above 100.
	mock.ExpectQuery(`SELECT (.+) FROM prestamos p(.+)WHERE 1=1 ORDER BY p\.fecha_prestamo DESC LIMIT 20 OFFSET 0`).
		WillReturnRows(sqlmock.NewRows(loanDetailTestColumns))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM prestamos p`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.LoanFilter{Page: 1, PageSize: 5000})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepositoryListAllKeepsLargeLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	rows := loanDetailRow(sqlmock.NewRows(loanDetailTestColumns), "l1", "a1", "DEVUELTO", "Ana Quispe")
	rows = loanDetailRow(rows, "l2", "a2", "VIGENTE", "Luis Mamani")
	mock.ExpectQuery(`SELECT (.+) FROM prestamos p(.+)WHERE 1=1 AND p\.estado = \$1 ORDER BY p\.fecha_prestamo DESC LIMIT 5000$`).
		WithArgs("VIGENTE").
		WillReturnRows(rows)

	estado := models.LoanStatusActive
	loans, err := repo.ListAll(context.Background(), models.LoanFilter{Estado: &estado}, 5000)
	require.NoError(t, err)
	assert.Len(t, loans, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepositoryFindActiveByAsset(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	rows := loanDetailRow(sqlmock.NewRows(loanDetailTestColumns), "l1", "a1", "VIGENTE", "Luis Mamani")
	mock.ExpectQuery(`SELECT (.+) FROM prestamos p(.+)WHERE p\.activo_id = \$1 AND p\.estado = 'VIGENTE'`).
		WithArgs("a1").
		WillReturnRows(rows)

	loan, err := repo.FindActiveByAsset(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Luis Mamani", loan.EstudianteNombre)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepositoryFindActiveByAssetNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM prestamos p`).
		WithArgs("a1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActiveByAsset(context.Background(), "a1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestLoanRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	mock.ExpectExec("INSERT INTO prestamos").
		WithArgs(sqlmock.AnyArg(), "s1", "a1", "SALA", "VIGENTE", nil, nil,
			sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	loan := &models.Loan{EstudianteID: "s1", ActivoID: "a1", Tipo: models.LoanTypeSala}
	require.NoError(t, repo.Create(context.Background(), loan))
	assert.NotEmpty(t, loan.ID)
	assert.Equal(t, models.LoanStatusActive, loan.Estado)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepositoryMarkReturned(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)
	at := time.Now()

	mock.ExpectExec(`UPDATE prestamos SET estado = 'DEVUELTO', fecha_devolucion_real = \$2`).
		WithArgs("l1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.MarkReturned(context.Background(), "l1", at)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanRepositoryMarkReturnedAlreadyDone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)
	at := time.Now()

	// The estado guard matches nothing when the loan was already returned.
	mock.ExpectExec(`UPDATE prestamos SET estado = 'DEVUELTO'`).
		WithArgs("l1", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkReturned(context.Background(), "l1", at)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoanRepositoryActiveAssetIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT activo_id FROM prestamos WHERE estado = 'VIGENTE'")).
		WillReturnRows(sqlmock.NewRows([]string{"activo_id"}).AddRow("a1").AddRow("a2"))

	ids, err := repo.ActiveAssetIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, ids)
}

func TestLoanRepositoryCountActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLoanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM prestamos WHERE estado = 'VIGENTE'")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
