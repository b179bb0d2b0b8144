package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcondori/biblioteca-api/internal/models"
)

var assetTestColumns = []string{
	"id", "tipo", "codigo_nuevo", "codigo_antiguo", "titulo", "autor", "anio", "facultad", "estado", "observaciones",
	"ubicacion_seccion", "ubicacion_repisa", "materia", "editorial", "edicion", "modalidad", "tutor", "carrera",
	"fecha_registro", "updated_at",
}

func assetRow(rows *sqlmock.Rows, id, code, title string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, "LIBRO", code, nil, title, nil, nil, nil, "BUENO", nil,
		nil, nil, nil, nil, nil, nil, nil, nil, now, now)
}

func TestAssetRepositoryListWithSearch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssetRepository(db)

	rows := assetRow(sqlmock.NewRows(assetTestColumns), "a1", "INF-001", "Algoritmos")
	mock.ExpectQuery(`SELECT (.+) FROM activos WHERE 1=1 AND tipo = \$1 AND \(LOWER\(titulo\) LIKE \$2`).
		WithArgs("LIBRO", "%algo%").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM activos WHERE 1=1 AND tipo = \$1`).
		WithArgs("LIBRO", "%algo%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	assets, total, err := repo.List(context.Background(), models.AssetFilter{Tipo: models.AssetKindBook, Search: "Algo"})
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Algoritmos", assets[0].Titulo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepositoryExistsByCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssetRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM activos WHERE codigo_nuevo = $1 LIMIT 1")).
		WithArgs("INF-001").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByCode(context.Background(), "INF-001", "")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAssetRepositoryExistsByCodeNoMatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssetRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM activos WHERE codigo_nuevo = $1 AND id <> $2 LIMIT 1")).
		WithArgs("INF-001", "a1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err := repo.ExistsByCode(context.Background(), "INF-001", "a1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAssetRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssetRepository(db)

	mock.ExpectExec("INSERT INTO activos").
		WillReturnResult(sqlmock.NewResult(1, 1))

	asset := &models.Asset{Tipo: models.AssetKindBook, CodigoNuevo: "INF-001", Titulo: "Algoritmos", Estado: models.ConditionGood}
	require.NoError(t, repo.Create(context.Background(), asset))
	assert.NotEmpty(t, asset.ID)
	assert.False(t, asset.FechaRegistro.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepositoryCodesBySection(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssetRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT codigo_nuevo FROM activos WHERE codigo_nuevo LIKE $1 ORDER BY codigo_nuevo")).
		WithArgs("INF-%").
		WillReturnRows(sqlmock.NewRows([]string{"codigo_nuevo"}).AddRow("INF-001").AddRow("INF-002"))

	codes, err := repo.CodesBySection(context.Background(), "INF")
	require.NoError(t, err)
	assert.Equal(t, []string{"INF-001", "INF-002"}, codes)
}

func TestAssetRepositoryCountByCondition(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssetRepository(db)

	mock.ExpectQuery(`SELECT estado, COUNT\(\*\) AS cantidad FROM activos WHERE tipo = \$1 GROUP BY estado`).
		WithArgs("LIBRO").
		WillReturnRows(sqlmock.NewRows([]string{"estado", "cantidad"}).AddRow("BUENO", 10).AddRow("MALO", 2))

	counts, err := repo.CountByCondition(context.Background(), models.AssetKindBook)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "BUENO", counts[0].Estado)
	assert.Equal(t, 10, counts[0].Cantidad)
}
