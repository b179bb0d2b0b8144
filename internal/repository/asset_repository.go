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

const assetColumns = `id, tipo, codigo_nuevo, codigo_antiguo, titulo, autor, anio, facultad, estado, observaciones,
        ubicacion_seccion, ubicacion_repisa, materia, editorial, edicion, modalidad, tutor, carrera, fecha_registro, updated_at`

// AssetRepository manages persistence for catalog assets (books and theses).
type AssetRepository struct {
	db *sqlx.DB
}

// NewAssetRepository constructs an AssetRepository.
func NewAssetRepository(db *sqlx.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// List returns assets matching the provided filters.
func (r *AssetRepository) List(ctx context.Context, filter models.AssetFilter) ([]models.Asset, int, error) {
	base := "FROM activos"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Tipo != "" {
		conditions = append(conditions, fmt.Sprintf("tipo = $%d", len(args)+1))
		args = append(args, filter.Tipo)
	}
	if filter.Estado != nil {
		conditions = append(conditions, fmt.Sprintf("estado = $%d", len(args)+1))
		args = append(args, *filter.Estado)
	}
	if filter.Seccion != "" {
		conditions = append(conditions, fmt.Sprintf("ubicacion_seccion = $%d", len(args)+1))
		args = append(args, filter.Seccion)
	}
	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(titulo) LIKE $%d OR LOWER(codigo_nuevo) LIKE $%d OR LOWER(COALESCE(autor, '')) LIKE $%d OR LOWER(COALESCE(materia, '')) LIKE $%d OR LOWER(COALESCE(tutor, '')) LIKE $%d)",
			n, n, n, n, n))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"titulo":         "titulo",
		"codigo_nuevo":   "codigo_nuevo",
		"fecha_registro": "fecha_registro",
		"anio":           "anio",
		"estado":         "estado",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "fecha_registro"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", assetColumns, base, column, order, size, offset)

	var assets []models.Asset
	if err := r.db.SelectContext(ctx, &assets, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assets: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assets: %w", err)
	}
	return assets, total, nil
}

// ListOptions returns the lightweight selector rows for the loan workflow.
func (r *AssetRepository) ListOptions(ctx context.Context) ([]models.AssetOption, error) {
	const query = `SELECT id, tipo, codigo_nuevo, titulo, autor, estado FROM activos ORDER BY codigo_nuevo`
	var options []models.AssetOption
	if err := r.db.SelectContext(ctx, &options, query); err != nil {
		return nil, fmt.Errorf("list asset options: %w", err)
	}
	return options, nil
}

// FindByID fetches one asset by ID.
func (r *AssetRepository) FindByID(ctx context.Context, id string) (*models.Asset, error) {
	query := fmt.Sprintf("SELECT %s FROM activos WHERE id = $1", assetColumns)
	var asset models.Asset
	if err := r.db.GetContext(ctx, &asset, query, id); err != nil {
		return nil, err
	}
	return &asset, nil
}

// ExistsByCode checks catalog code uniqueness, optionally excluding an ID.
func (r *AssetRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM activos WHERE codigo_nuevo = $1"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("check codigo: %w", err)
	}
	return true, nil
}

// Create inserts a new asset record.
func (r *AssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if asset.FechaRegistro.IsZero() {
		asset.FechaRegistro = now
	}
	asset.UpdatedAt = now
	const query = `INSERT INTO activos (id, tipo, codigo_nuevo, codigo_antiguo, titulo, autor, anio, facultad, estado, observaciones,
        ubicacion_seccion, ubicacion_repisa, materia, editorial, edicion, modalidad, tutor, carrera, fecha_registro, updated_at)
        VALUES (:id, :tipo, :codigo_nuevo, :codigo_antiguo, :titulo, :autor, :anio, :facultad, :estado, :observaciones,
        :ubicacion_seccion, :ubicacion_repisa, :materia, :editorial, :edicion, :modalidad, :tutor, :carrera, :fecha_registro, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, asset); err != nil {
		return fmt.Errorf("create asset: %w", err)
	}
	return nil
}

// Update modifies an existing asset.
func (r *AssetRepository) Update(ctx context.Context, asset *models.Asset) error {
	asset.UpdatedAt = time.Now().UTC()
	const query = `UPDATE activos SET codigo_nuevo = :codigo_nuevo, codigo_antiguo = :codigo_antiguo, titulo = :titulo,
        autor = :autor, anio = :anio, facultad = :facultad, estado = :estado, observaciones = :observaciones,
        ubicacion_seccion = :ubicacion_seccion, ubicacion_repisa = :ubicacion_repisa, materia = :materia,
        editorial = :editorial, edicion = :edicion, modalidad = :modalidad, tutor = :tutor, carrera = :carrera,
        updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, asset); err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	return nil
}

// Delete removes an asset. The audit snapshot is recorded by the service
// before deletion so the record remains restorable.
func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM activos WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

// CodesBySection returns every catalog code registered under a section
// prefix, used by the next-code suggestion.
func (r *AssetRepository) CodesBySection(ctx context.Context, seccion string) ([]string, error) {
	const query = `SELECT codigo_nuevo FROM activos WHERE codigo_nuevo LIKE $1 ORDER BY codigo_nuevo`
	var codes []string
	if err := r.db.SelectContext(ctx, &codes, query, seccion+"-%"); err != nil {
		return nil, fmt.Errorf("codes by section: %w", err)
	}
	return codes, nil
}

// Sections returns the distinct shelf sections currently in use.
func (r *AssetRepository) Sections(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT ubicacion_seccion FROM activos WHERE ubicacion_seccion IS NOT NULL AND ubicacion_seccion <> '' ORDER BY ubicacion_seccion`
	var sections []string
	if err := r.db.SelectContext(ctx, &sections, query); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// CountByKind counts assets of one kind.
func (r *AssetRepository) CountByKind(ctx context.Context, kind models.AssetKind) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM activos WHERE tipo = $1", kind); err != nil {
		return 0, fmt.Errorf("count by kind: %w", err)
	}
	return total, nil
}

// CountByCondition aggregates one kind's assets by condition.
func (r *AssetRepository) CountByCondition(ctx context.Context, kind models.AssetKind) ([]models.ConditionCount, error) {
	const query = `SELECT estado, COUNT(*) AS cantidad FROM activos WHERE tipo = $1 GROUP BY estado ORDER BY estado`
	var counts []models.ConditionCount
	if err := r.db.SelectContext(ctx, &counts, query, kind); err != nil {
		return nil, fmt.Errorf("count by condition: %w", err)
	}
	return counts, nil
}

// Recent returns the latest additions of one kind.
func (r *AssetRepository) Recent(ctx context.Context, kind models.AssetKind, limit int) ([]models.AssetSummary, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf("SELECT id, titulo, codigo_nuevo, estado, fecha_registro FROM activos WHERE tipo = $1 ORDER BY fecha_registro DESC LIMIT %d", limit)
	var summaries []models.AssetSummary
	if err := r.db.SelectContext(ctx, &summaries, query, kind); err != nil {
		return nil, fmt.Errorf("recent assets: %w", err)
	}
	return summaries, nil
}
