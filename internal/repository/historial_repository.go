package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"github.com/jcondori/biblioteca-api/internal/models"
)

// HistorialRepository persists the catalog audit trail. Listing filters are
// open-ended (model, action, free text, date range), so the queries are built
// dynamically with goqu instead of hand-numbered placeholders.
type HistorialRepository struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
}

// NewHistorialRepository constructs a HistorialRepository.
func NewHistorialRepository(db *sqlx.DB) *HistorialRepository {
	return &HistorialRepository{db: db, dialect: goqu.Dialect("postgres")}
}

// Insert appends one audit entry.
func (r *HistorialRepository) Insert(ctx context.Context, entry *models.HistorialEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	query, args, err := r.dialect.Insert("historial").
		Cols("modelo", "objeto_id", "accion", "snapshot", "titulo", "codigo", "user_id", "username", "created_at").
		Vals(goqu.Vals{entry.Modelo, entry.ObjetoID, entry.Accion, []byte(entry.Snapshot), entry.Titulo, entry.Codigo, entry.UserID, entry.Username, entry.CreatedAt}).
		Returning("id").
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build historial insert: %w", err)
	}
	if err := r.db.GetContext(ctx, &entry.ID, query, args...); err != nil {
		return fmt.Errorf("insert historial: %w", err)
	}
	return nil
}

func (r *HistorialRepository) filtered(filter models.HistorialFilter) *goqu.SelectDataset {
	ds := r.dialect.From("historial")
	if filter.Modelo != "" {
		ds = ds.Where(goqu.C("modelo").Eq(filter.Modelo))
	}
	if filter.Accion != "" {
		ds = ds.Where(goqu.C("accion").Eq(string(filter.Accion)))
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		ds = ds.Where(goqu.Or(
			goqu.L("LOWER(titulo)").Like(pattern),
			goqu.L("LOWER(codigo)").Like(pattern),
			goqu.L("LOWER(COALESCE(username, ''))").Like(pattern),
		))
	}
	if filter.From != nil {
		ds = ds.Where(goqu.C("created_at").Gte(*filter.From))
	}
	if filter.To != nil {
		ds = ds.Where(goqu.C("created_at").Lt(*filter.To))
	}
	return ds
}

// List returns audit entries matching the filter, newest first.
func (r *HistorialRepository) List(ctx context.Context, filter models.HistorialFilter) ([]models.HistorialEntry, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	query, args, err := r.filtered(filter).
		Select("id", "modelo", "objeto_id", "accion", "snapshot", "titulo", "codigo", "user_id", "username", "created_at").
		Order(goqu.C("created_at").Desc()).
		Limit(uint(size)).
		Offset(uint((page - 1) * size)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build historial list: %w", err)
	}

	var entries []models.HistorialEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list historial: %w", err)
	}

	countQuery, countArgs, err := r.filtered(filter).Select(goqu.COUNT("*")).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build historial count: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count historial: %w", err)
	}
	return entries, total, nil
}

// FindByID fetches one audit entry.
func (r *HistorialRepository) FindByID(ctx context.Context, id int64) (*models.HistorialEntry, error) {
	query, args, err := r.dialect.From("historial").
		Select("id", "modelo", "objeto_id", "accion", "snapshot", "titulo", "codigo", "user_id", "username", "created_at").
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build historial find: %w", err)
	}
	var entry models.HistorialEntry
	if err := r.db.GetContext(ctx, &entry, query, args...); err != nil {
		return nil, err
	}
	return &entry, nil
}
