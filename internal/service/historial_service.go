package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/jcondori/biblioteca-api/internal/models"
	appErrors "github.com/jcondori/biblioteca-api/pkg/errors"
)

var snapshotJSON = jsoniter.ConfigCompatibleWithStandardLibrary

type historialRepository interface {
	Insert(ctx context.Context, entry *models.HistorialEntry) error
	List(ctx context.Context, filter models.HistorialFilter) ([]models.HistorialEntry, int, error)
	FindByID(ctx context.Context, id int64) (*models.HistorialEntry, error)
}

type restoreAssetRepository interface {
	FindByID(ctx context.Context, id string) (*models.Asset, error)
	Create(ctx context.Context, asset *models.Asset) error
	Update(ctx context.Context, asset *models.Asset) error
}

// HistorialService keeps the catalog audit trail and restores snapshots.
type HistorialService struct {
	repo      historialRepository
	assets    restoreAssetRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHistorialService constructs a HistorialService.
func NewHistorialService(repo historialRepository, assets restoreAssetRepository, validate *validator.Validate, logger *zap.Logger) *HistorialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &HistorialService{repo: repo, assets: assets, validator: validate, logger: logger}
}

// Record appends one audit entry with a full snapshot of the asset. Audit
// failures are logged, never propagated: a catalog write must not fail
// because its history row could not be written.
func (s *HistorialService) Record(ctx context.Context, modelo string, accion models.HistorialAction, asset *models.Asset, actor *models.JWTClaims) {
	snapshot, err := snapshotJSON.Marshal(asset)
	if err != nil {
		s.logger.Error("failed to marshal audit snapshot", zap.Error(err), zap.String("asset_id", asset.ID))
		return
	}

	entry := &models.HistorialEntry{
		Modelo:   strings.ToUpper(modelo),
		ObjetoID: asset.ID,
		Accion:   accion,
		Snapshot: snapshot,
		Titulo:   asset.Titulo,
		Codigo:   asset.CodigoNuevo,
	}
	if actor != nil {
		entry.UserID = &actor.UserID
		entry.Username = &actor.Username
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.Error("failed to record audit entry", zap.Error(err), zap.String("asset_id", asset.ID))
	}
}

// List returns audit entries matching the filter.
func (s *HistorialService) List(ctx context.Context, filter models.HistorialFilter) ([]models.HistorialEntry, *models.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list historial")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return entries, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Restore re-applies the snapshot stored in one audit entry. Deleted assets
// are recreated under their original ID; existing ones are overwritten.
func (s *HistorialService) Restore(ctx context.Context, modelo string, historyID int64, actor *models.JWTClaims) (*models.Asset, error) {
	modelo = strings.ToUpper(strings.TrimSpace(modelo))
	if modelo != string(models.AssetKindBook) && modelo != string(models.AssetKindThesis) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown model: "+modelo)
	}

	entry, err := s.repo.FindByID(ctx, historyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "history entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load history entry")
	}
	if entry.Modelo != modelo {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "history entry not found")
	}

	var asset models.Asset
	if err := snapshotJSON.Unmarshal(entry.Snapshot, &asset); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode snapshot")
	}

	_, err = s.assets.FindByID(ctx, asset.ID)
	switch {
	case err == nil:
		if err := s.assets.Update(ctx, &asset); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore asset")
		}
		s.Record(ctx, modelo, models.HistorialChanged, &asset, actor)
	case errors.Is(err, sql.ErrNoRows):
		if err := s.assets.Create(ctx, &asset); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to recreate asset")
		}
		s.Record(ctx, modelo, models.HistorialCreated, &asset, actor)
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load asset")
	}

	return &asset, nil
}
