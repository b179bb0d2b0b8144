package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jcondori/biblioteca-api/internal/models"
	appErrors "github.com/jcondori/biblioteca-api/pkg/errors"
)

type assetRepository interface {
	List(ctx context.Context, filter models.AssetFilter) ([]models.Asset, int, error)
	ListOptions(ctx context.Context) ([]models.AssetOption, error)
	FindByID(ctx context.Context, id string) (*models.Asset, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, asset *models.Asset) error
	Update(ctx context.Context, asset *models.Asset) error
	Delete(ctx context.Context, id string) error
	CodesBySection(ctx context.Context, seccion string) ([]string, error)
	Sections(ctx context.Context) ([]string, error)
}

type historialRecorder interface {
	Record(ctx context.Context, modelo string, accion models.HistorialAction, asset *models.Asset, actor *models.JWTClaims)
}

// dashboardInvalidator drops cached dashboard stats after catalog or loan
// writes, so counts do not stay stale for the full cache TTL.
type dashboardInvalidator interface {
	Invalidate(ctx context.Context)
}

// AssetService implements catalog use cases for books and theses.
type AssetService struct {
	repo      assetRepository
	historial historialRecorder
	dashboard dashboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssetService constructs an AssetService.
func NewAssetService(repo assetRepository, historial historialRecorder, validate *validator.Validate, logger *zap.Logger, dashboard dashboardInvalidator) *AssetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssetService{repo: repo, historial: historial, dashboard: dashboard, validator: validate, logger: logger}
}

// List returns one kind's catalog page.
func (s *AssetService) List(ctx context.Context, filter models.AssetFilter) ([]models.Asset, *models.Pagination, error) {
	assets, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list catalog")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return assets, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Options returns the combined lightweight selector used when building loans.
func (s *AssetService) Options(ctx context.Context) ([]models.AssetOption, error) {
	options, err := s.repo.ListOptions(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list asset options")
	}
	return options, nil
}

// Get fetches one asset and checks it is of the expected kind, so a thesis ID
// cannot be read through the books route.
func (s *AssetService) Get(ctx context.Context, kind models.AssetKind, id string) (*models.Asset, error) {
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "asset not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load asset")
	}
	if asset.Tipo != kind {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "asset not found")
	}
	return asset, nil
}

// Create registers a new book or thesis and records the audit snapshot.
func (s *AssetService) Create(ctx context.Context, kind models.AssetKind, req models.CreateAssetRequest, actor *models.JWTClaims) (*models.Asset, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid asset payload")
	}

	code := strings.TrimSpace(req.CodigoNuevo)
	taken, err := s.repo.ExistsByCode(ctx, code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check catalog code")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("catalog code %s already registered", code))
	}

	asset := s.fromRequest(kind, req)
	asset.CodigoNuevo = code
	if err := s.repo.Create(ctx, asset); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create asset")
	}

	s.historial.Record(ctx, string(kind), models.HistorialCreated, asset, actor)
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
	return asset, nil
}

// Update modifies an existing asset and records the post-change snapshot.
func (s *AssetService) Update(ctx context.Context, kind models.AssetKind, id string, req models.UpdateAssetRequest, actor *models.JWTClaims) (*models.Asset, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid asset payload")
	}

	existing, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.CodigoNuevo)
	taken, err := s.repo.ExistsByCode(ctx, code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check catalog code")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("catalog code %s already registered", code))
	}

	asset := s.fromRequest(kind, req)
	asset.ID = existing.ID
	asset.CodigoNuevo = code
	asset.FechaRegistro = existing.FechaRegistro
	if err := s.repo.Update(ctx, asset); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update asset")
	}

	s.historial.Record(ctx, string(kind), models.HistorialChanged, asset, actor)
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
	return asset, nil
}

// Delete removes an asset. The snapshot is recorded first so the record stays
// restorable from the audit trail.
func (s *AssetService) Delete(ctx context.Context, kind models.AssetKind, id string, actor *models.JWTClaims) error {
	existing, err := s.Get(ctx, kind, id)
	if err != nil {
		return err
	}

	s.historial.Record(ctx, string(kind), models.HistorialDeleted, existing, actor)

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete asset")
	}
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
	return nil
}

// NextCode suggests the next free catalog code for a shelf section, scanning
// the numeric suffixes already in use.
func (s *AssetService) NextCode(ctx context.Context, seccion string) (string, error) {
	seccion = strings.ToUpper(strings.TrimSpace(seccion))
	if seccion == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "seccion is required")
	}

	codes, err := s.repo.CodesBySection(ctx, seccion)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan section codes")
	}

	max := 0
	for _, code := range codes {
		suffix := strings.TrimPrefix(code, seccion+"-")
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%03d", seccion, max+1), nil
}

// Sections lists the shelf sections currently in use.
func (s *AssetService) Sections(ctx context.Context) ([]string, error) {
	sections, err := s.repo.Sections(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, nil
}

func (s *AssetService) fromRequest(kind models.AssetKind, req models.CreateAssetRequest) *models.Asset {
	estado := models.AssetCondition(req.Estado)
	if estado == "" {
		estado = models.ConditionGood
	}
	asset := &models.Asset{
		Tipo:          kind,
		CodigoNuevo:   req.CodigoNuevo,
		CodigoAntiguo: req.CodigoAntiguo,
		Titulo:        strings.TrimSpace(req.Titulo),
		Autor:         req.Autor,
		Anio:          req.Anio,
		Facultad:      req.Facultad,
		Estado:        estado,
		Observaciones: req.Observaciones,
		Seccion:       req.Seccion,
		Repisa:        req.Repisa,
	}
	switch kind {
	case models.AssetKindBook:
		asset.Materia = req.Materia
		asset.Editorial = req.Editorial
		asset.Edicion = req.Edicion
	case models.AssetKindThesis:
		asset.Modalidad = req.Modalidad
		asset.Tutor = req.Tutor
		asset.Carrera = req.Carrera
	}
	return asset
}
