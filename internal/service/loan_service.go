package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jcondori/biblioteca-api/internal/models"
	appErrors "github.com/jcondori/biblioteca-api/pkg/errors"
)

type loanRepository interface {
	List(ctx context.Context, filter models.LoanFilter) ([]models.LoanDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Loan, error)
	FindDetailByID(ctx context.Context, id string) (*models.LoanDetail, error)
	FindActiveByAsset(ctx context.Context, assetID string) (*models.LoanDetail, error)
	Create(ctx context.Context, loan *models.Loan) error
	MarkReturned(ctx context.Context, id string, returnedAt time.Time) (bool, error)
	ActiveAssetIDs(ctx context.Context) ([]string, error)
}

type loanStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByCI(ctx context.Context, ci string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
}

type loanAssetRepository interface {
	FindByID(ctx context.Context, id string) (*models.Asset, error)
}

// LoanService is the loan registry: it owns availability enforcement, due
// date computation and the single irreversible return transition.
type LoanService struct {
	loans        loanRepository
	students     loanStudentRepository
	assets       loanAssetRepository
	dashboard    dashboardInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
	takeHomeDays int
	now          func() time.Time
}

// NewLoanService constructs a LoanService.
func NewLoanService(loans loanRepository, students loanStudentRepository, assets loanAssetRepository, validate *validator.Validate, logger *zap.Logger, takeHomeDays int, dashboard dashboardInvalidator) *LoanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if takeHomeDays <= 0 {
		takeHomeDays = 2
	}
	return &LoanService{
		loans:        loans,
		students:     students,
		assets:       assets,
		dashboard:    dashboard,
		validator:    validate,
		logger:       logger,
		takeHomeDays: takeHomeDays,
		now:          time.Now,
	}
}

// List returns the loan register page matching the filter.
func (s *LoanService) List(ctx context.Context, filter models.LoanFilter) ([]models.LoanDetail, *models.Pagination, error) {
	loans, total, err := s.loans.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list loans")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return loans, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create registers one loan. It resolves the borrower reference, enforces the
// thesis in-library rule and the one-active-loan-per-asset invariant, and
// computes the due timestamp.
func (s *LoanService) Create(ctx context.Context, req models.CreateLoanRequest, actor *models.JWTClaims) (*models.LoanDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid loan payload")
	}

	asset, err := s.assets.FindByID(ctx, req.ActivoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "asset not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load asset")
	}

	if asset.Tipo == models.AssetKindThesis && req.Tipo == models.LoanTypeDomicilio {
		return nil, appErrors.Clone(appErrors.ErrLoanTypeNotAllowed, fmt.Sprintf("thesis %s can only be lent in-library", asset.CodigoNuevo))
	}

	student, err := s.resolveStudent(ctx, req.Estudiante)
	if err != nil {
		return nil, err
	}

	active, err := s.loans.FindActiveByAsset(ctx, req.ActivoID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check availability")
	}
	if active != nil {
		return nil, appErrors.Clone(appErrors.ErrItemOnLoan, fmt.Sprintf("%s is on loan to %s", asset.CodigoNuevo, active.EstudianteNombre))
	}

	now := s.now()
	loan := &models.Loan{
		EstudianteID:  student.ID,
		ActivoID:      asset.ID,
		Tipo:          req.Tipo,
		Estado:        models.LoanStatusActive,
		Observaciones: req.Observaciones,
		FechaPrestamo: now,
		FechaLimite:   s.dueDate(req.Tipo, now),
	}
	if actor != nil {
		loan.UsuarioPrestamo = &actor.UserID
	}

	if err := s.loans.Create(ctx, loan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create loan")
	}

	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}

	detail, err := s.loans.FindDetailByID(ctx, loan.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load created loan")
	}
	return detail, nil
}

// Return marks a loan as returned. The transition is guarded twice: the
// status check here yields ALREADY_RETURNED, and the conditional update in
// the store keeps a concurrent double return from overwriting the timestamp.
func (s *LoanService) Return(ctx context.Context, id string) (*models.LoanDetail, error) {
	loan, err := s.loans.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "loan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load loan")
	}

	if loan.Estado == models.LoanStatusReturned {
		return nil, appErrors.Clone(appErrors.ErrAlreadyReturned, "loan was already returned")
	}

	ok, err := s.loans.MarkReturned(ctx, id, s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark loan returned")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrAlreadyReturned, "loan was already returned")
	}

	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}

	detail, err := s.loans.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load returned loan")
	}
	return detail, nil
}

// ActiveAssetIDs lists the assets currently on loan, for the public
// availability endpoint.
func (s *LoanService) ActiveAssetIDs(ctx context.Context) ([]string, error) {
	ids, err := s.loans.ActiveAssetIDs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active loans")
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// resolveStudent materializes a StudentRef. Inline references reuse an
// existing record when the trimmed CI already matches one, so a batch that
// registers a new borrower creates the record exactly once.
func (s *LoanService) resolveStudent(ctx context.Context, ref models.StudentRef) (*models.Student, error) {
	switch ref.Kind {
	case models.StudentRefExisting:
		if ref.ID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
		}
		student, err := s.students.FindByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		return student, nil

	case models.StudentRefNewInline:
		ci := strings.TrimSpace(ref.CI)
		nombre := strings.TrimSpace(ref.NombreCompleto)
		if ci == "" || nombre == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "inline student requires name and ci")
		}

		existing, err := s.students.FindByCI(ctx, ci)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up student by ci")
		}

		student := &models.Student{NombreCompleto: nombre, CI: ci, Carrera: models.DefaultCarrera}
		if err := s.students.Create(ctx, student); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register student")
		}
		s.logger.Info("registered borrower inline", zap.String("student_id", student.ID))
		return student, nil

	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown student reference kind")
	}
}

func (s *LoanService) dueDate(tipo models.LoanType, from time.Time) time.Time {
	day := from
	if tipo == models.LoanTypeDomicilio {
		day = from.AddDate(0, 0, s.takeHomeDays)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, day.Location())
}
