package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jcondori/biblioteca-api/internal/models"
	appErrors "github.com/jcondori/biblioteca-api/pkg/errors"
)

type loanCreator interface {
	Create(ctx context.Context, req models.CreateLoanRequest, actor *models.JWTClaims) (*models.LoanDetail, error)
}

type rosterProvider interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

type sessionAssetRepository interface {
	FindByID(ctx context.Context, id string) (*models.Asset, error)
}

// deskSession is the state of one checkout desk workflow. The borrower
// fields implement the resolver heuristic: matched remembers whether the
// current name was prefilled from a roster match, so a later mismatch clears
// the stale prefill while a hand-typed name for a new borrower survives.
type deskSession struct {
	id        string
	state     models.SessionState
	cart      *Cart
	roster    []models.Student
	ci        string
	nombre    string
	matched   bool
	student   *models.Student
	tipo      models.LoanType
	confirmed bool
	notes     string
	outcome   *models.BatchOutcome
	openedAt  time.Time
}

type sessionStore struct {
	ttl     time.Duration
	mu      sync.Mutex
	items   map[string]*deskSession
	touched map[string]time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:     ttl,
		items:   make(map[string]*deskSession),
		touched: make(map[string]time.Time),
	}
}

func (s *sessionStore) Save(sess *deskSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[sess.id] = sess
	s.touched[sess.id] = time.Now()
}

func (s *sessionStore) Get(id string) (*deskSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[id]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && time.Since(s.touched[id]) > s.ttl {
		delete(s.items, id)
		delete(s.touched, id)
		return nil, false
	}
	s.touched[id] = time.Now()
	return sess, true
}

func (s *sessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	delete(s.touched, id)
	s.mu.Unlock()
}

// CirculationService hosts checkout desk sessions: the selection cart, the
// borrower resolver and the loan submission workflow. Sessions live in
// memory with a TTL and are discarded wholesale on cancel.
type CirculationService struct {
	loans    loanCreator
	students rosterProvider
	assets   sessionAssetRepository
	logger   *zap.Logger
	store    *sessionStore
	mu       sync.Mutex
}

// NewCirculationService constructs a CirculationService.
func NewCirculationService(loans loanCreator, students rosterProvider, assets sessionAssetRepository, logger *zap.Logger, sessionTTL time.Duration) *CirculationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}
	return &CirculationService{
		loans:    loans,
		students: students,
		assets:   assets,
		logger:   logger,
		store:    newSessionStore(sessionTTL),
	}
}

// ConfirmSessionRequest is the submit payload. Confirmado acknowledges that
// the collateral document was collected at the desk.
type ConfirmSessionRequest struct {
	Confirmado    bool   `json:"confirmado"`
	Observaciones string `json:"observaciones,omitempty"`
}

// Open starts a new session in the collecting state. The borrower roster is
// loaded once so resolver lookups stay local to the session.
func (s *CirculationService) Open(ctx context.Context) (*models.SessionView, error) {
	roster, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student roster")
	}

	sess := &deskSession{
		id:       uuid.NewString(),
		state:    models.SessionCollecting,
		cart:     NewCart(),
		roster:   roster,
		tipo:     models.LoanTypeSala,
		openedAt: time.Now().UTC(),
	}
	s.store.Save(sess)
	return s.view(sess), nil
}

// Get returns the current session state.
func (s *CirculationService) Get(id string) (*models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// ToggleItem adds or removes one catalog item from the session cart. Adding
// a grade work forces the loan type back to in-library.
func (s *CirculationService) ToggleItem(ctx context.Context, id, assetID string) (*models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	if sess.state != models.SessionCollecting {
		return nil, appErrors.Clone(appErrors.ErrSessionState, "session is no longer collecting")
	}

	asset, err := s.assets.FindByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "asset not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load asset")
	}

	sess.cart.Toggle(models.AssetOption{
		ID:          asset.ID,
		Tipo:        asset.Tipo,
		CodigoNuevo: asset.CodigoNuevo,
		Titulo:      asset.Titulo,
		Autor:       asset.Autor,
		Estado:      asset.Estado,
	})
	if sess.cart.HasThesis() {
		sess.tipo = models.LoanTypeSala
	}
	s.store.Save(sess)
	return s.view(sess), nil
}

// SetStudent applies edits to the borrower fields and runs the resolver. A
// CI that matches the roster prefills the name; a CI that stops matching
// clears the name only if it had been prefilled by a previous match.
func (s *CirculationService) SetStudent(id, ci, nombre string) (*models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	if sess.state != models.SessionCollecting {
		return nil, appErrors.Clone(appErrors.ErrSessionState, "session is no longer collecting")
	}

	sess.ci = ci
	if match := ResolveStudent(sess.roster, ci); match != nil {
		sess.student = match
		sess.nombre = match.NombreCompleto
		sess.matched = true
	} else {
		sess.student = nil
		if sess.matched {
			sess.nombre = ""
		} else {
			sess.nombre = nombre
		}
		sess.matched = false
	}
	s.store.Save(sess)
	return s.view(sess), nil
}

// SetType sets the loan type. DOMICILIO is rejected while a grade work is in
// the cart; the loan registry re-checks the rule per item regardless.
func (s *CirculationService) SetType(id string, tipo models.LoanType) (*models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	if sess.state != models.SessionCollecting {
		return nil, appErrors.Clone(appErrors.ErrSessionState, "session is no longer collecting")
	}
	if !tipo.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown loan type")
	}
	if tipo == models.LoanTypeDomicilio && sess.cart.HasThesis() {
		return nil, appErrors.Clone(appErrors.ErrLoanTypeNotAllowed, "grade works can only be lent in-library")
	}

	sess.tipo = tipo
	s.store.Save(sess)
	return s.view(sess), nil
}

// Confirm validates the session guards and submits one loan request per cart
// item. Every item is attempted exactly once; failures do not abort the
// batch. The session always settles, with the cart emptied and the aggregate
// outcome attached. There is no transition back to collecting.
func (s *CirculationService) Confirm(ctx context.Context, id string, req ConfirmSessionRequest, actor *models.JWTClaims) (*models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	if sess.state != models.SessionCollecting {
		return nil, appErrors.Clone(appErrors.ErrSessionState, "session is no longer collecting")
	}

	switch {
	case strings.TrimSpace(sess.ci) == "":
		return nil, appErrors.Clone(appErrors.ErrValidation, "borrower ci is required")
	case strings.TrimSpace(sess.nombre) == "":
		return nil, appErrors.Clone(appErrors.ErrValidation, "borrower name is required")
	case sess.cart.Len() == 0:
		return nil, appErrors.Clone(appErrors.ErrValidation, "cart is empty")
	case !req.Confirmado:
		return nil, appErrors.Clone(appErrors.ErrValidation, "collateral confirmation is required")
	}

	sess.state = models.SessionSubmitting
	sess.confirmed = true
	sess.notes = req.Observaciones

	ref := models.InlineStudent(sess.nombre, sess.ci)
	if sess.matched && sess.student != nil {
		ref = models.ExistingStudent(sess.student.ID)
	}

	var notes *string
	if strings.TrimSpace(req.Observaciones) != "" {
		trimmed := strings.TrimSpace(req.Observaciones)
		notes = &trimmed
	}

	items := sess.cart.Items()
	outcome := &models.BatchOutcome{Total: len(items), Items: make([]models.ItemOutcome, 0, len(items))}
	for _, item := range items {
		result := models.ItemOutcome{ActivoID: item.ID, Codigo: item.CodigoNuevo, Titulo: item.Titulo}

		detail, err := s.loans.Create(ctx, models.CreateLoanRequest{
			ActivoID:      item.ID,
			Tipo:          sess.tipo,
			Estudiante:    ref,
			Observaciones: notes,
		}, actor)
		if err != nil {
			appErr := appErrors.FromError(err)
			result.ErrorCode = appErr.Code
			result.ErrorMessage = appErr.Message
			outcome.Failed++
		} else {
			result.OK = true
			result.LoanID = &detail.ID
			outcome.Succeeded++
		}
		outcome.Items = append(outcome.Items, result)
	}

	sess.state = models.SessionSettled
	sess.outcome = outcome
	sess.cart.Clear()
	s.store.Save(sess)

	s.logger.Info("desk session settled",
		zap.String("session_id", sess.id),
		zap.Int("succeeded", outcome.Succeeded),
		zap.Int("failed", outcome.Failed))
	return s.view(sess), nil
}

// Cancel discards a session. Before confirmation this is side effect free;
// after settlement it simply drops the outcome record.
func (s *CirculationService) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.session(id); err != nil {
		return err
	}
	s.store.Delete(id)
	return nil
}

func (s *CirculationService) session(id string) (*deskSession, error) {
	sess, ok := s.store.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found or expired")
	}
	return sess, nil
}

func (s *CirculationService) view(sess *deskSession) *models.SessionView {
	return &models.SessionView{
		ID:         sess.id,
		State:      sess.state,
		Items:      sess.cart.Items(),
		CI:         sess.ci,
		Nombre:     sess.nombre,
		Matched:    sess.matched,
		Tipo:       sess.tipo,
		Collateral: sess.tipo.Collateral(),
		Confirmed:  sess.confirmed,
		Notes:      sess.notes,
		Outcome:    sess.outcome,
		OpenedAt:   sess.openedAt,
	}
}
