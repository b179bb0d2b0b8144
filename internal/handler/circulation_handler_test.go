package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jcondori/biblioteca-api/internal/models"
	"github.com/jcondori/biblioteca-api/internal/service"
	appErrors "github.com/jcondori/biblioteca-api/pkg/errors"
)

type sessionEnvelope struct {
	Data  *models.SessionView `json:"data"`
	Error *appErrors.Error    `json:"error"`
}

type fakeLoanCreator struct {
	requests []models.CreateLoanRequest
	failWith *appErrors.Error
}

func (f *fakeLoanCreator) Create(ctx context.Context, req models.CreateLoanRequest, actor *models.JWTClaims) (*models.LoanDetail, error) {
	f.requests = append(f.requests, req)
	if f.failWith != nil {
		return nil, f.failWith
	}
	return &models.LoanDetail{Loan: models.Loan{ID: "loan-" + req.ActivoID, ActivoID: req.ActivoID}}, nil
}

type fakeRoster struct {
	students []models.Student
}

func (f *fakeRoster) ListAll(ctx context.Context) ([]models.Student, error) {
	return f.students, nil
}

type fakeSessionAssets struct {
	assets map[string]*models.Asset
}

func (f *fakeSessionAssets) FindByID(ctx context.Context, id string) (*models.Asset, error) {
	if a, ok := f.assets[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func newCirculationRouter(loans *fakeLoanCreator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	roster := &fakeRoster{students: []models.Student{{ID: "s1", NombreCompleto: "Ana Quispe", CI: "1234567"}}}
	assets := &fakeSessionAssets{assets: map[string]*models.Asset{
		"a1": {ID: "a1", Tipo: models.AssetKindBook, CodigoNuevo: "INF-001", Titulo: "Algoritmos"},
	}}
	circulation := service.NewCirculationService(loans, roster, assets, zap.NewNop(), time.Minute)
	h := NewCirculationHandler(circulation)

	r := gin.New()
	group := r.Group("/circulacion/sesiones")
	group.POST("", h.Open)
	group.GET("/:id", h.Get)
	group.DELETE("/:id", h.Cancel)
	group.POST("/:id/items/:assetId", h.ToggleItem)
	group.PUT("/:id/estudiante", h.SetStudent)
	group.PUT("/:id/tipo", h.SetType)
	group.POST("/:id/confirmar", h.Confirm)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, sessionEnvelope) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var envelope sessionEnvelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec, envelope
}

func TestCirculationEndToEnd(t *testing.T) {
	loans := &fakeLoanCreator{}
	r := newCirculationRouter(loans)

	rec, env := doJSON(t, r, http.MethodPost, "/circulacion/sesiones", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, env.Data)
	id := env.Data.ID
	assert.Equal(t, models.SessionCollecting, env.Data.State)

	rec, env = doJSON(t, r, http.MethodPost, "/circulacion/sesiones/"+id+"/items/a1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.Data.Items, 1)

	rec, env = doJSON(t, r, http.MethodPut, "/circulacion/sesiones/"+id+"/estudiante", `{"ci":"1234567"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Data.Matched)
	assert.Equal(t, "Ana Quispe", env.Data.Nombre)

	rec, env = doJSON(t, r, http.MethodPost, "/circulacion/sesiones/"+id+"/confirmar", `{"confirmado":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SessionSettled, env.Data.State)
	require.NotNil(t, env.Data.Outcome)
	assert.Equal(t, 1, env.Data.Outcome.Succeeded)
	require.Len(t, loans.requests, 1)
	assert.Equal(t, models.StudentRefExisting, loans.requests[0].Estudiante.Kind)
}

func TestCirculationConfirmGuardKeepsCollecting(t *testing.T) {
	loans := &fakeLoanCreator{}
	r := newCirculationRouter(loans)

	_, env := doJSON(t, r, http.MethodPost, "/circulacion/sesiones", "")
	id := env.Data.ID

	rec, env := doJSON(t, r, http.MethodPost, "/circulacion/sesiones/"+id+"/confirmar", `{"confirmado":true}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Empty(t, loans.requests)

	rec, env = doJSON(t, r, http.MethodGet, "/circulacion/sesiones/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SessionCollecting, env.Data.State)
}

func TestCirculationConflictSurfacesPerItem(t *testing.T) {
	loans := &fakeLoanCreator{failWith: appErrors.Clone(appErrors.ErrItemOnLoan, "INF-001 is on loan to Luis Mamani")}
	r := newCirculationRouter(loans)

	_, env := doJSON(t, r, http.MethodPost, "/circulacion/sesiones", "")
	id := env.Data.ID
	doJSON(t, r, http.MethodPost, "/circulacion/sesiones/"+id+"/items/a1", "")
	doJSON(t, r, http.MethodPut, "/circulacion/sesiones/"+id+"/estudiante", `{"ci":"1234567"}`)

	rec, env := doJSON(t, r, http.MethodPost, "/circulacion/sesiones/"+id+"/confirmar", `{"confirmado":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Data.Outcome)
	assert.Equal(t, 1, env.Data.Outcome.Failed)
	assert.Equal(t, "ITEM_ON_LOAN", env.Data.Outcome.Items[0].ErrorCode)
	assert.Contains(t, env.Data.Outcome.Items[0].ErrorMessage, "Luis Mamani")
}

func TestCirculationUnknownSession(t *testing.T) {
	r := newCirculationRouter(&fakeLoanCreator{})

	rec, env := doJSON(t, r, http.MethodGet, "/circulacion/sesiones/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestCirculationCancel(t *testing.T) {
	r := newCirculationRouter(&fakeLoanCreator{})

	_, env := doJSON(t, r, http.MethodPost, "/circulacion/sesiones", "")
	id := env.Data.ID

	rec, _ := doJSON(t, r, http.MethodDelete, "/circulacion/sesiones/"+id, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = doJSON(t, r, http.MethodGet, "/circulacion/sesiones/"+id, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
