package models

import "time"

// AssetKind discriminates lendable catalog assets.
type AssetKind string

const (
	AssetKindBook   AssetKind = "LIBRO"
	AssetKindThesis AssetKind = "TESIS"
)

// AssetCondition captures the physical state of an asset.
type AssetCondition string

const (
	ConditionGood        AssetCondition = "BUENO"
	ConditionFair        AssetCondition = "REGULAR"
	ConditionPoor        AssetCondition = "MALO"
	ConditionUnderRepair AssetCondition = "EN REPARACION"
)

// Asset represents one lendable catalog unit (book or grade work). Books and
// theses share the base columns; the kind-specific ones are nullable.
type Asset struct {
	ID            string         `db:"id" json:"id"`
	Tipo          AssetKind      `db:"tipo" json:"tipo"`
	CodigoNuevo   string         `db:"codigo_nuevo" json:"codigo_nuevo"`
	CodigoAntiguo *string        `db:"codigo_antiguo" json:"codigo_antiguo,omitempty"`
	Titulo        string         `db:"titulo" json:"titulo"`
	Autor         *string        `db:"autor" json:"autor,omitempty"`
	Anio          *int           `db:"anio" json:"anio,omitempty"`
	Facultad      *string        `db:"facultad" json:"facultad,omitempty"`
	Estado        AssetCondition `db:"estado" json:"estado"`
	Observaciones *string        `db:"observaciones" json:"observaciones,omitempty"`
	Seccion       *string        `db:"ubicacion_seccion" json:"ubicacion_seccion,omitempty"`
	Repisa        *string        `db:"ubicacion_repisa" json:"ubicacion_repisa,omitempty"`

	// Book-only attributes.
	Materia   *string `db:"materia" json:"materia,omitempty"`
	Editorial *string `db:"editorial" json:"editorial,omitempty"`
	Edicion   *string `db:"edicion" json:"edicion,omitempty"`

	// Grade-work-only attributes.
	Modalidad *string `db:"modalidad" json:"modalidad,omitempty"`
	Tutor     *string `db:"tutor" json:"tutor,omitempty"`
	Carrera   *string `db:"carrera" json:"carrera,omitempty"`

	FechaRegistro time.Time `db:"fecha_registro" json:"fecha_registro"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// AssetOption is the lightweight shape served to the loan selector.
type AssetOption struct {
	ID          string         `db:"id" json:"id"`
	Tipo        AssetKind      `db:"tipo" json:"tipo"`
	CodigoNuevo string         `db:"codigo_nuevo" json:"codigo_nuevo"`
	Titulo      string         `db:"titulo" json:"titulo"`
	Autor       *string        `db:"autor" json:"autor,omitempty"`
	Estado      AssetCondition `db:"estado" json:"estado"`
}

// AssetSummary is the dashboard row for recently added assets.
type AssetSummary struct {
	ID          string         `db:"id" json:"id"`
	Titulo      string         `db:"titulo" json:"titulo"`
	CodigoNuevo string         `db:"codigo_nuevo" json:"codigo_nuevo"`
	Estado      AssetCondition `db:"estado" json:"estado"`
	FechaCreado time.Time      `db:"fecha_registro" json:"fecha_creacion"`
}

// AssetFilter captures listing criteria for the catalog.
type AssetFilter struct {
	Tipo      AssetKind
	Search    string
	Estado    *AssetCondition
	Seccion   string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// CreateAssetRequest is the shared payload for registering a book or thesis.
// Kind-specific fields are validated by the service according to the route.
type CreateAssetRequest struct {
	CodigoNuevo   string  `json:"codigo_nuevo" validate:"required"`
	CodigoAntiguo *string `json:"codigo_antiguo,omitempty"`
	Titulo        string  `json:"titulo" validate:"required"`
	Autor         *string `json:"autor,omitempty"`
	Anio          *int    `json:"anio,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	Facultad      *string `json:"facultad,omitempty"`
	Estado        string  `json:"estado" validate:"omitempty,oneof=BUENO REGULAR MALO 'EN REPARACION'"`
	Observaciones *string `json:"observaciones,omitempty"`
	Seccion       *string `json:"ubicacion_seccion,omitempty"`
	Repisa        *string `json:"ubicacion_repisa,omitempty"`

	Materia   *string `json:"materia,omitempty"`
	Editorial *string `json:"editorial,omitempty"`
	Edicion   *string `json:"edicion,omitempty"`

	Modalidad *string `json:"modalidad,omitempty"`
	Tutor     *string `json:"tutor,omitempty"`
	Carrera   *string `json:"carrera,omitempty"`
}

// UpdateAssetRequest mirrors CreateAssetRequest for edits.
type UpdateAssetRequest = CreateAssetRequest
