package models

import "time"

// LoanType distinguishes in-library consultation from take-home lending.
type LoanType string

const (
	LoanTypeSala      LoanType = "SALA"
	LoanTypeDomicilio LoanType = "DOMICILIO"
)

// Collateral names the document the borrower leaves at the desk for the
// duration of the loan.
func (t LoanType) Collateral() string {
	if t == LoanTypeDomicilio {
		return "CEDULA DE IDENTIDAD"
	}
	return "CARNET UNIVERSITARIO"
}

// Valid reports whether the loan type is one of the two known values.
func (t LoanType) Valid() bool {
	return t == LoanTypeSala || t == LoanTypeDomicilio
}

// LoanStatus captures the loan lifecycle: created VIGENTE, a single
// irreversible return transitions it to DEVUELTO.
type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "VIGENTE"
	LoanStatusReturned LoanStatus = "DEVUELTO"
)

// Loan is the authoritative record of one asset lent to one student.
type Loan struct {
	ID              string     `db:"id" json:"id"`
	EstudianteID    string     `db:"estudiante_id" json:"estudiante"`
	ActivoID        string     `db:"activo_id" json:"activo"`
	Tipo            LoanType   `db:"tipo" json:"tipo"`
	Estado          LoanStatus `db:"estado" json:"estado"`
	Observaciones   *string    `db:"observaciones" json:"observaciones,omitempty"`
	UsuarioPrestamo *string    `db:"usuario_prestamo" json:"usuario_prestamo,omitempty"`
	FechaPrestamo   time.Time  `db:"fecha_prestamo" json:"fecha_prestamo"`
	FechaLimite     time.Time  `db:"fecha_devolucion_estimada" json:"fecha_devolucion_estimada"`
	FechaDevuelto   *time.Time `db:"fecha_devolucion_real" json:"fecha_devolucion_real,omitempty"`
}

// Overdue is a point-in-time comparison against the due timestamp; it is
// never a stored transition.
func (l Loan) Overdue(now time.Time) bool {
	return l.Estado == LoanStatusActive && now.After(l.FechaLimite)
}

// LoanDetail joins borrower and asset display fields onto the loan row,
// mirroring the read-only fields the registry exposes.
type LoanDetail struct {
	Loan
	ActivoTitulo      string    `db:"activo_titulo" json:"activo_titulo"`
	ActivoCodigo      string    `db:"activo_codigo" json:"activo_codigo"`
	ActivoTipo        AssetKind `db:"activo_tipo" json:"activo_tipo"`
	EstudianteNombre  string    `db:"estudiante_nombre" json:"estudiante_nombre"`
	EstudianteCI      string    `db:"estudiante_ci" json:"estudiante_ci"`
	EstudianteCarnet  *string   `db:"estudiante_carnet" json:"estudiante_carnet,omitempty"`
	EstudianteCarrera string    `db:"estudiante_carrera" json:"estudiante_carrera"`
	UsuarioNombre     *string   `db:"usuario_nombre" json:"usuario_nombre,omitempty"`
}

// LoanFilter captures listing criteria for the loan register.
type LoanFilter struct {
	Search   string
	Estado   *LoanStatus
	Tipo     *LoanType
	Page     int
	PageSize int
}

// CreateLoanRequest is the single-item loan submission payload. The borrower
// is a tagged reference: an existing student ID or an inline name+CI pair.
type CreateLoanRequest struct {
	ActivoID      string     `json:"activo" validate:"required"`
	Tipo          LoanType   `json:"tipo" validate:"required,oneof=SALA DOMICILIO"`
	Estudiante    StudentRef `json:"estudiante" validate:"required"`
	Observaciones *string    `json:"observaciones,omitempty"`
}
