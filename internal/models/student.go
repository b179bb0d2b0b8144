package models

import "time"

// DefaultCarrera is assigned when a student is registered without a program,
// e.g. inline during loan submission.
const DefaultCarrera = "NO ESPECIFICADA"

// Student represents a borrower identity. The CI (national ID) uniquely
// identifies a student; resolver matches are exact trimmed-string equality.
type Student struct {
	ID             string    `db:"id" json:"id"`
	NombreCompleto string    `db:"nombre_completo" json:"nombre_completo"`
	CI             string    `db:"ci" json:"ci"`
	Carnet         *string   `db:"carnet_universitario" json:"carnet_universitario,omitempty"`
	Carrera        string    `db:"carrera" json:"carrera"`
	Email          *string   `db:"email" json:"email,omitempty"`
	Telefono       *string   `db:"telefono" json:"telefono,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail adds circulation context to a student row.
type StudentDetail struct {
	Student
	PrestamosActivos int `db:"prestamos_activos" json:"prestamos_activos"`
}

// StudentFilter captures listing criteria for borrowers.
type StudentFilter struct {
	Search    string
	Carrera   string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// CreateStudentRequest is the payload for registering or editing a borrower.
type CreateStudentRequest struct {
	NombreCompleto string  `json:"nombre_completo" validate:"required"`
	CI             string  `json:"ci" validate:"required"`
	Carnet         *string `json:"carnet_universitario,omitempty"`
	Carrera        string  `json:"carrera,omitempty"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Telefono       *string `json:"telefono,omitempty"`
}

// UpdateStudentRequest mirrors CreateStudentRequest for edits.
type UpdateStudentRequest = CreateStudentRequest
