package models

import "time"

// SessionState enumerates the checkout desk workflow states. A session is
// created in Collecting; Confirm moves it through Submitting to Settled.
// There is no transition back from Submitting to Collecting.
type SessionState string

const (
	SessionCollecting SessionState = "COLLECTING"
	SessionSubmitting SessionState = "SUBMITTING"
	SessionSettled    SessionState = "SETTLED"
)

// StudentRefKind tags the two ways a loan may reference its borrower.
type StudentRefKind string

const (
	StudentRefExisting  StudentRefKind = "EXISTING"
	StudentRefNewInline StudentRefKind = "NEW_INLINE"
)

// StudentRef makes the create-or-reuse contract explicit: either an existing
// student id, or the inline name+CI pair for a borrower registered as part of
// the loan submission itself.
type StudentRef struct {
	Kind           StudentRefKind `json:"kind"`
	ID             string         `json:"id,omitempty"`
	NombreCompleto string         `json:"nombre_completo,omitempty"`
	CI             string         `json:"ci,omitempty"`
}

// ExistingStudent builds a reference to an already registered borrower.
func ExistingStudent(id string) StudentRef {
	return StudentRef{Kind: StudentRefExisting, ID: id}
}

// InlineStudent builds a reference that registers the borrower on first use.
func InlineStudent(nombre, ci string) StudentRef {
	return StudentRef{Kind: StudentRefNewInline, NombreCompleto: nombre, CI: ci}
}

// ItemOutcome records the independent fate of one submitted cart item.
type ItemOutcome struct {
	ActivoID     string  `json:"activo_id"`
	Codigo       string  `json:"codigo"`
	Titulo       string  `json:"titulo"`
	OK           bool    `json:"ok"`
	LoanID       *string `json:"prestamo_id,omitempty"`
	ErrorCode    string  `json:"error_code,omitempty"`
	ErrorMessage string  `json:"error_message,omitempty"`
}

// BatchOutcome aggregates per-item results after a session settles.
type BatchOutcome struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Items     []ItemOutcome `json:"items"`
}

// SessionView is the wire representation of a desk session.
type SessionView struct {
	ID         string        `json:"id"`
	State      SessionState  `json:"state"`
	Items      []AssetOption `json:"items"`
	CI         string        `json:"ci"`
	Nombre     string        `json:"nombre"`
	Matched    bool          `json:"matched"`
	Tipo       LoanType      `json:"tipo"`
	Collateral string        `json:"garantia"`
	Confirmed  bool          `json:"confirmed"`
	Notes      string        `json:"observaciones,omitempty"`
	Outcome    *BatchOutcome `json:"outcome,omitempty"`
	OpenedAt   time.Time     `json:"opened_at"`
}
