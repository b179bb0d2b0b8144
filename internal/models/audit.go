package models

import (
	"encoding/json"
	"time"
)

// HistorialAction mirrors the +/~/- convention of the change history the
// legacy system kept: creation, modification, deletion.
type HistorialAction string

const (
	HistorialCreated HistorialAction = "+"
	HistorialChanged HistorialAction = "~"
	HistorialDeleted HistorialAction = "-"
)

// HistorialEntry is one audit record: a full snapshot of the asset as it
// looked right after the action, so any entry can be restored later.
type HistorialEntry struct {
	ID        int64           `db:"id" json:"history_id"`
	Modelo    string          `db:"modelo" json:"modelo"`
	ObjetoID  string          `db:"objeto_id" json:"objeto_id"`
	Accion    HistorialAction `db:"accion" json:"accion"`
	Snapshot  json.RawMessage `db:"snapshot" json:"snapshot"`
	Titulo    string          `db:"titulo" json:"titulo"`
	Codigo    string          `db:"codigo" json:"codigo"`
	UserID    *string         `db:"user_id" json:"user_id,omitempty"`
	Username  *string         `db:"username" json:"username,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// HistorialFilter captures audit listing criteria.
type HistorialFilter struct {
	Modelo   string
	Accion   HistorialAction
	Search   string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
