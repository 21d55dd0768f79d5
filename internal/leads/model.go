package leads

import (
	"time"

	"github.com/google/uuid"
)

// Status is a lead's position in the sales pipeline.
type Status string

const (
	StatusNueva       Status = "nueva"
	StatusContactado  Status = "contactado"
	StatusVisita      Status = "visita"
	StatusNegociacion Status = "negociacion"
	StatusGanada      Status = "ganada"
	StatusPerdida     Status = "perdida"
)

// transitions maps each status to the statuses it may move to.
// "perdida" is reachable from every non-terminal stage; "ganada" only from
// negotiation. Terminal states have no outgoing transitions.
var transitions = map[Status][]Status{
	StatusNueva:       {StatusContactado, StatusPerdida},
	StatusContactado:  {StatusVisita, StatusPerdida},
	StatusVisita:      {StatusNegociacion, StatusPerdida},
	StatusNegociacion: {StatusGanada, StatusPerdida},
}

// Valid reports whether s is a known pipeline status.
func (s Status) Valid() bool {
	switch s {
	case StatusNueva, StatusContactado, StatusVisita, StatusNegociacion, StatusGanada, StatusPerdida:
		return true
	}
	return false
}

// CanTransitionTo reports whether the pipeline allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Lead is a client referral captured by an ally against a property.
type Lead struct {
	ID              uuid.UUID `json:"id"               db:"id"`
	AllyID          uuid.UUID `json:"ally_id"          db:"ally_id"`
	PropertyID      uuid.UUID `json:"property_id"      db:"property_id"`
	ClientName      string    `json:"client_name"      db:"client_name"`
	ClientPhone     string    `json:"client_phone"     db:"client_phone"`
	Notes           string    `json:"notes"            db:"notes"`
	Status          Status    `json:"status"           db:"status"`
	CommissionBps   int       `json:"commission_bps"   db:"commission_bps"`
	CommissionCents int64     `json:"commission_cents" db:"commission_cents"`
	CreatedAt       time.Time `json:"created_at"       db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"       db:"updated_at"`
}
