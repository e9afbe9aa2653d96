package models

import (
	"strconv"
	"time"

	"github.com/remontpro/frontdesk/internal/lifecycle"
)

// RepairRequest is the backend's row, held here as a read-only and possibly
// stale copy fetched per render.
type RepairRequest struct {
	ID                 int64            `json:"id"`
	ClientName         string           `json:"clientName"`
	ClientPhone        string           `json:"clientPhone"`
	ProblemText        string           `json:"problemText"`
	Address            *string          `json:"address"`
	Status             lifecycle.Status `json:"status"`
	AssignedTo         *int64           `json:"assignedTo"`
	AssignedToUsername *string          `json:"assignedToUsername"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// AssigneeName renders the assignee column: display name when known, the raw
// id as fallback, a dash when unassigned.
func (r RepairRequest) AssigneeName() string {
	if r.AssignedToUsername != nil && *r.AssignedToUsername != "" {
		return *r.AssignedToUsername
	}
	if r.AssignedTo != nil {
		return strconv.FormatInt(*r.AssignedTo, 10)
	}
	return "—"
}

// AssignedToID returns the assignee id, 0 when unassigned.
func (r RepairRequest) AssignedToID() int64 {
	if r.AssignedTo == nil {
		return 0
	}
	return *r.AssignedTo
}

// RequestCreate is the intake payload. Address is omitted entirely when not
// provided; the backend distinguishes "not provided" from an empty string.
type RequestCreate struct {
	ClientName  string  `json:"clientName"`
	ClientPhone string  `json:"clientPhone"`
	ProblemText string  `json:"problemText"`
	Address     *string `json:"address,omitempty"`
}

type MasterOption struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// AuditEvent is one immutable entry of a request's append-only history.
type AuditEvent struct {
	ID            int64             `json:"id"`
	Action        lifecycle.Action  `json:"action"`
	ActorUsername *string           `json:"actorUsername"`
	OldStatus     *lifecycle.Status `json:"oldStatus"`
	NewStatus     *lifecycle.Status `json:"newStatus"`
	CreatedAt     time.Time         `json:"createdAt"`
}

type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type Token struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}
