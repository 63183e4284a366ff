package audit

import "time"

// Actions recorded in the audit trail.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionInvite = "invite"
)

// Entry represents one immutable audit record. OldData captures the state
// the writer observed before mutating; NewData the state it wrote.
type Entry struct {
	ID           string         `json:"id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	OldData      map[string]any `json:"old_data,omitempty"`
	NewData      map[string]any `json:"new_data,omitempty"`
	PerformedBy  string         `json:"performed_by"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Filter narrows Recent queries by substring match on action, resource
// type, or resource id.
type Filter struct {
	Query string
	Limit int
}
