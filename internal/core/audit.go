package core

import "time"

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "token.issue", "token.introspect")
	Action string `json:"action"`

	// SpaceID is the tenant the request targeted
	SpaceID string `json:"space_id,omitempty"`

	// Subject identifies who made the request, when known
	Subject string `json:"subject,omitempty"`

	// RoleKeys requested for issuance
	RoleKeys []string `json:"role_keys,omitempty"`

	// Generator attribution for issued tokens
	Generator string `json:"generator,omitempty"`

	// Decision details
	Granted bool   `json:"granted"`
	Error   string `json:"error,omitempty"`

	// TokenFingerprint identifies the issued token without storing it
	TokenFingerprint string `json:"token_fingerprint,omitempty"`
}

type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}
