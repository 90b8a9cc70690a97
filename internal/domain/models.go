package domain

import "time"

// Launch is one LTI launch handled by the launch server.
type Launch struct {
	// ID is the ledger key derived from the ltik; the ltik itself is not kept.
	ID           string    `json:"id"`
	DeploymentID string    `json:"deployment_id"`
	Replay       bool      `json:"replay"`
	IDToken      any       `json:"id_token,omitempty"`
	ReceivedAt   time.Time `json:"received_at"`
}
