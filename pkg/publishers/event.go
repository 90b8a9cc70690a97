package publishers

import (
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/ltiaas-client/internal/domain"
)

// EventTypeLaunch is emitted once per handled launch.
const EventTypeLaunch = "ltiaas.launch"

// Event represents the payload published downstream.
type Event struct {
	ID           string        `json:"id"`
	Type         string        `json:"type"`
	DeploymentID string        `json:"deployment_id"`
	Launch       domain.Launch `json:"launch"`
	OccurredAt   time.Time     `json:"occurred_at"`
}

// NewLaunchEvent constructs an Event for the given launch.
func NewLaunchEvent(launch domain.Launch) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         EventTypeLaunch,
		DeploymentID: launch.DeploymentID,
		Launch:       launch,
		OccurredAt:   time.Now().UTC(),
	}
}

// attributes are attached as message attributes by queue/topic sinks.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_type":    e.Type,
		"deployment_id": e.DeploymentID,
	}
}
