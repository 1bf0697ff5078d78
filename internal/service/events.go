package service

import (
	"time"

	"github.com/kost-system/access-service/internal/access"
	"github.com/kost-system/access-service/internal/models"
	"github.com/sirupsen/logrus"
)

// TenantAccessChanged is emitted once per observed tenant status
// transition. NoChange reconciliations emit nothing.
type TenantAccessChanged struct {
	EventID        string              `json:"event_id"`
	TenantID       int64               `json:"tenant_id"`
	PreviousStatus models.TenantStatus `json:"previous_status"`
	CurrentStatus  models.TenantStatus `json:"current_status"`
	Decision       access.Decision     `json:"decision"`
	OccurredAt     time.Time           `json:"occurred_at"`
}

// EventSink receives domain events. Implementations must not block the
// reconciliation path.
type EventSink interface {
	TenantAccessChanged(event TenantAccessChanged)
}

// LogEventSink writes domain events to the service log.
type LogEventSink struct {
	Log *logrus.Logger
}

func (s *LogEventSink) TenantAccessChanged(e TenantAccessChanged) {
	s.Log.WithFields(logrus.Fields{
		"event_id":        e.EventID,
		"tenant_id":       e.TenantID,
		"previous_status": e.PreviousStatus,
		"current_status":  e.CurrentStatus,
		"has_access":      e.Decision.HasAccess,
		"reason":          e.Decision.Reason,
	}).Info("Tenant access changed")
}
