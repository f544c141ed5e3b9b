package audit

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/placementboard/backend/internal/models"
)

const (
	EventAdjustment   = "BULLET_ADJUSTMENT"
	EventRejected     = "BULLET_ADJUSTMENT_REJECTED"
	EventBoostCreated = "BOOST_CREATED"
	EventBoostUpdated = "BOOST_UPDATED"
	EventBoostRevoked = "BOOST_REVOKED"
	EventCompensation = "BOOST_COMPENSATION"
	EventSweep        = "BOOST_SWEEP"
)

// Logger writes one structured record per state-changing ledger or boost
// operation. Records go to the "audit" component of the process logger.
type Logger struct {
	logger zerolog.Logger
	now    func() time.Time
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{
		logger: logger.With().Str("component", "audit").Logger(),
		now:    time.Now,
	}
}

func (a *Logger) LogAdjustment(adj models.Adjustment, result *models.AdjustmentResult) {
	a.event(EventAdjustment, "SUCCESS").
		Str("transaction_id", result.TransactionID).
		Str("owner_id", adj.OwnerID).
		Int64("delta", adj.Delta).
		Str("reason", adj.Reason).
		Str("actor", adj.Actor).
		Str("request_id", adj.RequestID).
		Bool("require_admin", adj.RequireAdmin).
		Bool("replayed", result.Replayed).
		Int64("balance", result.Balance).
		Send()
}

func (a *Logger) LogRejected(adj models.Adjustment, err error) {
	a.event(EventRejected, "FAILED").
		Str("transaction_id", adj.TransactionID).
		Str("owner_id", adj.OwnerID).
		Int64("delta", adj.Delta).
		Str("reason", adj.Reason).
		Str("actor", adj.Actor).
		Str("request_id", adj.RequestID).
		Bool("require_admin", adj.RequireAdmin).
		AnErr("error", err).
		Send()
}

func (a *Logger) LogBoost(eventType string, boost *models.Boost, actor string) {
	a.event(eventType, "SUCCESS").
		Str("boost_id", boost.ID).
		Str("entity_id", boost.EntityID).
		Str("entity_type", string(boost.EntityType)).
		Time("starts_at", boost.StartsAt).
		Time("ends_at", boost.EndsAt).
		Bool("is_active", boost.IsActive).
		Str("actor", actor).
		Send()
}

// LogCompensation records the outcome of undoing a boost whose debit failed.
// status is "DELETED", "DEACTIVATED" or "FAILED".
func (a *Logger) LogCompensation(boostID, ownerID, status string, cause error) {
	a.event(EventCompensation, status).
		Str("boost_id", boostID).
		Str("owner_id", ownerID).
		AnErr("cause", cause).
		Send()
}

func (a *Logger) LogSweep(deactivated int64) {
	a.event(EventSweep, "SUCCESS").
		Int64("deactivated", deactivated).
		Send()
}

func (a *Logger) event(eventType, status string) *zerolog.Event {
	return a.logger.Info().
		Time("timestamp", a.now()).
		Str("event_type", eventType).
		Str("status", status)
}
