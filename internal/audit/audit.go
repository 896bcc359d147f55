// Package audit centralizes the "record actor+action+entity" side effect so
// every mutating operation produces exactly one activity-log row.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/logging"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/models"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/mykafka"
)

type Recorder struct {
	Producer *mykafka.Producer
}

// Record appends one ActivityLog row on db (pass the transaction handle when
// inside one) and best-effort publishes the same event to Kafka. The Kafka
// publish never fails the caller.
func (r *Recorder) Record(ctx context.Context, db *gorm.DB, actorID uint, action, entityType string, entityID uint, details map[string]any) error {
	var payload string
	if len(details) > 0 {
		b, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("audit: marshal details: %w", err)
		}
		payload = string(b)
	}

	entry := models.ActivityLog{
		UserID:     actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    payload,
	}
	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit: create log: %w", err)
	}

	r.publish(ctx, actorID, action, entityType, entityID, details)
	return nil
}

func (r *Recorder) publish(ctx context.Context, actorID uint, action, entityType string, entityID uint, details map[string]any) {
	if r == nil || r.Producer == nil {
		return
	}

	event := map[string]any{
		"type":        action,
		"userID":      actorID,
		"entity_type": entityType,
		"entity_id":   entityID,
	}
	for k, v := range details {
		event[k] = v
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.Producer.PublishEvent(pubCtx, entityType+"_events", fmt.Sprint(actorID), event); err != nil {
		logging.FromContext(ctx).Warn("kafka publish error", "action", action, "error", err)
	}
}
