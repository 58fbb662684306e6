package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"cadence_sync_backend/internal/events"
	"cadence_sync_backend/internal/scheduler"
	"cadence_sync_backend/platform/logger"

	"github.com/google/uuid"
)

// ActivityEnqueuer hands activity rows to the background worker.
type ActivityEnqueuer interface {
	EnqueueActivity(ctx context.Context, payload scheduler.ActivityPayload) error
}

// ActivityRecorder turns enrollment events into lead activity feed entries.
type ActivityRecorder struct {
	queue ActivityEnqueuer
	log   *logger.Logger
}

// NewActivityRecorder creates a new activity recorder adapter.
func NewActivityRecorder(queue ActivityEnqueuer, log *logger.Logger) *ActivityRecorder {
	return &ActivityRecorder{queue: queue, log: log}
}

var activityTitles = map[string]string{
	"lead_enrolled":       "Lead added to cadence",
	"lead_disqualified":   "Lead disqualified in CRM",
	"lead_converted":      "Lead converted in CRM",
	"lead_requalified":    "Lead requalified in CRM",
	"owner_changed":       "Lead owner changed",
	"cadence_in_progress": "Cadence resumed",
	"cadence_paused":      "Cadence paused",
	"cadence_stopped":     "Cadence stopped",
	"cadence_completed":   "Cadence completed",
	"cadence_not_started": "Cadence reset",
}

// Subscribe registers the recorder for every event that carries an activity.
func (r *ActivityRecorder) Subscribe(bus events.Bus) {
	for _, ev := range []events.LeadActivity{
		events.LeadEnrolled{},
		events.LeadDisqualified{},
		events.LeadConverted{},
		events.LeadRequalified{},
		events.LeadOwnerChanged{},
		events.LinkStatusChanged{},
	} {
		bus.Subscribe(ev.EventName(), r)
	}
}

// Handle implements events.Handler.
func (r *ActivityRecorder) Handle(ctx context.Context, event events.Event) error {
	activity, ok := event.(events.LeadActivity)
	if !ok {
		return nil
	}

	payload, err := buildActivityPayload(activity)
	if err != nil {
		return err
	}
	if err := r.queue.EnqueueActivity(ctx, payload); err != nil {
		return fmt.Errorf("enqueue %s activity for lead %s: %w", payload.Kind, payload.LeadID, err)
	}
	return nil
}

func buildActivityPayload(ev events.LeadActivity) (scheduler.ActivityPayload, error) {
	meta, err := eventMeta(ev)
	if err != nil {
		return scheduler.ActivityPayload{}, err
	}

	kind := ev.ActivityKind()
	name, ok := activityTitles[kind]
	if !ok {
		name = kind
	}

	activityID := ev.EventID()
	if activityID == uuid.Nil {
		activityID = uuid.New()
	}

	payload := scheduler.ActivityPayload{
		ActivityID: activityID.String(),
		LeadID:     ev.ActivityLeadID().String(),
		UserID:     ev.ActivityUserID().String(),
		Kind:       kind,
		Name:       name,
		Meta:       meta,
		OccurredAt: ev.OccurredAt(),
	}
	if cadenceID := ev.ActivityCadenceID(); cadenceID != nil {
		id := cadenceID.String()
		payload.CadenceID = &id
	}
	switch e := ev.(type) {
	case events.LinkStatusChanged:
		payload.Status = &e.ToStatus
	case events.LeadEnrolled:
		payload.Status = &e.Status
	}
	return payload, nil
}

func eventMeta(ev events.Event) (map[string]any, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	delete(meta, "timestamp")
	delete(meta, "eventId")
	return meta, nil
}

// Compile-time checks.
var (
	_ events.Handler   = (*ActivityRecorder)(nil)
	_ ActivityEnqueuer = (*scheduler.Client)(nil)
	_ ActivityEnqueuer = (*scheduler.Inline)(nil)
)
