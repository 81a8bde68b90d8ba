package warden

import "time"

// NotificationKind tags a structured record emitted by the agent. Delivery
// and formatting are the notifier adapter's business.
type NotificationKind string

const (
	NotifyThreatDetected   NotificationKind = "threat_detected"
	NotifyThreatDelayed    NotificationKind = "threat_delayed"
	NotifyThreatCleared    NotificationKind = "threat_cleared"
	NotifyFleetSaved       NotificationKind = "fleet_saved"
	NotifyRecallIssued     NotificationKind = "recall_issued"
	NotifyExpeditionSent   NotificationKind = "expedition_sent"
	NotifyExpeditionDone   NotificationKind = "expedition_finished"
	NotifyDebrisHarvested  NotificationKind = "debris_harvested"
	NotifyNoFeasibleRescue NotificationKind = "no_feasible_rescue"
	NotifyCommandFailed    NotificationKind = "command_failed"
	NotifyProviderDegraded NotificationKind = "provider_degraded"
)

type Notification struct {
	Kind       NotificationKind `json:"kind"`
	Body       string           `json:"body,omitempty"` // coordinate string of the body concerned
	OccurredAt time.Time        `json:"occurred_at"`
	Details    map[string]any   `json:"details,omitempty"`
}
