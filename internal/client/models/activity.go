package models

import "time"

// ActivityKind names the flow that produced an activity record.
type ActivityKind string

const (
	ActivityApply     ActivityKind = "apply"
	ActivityCreatePod ActivityKind = "create_pod"
	ActivityJoinPod   ActivityKind = "join_pod"
	ActivityPostJob   ActivityKind = "post_job"
	ActivityHire      ActivityKind = "hire"
)

// Activity is a terminal outcome recorded in the local history.
type Activity struct {
	ID        string
	AttemptID string
	Kind      ActivityKind
	Address   string
	JobID     string
	PodID     string
	Digest    string
	BlobID    string
	// Status is the terminal state ("done" or "failed").
	Status string
	// ErrorKind is empty on success, otherwise one of the common.Kind* names.
	ErrorKind string
	// Orphaned marks a blob that was uploaded but is not referenced on chain.
	Orphaned  bool
	CreatedAt time.Time
}
