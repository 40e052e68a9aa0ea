package models

// ApplicationForm carries the inputs of one "apply to job" attempt.
// It lives only for the duration of the attempt and is never persisted.
type ApplicationForm struct {
	JobID       string
	PodID       string
	CoverLetter string
	// Contact is optional; it is written to the portfolio/contact slot of the call.
	Contact string
	// CV is optional. When present it is encrypted before upload.
	CV *Attachment
}

// State is a step of the submission pipeline.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateEncrypting State = "encrypting"
	StateUploading  State = "uploading"
	StateSubmitting State = "submitting"
	StateConfirming State = "confirming"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transitions can happen from s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// SubmissionResult is the outcome of one attempt. It is returned on failure
// too, so callers can see how far the attempt got.
type SubmissionResult struct {
	AttemptID string
	// State is StateDone on success and StateFailed otherwise.
	State State
	// FailedAt is the step that was running when the attempt failed.
	FailedAt State
	// Digest is set once the gateway accepted the transaction. It is also set
	// when confirmation timed out, so the user can check it later.
	Digest string
	// BlobID is set once the attachment upload succeeded.
	BlobID string
	// TxURL is an explorer link for Digest.
	TxURL string
}
