package models

// PodForm carries the inputs of a "create pod" attempt. The image is
// uploaded unencrypted and on a best-effort basis.
type PodForm struct {
	Name        string
	Description string
	Category    string
	Image       *Attachment
}

// JobType mirrors the contract's u8 job type.
type JobType uint8

const (
	JobTypeFullTime JobType = iota
	JobTypePartTime
	JobTypeContract
	JobTypeFreelance
	JobTypeInternship
)

var jobTypeNames = [...]string{"full-time", "part-time", "contract", "freelance", "internship"}

func (t JobType) String() string {
	if int(t) < len(jobTypeNames) {
		return jobTypeNames[t]
	}
	return "unknown"
}

// ParseJobType accepts the names printed by String.
func ParseJobType(s string) (JobType, bool) {
	for i, n := range jobTypeNames {
		if n == s {
			return JobType(i), true
		}
	}
	return 0, false
}

// JobForm carries the inputs of a "post job" transaction. Zero Salary and
// zero DeadlineMs mean "not set".
type JobForm struct {
	PodID          string
	Title          string
	Description    string
	Requirements   string
	Salary         uint64
	DeadlineMs     uint64
	Type           JobType
	CompanyName    string
	CompanyLogoURL string
	Location       string
	Skills         []string
}

// HireForm carries the inputs of a "hire candidate" transaction.
type HireForm struct {
	JobID          string
	ApplicationID  string
	Candidate      string
	CompanyName    string
	CompanyLogoURL string
}

// TxResult is the outcome of a single-transaction flow (pod, job, hire).
type TxResult struct {
	Digest string
	TxURL  string
	// LogoURL is set by CreatePod when the image upload succeeded.
	LogoURL string
}
