package models

// Pod is a read-only view of a pod object.
type Pod struct {
	ID          string
	Name        string
	Description string
	Category    string
	LogoURL     string
	Owner       string
	MemberCount uint64
}

// Job is a read-only view of a job posting object.
type Job struct {
	ID          string
	PodID       string
	Title       string
	Description string
	CompanyName string
	Location    string
	Type        JobType
	// Salary is 0 when the posting has none.
	Salary    uint64
	Skills    []string
	Status    uint8
	Poster    string
	CreatedMs uint64
}

// ApplicationStatus mirrors the contract's application status constants.
type ApplicationStatus uint8

const (
	ApplicationPending ApplicationStatus = iota
	ApplicationAccepted
	ApplicationRejected
)

func (s ApplicationStatus) String() string {
	switch s {
	case ApplicationPending:
		return "pending"
	case ApplicationAccepted:
		return "accepted"
	case ApplicationRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// JobApplication is a read-only view of an application object.
type JobApplication struct {
	ID              string
	JobID           string
	Candidate       string
	CoverLetter     string
	Contact         string
	EncryptedCVBlob string
	Status          ApplicationStatus
}

// Badge is a read-only view of an employment badge.
type Badge struct {
	ID          string
	CompanyName string
	JobTitle    string
}

// UserObjects groups the objects owned by one address.
type UserObjects struct {
	Pods         []Pod
	Applications []JobApplication
	Badges       []Badge
}
