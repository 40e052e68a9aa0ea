package chain

import (
	"strconv"

	"github.com/dmitrijs2005/podguild/internal/client/models"
)

// On-chain module and struct names.
const (
	ModuleMarket = "dolphguild"
	ModuleBadge  = "employment_badge"

	StructPod         = "Pod"
	StructJob         = "JobPosting"
	StructApplication = "Application"
	StructBadge       = "EmploymentBadge"

	EventPodCreated           = "PodCreatedEvent"
	EventJobPosted            = "JobPostedEvent"
	EventApplicationSubmitted = "ApplicationSubmittedEvent"
)

// Contract holds the deployed package and shared object ids the calls refer to.
type Contract struct {
	Package        string
	GlobalRegistry string
	BadgeRegistry  string
	Clock          string
}

func (c Contract) call(function string, args ...any) MoveCall {
	return MoveCall{Package: c.Package, Module: ModuleMarket, Function: function, Args: args}
}

// StructType returns the fully qualified type of a struct in module.
func (c Contract) StructType(module, name string) string {
	return c.Package + "::" + module + "::" + name
}

// EventType returns the fully qualified type of a marketplace event.
func (c Contract) EventType(name string) string {
	return c.StructType(ModuleMarket, name)
}

// ApplicationArgs are the variable inputs of submit_application. Empty
// optional strings are sent with their has_* flag cleared.
type ApplicationArgs struct {
	JobID           string
	PodID           string
	CoverLetter     string
	CVBlobID        string
	Portfolio       string
	EncryptedCVBlob string
}

// SubmitApplicationCall builds submit_application. The plaintext CV slot is
// always sent; the client only ever fills the encrypted one.
func (c Contract) SubmitApplicationCall(a ApplicationArgs) MoveCall {
	return c.call("submit_application",
		c.GlobalRegistry,
		a.JobID,
		a.PodID,
		a.CoverLetter,
		a.CVBlobID, a.CVBlobID != "",
		a.Portfolio, a.Portfolio != "",
		a.EncryptedCVBlob, a.EncryptedCVBlob != "",
		c.Clock,
	)
}

func (c Contract) CreatePodCall(name, description, category, logoURL string) MoveCall {
	if category == "" {
		category = "Other"
	}
	return c.call("create_pod", c.GlobalRegistry, name, description, category, logoURL, c.Clock)
}

func (c Contract) JoinPodCall(podID string) MoveCall {
	return c.call("join_pod", podID, c.Clock)
}

func (c Contract) PostJobCall(f models.JobForm) MoveCall {
	skills := f.Skills
	if skills == nil {
		skills = []string{}
	}
	return c.call("post_job",
		c.GlobalRegistry,
		f.PodID,
		f.Title,
		f.Description,
		f.Requirements,
		u64(f.Salary), f.Salary > 0,
		u64(f.DeadlineMs), f.DeadlineMs > 0,
		uint8(f.Type),
		f.CompanyName,
		f.CompanyLogoURL,
		f.Location,
		skills,
		c.Clock,
	)
}

func (c Contract) HireCandidateCall(f models.HireForm) MoveCall {
	return c.call("hire_candidate",
		f.JobID,
		f.ApplicationID,
		f.Candidate,
		c.BadgeRegistry,
		f.CompanyName,
		f.CompanyLogoURL,
		c.Clock,
	)
}

// u64 values travel as decimal strings so large amounts survive JSON.
func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}
