package chain

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/podguild/internal/client/models"
	"golang.org/x/sync/errgroup"
)

const (
	listEventLimit        = 50
	applicationEventLimit = 100
)

// Queries turns raw Reader results into marketplace models. Listings are
// discovered through creation events and then loaded in one batch.
type Queries struct {
	reader   Reader
	contract Contract
}

func NewQueries(r Reader, c Contract) *Queries {
	return &Queries{reader: r, contract: c}
}

// Pods returns recently created pods, newest first.
func (q *Queries) Pods(ctx context.Context) ([]models.Pod, error) {
	ids, err := q.eventIDs(ctx, EventPodCreated, listEventLimit, "pod_id", nil)
	if err != nil {
		return nil, err
	}
	objs, err := q.reader.MultiGetObjects(ctx, ids)
	if err != nil {
		return nil, err
	}
	pods := make([]models.Pod, 0, len(objs))
	for _, o := range objs {
		pods = append(pods, toPod(o))
	}
	return pods, nil
}

// Jobs returns recently posted jobs. A non-empty podID keeps only that pod's jobs.
func (q *Queries) Jobs(ctx context.Context, podID string) ([]models.Job, error) {
	var keep func(map[string]json.RawMessage) bool
	if podID != "" {
		keep = func(p map[string]json.RawMessage) bool { return fieldString(p, "pod_id") == podID }
	}
	ids, err := q.eventIDs(ctx, EventJobPosted, listEventLimit, "job_id", keep)
	if err != nil {
		return nil, err
	}
	objs, err := q.reader.MultiGetObjects(ctx, ids)
	if err != nil {
		return nil, err
	}
	jobs := make([]models.Job, 0, len(objs))
	for _, o := range objs {
		jobs = append(jobs, toJob(o))
	}
	return jobs, nil
}

// JobApplications returns the applications submitted to jobID.
func (q *Queries) JobApplications(ctx context.Context, jobID string) ([]models.JobApplication, error) {
	keep := func(p map[string]json.RawMessage) bool { return fieldString(p, "job_id") == jobID }
	ids, err := q.eventIDs(ctx, EventApplicationSubmitted, applicationEventLimit, "application_id", keep)
	if err != nil {
		return nil, err
	}
	objs, err := q.reader.MultiGetObjects(ctx, ids)
	if err != nil {
		return nil, err
	}
	apps := make([]models.JobApplication, 0, len(objs))
	for _, o := range objs {
		apps = append(apps, toApplication(o))
	}
	return apps, nil
}

// UserObjects loads the pods, applications and badges owned by address
// concurrently. The first failing query cancels the others.
func (q *Queries) UserObjects(ctx context.Context, address string) (*models.UserObjects, error) {
	var pods, apps, badges []ObjectData

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		pods, err = q.reader.GetOwnedObjects(gctx, address, q.contract.StructType(ModuleMarket, StructPod))
		return err
	})
	g.Go(func() (err error) {
		apps, err = q.reader.GetOwnedObjects(gctx, address, q.contract.StructType(ModuleMarket, StructApplication))
		return err
	})
	g.Go(func() (err error) {
		badges, err = q.reader.GetOwnedObjects(gctx, address, q.contract.StructType(ModuleBadge, StructBadge))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &models.UserObjects{}
	for _, o := range pods {
		out.Pods = append(out.Pods, toPod(o))
	}
	for _, o := range apps {
		out.Applications = append(out.Applications, toApplication(o))
	}
	for _, o := range badges {
		out.Badges = append(out.Badges, toBadge(o))
	}
	return out, nil
}

// eventIDs collects the distinct idField values of recent events, in event order.
func (q *Queries) eventIDs(ctx context.Context, event string, limit int, idField string, keep func(map[string]json.RawMessage) bool) ([]string, error) {
	events, err := q.reader.QueryEvents(ctx, q.contract.EventType(event), limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		if keep != nil && !keep(e.ParsedJSON) {
			continue
		}
		id := fieldString(e.ParsedJSON, idField)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func toPod(o ObjectData) models.Pod {
	f := o.Content.Fields
	return models.Pod{
		ID:          o.ObjectID,
		Name:        fieldString(f, "name"),
		Description: fieldString(f, "description"),
		Category:    fieldString(f, "category"),
		LogoURL:     fieldString(f, "logo_url"),
		Owner:       fieldString(f, "creator"),
		MemberCount: fieldUint(f, "member_count"),
	}
}

func toJob(o ObjectData) models.Job {
	f := o.Content.Fields
	return models.Job{
		ID:          o.ObjectID,
		PodID:       fieldString(f, "pod_id"),
		Title:       fieldString(f, "title"),
		Description: fieldString(f, "description"),
		CompanyName: fieldString(f, "company_name"),
		Location:    fieldString(f, "location"),
		Type:        models.JobType(fieldUint(f, "job_type")),
		Salary:      fieldOptionUint(f, "salary"),
		Skills:      fieldStrings(f, "required_skills"),
		Status:      uint8(fieldUint(f, "status")),
		Poster:      fieldString(f, "employer"),
		CreatedMs:   fieldUint(f, "created_at"),
	}
}

func toApplication(o ObjectData) models.JobApplication {
	f := o.Content.Fields
	return models.JobApplication{
		ID:              o.ObjectID,
		JobID:           fieldString(f, "job_id"),
		Candidate:       fieldString(f, "candidate"),
		CoverLetter:     fieldString(f, "cover_letter"),
		Contact:         fieldOptionString(f, "portfolio_url"),
		EncryptedCVBlob: fieldOptionString(f, "encrypted_cv_blob_id"),
		Status:          models.ApplicationStatus(fieldUint(f, "status")),
	}
}

func toBadge(o ObjectData) models.Badge {
	f := o.Content.Fields
	return models.Badge{
		ID:          o.ObjectID,
		CompanyName: fieldString(f, "company_name"),
		JobTitle:    fieldString(f, "job_title"),
	}
}
