package dashboard

import (
	"context"
	"strings"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/apiclient"
)

var jobStatuses = map[string]struct{}{
	"draft":  {},
	"open":   {},
	"paused": {},
	"closed": {},
}

// HiringManager is the hiring manager dashboard module.
type HiringManager struct {
	client *apiclient.Client
}

// NewHiringManager constructs the module.
func NewHiringManager(client *apiclient.Client) *HiringManager {
	return &HiringManager{client: client}
}

// JobFilter narrows Jobs.
type JobFilter struct {
	Status string
	Search string
	Page   int
}

// Jobs lists the manager's jobs.
func (m *HiringManager) Jobs(ctx context.Context, f JobFilter) ([]Job, error) {
	q := map[string]any{"status": f.Status, "q": f.Search}
	if f.Page > 0 {
		q["page"] = f.Page
	}
	raw, err := m.client.Get(ctx, "/hiring-manager/jobs", q)
	if err != nil {
		return nil, err
	}
	return apiclient.DecodeList[Job](raw)
}

// Job fetches one job.
func (m *HiringManager) Job(ctx context.Context, id string) (Job, error) {
	if strings.TrimSpace(id) == "" {
		return Job{}, ErrInvalidInput
	}
	raw, err := m.client.Get(ctx, apiclient.ExpandPath("/hiring-manager/jobs/:id", apiclient.Params{"id": id}), nil)
	if err != nil {
		return Job{}, err
	}
	return decodeOne[Job](raw, "job")
}

// Applications lists applications for a job.
func (m *HiringManager) Applications(ctx context.Context, jobID string) ([]Application, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, ErrInvalidInput
	}
	raw, err := m.client.Get(ctx, apiclient.ExpandPath("/hiring-manager/jobs/:id/applications", apiclient.Params{"id": jobID}), nil)
	if err != nil {
		return nil, err
	}
	return apiclient.DecodeList[Application](raw)
}

// UpdateJobStatus moves a job to draft, open, paused or closed.
func (m *HiringManager) UpdateJobStatus(ctx context.Context, id, status string) (Job, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if _, ok := jobStatuses[status]; !ok || strings.TrimSpace(id) == "" {
		return Job{}, ErrInvalidInput
	}
	raw, err := m.client.Put(ctx, apiclient.ExpandPath("/hiring-manager/jobs/:id/status", apiclient.Params{"id": id}), map[string]string{"status": status})
	if err != nil {
		return Job{}, err
	}
	return decodeOne[Job](raw, "job")
}
