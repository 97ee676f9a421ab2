package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/credential"
)

// Snapshot is the landing view for the signed-in role.
type Snapshot struct {
	Profile    Profile
	Jobs       []Job
	Interviews []Interview
}

// Overview loads the landing view concurrently.
type Overview struct {
	creds       *credential.Store
	auth        *Auth
	manager     *HiringManager
	interviewer *Interviewer
}

// NewOverview constructs an Overview over the given modules.
func NewOverview(creds *credential.Store, auth *Auth, manager *HiringManager, interviewer *Interviewer) *Overview {
	return &Overview{creds: creds, auth: auth, manager: manager, interviewer: interviewer}
}

// Load fetches the profile and every resource the stored role may see.
// The first failure cancels the rest.
func (o *Overview) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := o.auth.Profile(gctx)
		snap.Profile = p
		return err
	})
	if o.manager != nil && o.creds.HasRole(ctx, RoleHiringManager, RoleHR, RoleAdmin) {
		g.Go(func() error {
			jobs, err := o.manager.Jobs(gctx, JobFilter{})
			snap.Jobs = jobs
			return err
		})
	}
	if o.interviewer != nil && o.creds.HasRole(ctx, RoleInterviewer, RoleAdmin) {
		g.Go(func() error {
			ivs, err := o.interviewer.Interviews(gctx, true)
			snap.Interviews = ivs
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
