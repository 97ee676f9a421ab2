package dashboard

import (
	"context"
	"strings"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/apiclient"
)

var recommendations = map[string]struct{}{
	"strong_hire":    {},
	"hire":           {},
	"no_hire":        {},
	"strong_no_hire": {},
}

// Interviewer is the interviewer dashboard module.
type Interviewer struct {
	client *apiclient.Client
}

// NewInterviewer constructs the module.
func NewInterviewer(client *apiclient.Client) *Interviewer {
	return &Interviewer{client: client}
}

// Interviews lists interviews assigned to the caller. upcoming limits to scheduled ones.
func (m *Interviewer) Interviews(ctx context.Context, upcoming bool) ([]Interview, error) {
	q := map[string]any{}
	if upcoming {
		q["status"] = "scheduled"
	}
	raw, err := m.client.Get(ctx, "/interviewer/interviews", q)
	if err != nil {
		return nil, err
	}
	return apiclient.DecodeList[Interview](raw)
}

// Interview fetches one interview.
func (m *Interviewer) Interview(ctx context.Context, id string) (Interview, error) {
	if strings.TrimSpace(id) == "" {
		return Interview{}, ErrInvalidInput
	}
	raw, err := m.client.Get(ctx, apiclient.ExpandPath("/interviewer/interviews/:id", apiclient.Params{"id": id}), nil)
	if err != nil {
		return Interview{}, err
	}
	return decodeOne[Interview](raw, "interview")
}

// SubmitFeedback records a scorecard for an interview.
func (m *Interviewer) SubmitFeedback(ctx context.Context, id string, fb Feedback) error {
	fb.Recommendation = strings.ToLower(strings.TrimSpace(fb.Recommendation))
	if strings.TrimSpace(id) == "" || fb.Rating < 1 || fb.Rating > 5 {
		return ErrInvalidInput
	}
	if _, ok := recommendations[fb.Recommendation]; !ok {
		return ErrInvalidInput
	}
	_, err := m.client.Post(ctx, apiclient.ExpandPath("/interviewer/interviews/:id/feedback", apiclient.Params{"id": id}), fb)
	return err
}
