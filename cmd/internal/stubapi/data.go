package stubapi

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/stubapi/password"
)

var errNotFound = errors.New("not found")

type user struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	passwordHash string
}

type job struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"-"`
	Title      string    `json:"title"`
	Department string    `json:"department,omitempty"`
	Location   string    `json:"location,omitempty"`
	Status     string    `json:"status"`
	Openings   int       `json:"openings,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type application struct {
	ID            string    `json:"id"`
	JobID         string    `json:"job_id"`
	CandidateName string    `json:"candidate_name"`
	Email         string    `json:"email,omitempty"`
	Stage         string    `json:"stage"`
	AppliedAt     time.Time `json:"applied_at"`
}

type interview struct {
	ID            string    `json:"id"`
	JobID         string    `json:"job_id"`
	JobTitle      string    `json:"job_title,omitempty"`
	InterviewerID string    `json:"-"`
	CandidateName string    `json:"candidate_name"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Mode          string    `json:"mode,omitempty"`
	Status        string    `json:"status"`
}

type feedback struct {
	InterviewID    string    `json:"interview_id"`
	InterviewerID  string    `json:"interviewer_id"`
	Rating         int       `json:"rating"`
	Recommendation string    `json:"recommendation"`
	Notes          string    `json:"notes,omitempty"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// data is the stub's in-memory dataset.
type data struct {
	mu           sync.RWMutex
	users        map[string]user
	jobs         []job
	applications []application
	interviews   []interview
	feedback     []feedback
}

func seed(pw password.Config, seedPassword string, now time.Time) (*data, error) {
	hash, err := pw.Hash(seedPassword)
	if err != nil {
		return nil, err
	}
	d := &data{users: make(map[string]user)}
	for _, u := range []user{
		{ID: "u-hm-1", Name: "Maya Chen", Email: "maya@hiring.test", Role: "hiring_manager"},
		{ID: "u-iv-1", Name: "Ravi Kumar", Email: "ravi@hiring.test", Role: "interviewer"},
		{ID: "u-hr-1", Name: "Lena Ortiz", Email: "lena@hiring.test", Role: "hr"},
		{ID: "u-ad-1", Name: "Sam Admin", Email: "admin@hiring.test", Role: "admin"},
	} {
		u.passwordHash = hash
		d.users[u.Email] = u
	}

	day := 24 * time.Hour
	d.jobs = []job{
		{ID: "j-1", OwnerID: "u-hm-1", Title: "Backend Engineer", Department: "Platform", Location: "Remote", Status: "open", Openings: 2, CreatedAt: now.Add(-30 * day)},
		{ID: "j-2", OwnerID: "u-hm-1", Title: "Product Designer", Department: "Design", Location: "Berlin", Status: "draft", Openings: 1, CreatedAt: now.Add(-7 * day)},
		{ID: "j-3", OwnerID: "u-hm-1", Title: "Data Analyst", Department: "Analytics", Location: "Austin", Status: "closed", Openings: 1, CreatedAt: now.Add(-90 * day)},
	}
	d.applications = []application{
		{ID: "a-1", JobID: "j-1", CandidateName: "Priya Nair", Email: "priya@example.com", Stage: "interview", AppliedAt: now.Add(-20 * day)},
		{ID: "a-2", JobID: "j-1", CandidateName: "Tom Becker", Email: "tom@example.com", Stage: "screen", AppliedAt: now.Add(-12 * day)},
		{ID: "a-3", JobID: "j-1", CandidateName: "Ana Silva", Email: "ana@example.com", Stage: "applied", AppliedAt: now.Add(-2 * day)},
		{ID: "a-4", JobID: "j-3", CandidateName: "Omar Haddad", Email: "omar@example.com", Stage: "hired", AppliedAt: now.Add(-80 * day)},
	}
	d.interviews = []interview{
		{ID: "i-1", JobID: "j-1", JobTitle: "Backend Engineer", InterviewerID: "u-iv-1", CandidateName: "Priya Nair", ScheduledAt: now.Add(2 * day), Mode: "video", Status: "scheduled"},
		{ID: "i-2", JobID: "j-1", JobTitle: "Backend Engineer", InterviewerID: "u-iv-1", CandidateName: "Tom Becker", ScheduledAt: now.Add(4 * day), Mode: "onsite", Status: "scheduled"},
		{ID: "i-3", JobID: "j-3", JobTitle: "Data Analyst", InterviewerID: "u-iv-1", CandidateName: "Omar Haddad", ScheduledAt: now.Add(-75 * day), Mode: "video", Status: "completed"},
	}
	return d, nil
}

func (d *data) userByEmail(email string) (user, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[strings.ToLower(strings.TrimSpace(email))]
	return u, ok
}

func (d *data) userByID(id string) (user, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.ID == id {
			return u, true
		}
	}
	return user{}, false
}

// jobsFor lists jobs visible to ownerID ("" means all) filtered by status and a title search.
func (d *data) jobsFor(ownerID, status, search string) []job {
	d.mu.RLock()
	defer d.mu.RUnlock()
	search = strings.ToLower(strings.TrimSpace(search))
	out := []job{}
	for _, j := range d.jobs {
		if ownerID != "" && j.OwnerID != ownerID {
			continue
		}
		if status != "" && !strings.EqualFold(j.Status, status) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(j.Title), search) {
			continue
		}
		out = append(out, j)
	}
	return out
}

func (d *data) job(ownerID, id string) (job, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i := slices.IndexFunc(d.jobs, func(j job) bool { return j.ID == id && (ownerID == "" || j.OwnerID == ownerID) })
	if i < 0 {
		return job{}, errNotFound
	}
	return d.jobs[i], nil
}

func (d *data) setJobStatus(ownerID, id, status string) (job, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.IndexFunc(d.jobs, func(j job) bool { return j.ID == id && (ownerID == "" || j.OwnerID == ownerID) })
	if i < 0 {
		return job{}, errNotFound
	}
	d.jobs[i].Status = status
	return d.jobs[i], nil
}

func (d *data) applicationsFor(jobID string) []application {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := []application{}
	for _, a := range d.applications {
		if a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out
}

func (d *data) interviewsFor(interviewerID, status string) []interview {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := []interview{}
	for _, iv := range d.interviews {
		if interviewerID != "" && iv.InterviewerID != interviewerID {
			continue
		}
		if status != "" && !strings.EqualFold(iv.Status, status) {
			continue
		}
		out = append(out, iv)
	}
	return out
}

func (d *data) interview(interviewerID, id string) (interview, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i := slices.IndexFunc(d.interviews, func(iv interview) bool {
		return iv.ID == id && (interviewerID == "" || iv.InterviewerID == interviewerID)
	})
	if i < 0 {
		return interview{}, errNotFound
	}
	return d.interviews[i], nil
}

// recordFeedback stores fb, completes the interview and returns the job owner.
func (d *data) recordFeedback(interviewerID string, fb feedback) (ownerID string, iv interview, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.IndexFunc(d.interviews, func(x interview) bool {
		return x.ID == fb.InterviewID && (interviewerID == "" || x.InterviewerID == interviewerID)
	})
	if i < 0 {
		return "", interview{}, errNotFound
	}
	d.interviews[i].Status = "completed"
	d.feedback = append(d.feedback, fb)

	iv = d.interviews[i]
	if j := slices.IndexFunc(d.jobs, func(j job) bool { return j.ID == iv.JobID }); j >= 0 {
		ownerID = d.jobs[j].OwnerID
	}
	return ownerID, iv, nil
}

func (d *data) feedbackCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.feedback)
}
