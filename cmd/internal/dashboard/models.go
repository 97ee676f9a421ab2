package dashboard

import "time"

// Role names issued by the backend.
const (
	RoleHiringManager = "hiring_manager"
	RoleInterviewer   = "interviewer"
	RoleHR            = "hr"
	RoleAdmin         = "admin"
)

// Profile is the signed-in user.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token string
	Role  string
	User  *Profile
}

// Job is a job posting owned by a hiring manager.
type Job struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Department string    `json:"department,omitempty"`
	Location   string    `json:"location,omitempty"`
	Status     string    `json:"status"`
	Openings   int       `json:"openings,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Application is a candidate's application to a job.
type Application struct {
	ID            string    `json:"id"`
	JobID         string    `json:"job_id"`
	CandidateName string    `json:"candidate_name"`
	Email         string    `json:"email,omitempty"`
	Stage         string    `json:"stage"`
	AppliedAt     time.Time `json:"applied_at"`
}

// Interview is an interview assigned to an interviewer.
type Interview struct {
	ID            string    `json:"id"`
	JobID         string    `json:"job_id"`
	JobTitle      string    `json:"job_title,omitempty"`
	CandidateName string    `json:"candidate_name"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Mode          string    `json:"mode,omitempty"`
	Status        string    `json:"status"`
}

// Feedback is an interviewer's scorecard submission.
type Feedback struct {
	Rating         int    `json:"rating"`
	Recommendation string `json:"recommendation"`
	Notes          string `json:"notes,omitempty"`
}
