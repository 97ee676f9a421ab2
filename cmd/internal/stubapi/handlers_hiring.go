package stubapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	v1 "github.com/jaswanth-exaze/recruitment-project-sub001/shared/contracts/notify/v1"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/realtime"
)

const jobsPageSize = 20

var jobStatuses = map[string]struct{}{"draft": {}, "open": {}, "paused": {}, "closed": {}}

var recommendations = map[string]struct{}{"strong_hire": {}, "hire": {}, "no_hire": {}, "strong_no_hire": {}}

// Each list endpoint answers with a different envelope; clients normalize them.

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r.Context())
	q := r.URL.Query()

	page := 1
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid_page", "page must be a positive integer")
			return
		}
		page = n
	}

	all := s.data.jobsFor(ownerScope(c), q.Get("status"), q.Get("q"))
	start := min((page-1)*jobsPageSize, len(all))
	end := min(start+jobsPageSize, len(all))
	writeJSON(w, http.StatusOK, map[string]any{"data": all[start:end], "page": page, "total": len(all)})
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	j, err := s.data.job(ownerScope(claimsFrom(r.Context())), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, "job_not_found", "Job not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": j})
}

func (s *Server) handleApplications(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.data.job(ownerScope(claimsFrom(r.Context())), id); err != nil {
		writeError(w, http.StatusNotFound, "job_not_found", "Job not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": s.data.applicationsFor(id)})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if _, ok := jobStatuses[status]; !ok {
		writeError(w, http.StatusBadRequest, "invalid_status", "status must be draft, open, paused or closed")
		return
	}

	c := claimsFrom(r.Context())
	j, err := s.data.setJobStatus(ownerScope(c), mux.Vars(r)["id"], status)
	if err != nil {
		writeError(w, http.StatusNotFound, "job_not_found", "Job not found")
		return
	}

	s.log.Info("stub.job.status", "job_id", j.ID, "status", status, "by", c.UserID)
	s.Broker().Publish(v1.NotificationPayload{
		Kind:       v1.KindJobStatus,
		Title:      fmt.Sprintf("%s is now %s", j.Title, status),
		ResourceID: j.ID,
	}, realtime.Audience{UserIDs: []string{j.OwnerID}, Roles: []string{roleHR}})

	writeJSON(w, http.StatusOK, map[string]any{"job": j})
}

func (s *Server) handleInterviews(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"rows": s.data.interviewsFor(ownerScope(c), r.URL.Query().Get("status"))})
}

func (s *Server) handleInterview(w http.ResponseWriter, r *http.Request) {
	iv, err := s.data.interview(ownerScope(claimsFrom(r.Context())), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, "interview_not_found", "Interview not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": iv})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating         int    `json:"rating"`
		Recommendation string `json:"recommendation"`
		Notes          string `json:"notes,omitempty"`
	}
	if err := decodeJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	rec := strings.ToLower(strings.TrimSpace(req.Recommendation))
	if _, ok := recommendations[rec]; !ok || req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "invalid_feedback", "rating 1-5 and a valid recommendation are required")
		return
	}

	c := claimsFrom(r.Context())
	owner, iv, err := s.data.recordFeedback(ownerScope(c), feedback{
		InterviewID:    mux.Vars(r)["id"],
		InterviewerID:  c.UserID,
		Rating:         req.Rating,
		Recommendation: rec,
		Notes:          strings.TrimSpace(req.Notes),
		SubmittedAt:    s.now(),
	})
	if errors.Is(err, errNotFound) {
		writeError(w, http.StatusNotFound, "interview_not_found", "Interview not found")
		return
	}

	s.log.Info("stub.feedback", "interview_id", iv.ID, "by", c.UserID, "recommendation", rec)
	if owner != "" {
		s.Broker().Publish(v1.NotificationPayload{
			Kind:       v1.KindFeedbackReceived,
			Title:      "Feedback for " + iv.CandidateName,
			Body:       fmt.Sprintf("%s (%d/5)", rec, req.Rating),
			ResourceID: iv.ID,
		}, realtime.Audience{UserIDs: []string{owner}})
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Feedback recorded"})
}
