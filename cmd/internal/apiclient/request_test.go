package apiclient

import (
	"net/http"
	"strings"
	"testing"
)

func TestExpandPath(t *testing.T) {
	tests := []struct {
		path   string
		params Params
		want   string
	}{
		{"/jobs/:id", Params{"id": "7"}, "/jobs/7"},
		{"/jobs/:jobId/applications/:id", Params{"jobId": "3", "id": "a b"}, "/jobs/3/applications/a%20b"},
		{"/jobs/:id", Params{}, "/jobs/:id"},
		{"/jobs/:id/notes", Params{"other": "x"}, "/jobs/:id/notes"},
		{"/interviews/:id", Params{"id": "../admin"}, "/interviews/..%2Fadmin"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.path, tt.params); got != tt.want {
			t.Fatalf("ExpandPath(%q)=%q want=%q", tt.path, got, tt.want)
		}
	}
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		base      string
		alt       bool
		fallbacks []string
		path      string
		want      []string
	}{
		{"http://h:5000", false, nil, "/jobs", []string{"http://h:5000/jobs"}},
		{"http://h:5000/", true, nil, "jobs", []string{"http://h:5000/jobs", "http://h:5000/api/jobs"}},
		{"http://h:5000/api", true, nil, "/jobs", []string{"http://h:5000/api/jobs", "http://h:5000/jobs"}},
		{"http://h:5000", true, []string{"http://h:5000/api/", "http://backup:5000"}, "/jobs",
			[]string{"http://h:5000/jobs", "http://h:5000/api/jobs", "http://backup:5000/jobs"}},
	}
	for _, tt := range tests {
		c, err := New(discardLogger(), Config{BaseURL: tt.base, TryAltPrefix: tt.alt}, nil, nil, WithFallbackBases(tt.fallbacks...))
		if err != nil {
			t.Fatalf("New(%q): %v", tt.base, err)
		}
		got := c.Candidates(tt.path)
		if strings.Join(got, " ") != strings.Join(tt.want, " ") {
			t.Fatalf("Candidates(%q, base=%q)=%v want=%v", tt.path, tt.base, got, tt.want)
		}
	}
}

func TestPrefer(t *testing.T) {
	e := func(s int) *Error { return &Error{Status: s} }
	tests := []struct {
		seq  []int
		want int
	}{
		{[]int{404, 500, 404}, 500},
		{[]int{404, 0}, 404},
		{[]int{0, 404}, 0},
		{[]int{0, 500}, 0},
		{[]int{404, 404, 502}, 502},
		{[]int{404, 403, 500}, 403},
	}
	for _, tt := range tests {
		var rec *Error
		for _, s := range tt.seq {
			rec = prefer(rec, e(s))
		}
		if rec.Status != tt.want {
			t.Fatalf("prefer(%v)=%d want=%d", tt.seq, rec.Status, tt.want)
		}
	}
}

func TestErrorHelpers(t *testing.T) {
	if StatusOf(http.ErrHandlerTimeout) != -1 {
		t.Fatalf("StatusOf(non-api error) want -1")
	}
	err := &Error{Status: 0, Message: "dial tcp: refused", Method: "GET", URL: "http://h/jobs"}
	if !IsTransport(err) || IsNotFound(err) || IsUnauthorized(err) {
		t.Fatalf("helpers misclassify transport error")
	}
	if !strings.Contains(err.Error(), "transport error") {
		t.Fatalf("Error()=%q", err.Error())
	}
}
