// Package githubtest provides an in-process fake of the three API endpoints
// used by the client, recording every request it receives.
package githubtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gorilla/mux"
)

// Request is a recorded request.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	UserAgent     string
	Body          []byte
}

// Server is a fake API. Responses are configured through the exported
// fields before requests are issued; the zero value of each serves an empty
// list.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request

	// Repos is served by GET /user/repos.
	Repos []map[string]interface{}
	// Issues is served by GET /repos/{owner}/{repo}/issues, keyed by "owner/repo".
	Issues map[string][]map[string]interface{}
	// Fail maps a route name ("repos", "issues", "comment") to the status it
	// should answer with.
	Fail map[string]int

	// Received, when set, receives each request as soon as it is recorded.
	Received chan Request
	// Hold, when set, blocks every handler until it is closed or receives.
	Hold chan struct{}
}

// NewServer starts a fake API server. Close it when done.
func NewServer() *Server {
	s := &Server{
		Issues: make(map[string][]map[string]interface{}),
		Fail:   make(map[string]int),
	}

	r := mux.NewRouter()
	r.HandleFunc("/user/repos", s.handle("repos", s.listRepos)).Methods(http.MethodGet)
	r.HandleFunc("/repos/{owner}/{repo}/issues", s.handle("issues", s.listIssues)).Methods(http.MethodGet)
	r.HandleFunc("/repos/{owner}/{repo}/issues/{number}/comments", s.handle("comment", s.postComment)).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	return s
}

// BaseURL returns the API base URL with a trailing slash.
func (s *Server) BaseURL() string {
	return s.Server.URL + "/"
}

// CommentsURL returns the comments URL of issue number in owner/repo.
func (s *Server) CommentsURL(owner, repo string, number int) string {
	return fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", s.Server.URL, owner, repo, number)
}

// AddIssue registers an issue for owner/repo with a comments URL pointing
// back at the server.
func (s *Server) AddIssue(owner, repo string, number int, title string) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue := map[string]interface{}{
		"number":       number,
		"title":        title,
		"state":        "open",
		"comments_url": s.CommentsURL(owner, repo, number),
	}
	key := owner + "/" + repo
	s.Issues[key] = append(s.Issues[key], issue)
	return issue
}

// SetFail makes route answer with status; 0 clears it.
func (s *Server) SetFail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.Fail, route)
		return
	}
	s.Fail[route] = status
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestCount returns the number of requests received for the given method.
func (s *Server) RequestCount(method string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

func (s *Server) handle(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec := Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			UserAgent:     r.UserAgent(),
			Body:          body,
		}

		s.mu.Lock()
		s.requests = append(s.requests, rec)
		status := s.Fail[route]
		received, hold := s.Received, s.Hold
		s.mu.Unlock()

		if received != nil {
			received <- rec
		}
		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}

		if status != 0 {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		next(w, r)
	}
}

func (s *Server) listRepos(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	repos := s.Repos
	s.mu.Unlock()
	if repos == nil {
		repos = []map[string]interface{}{}
	}
	writeJSON(w, http.StatusOK, repos)
}

func (s *Server) listIssues(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.mu.Lock()
	issues := s.Issues[vars["owner"]+"/"+vars["repo"]]
	s.mu.Unlock()
	if issues == nil {
		issues = []map[string]interface{}{}
	}
	writeJSON(w, http.StatusOK, issues)
}

func (s *Server) postComment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": 1, "body": "created"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
