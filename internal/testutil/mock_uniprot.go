// Package testutil provides testing utilities for the ID-mapping client.
package testutil

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Event kinds recorded by MockUniProt.
const (
	EventSubmit  = "submit"
	EventStatus  = "status"
	EventResults = "results"
)

// JobScript defines how a submitted job behaves.
type JobScript struct {
	// PendingPolls is the number of status checks answered with RUNNING
	// before the job redirects to its results.
	PendingPolls int

	// Pages are the result page bodies in link order.
	Pages []string

	// FailStatus makes every status check answer 400.
	FailStatus bool

	// JobStatus, when set, is reported with 200 on every status check
	// instead of finishing (e.g. "ERROR").
	JobStatus string

	// PageErrorAt makes the given 1-based page answer 500.
	PageErrorAt int

	// Delay is applied to every request for this job.
	Delay time.Duration
}

// Event is one request observed by the mock.
type Event struct {
	Kind   string
	JobID  string
	Page   int
	Status int
	Query  url.Values

	// Polls is a snapshot of status checks per job at the time of the event.
	Polls map[string]int
}

type mockJob struct {
	id     string
	script JobScript
	ids    []string
	from   string
	to     string
	polls  int
}

// MockUniProt is a configurable mock of the ID-mapping REST API.
type MockUniProt struct {
	server *httptest.Server
	mu     sync.Mutex

	queue         []JobScript
	defaultScript JobScript
	jobs          map[string]*mockJob
	order         []string
	events        []Event

	// SubmitStatus overrides the submission status code when non-zero.
	SubmitStatus int
	// SubmitBody overrides the submission response body when non-empty.
	SubmitBody string
}

// NewMockUniProt creates and starts a mock server.
// Jobs without a queued script finish on the first check with one page.
func NewMockUniProt() *MockUniProt {
	m := &MockUniProt{
		jobs:          make(map[string]*mockJob),
		defaultScript: JobScript{Pages: []string{"Entry\tGene Names\n"}},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /idmapping/run", m.handleRun)
	mux.HandleFunc("GET /idmapping/status/{id}", m.handleStatus)
	mux.HandleFunc("GET /idmapping/uniprotkb/results/{id}", m.handleResults)
	mux.HandleFunc("GET /configure/idmapping/fields", m.handleFields)

	m.server = httptest.NewServer(mux)
	return m
}

// URL returns the mock server URL.
func (m *MockUniProt) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockUniProt) Close() {
	m.server.Close()
}

// QueueJobs assigns scripts to the next submissions in order.
func (m *MockUniProt) QueueJobs(scripts ...JobScript) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, scripts...)
}

// SetDefaultScript sets the script for submissions with no queued script.
func (m *MockUniProt) SetDefaultScript(s JobScript) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultScript = s
}

// AddJob registers a job as if it had been submitted earlier.
func (m *MockUniProt) AddJob(id string, s JobScript) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[id] = &mockJob{id: id, script: s}
}

// Events returns a copy of all observed requests.
func (m *MockUniProt) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// EventsOfKind returns observed requests of one kind.
func (m *MockUniProt) EventsOfKind(kind string) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Submissions returns the submitted identifier batches in submission order.
func (m *MockUniProt) Submissions() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.jobs[id].ids)
	}
	return out
}

// SubmittedNamespaces returns the from/to pair of a submitted job.
func (m *MockUniProt) SubmittedNamespaces(jobID string) (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[jobID]; ok {
		return j.from, j.to
	}
	return "", ""
}

// StatusChecks returns the number of status checks for a job.
func (m *MockUniProt) StatusChecks(jobID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[jobID]; ok {
		return j.polls
	}
	return 0
}

func (m *MockUniProt) record(e Event) {
	e.Polls = make(map[string]int, len(m.jobs))
	for id, j := range m.jobs {
		e.Polls[id] = j.polls
	}
	m.events = append(m.events, e)
}

func (m *MockUniProt) handleRun(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	script := m.defaultScript
	if len(m.queue) > 0 {
		script = m.queue[0]
		m.queue = m.queue[1:]
	}
	id := fmt.Sprintf("job-%d", len(m.order)+1)
	var ids []string
	if raw := r.PostForm.Get("ids"); raw != "" {
		ids = strings.Split(raw, ",")
	}
	status := m.SubmitStatus
	body := m.SubmitBody
	if status == 0 || status/100 == 2 {
		m.jobs[id] = &mockJob{id: id, script: script, ids: ids, from: r.PostForm.Get("from"), to: r.PostForm.Get("to")}
		m.order = append(m.order, id)
	}
	m.record(Event{Kind: EventSubmit, JobID: id, Status: status})
	m.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	if body == "" {
		body = fmt.Sprintf(`{"jobId":%q}`, id)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func (m *MockUniProt) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	m.mu.Lock()
	job, ok := m.jobs[id]
	if !ok {
		m.record(Event{Kind: EventStatus, JobID: id, Status: http.StatusBadRequest})
		m.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]any{"messages": []string{"Resource not found"}})
		return
	}
	job.polls++
	script := job.script
	polls := job.polls

	status := http.StatusSeeOther
	switch {
	case script.FailStatus:
		status = http.StatusBadRequest
	case script.JobStatus != "", polls <= script.PendingPolls:
		status = http.StatusOK
	}
	m.record(Event{Kind: EventStatus, JobID: id, Status: status})
	m.mu.Unlock()

	time.Sleep(script.Delay)

	switch {
	case script.FailStatus:
		writeJSON(w, http.StatusBadRequest, map[string]any{"messages": []string{"Invalid job id"}})
	case script.JobStatus != "":
		writeJSON(w, http.StatusOK, map[string]any{"jobStatus": script.JobStatus})
	case polls <= script.PendingPolls:
		writeJSON(w, http.StatusOK, map[string]any{"jobStatus": "RUNNING"})
	default:
		w.Header().Set("Location", m.server.URL+"/idmapping/uniprotkb/results/"+id)
		w.WriteHeader(http.StatusSeeOther)
	}
}

func (m *MockUniProt) handleResults(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	page := 1
	if c := r.URL.Query().Get("cursor"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil || n < 1 {
			http.Error(w, "bad cursor", http.StatusBadRequest)
			return
		}
		page = n
	}

	m.mu.Lock()
	job, ok := m.jobs[id]
	status := http.StatusOK
	var script JobScript
	switch {
	case !ok:
		status = http.StatusNotFound
	default:
		script = job.script
		if page == script.PageErrorAt {
			status = http.StatusInternalServerError
		} else if page > len(script.Pages) {
			status = http.StatusNotFound
		}
	}
	m.record(Event{Kind: EventResults, JobID: id, Page: page, Status: status, Query: maps.Clone(r.URL.Query())})
	m.mu.Unlock()

	time.Sleep(script.Delay)

	if status != http.StatusOK {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if page < len(script.Pages) {
		next := fmt.Sprintf("%s/idmapping/uniprotkb/results/%s?cursor=%d&size=500", m.server.URL, id, page+1)
		w.Header().Set("Link", "<"+next+`>; rel="next"`)
	}
	w.Header().Set("Content-Type", "text/plain; format=tsv")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(script.Pages[page-1]))
}

func (m *MockUniProt) handleFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"groups": []map[string]any{
			{
				"groupName": "UniProt",
				"items": []map[string]any{
					{"displayName": "UniProtKB AC/ID", "name": "UniProtKB_AC-ID", "from": true, "to": false},
					{"displayName": "UniProtKB", "name": "UniProtKB", "from": false, "to": true},
					{"displayName": "UniProtKB/Swiss-Prot", "name": "UniProtKB-Swiss-Prot", "from": true, "to": true},
				},
			},
			{
				"groupName": "Sequence databases",
				"items": []map[string]any{
					{"displayName": "RefSeq Protein", "name": "RefSeq_Protein", "from": true, "to": true},
				},
			},
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
