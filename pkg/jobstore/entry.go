package jobstore

import "time"

// Entry is a remembered job submission.
type Entry struct {
	// JobID is the service-issued job identifier
	JobID string `json:"job_id"`

	// StatusURL is where the job status is checked
	StatusURL string `json:"status_url"`

	// Size is the number of identifiers in the batch
	Size int `json:"size"`

	// SubmittedAt is when the job was created
	SubmittedAt time.Time `json:"submitted_at"`

	// Expires is when the service is assumed to have dropped the job
	Expires time.Time `json:"expires"`
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
