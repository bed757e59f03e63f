// Package batch splits identifier sets into submission-sized segments.
package batch

import (
	"errors"
	"fmt"
)

const (
	// DefaultSegmentSize is the number of identifiers sent per mapping job.
	DefaultSegmentSize = 10000

	// LegacySegmentSize matches the segment size of the older upload endpoint.
	LegacySegmentSize = 500
)

// ErrInvalidSize is returned when the segment size is not positive.
var ErrInvalidSize = errors.New("segment size must be positive")

// Unique returns ids without empty strings and duplicates.
// The first occurrence of every identifier keeps its position.
func Unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Split partitions ids into consecutive batches of at most size identifiers.
// Every identifier ends up in exactly one batch and no batch is empty.
// An empty input yields no batches.
func Split(ids []string, size int) ([][]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidSize, size)
	}

	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		// Full slice expression so appends by callers never bleed into the next batch.
		batches = append(batches, ids[start:end:end])
	}
	return batches, nil
}
