package idmapping

import (
	"context"
	"iter"

	"github.com/Sternrassler/uniprot-idmapping/pkg/client"
)

// StreamItem is one element delivered by Stream.
type StreamItem struct {
	Page JobPage
	Err  error
}

// Stream runs the mapping in a background goroutine and delivers its
// elements on the returned channel, which is closed when the run ends.
// Cancel ctx to stop the run early; the channel is then closed without
// further items.
func (o *Orchestrator) Stream(ctx context.Context, ids []string) <-chan StreamItem {
	ch := make(chan StreamItem)
	go func() {
		defer close(ch)
		for page, err := range o.Run(ctx, ids) {
			select {
			case ch <- StreamItem{Page: page, Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Map creates a client from cfg for a single run and releases it once the
// returned sequence is done.
func Map(ctx context.Context, cfg client.Config, opts Options, ids []string) iter.Seq2[JobPage, error] {
	return func(yield func(JobPage, error) bool) {
		c, err := client.New(cfg)
		if err != nil {
			yield(JobPage{}, err)
			return
		}
		defer c.Close()

		o, err := New(c, opts)
		if err != nil {
			yield(JobPage{}, err)
			return
		}

		for page, err := range o.Run(ctx, ids) {
			if !yield(page, err) {
				return
			}
		}
	}
}
