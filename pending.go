package thunderpush

import "context"

// Pending is the eventual outcome of an asynchronous send.
type Pending struct {
	done   chan struct{}
	result *Result
	err    error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) complete(result *Result, err error) {
	p.result = result
	p.err = err
	close(p.done)
}

// Done is closed once the request has completed.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the request completes or ctx is done, whichever comes
// first. In the latter case the request keeps running and ctx.Err() is
// returned.
func (p *Pending) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
