package editor

import (
	"context"

	"mailcanvas/internal/models"
)

// Pending is an element insertion that completes in the background.
type Pending struct {
	done chan struct{}
	el   models.Element
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) finish(el models.Element, err error) {
	p.el, p.err = el, err
	close(p.done)
}

// Done is closed once the element is inserted or the insertion failed.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the insertion finishes or ctx is done. Giving up on the
// wait does not cancel the insertion.
func (p *Pending) Wait(ctx context.Context) (models.Element, error) {
	select {
	case <-p.done:
		return p.el, p.err
	case <-ctx.Done():
		return models.Element{}, ctx.Err()
	}
}
