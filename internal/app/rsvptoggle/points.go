package rsvptoggle

import "sync"

// Points is the page-level tally of RSVP points the viewer has left to spend.
// It is safe for concurrent use.
type Points struct {
	mu        sync.Mutex
	n         int
	observers map[int]func(int)
	nextID    int
}

func NewPoints(initial int) *Points {
	return &Points{n: initial}
}

func (p *Points) Value() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

// Add adjusts the tally by delta and returns the new value.
func (p *Points) Add(delta int) int {
	p.mu.Lock()
	p.n += delta
	n := p.n
	obs := make([]func(int), 0, len(p.observers))
	for _, fn := range p.observers {
		obs = append(obs, fn)
	}
	p.mu.Unlock()

	for _, fn := range obs {
		fn(n)
	}
	return n
}

// Subscribe registers fn to receive the new value after every Add.
func (p *Points) Subscribe(fn func(int)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.observers == nil {
		p.observers = make(map[int]func(int))
	}
	id := p.nextID
	p.nextID++
	p.observers[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.observers, id)
	}
}
