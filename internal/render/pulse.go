package render

import (
	"sync"
	"time"
)

// DefaultPulseInterval is the delay between dot updates.
const DefaultPulseInterval = 500 * time.Millisecond

// Pulse cycles a 0..3 dot counter while a search is pending.
type Pulse struct {
	interval time.Duration
	set      func(n int)

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewPulse returns a stopped pulse that reports each dot count to set.
func NewPulse(interval time.Duration, set func(n int)) *Pulse {
	if interval <= 0 {
		interval = DefaultPulseInterval
	}
	return &Pulse{interval: interval, set: set}
}

// Start shows zero dots and begins cycling. Starting a running pulse does nothing.
func (p *Pulse) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	p.set(0)
	go p.run(p.stop, p.done)
}

func (p *Pulse) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	n := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n = (n + 1) % 4
			p.set(n)
		}
	}
}

// Stop halts the pulse and waits for its goroutine to exit. Stopping a
// stopped pulse does nothing.
func (p *Pulse) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Running reports whether the pulse is cycling.
func (p *Pulse) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop != nil
}
