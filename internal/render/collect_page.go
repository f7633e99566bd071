package render

import "sync"

// CollectPage records items in memory, for JSON responses and tests.
type CollectPage struct {
	mu       sync.Mutex
	title    string
	status   string
	progress string
	dots     int
	items    []Item
	finished bool
}

// NewCollectPage returns an empty CollectPage.
func NewCollectPage() *CollectPage {
	return &CollectPage{}
}

func (p *CollectPage) Begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title = HeadingSearching
	p.status = ""
	p.progress = ProgressMessage
	p.dots = 0
	p.items = nil
	p.finished = false
	return nil
}

func (p *CollectPage) ClearProgress() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress = ""
	return nil
}

func (p *CollectPage) SetDots(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dots = n
	return nil
}

func (p *CollectPage) AppendItem(item Item) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, item)
	return nil
}

func (p *CollectPage) Finish(title, status string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title = title
	p.status = status
	p.finished = true
	return nil
}

// Items returns a copy of the appended items.
func (p *CollectPage) Items() []Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Item(nil), p.items...)
}

// Title returns the current heading.
func (p *CollectPage) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title
}

// Status returns the status line.
func (p *CollectPage) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Progress returns the progress message.
func (p *CollectPage) Progress() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

// Dots returns the number of pulse dots shown.
func (p *CollectPage) Dots() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dots
}

// Finished reports whether Finish ran since the last Begin.
func (p *CollectPage) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished
}
