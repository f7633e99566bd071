package searchindex

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubLoader struct {
	calls atomic.Int32
	delay time.Duration
	err   error
	data  string
}

func (s *stubLoader) Load(ctx context.Context) (*Index, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return Parse([]byte(s.data))
}

func (s *stubLoader) Source() string { return "stub" }

func TestCache_LoadOnce(t *testing.T) {
	loader := &stubLoader{data: sampleIndex, delay: 20 * time.Millisecond}
	c := NewCache(loader)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Load(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if _, err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := loader.calls.Load(); got != 1 {
		t.Errorf("loader calls: got %d, want 1", got)
	}
	if c.LoadedAt().IsZero() {
		t.Error("LoadedAt should be set")
	}
}

func TestCache_SubscribeNotified(t *testing.T) {
	c := NewCache(&stubLoader{data: sampleIndex})
	got := make(chan *Index, 1)
	unsubscribe := c.Subscribe(func(idx *Index) { got <- idx })
	defer unsubscribe()

	if _, ok := c.Index(); ok {
		t.Fatal("index should not be loaded yet")
	}
	c.LoadAsync(context.Background())
	select {
	case idx := <-got:
		if idx.DocCount() != 3 {
			t.Errorf("documents: got %d", idx.DocCount())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber was not notified")
	}
}

func TestCache_Unsubscribe(t *testing.T) {
	c := NewCache(&stubLoader{data: sampleIndex})
	called := false
	unsubscribe := c.Subscribe(func(*Index) { called = true })
	unsubscribe()
	if _, err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("unsubscribed callback should not run")
	}
}

func TestCache_LoadErrorAndObserver(t *testing.T) {
	boom := errors.New("boom")
	var observed error
	c := NewCache(&stubLoader{err: boom}, WithLoadObserver(func(_ time.Duration, err error) { observed = err }))
	if _, err := c.Load(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Load error: got %v", err)
	}
	if !errors.Is(observed, boom) {
		t.Errorf("observer error: got %v", observed)
	}
	if _, ok := c.Index(); ok {
		t.Error("failed load must not publish an index")
	}
}

func TestCache_ReloadKeepsPreviousOnFailure(t *testing.T) {
	loader := &stubLoader{data: sampleIndex}
	c := NewCache(loader)
	first, err := c.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	loader.err = errors.New("corrupt")
	if _, err := c.Reload(context.Background()); err == nil {
		t.Fatal("expected reload error")
	}
	current, ok := c.Index()
	if !ok || current != first {
		t.Error("previous index should remain after failed reload")
	}
	loader.err = nil
	second, err := c.Reload(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if second == first {
		t.Error("reload should replace the index")
	}
}

func TestStaticCache(t *testing.T) {
	idx, err := Parse([]byte(sampleIndex))
	if err != nil {
		t.Fatal(err)
	}
	c := NewStaticCache(idx)
	got, err := c.Load(context.Background())
	if err != nil || got != idx {
		t.Errorf("static cache Load: got %v, %v", got, err)
	}
	if _, err := c.Reload(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("static reload: got %v", err)
	}
}
