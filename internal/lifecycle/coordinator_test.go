package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mj1618/winwatch/internal/model"
	"github.com/mj1618/winwatch/internal/platform/static"
	"github.com/mj1618/winwatch/internal/registry"
)

func newRegistry() *registry.Registry {
	return registry.New(
		static.New(model.Window{Handle: 1, Title: "窗口", Visible: true}),
		registry.WithInterval(5*time.Millisecond),
	)
}

func TestDefault_IsSingleton(t *testing.T) {
	var wg sync.WaitGroup
	got := make([]*Coordinator, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = Default()
		}(i)
	}
	wg.Wait()
	for i, c := range got {
		if c == nil || c != got[0] {
			t.Fatalf("Default() call %d returned a different coordinator", i)
		}
	}
}

func TestRegistry_BuiltOnce(t *testing.T) {
	c := New(nil)
	calls := 0
	factory := func() *registry.Registry {
		calls++
		return newRegistry()
	}
	first := c.Registry(factory)
	second := c.Registry(factory)
	if first != second {
		t.Error("expected the same registry instance")
	}
	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}
}

func TestTeardown_NeverStarted(t *testing.T) {
	c := New(nil)
	if err := c.Teardown(context.Background()); err != nil {
		t.Errorf("teardown without registry: %v", err)
	}

	c = New(nil)
	reg := c.Registry(newRegistry)
	if err := c.Teardown(context.Background()); err != nil {
		t.Errorf("teardown of idle registry: %v", err)
	}
	if reg.State() != registry.Idle {
		t.Errorf("expected idle, got %s", reg.State())
	}
}

func TestTeardown_StopsRunningRegistry(t *testing.T) {
	c := New(nil)
	reg := c.Registry(newRegistry)
	if err := reg.Start(); err != nil {
		t.Fatal(err)
	}
	if err := c.Teardown(context.Background()); err != nil {
		t.Fatalf("teardown: %v", err)
	}
	if reg.State() != registry.Idle {
		t.Errorf("expected idle after teardown, got %s", reg.State())
	}
	seq := reg.Snapshot().Seq
	time.Sleep(20 * time.Millisecond)
	if reg.Snapshot().Seq != seq {
		t.Error("registry kept publishing after teardown")
	}
}

func TestTeardown_Idempotent(t *testing.T) {
	c := New(nil)
	reg := c.Registry(newRegistry)
	reg.Start()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Teardown(context.Background())
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Errorf("teardown %d: %v", i, err)
		}
	}

	// A restarted registry is left alone by later teardowns.
	reg.Start()
	defer reg.Stop(context.Background())
	if err := c.Teardown(context.Background()); err != nil {
		t.Errorf("repeat teardown: %v", err)
	}
	if reg.State() != registry.Running {
		t.Errorf("repeat teardown should not stop the registry, state %s", reg.State())
	}
}

type stuckSource struct {
	*static.Source
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *stuckSource) Enumerate() ([]model.Handle, error) {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	return s.Source.Enumerate()
}

func TestTeardown_SurfacesTimeout(t *testing.T) {
	src := &stuckSource{Source: static.New(), entered: make(chan struct{}), release: make(chan struct{})}
	c := New(nil)
	reg := c.Registry(func() *registry.Registry {
		return registry.New(src, registry.WithInterval(time.Millisecond), registry.WithGrace(20*time.Millisecond))
	})
	reg.Start()
	<-src.entered

	err := c.Teardown(context.Background())
	if !errors.Is(err, registry.ErrShutdownTimeout) {
		t.Fatalf("expected ErrShutdownTimeout, got %v", err)
	}
	if again := c.Teardown(context.Background()); again != err {
		t.Errorf("second teardown returned %v, want cached %v", again, err)
	}

	close(src.release)
	if err := reg.Stop(context.Background()); err != nil {
		t.Errorf("stop after release: %v", err)
	}
}

func TestHandleSignals_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := HandleSignals(parent)
	defer stop()
	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled with parent")
	}
}
