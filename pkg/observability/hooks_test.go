package observability

import (
	"context"
	"testing"
	"time"
)

type countingResolveHooks struct {
	NoopResolveHooks
	starts, visits, completes int
}

func (h *countingResolveHooks) OnResolveStart(context.Context, string, string) { h.starts++ }
func (h *countingResolveHooks) OnNodeVisited(context.Context, string, string, int) {
	h.visits++
}
func (h *countingResolveHooks) OnResolveComplete(context.Context, string, string, int, time.Duration, error) {
	h.completes++
}

func TestSetResolveHooks(t *testing.T) {
	t.Cleanup(Reset)

	h := &countingResolveHooks{}
	SetResolveHooks(h)

	ctx := context.Background()
	Resolve().OnResolveStart(ctx, "run", "pkg")
	Resolve().OnNodeVisited(ctx, "run", "pkg", 0)
	Resolve().OnResolveComplete(ctx, "run", "pkg", 1, time.Second, nil)

	if h.starts != 1 || h.visits != 1 || h.completes != 1 {
		t.Errorf("hooks not routed: %d/%d/%d", h.starts, h.visits, h.completes)
	}
}

func TestSetHooks_NilIsIgnored(t *testing.T) {
	t.Cleanup(Reset)

	SetResolveHooks(nil)
	SetCacheHooks(nil)
	SetHTTPHooks(nil)

	// Defaults must survive and be callable.
	Resolve().OnResolveStart(context.Background(), "run", "pkg")
	Cache().OnCacheHit(context.Background(), "registry")
	HTTP().OnRequest(context.Background(), "GET", "host", "/path")
}

func TestReset(t *testing.T) {
	SetResolveHooks(&countingResolveHooks{})
	Reset()

	if _, ok := Resolve().(NoopResolveHooks); !ok {
		t.Error("Reset should restore the no-op resolve hooks")
	}
}
