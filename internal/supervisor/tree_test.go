package supervisor

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type countingService struct {
	runs atomic.Int32
}

func (s *countingService) Serve(ctx context.Context) error {
	s.runs.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestTreeRunsServicesInBothLayers(t *testing.T) {
	tree := NewTree(slog.New(slog.NewTextHandler(io.Discard, nil)), TreeConfig{ShutdownTimeout: time.Second})

	api := &countingService{}
	background := &countingService{}
	tree.AddAPIService(api)
	tree.AddBackgroundService(background)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for api.runs.Load() == 0 || background.runs.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("services did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}

	unstopped, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("unstopped report: %v", err)
	}
	if len(unstopped) != 0 {
		t.Fatalf("expected all services stopped, got %v", unstopped)
	}
}

func TestNewTreeAppliesDefaults(t *testing.T) {
	tree := NewTree(nil, TreeConfig{})
	if tree.config != DefaultTreeConfig() {
		t.Fatalf("expected defaults, got %#v", tree.config)
	}
}
