package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"polywatch/internal/status"
)

type scriptedFetcher struct {
	mu      sync.Mutex
	results []error
	calls   int
}

func (f *scriptedFetcher) Status(_ context.Context) (*status.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var err error
	if f.calls < len(f.results) {
		err = f.results[f.calls]
	}
	f.calls++
	if err != nil {
		return nil, err
	}
	return &status.Snapshot{BotStatus: status.StateRunning, ScanCount: f.calls}, nil
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type collectingApplier struct {
	mu    sync.Mutex
	snaps []*status.Snapshot
	ch    chan struct{}
}

func newCollectingApplier() *collectingApplier {
	return &collectingApplier{ch: make(chan struct{}, 16)}
}

func (a *collectingApplier) Apply(snap *status.Snapshot, _ time.Time) {
	a.mu.Lock()
	a.snaps = append(a.snaps, snap)
	a.mu.Unlock()
	a.ch <- struct{}{}
}

func (a *collectingApplier) applied() []*status.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*status.Snapshot(nil), a.snaps...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitApply(t *testing.T, a *collectingApplier) {
	t.Helper()
	select {
	case <-a.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a snapshot to apply")
	}
}

func waitCalls(t *testing.T, f *scriptedFetcher, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for f.callCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d fetch calls", n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRunPollsImmediately(t *testing.T) {
	fetch := &scriptedFetcher{}
	apply := newCollectingApplier()
	p := New(fetch, apply, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	waitApply(t, apply)
	if got := len(apply.applied()); got != 1 {
		t.Errorf("applied %d snapshots, want 1", got)
	}
}

func TestFailedPollKeepsPriorState(t *testing.T) {
	fetch := &scriptedFetcher{results: []error{nil, errors.New("connection refused"), nil}}
	apply := newCollectingApplier()
	p := New(fetch, apply, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)
	waitApply(t, apply)

	p.PollNow() // fails
	waitCalls(t, fetch, 2)
	p.PollNow() // succeeds

	waitApply(t, apply)
	snaps := apply.applied()
	if len(snaps) != 2 {
		t.Fatalf("applied %d snapshots, want 2", len(snaps))
	}
	// The failed cycle applied nothing: call 2 is missing from the series.
	if snaps[0].ScanCount != 1 || snaps[1].ScanCount != 3 {
		t.Errorf("applied scan counts %d,%d; want 1,3", snaps[0].ScanCount, snaps[1].ScanCount)
	}
}

func TestPollNowCoalesces(t *testing.T) {
	p := New(&scriptedFetcher{}, newCollectingApplier(), time.Hour, discardLogger())
	// Without a running loop, repeated nudges must not block.
	for i := 0; i < 5; i++ {
		p.PollNow()
	}
}

func TestSequenceDiscardsStaleGenerations(t *testing.T) {
	var seq Sequence
	g1 := seq.Next()
	g2 := seq.Next()

	// The newer fetch lands first.
	if !seq.Commit(g2) {
		t.Fatal("newest generation rejected")
	}
	if seq.Commit(g1) {
		t.Error("stale generation accepted after a newer one applied")
	}

	g3 := seq.Next()
	if !seq.Commit(g3) {
		t.Error("next generation rejected")
	}
}
