package services

import (
	"context"
	"testing"
	"time"

	"pagos/internal/store/memory"
)

func TestSnapshotStoreTracksCollection(t *testing.T) {
	st := memory.New()
	snap := NewSnapshotStore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = snap.Run(ctx, st)
		close(done)
	}()

	d, err := st.Create(ctx, "Rent", 50000)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	waitFor(t, func() bool {
		_, ok := snap.Get(d.ID)
		return ok
	})

	if got := snap.Debts(); len(got) != 1 || got[0].Name != "Rent" {
		t.Fatalf("snapshot = %+v", got)
	}

	if err := st.Delete(ctx, d.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	waitFor(t, func() bool {
		_, ok := snap.Get(d.ID)
		return !ok
	})

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
