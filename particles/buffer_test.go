package particles

import (
	"errors"
	"testing"

	"github.com/pthm-cable/flux/preset"
)

const testW, testH = 1280.0, 720.0

func TestAllocateExactCount(t *testing.T) {
	store := NewStore(100000)
	dist := preset.Default().Distribute

	for _, n := range []int{1000, 5000, 10000, 50000} {
		if err := store.Allocate(n, dist, testW, testH); err != nil {
			t.Fatalf("Allocate(%d): %v", n, err)
		}
		if store.Count() != n {
			t.Errorf("expected count %d, got %d", n, store.Count())
		}
		if len(store.Current().X) != n || len(store.Next().X) != n {
			t.Errorf("buffer length mismatch for count %d", n)
		}
	}
}

func TestAllocatePopulatesFromDistribution(t *testing.T) {
	store := NewStore(10000)
	p := preset.ByID("ring")
	if p == nil {
		t.Fatal("ring preset missing")
	}

	const n = 500
	if err := store.Allocate(n, p.Distribute, testW, testH); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	cur := store.Current()
	for i := 0; i < n; i++ {
		want := p.Distribute(i, n, testW, testH)
		if cur.X[i] != want.X || cur.Y[i] != want.Y {
			t.Fatalf("particle %d position (%f, %f) != distribution (%f, %f)", i, cur.X[i], cur.Y[i], want.X, want.Y)
		}
		if cur.Seed[i] != want.Seed {
			t.Fatalf("particle %d seed mismatch", i)
		}
	}
}

func TestAllocateRejectsOverCap(t *testing.T) {
	store := NewStore(1000)
	dist := preset.Default().Distribute

	if err := store.Allocate(500, dist, testW, testH); err != nil {
		t.Fatalf("Allocate(500): %v", err)
	}

	err := store.Allocate(2000, dist, testW, testH)
	if !errors.Is(err, ErrAllocationFailed) {
		t.Fatalf("expected ErrAllocationFailed, got %v", err)
	}

	// Store keeps its last good state
	if store.Count() != 500 {
		t.Errorf("expected count to remain 500 after failed allocation, got %d", store.Count())
	}
	if store.Current() == nil || len(store.Current().X) != 500 {
		t.Error("expected previous buffers to survive failed allocation")
	}
}

func TestAllocateRejectsBadInput(t *testing.T) {
	store := NewStore(1000)

	if err := store.Allocate(0, preset.Default().Distribute, testW, testH); !errors.Is(err, ErrAllocationFailed) {
		t.Errorf("expected ErrAllocationFailed for zero count, got %v", err)
	}
	if err := store.Allocate(100, nil, testW, testH); !errors.Is(err, ErrAllocationFailed) {
		t.Errorf("expected ErrAllocationFailed for nil distribution, got %v", err)
	}
}

func TestSwapExchangesRoles(t *testing.T) {
	store := NewStore(1000)
	if err := store.Allocate(10, preset.Default().Distribute, testW, testH); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	cur, next := store.Current(), store.Next()
	store.Swap()
	if store.Current() != next || store.Next() != cur {
		t.Error("Swap did not exchange buffer roles")
	}
	store.Swap()
	if store.Current() != cur || store.Next() != next {
		t.Error("double Swap did not restore buffer roles")
	}
}

func TestRelease(t *testing.T) {
	store := NewStore(1000)
	if err := store.Allocate(10, preset.Default().Distribute, testW, testH); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	store.Release()
	if store.Count() != 0 || store.Current() != nil || store.Next() != nil {
		t.Error("Release did not drop buffers")
	}

	// Store remains usable after release
	if err := store.Allocate(20, preset.Default().Distribute, testW, testH); err != nil {
		t.Fatalf("Allocate after Release: %v", err)
	}
	if store.Count() != 20 {
		t.Errorf("expected count 20 after re-allocate, got %d", store.Count())
	}
}
