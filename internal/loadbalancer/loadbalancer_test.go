package loadbalancer

import (
	"sync"
	"testing"
)

func instances(n int) []Instance {
	out := make([]Instance, n)
	for i := range out {
		out[i] = Instance{ID: string(rune('a' + i)), ServiceType: "products"}
	}
	return out
}

func TestRandom_EmptyInstances(t *testing.T) {
	_, err := NewRandom().Select("products", nil)
	if err != ErrNoInstances {
		t.Fatalf("expected ErrNoInstances, got %v", err)
	}
}

func TestRandom_PicksFromCandidates(t *testing.T) {
	b := NewRandom()
	set := instances(3)
	for i := 0; i < 20; i++ {
		picked, err := b.Select("products", set)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		found := false
		for _, inst := range set {
			if inst.ID == picked.ID {
				found = true
			}
		}
		if !found {
			t.Fatalf("picked instance %v not in candidate set", picked)
		}
	}
}

func TestRoundRobin_RotatesInOrder(t *testing.T) {
	b := NewRoundRobin()
	set := instances(3)
	var got []string
	for i := 0; i < 6; i++ {
		picked, err := b.Select("products", set)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, picked.ID)
	}
	want := []string{"a", "b", "c", "a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rotation mismatch at %d: got %v want %v", i, got, want)
		}
	}
}

func TestRoundRobin_PerServiceTypeCursor(t *testing.T) {
	b := NewRoundRobin()
	products := instances(2)
	orders := []Instance{{ID: "x", ServiceType: "orders"}, {ID: "y", ServiceType: "orders"}}

	p1, _ := b.Select("products", products)
	o1, _ := b.Select("orders", orders)
	p2, _ := b.Select("products", products)

	if p1.ID != "a" || p2.ID != "b" {
		t.Fatalf("products cursor affected by orders call: p1=%v p2=%v", p1, p2)
	}
	if o1.ID != "x" {
		t.Fatalf("expected orders cursor to start at its own 0, got %v", o1)
	}
}

func TestRoundRobin_ClampsWhenCandidateSetShrinks(t *testing.T) {
	b := NewRoundRobin()
	big := instances(5)
	for i := 0; i < 4; i++ {
		b.Select("products", big)
	}
	small := instances(2)
	picked, err := b.Select("products", small)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if picked.ID != "a" && picked.ID != "b" {
		t.Fatalf("expected cursor to clamp into shrunk range, got %v", picked)
	}
}

func TestRoundRobin_EmptyInstances(t *testing.T) {
	b := NewRoundRobin()
	_, err := b.Select("products", nil)
	if err != ErrNoInstances {
		t.Fatalf("expected ErrNoInstances, got %v", err)
	}
}

func TestRoundRobin_ConcurrentSelectNeverPanics(t *testing.T) {
	b := NewRoundRobin()
	set := instances(4)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := b.Select("products", set); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
}
