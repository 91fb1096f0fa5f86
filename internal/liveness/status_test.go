package liveness

import (
	"sync"
	"testing"
)

func TestStatusCell_GetSet(t *testing.T) {
	c := NewStatusCell(StatusStarting)
	if c.Get() != StatusStarting {
		t.Fatalf("expected initial STARTING, got %v", c.Get())
	}
	c.Set(StatusActive)
	if c.Get() != StatusActive {
		t.Fatalf("expected ACTIVE after Set, got %v", c.Get())
	}
}

func TestStatusCell_ConcurrentAccess(t *testing.T) {
	c := NewStatusCell(StatusStarting)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				c.Set(StatusActive)
			} else {
				_ = c.Get()
			}
		}(i)
	}
	wg.Wait()
}

func TestStatus_CodeAndMessage_OnlyForNonActive(t *testing.T) {
	if StatusActive.Code() != "" {
		t.Fatalf("expected ACTIVE to have no error code, got %q", StatusActive.Code())
	}
	cases := []Status{StatusStarting, StatusHealthCheckFail, StatusReregistering, StatusShuttingDown}
	for _, s := range cases {
		if s.Code() == "" {
			t.Fatalf("expected %v to have a non-empty error code", s)
		}
		if s.Message() == "" {
			t.Fatalf("expected %v to have a non-empty message", s)
		}
	}
}
