// Package loadbalancer selects one Instance from a non-empty candidate
// set per spec.md §4.2. Instance is the immutable value RegistryClient
// produces and LoadBalancer consumes; it is never mutated in-gateway
// (spec.md §3).
package loadbalancer

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// Instance is a registered backend, as returned by the registry.
type Instance struct {
	ID          string    `json:"id"`
	ServiceType string    `json:"serviceType"`
	Host        string    `json:"host"`
	Port        int       `json:"port"`
	Healthy     bool      `json:"healthy"`
	Created     time.Time `json:"created"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// ErrNoInstances is returned by Select when called with an empty slice;
// callers are expected to treat an empty registry result as a 502-class
// condition upstream of the balancer (spec.md §4.4), so the balancer
// itself simply refuses to operate on an empty set.
var ErrNoInstances = errors.New("loadbalancer: no candidate instances")

// Balancer chooses one instance from a non-empty candidate set.
type Balancer interface {
	Select(serviceType string, instances []Instance) (Instance, error)
}

// Random picks uniformly from the candidate list. Stateless.
type Random struct{}

func NewRandom() *Random { return &Random{} }

func (Random) Select(_ string, instances []Instance) (Instance, error) {
	if len(instances) == 0 {
		return Instance{}, ErrNoInstances
	}
	return instances[rand.Intn(len(instances))], nil
}

// RoundRobin maintains a cursor per serviceType. The cursor is clamped on
// every read (instances may shrink between calls) even though the write
// itself is made atomic by the mutex — both defenses stay in place per
// spec.md's design notes on round-robin under concurrency.
type RoundRobin struct {
	mu      sync.Mutex
	cursors map[string]int
}

func NewRoundRobin() *RoundRobin {
	return &RoundRobin{cursors: map[string]int{}}
}

// Select reads the cursor for serviceType (default 0), clamps it into
// range, returns instances[cursor], then stores (cursor+1) mod
// len(instances). Input order defines rotation order; the balancer never
// reorders its candidates.
func (b *RoundRobin) Select(serviceType string, instances []Instance) (Instance, error) {
	n := len(instances)
	if n == 0 {
		return Instance{}, ErrNoInstances
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	cur := b.cursors[serviceType]
	if cur < 0 || cur >= n {
		cur = 0
	}
	picked := instances[cur]
	b.cursors[serviceType] = (cur + 1) % n
	return picked, nil
}
