// Package health reports whether the storage and throttle backends answer.
package health

import (
	"context"
	"sort"
	"time"
)

const defaultTimeout = 3 * time.Second

const (
	StatusOK        = "ok"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
)

// Probe returns nil when the dependency is reachable.
type Probe func(ctx context.Context) error

type DependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Report struct {
	Status       string                      `json:"status"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
}

// Healthy reports whether every dependency answered.
func (r Report) Healthy() bool { return r.Status == StatusOK }

// Checker runs a fixed set of named probes.
type Checker struct {
	probes  map[string]Probe
	timeout time.Duration
}

func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Checker{probes: make(map[string]Probe), timeout: timeout}
}

// Register adds or replaces the probe for name.
func (c *Checker) Register(name string, p Probe) {
	c.probes[name] = p
}

// Names returns the registered dependency names in order.
func (c *Checker) Names() []string {
	names := make([]string, 0, len(c.probes))
	for n := range c.probes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Readiness runs every probe sequentially under one shared deadline.
func (c *Checker) Readiness(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	deps := make(map[string]DependencyStatus, len(c.probes))
	healthy := true

	for _, name := range c.Names() {
		if err := c.probes[name](ctx); err != nil {
			deps[name] = DependencyStatus{Status: StatusUnhealthy, Error: err.Error()}
			healthy = false
			continue
		}
		deps[name] = DependencyStatus{Status: StatusOK}
	}

	status := StatusOK
	if !healthy {
		status = StatusDegraded
	}
	return Report{Status: status, Dependencies: deps}
}
