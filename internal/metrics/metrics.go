// Package metrics defines the Prometheus collectors for the back-office core.
// It is the single source of truth for metric names, labels, and help strings.
//
// Collectors register with the default registry on import. The CLI is a
// short-lived process, so Push sends the gathered values to a Pushgateway
// once a command finishes.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "backoffice"

// Outcome label values.
const (
	OutcomeOK        = "ok"
	OutcomeDuplicate = "duplicate"
	OutcomeNotFound  = "not_found"
	OutcomeDenied    = "unauthorized"
	OutcomeError     = "error"
)

// RecordOperationsTotal counts lifecycle operations.
// Labels:
//   - resource: "category" or "employee"
//   - op: "create", "update", "soft_delete", "deactivate", "change_password"
//   - outcome: one of the Outcome* constants
var RecordOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_operations_total",
		Help:      "Total number of record lifecycle operations, by resource, operation and outcome.",
	},
	[]string{"resource", "op", "outcome"},
)

// AuthAttemptsTotal counts employee authentication attempts.
// Label:
//   - result: "success", "rejected" or "throttled"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of employee authentication attempts, by result.",
	},
	[]string{"result"},
)

// Push sends every collector in the default registry to the Pushgateway at
// url under the given job name. An empty url is a no-op.
func Push(url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(prometheus.DefaultGatherer).Push(); err != nil {
		return fmt.Errorf("metrics push: %w", err)
	}
	return nil
}
