package service

import (
	"context"
	"errors"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/metrics"
)

// uniqueCounter counts records holding value for one constrained field.
// Repository methods such as CountByName satisfy it as method values.
type uniqueCounter func(ctx context.Context, value string, excludeID int64, scope domain.Scope) (int64, error)

// checkUnique reports whether value is already held by a record other than
// excludeID. Soft-deleted records always count: a deleted holder keeps its
// value until it is purged, and nothing purges.
func checkUnique(ctx context.Context, count uniqueCounter, value string, excludeID int64) (taken bool, err error) {
	n, err := count(ctx, value, excludeID, domain.IncludeDeleted)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// outcomeOf maps an operation error to a metrics outcome label.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrAlreadyExists):
		return metrics.OutcomeDuplicate
	case errors.Is(err, domain.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return metrics.OutcomeDenied
	default:
		return metrics.OutcomeError
	}
}

func observe(resource, op string, err error) {
	metrics.RecordOperationsTotal.WithLabelValues(resource, op, outcomeOf(err)).Inc()
}
