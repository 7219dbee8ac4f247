package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/storefront/backoffice/internal/health"
)

// ErrDegraded is returned after printing a report with an unhealthy dependency.
var ErrDegraded = errors.New("dependencies unavailable")

func newHealthCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that storage and the login throttle are reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checker := rt.svc.Health
			if checker == nil {
				checker = health.NewChecker(0)
			}
			report := checker.Readiness(cmd.Context())
			if err := writeJSON(cmd, report); err != nil {
				return err
			}
			if !report.Healthy() {
				return ErrDegraded
			}
			return nil
		},
	}
	// Runs even when connecting failed so the failure shows up in the report.
	cmd.Annotations = map[string]string{annotationDegraded: "true"}
	return cmd
}
