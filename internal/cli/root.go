// Package cli exposes the category and employee lifecycle as the backoffice
// command tree.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/storefront/backoffice/internal/core/ports"
	"github.com/storefront/backoffice/internal/health"
)

// annotationDegraded marks commands that run on a partial Services, where
// only Health is guaranteed to be set.
const annotationDegraded = "backoffice.degraded"

func runsDegraded(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationDegraded] == "true"
}

// Services are the operations reachable from the command tree.
type Services struct {
	Categories ports.CategoryService
	Employees  ports.EmployeeService
	Health     *health.Checker
}

// Factory builds the services for one invocation. The returned func releases
// whatever the services hold open and is always called once the command ends.
type Factory func(ctx context.Context, log zerolog.Logger) (*Services, func(), error)

type runtime struct {
	factory Factory
	base    zerolog.Logger
	log     zerolog.Logger
	svc     *Services
	release func()
}

func (rt *runtime) close() {
	if rt.release != nil {
		rt.release()
		rt.release = nil
	}
}

// Execute runs the command tree with args and returns the process exit code.
// Results go to stdout as JSON, errors to stderr as a single line.
func Execute(ctx context.Context, args []string, factory Factory, log zerolog.Logger, stdin io.Reader, stdout, stderr io.Writer) int {
	rt := &runtime{factory: factory, base: log, log: log}
	root := newRootCommand(rt)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	rt.close()
	if err != nil && strings.HasPrefix(err.Error(), "unknown command") {
		err = fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	code, msg := ResolveError(err, rt.log)
	if code != ExitOK {
		fmt.Fprintf(stderr, "error: %s\n", msg)
	}
	return code
}

func newRootCommand(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:           "backoffice",
		Short:         "Manage storefront categories and employees",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			rt.log = rt.base.With().
				Str("op_id", uuid.NewString()).
				Str("command", cmd.CommandPath()).
				Logger()
			ctx := rt.log.WithContext(cmd.Context())
			cmd.SetContext(ctx)

			svc, release, err := rt.factory(ctx, rt.log)
			rt.release = release
			if err != nil {
				if !runsDegraded(cmd) || svc == nil || svc.Health == nil {
					return fmt.Errorf("init services: %w", err)
				}
				rt.log.Warn().Err(err).Msg("dependencies unavailable")
			}
			rt.svc = svc
			rt.log.Debug().Msg("command started")
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	})

	root.AddCommand(newCategoryCommand(rt))
	root.AddCommand(newEmployeeCommand(rt))
	root.AddCommand(newHealthCommand(rt))
	return root
}

// writeJSON prints v to the command's stdout as indented JSON.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// idArg requires exactly one positional argument holding a positive identity.
func idArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: %s expects exactly one id argument", ErrInvalidInput, cmd.Name())
	}
	_, err := parseID(args[0])
	return err
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer, got %q", ErrInvalidInput, s)
	}
	return id, nil
}

// readSecret returns flagValue, or the first line of stdin when fromStdin is set.
func readSecret(cmd *cobra.Command, flagValue string, fromStdin bool) (string, error) {
	if !fromStdin {
		return flagValue, nil
	}
	lines, err := readLines(cmd, 1)
	if err != nil {
		return "", err
	}
	return lines[0], nil
}

// readLines reads n newline-terminated secrets from stdin. A missing final
// newline is accepted; missing lines come back empty.
func readLines(cmd *cobra.Command, n int) ([]string, error) {
	r := bufio.NewReader(cmd.InOrStdin())
	lines := make([]string, n)
	for i := range lines {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read password from stdin: %w", err)
		}
		lines[i] = strings.TrimRight(line, "\r\n")
		if err == io.EOF {
			break
		}
	}
	return lines, nil
}

// changedString returns a pointer to value when the named flag was set.
func changedString(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func changedBool(cmd *cobra.Command, name string, value bool) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}
