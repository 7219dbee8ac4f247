package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
)

const msgEmployeeDeleted = "employee deleted"

func newEmployeeCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage employees and their credentials",
	}
	cmd.AddCommand(
		newEmployeeCreateCommand(rt),
		newEmployeeListCommand(rt),
		newEmployeeGetCommand(rt),
		newEmployeeUpdateCommand(rt),
		newEmployeeDeleteCommand(rt),
		newEmployeeDeactivateCommand(rt),
		newEmployeeLoginCommand(rt),
		newEmployeePasswdCommand(rt),
	)
	return cmd
}

// employeeFlags are shared by create and update.
type employeeFlags struct {
	name, email, phone, position, password string
	active, passwordStdin                  bool
}

func (f *employeeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Full name")
	cmd.Flags().StringVar(&f.email, "email", "", "Login email (unique, case-insensitive)")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Contact phone")
	cmd.Flags().StringVar(&f.position, "position", "", "One of: manager, cashier, stock")
	cmd.Flags().StringVar(&f.password, "password", "", "Password")
	cmd.Flags().BoolVar(&f.passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().BoolVar(&f.active, "active", true, "Whether the employee is active")
}

func newEmployeeCreateCommand(rt *runtime) *cobra.Command {
	var f employeeFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readSecret(cmd, f.password, f.passwordStdin)
			if err != nil {
				return err
			}
			in := employeeInput{Name: f.name, Email: f.email, Phone: f.phone, Position: f.position, Password: password}
			if err := validateInput(in); err != nil {
				return err
			}
			created, err := rt.svc.Employees.Create(cmd.Context(), domain.NewEmployee{
				Name:     f.name,
				Email:    f.email,
				Phone:    f.phone,
				Position: f.position,
				Password: password,
				IsActive: changedBool(cmd, "active", f.active),
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd, created)
		},
	}
	f.register(cmd)
	return cmd
}

func newEmployeeListCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live employees ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := rt.svc.Employees.List(cmd.Context())
			if err != nil {
				return err
			}
			if items == nil {
				items = []*domain.Employee{}
			}
			return writeJSON(cmd, items)
		},
	}
}

func newEmployeeGetCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a live employee",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])
			e, err := rt.svc.Employees.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeJSON(cmd, e)
		},
	}
}

func newEmployeeUpdateCommand(rt *runtime) *cobra.Command {
	var f employeeFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Apply the supplied fields to an employee",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])
			patch := domain.EmployeePatch{
				Name:     changedString(cmd, "name", f.name),
				Email:    changedString(cmd, "email", f.email),
				Phone:    changedString(cmd, "phone", f.phone),
				Position: changedString(cmd, "position", f.position),
				Password: changedString(cmd, "password", f.password),
				IsActive: changedBool(cmd, "active", f.active),
			}
			if f.passwordStdin {
				password, err := readSecret(cmd, "", true)
				if err != nil {
					return err
				}
				patch.Password = &password
			}
			if patch == (domain.EmployeePatch{}) {
				return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
			}
			in := employeePatchInput{
				Name:     patch.Name,
				Email:    patch.Email,
				Phone:    patch.Phone,
				Position: patch.Position,
				Password: patch.Password,
			}
			if err := validateInput(in); err != nil {
				return err
			}
			updated, err := rt.svc.Employees.Update(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			return writeJSON(cmd, updated)
		},
	}
	f.register(cmd)
	return cmd
}

func newEmployeeDeleteCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete an employee; the email stays reserved",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])
			if err := rt.svc.Employees.SoftDelete(cmd.Context(), id); err != nil {
				return err
			}
			return writeJSON(cmd, ports.Confirmation{ID: id, Message: msgEmployeeDeleted})
		},
	}
}

func newEmployeeDeactivateCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Mark an employee inactive; reverse with update --active",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])
			conf, err := rt.svc.Employees.Deactivate(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeJSON(cmd, conf)
		},
	}
}

func newEmployeeLoginCommand(rt *runtime) *cobra.Command {
	var (
		email, password string
		passwordStdin   bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check an employee's email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd, password, passwordStdin)
			if err != nil {
				return err
			}
			if err := validateInput(loginInput{Email: email, Password: secret}); err != nil {
				return err
			}
			emp, ok, err := rt.svc.Employees.Authenticate(cmd.Context(), email, secret)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrUnauthorized
			}
			return writeJSON(cmd, emp)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func newEmployeePasswdCommand(rt *runtime) *cobra.Command {
	var (
		current, next string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "passwd <id>",
		Short: "Change an employee's password after proving the current one",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])
			if passwordStdin {
				if cmd.Flags().Changed("current") || cmd.Flags().Changed("new") {
					return fmt.Errorf("%w: --password-stdin cannot be combined with --current or --new", ErrInvalidInput)
				}
				lines, err := readLines(cmd, 2)
				if err != nil {
					return err
				}
				current, next = lines[0], lines[1]
			}
			if err := validateInput(passwordChangeInput{Current: current, Next: next}); err != nil {
				return err
			}
			conf, err := rt.svc.Employees.ChangePassword(cmd.Context(), id, current, next)
			if err != nil {
				return err
			}
			return writeJSON(cmd, conf)
		},
	}
	cmd.Flags().StringVar(&current, "current", "", "Current password")
	cmd.Flags().StringVar(&next, "new", "", "New password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the current and new password from stdin, one per line")
	return cmd
}
