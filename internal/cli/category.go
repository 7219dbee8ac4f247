package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
)

const msgCategoryDeleted = "category deleted"

func newCategoryCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Create, list, update and soft-delete categories",
	}
	cmd.AddCommand(
		newCategoryCreateCommand(rt),
		newCategoryListCommand(rt),
		newCategoryGetCommand(rt),
		newCategoryUpdateCommand(rt),
		newCategoryDeleteCommand(rt),
	)
	return cmd
}

func newCategoryCreateCommand(rt *runtime) *cobra.Command {
	var (
		name, description string
		active            bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := categoryInput{Name: name, Description: description}
			if err := validateInput(in); err != nil {
				return err
			}
			created, err := rt.svc.Categories.Create(cmd.Context(), domain.NewCategory{
				Name:        name,
				Description: description,
				IsActive:    changedBool(cmd, "active", active),
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd, created)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Category name (unique, soft-deleted included)")
	cmd.Flags().StringVar(&description, "description", "", "Free-form description")
	cmd.Flags().BoolVar(&active, "active", true, "Whether the category is active")
	return cmd
}

func newCategoryListCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live categories ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := rt.svc.Categories.List(cmd.Context())
			if err != nil {
				return err
			}
			if items == nil {
				items = []*domain.Category{}
			}
			return writeJSON(cmd, items)
		},
	}
}

func newCategoryGetCommand(rt *runtime) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "get <id> | --name <name>",
		Short: "Show a live category by id or by name",
		Args: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("name") {
				return idArg(cmd, args)
			}
			if len(args) != 0 {
				return fmt.Errorf("%w: pass either an id or --name", ErrInvalidInput)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				c   *domain.Category
				err error
			)
			if cmd.Flags().Changed("name") {
				if err := validateInput(categoryInput{Name: name}); err != nil {
					return err
				}
				c, err = rt.svc.Categories.GetByName(cmd.Context(), name)
			} else {
				id, _ := parseID(args[0])
				c, err = rt.svc.Categories.Get(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd, c)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Look the category up by name instead of id")
	return cmd
}

func newCategoryUpdateCommand(rt *runtime) *cobra.Command {
	var (
		name, description string
		active            bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Apply the supplied fields to a category",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])
			patch := domain.CategoryPatch{
				Name:        changedString(cmd, "name", name),
				Description: changedString(cmd, "description", description),
				IsActive:    changedBool(cmd, "active", active),
			}
			if patch.Name == nil && patch.Description == nil && patch.IsActive == nil {
				return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
			}
			if err := validateInput(categoryPatchInput{Name: patch.Name, Description: patch.Description}); err != nil {
				return err
			}
			updated, err := rt.svc.Categories.Update(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			return writeJSON(cmd, updated)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description (empty clears it)")
	cmd.Flags().BoolVar(&active, "active", true, "Set the active flag")
	return cmd
}

func newCategoryDeleteCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Soft-delete a category; its name stays reserved",
		Args:  idArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := parseID(args[0])
			if err := rt.svc.Categories.SoftDelete(cmd.Context(), id); err != nil {
				return err
			}
			return writeJSON(cmd, ports.Confirmation{ID: id, Message: msgCategoryDeleted})
		},
	}
}
