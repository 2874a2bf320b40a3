package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/me/storecms/internal/service"
	"github.com/me/storecms/pkg/model"
)

func newAttributesCmd() *cobra.Command {
	cmd := needsAPI(&cobra.Command{
		Use:     "attributes",
		Aliases: []string{"attrs"},
		Short:   "Manage product attribute definitions",
	})

	var (
		lf       listFlags
		category string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List attributes",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := lf.params()
			if category != "" {
				params["category"] = category
			}
			ctrl := service.NewAttributes(deps()).List(service.ListOptions{
				Page:   lf.zeroBasedPage(),
				Limit:  lf.limit,
				Params: params,
			})
			return showList(cmd, ctrl, "No attributes found.", func(w io.Writer, items []model.ProductAttribute) {
				fmt.Fprintf(w, "%-6s  %-24s  %-20s  %-6s  %s\n", "ID", "NAME", "CATEGORY", "ACTIVE", "UPDATED")
				for _, a := range items {
					fmt.Fprintf(w, "%-6s  %-24s  %-20s  %-6s  %s\n", a.ID, a.Name, a.Category, yesNo(a.IsActive), ago(a.UpdatedAt))
				}
			})
		},
	}
	lf.register(list)
	list.Flags().StringVar(&category, "category", "", "Only attributes of this category")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an attribute",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := service.NewAttributes(deps()).Watch(args[0])
			return show(cmd, ctrl, func(w io.Writer, a model.ProductAttribute) {
				fmt.Fprintf(w, "ID:        %s\nName:      %s\nCategory:  %s\nActive:    %s\n", a.ID, a.Name, a.Category, yesNo(a.IsActive))
				if a.UpdatedBy != "" {
					fmt.Fprintf(w, "Updated:   %s by %s\n", ago(a.UpdatedAt), a.UpdatedBy)
				}
			})
		},
	}

	var in model.ProductAttributeInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an attribute",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Name == "" || in.Category == "" {
				return fmt.Errorf("--name and --category are required")
			}
			if err := service.NewAttributes(deps()).Create(cmd.Context(), in); err != nil {
				return callErr("create attribute", err)
			}
			return result(cmd, in, "Created attribute %s", in.Name)
		},
	}
	create.Flags().StringVar(&in.Name, "name", "", "Attribute name")
	create.Flags().StringVar(&in.Category, "category", "", "Attribute category")
	create.Flags().BoolVar(&in.IsActive, "active", true, "Enable the attribute")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an attribute",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := service.NewAttributes(deps()).Delete(cmd.Context(), args[0]); err != nil {
				return callErr("delete attribute", err)
			}
			return result(cmd, map[string]any{"deleted": args[0]}, "Deleted attribute %s", args[0])
		},
	}

	cmd.AddCommand(list, showCmd, create, del)
	return cmd
}
