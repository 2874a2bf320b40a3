package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/storecms/internal/service"
	"github.com/me/storecms/pkg/model"
)

func newCategoriesCmd() *cobra.Command {
	cmd := needsAPI(&cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage product categories and sub-categories",
	})
	cmd.AddCommand(
		newCategoriesListCmd(),
		newCategoriesShowCmd(),
		newCategoriesCreateCmd(),
		newCategoriesUpdateCmd(),
		newCategoriesAddChildCmd(),
		newCategoriesSetImageCmd(),
		newCategoriesParentsCmd(),
		newCategoriesDeleteCmd(),
	)
	return cmd
}

func newCategoriesListCmd() *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List top-level categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := service.NewCategories(deps()).List(service.ListOptions{
				Page:   lf.zeroBasedPage(),
				Limit:  lf.limit,
				Params: lf.params(),
			})
			return showList(cmd, ctrl, "No categories found.", func(w io.Writer, items []model.ProductCategory) {
				fmt.Fprintf(w, "%-6s  %-28s  %-28s  %-8s  %s\n", "ID", "NAME", "SLUG", "LANDING", "ACTIVE")
				fmt.Fprintf(w, "%-6s  %-28s  %-28s  %-8s  %s\n", "--", "----", "----", "-------", "------")
				for _, c := range items {
					fmt.Fprintf(w, "%-6s  %-28s  %-28s  %-8s  %s\n", c.ID, c.Name, c.Slug, yesNo(c.IsLandingPage), yesNo(c.IsActive))
				}
			})
		},
	}
	lf.register(cmd)
	return cmd
}

func newCategoriesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a category and its sub-categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := service.NewCategories(deps()).Detail(cmd.Context(), id)
			if err != nil {
				return callErr("show category", err)
			}
			if flagOutput == "json" {
				return printJSON(cmd.OutOrStdout(), c)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "ID:       %s\nName:     %s\nSlug:     %s\nLanding:  %s\n", c.ID, c.Name, c.Slug, yesNo(c.IsLandingPage))
			if len(c.SubCategories) > 0 {
				fmt.Fprintln(w, "\nSub-categories:")
				for _, s := range c.SubCategories {
					fmt.Fprintf(w, "  %-6s  %-24s  %s\n", s.ID, s.Name, s.Slug)
				}
			}
			return nil
		},
	}
}

// categoryFlags binds the category input flags.
func categoryFlags(cmd *cobra.Command, in *model.CategoryInput, subs *string) {
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "Category name")
	f.StringVar(&in.Slug, "slug", "", "Slug (derived from the name when empty)")
	f.StringVar(&in.Description, "description", "", "Description")
	f.StringVar(&in.Image, "image", "", "Image URL")
	f.BoolVar(&in.IsLandingPage, "landing", false, "Show on the landing page")
	if subs != nil {
		f.StringVar(subs, "subs", "", "Comma-separated sub-category names")
	}
}

func splitNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func newCategoriesCreateCmd() *cobra.Command {
	var (
		in   model.CategoryInput
		subs string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category with optional sub-categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Name == "" {
				return fmt.Errorf("--name is required")
			}
			in.SubCategories = splitNames(subs)
			c, err := service.NewCategories(deps()).CreateWithSubs(cmd.Context(), in)
			if err != nil {
				return callErr("create category", err)
			}
			newOptionService().Invalidate()
			return result(cmd, c, "Created category %s (%s)", c.ID, c.Slug)
		},
	}
	categoryFlags(cmd, &in, &subs)
	return cmd
}

func newCategoriesUpdateCmd() *cobra.Command {
	var (
		in   model.CategoryInput
		subs string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category and add new sub-categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in.SubCategories = splitNames(subs)
			c, err := service.NewCategories(deps()).UpdateWithSubs(cmd.Context(), id, in)
			if err != nil {
				return callErr("update category", err)
			}
			return result(cmd, c, "Updated category %s", args[0])
		},
	}
	categoryFlags(cmd, &in, &subs)
	return cmd
}

func newCategoriesAddChildCmd() *cobra.Command {
	var in model.CategoryInput
	cmd := &cobra.Command{
		Use:   "add-child <parent-id>",
		Short: "Create a sub-category under a parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if in.Name == "" {
				return fmt.Errorf("--name is required")
			}
			c, err := service.NewCategories(deps()).CreateChild(cmd.Context(), parentID, in)
			if err != nil {
				return callErr("create sub-category", err)
			}
			return result(cmd, c, "Created sub-category %s (%s)", c.ID, c.Slug)
		},
	}
	categoryFlags(cmd, &in, nil)
	return cmd
}

func newCategoriesSetImageCmd() *cobra.Command {
	var image string
	cmd := &cobra.Command{
		Use:   "set-image <id>",
		Short: "Replace a category image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := service.NewCategories(deps()).UpdateImage(cmd.Context(), id, image)
			if err != nil {
				return callErr("update category image", err)
			}
			return result(cmd, c, "Updated image of category %s", c.ID)
		},
	}
	cmd.Flags().StringVar(&image, "image", "", "Image URL")
	cmd.MarkFlagRequired("image")
	return cmd
}

func newCategoriesParentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parents",
		Short: "List every category as a parent option",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := service.NewCategories(deps()).Parents(cmd.Context())
			if err != nil {
				return callErr("list parent categories", err)
			}
			return printOptions(cmd, opts)
		},
	}
}

func newCategoriesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := service.NewCategories(deps()).Delete(cmd.Context(), id)
			if err != nil {
				return callErr("delete category", err)
			}
			if !ok {
				return fmt.Errorf("category %d was not deleted", id)
			}
			return result(cmd, map[string]any{"deleted": id}, "Deleted category %d", id)
		},
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
