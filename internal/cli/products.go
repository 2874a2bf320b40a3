package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/storecms/internal/service"
	"github.com/me/storecms/pkg/cmsapi"
	"github.com/me/storecms/pkg/model"
)

func newProductsCmd() *cobra.Command {
	cmd := needsAPI(&cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Manage catalogue products",
	})
	cmd.AddCommand(
		newProductsListCmd(),
		newProductsShowCmd(),
		newProductsCreateCmd(),
		newProductsUpdateCmd(),
		newProductsDeleteCmd(),
		newProductsVariantsCmd(),
		newProductsGalleryCmd(),
	)
	return cmd
}

func newProductsListCmd() *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := service.NewProducts(deps()).List(service.ListOptions{
				Page:   lf.zeroBasedPage(),
				Limit:  lf.limit,
				Params: lf.params(),
			})
			return showList(cmd, ctrl, "No products found.", func(w io.Writer, items []model.Product) {
				fmt.Fprintf(w, "%-6s  %-32s  %-24s  %-10s  %s\n", "ID", "NAME", "CATEGORY", "FROM", "UPDATED")
				fmt.Fprintf(w, "%-6s  %-32s  %-24s  %-10s  %s\n", "--", "----", "--------", "----", "-------")
				for _, p := range items {
					category := "-"
					if p.Category != nil {
						category = p.Category.Name
					}
					price := service.ComputePricing(p.Additionals).Price
					fmt.Fprintf(w, "%-6s  %-32s  %-24s  %-10.2f  %s\n", p.ID, p.Name, category, price, ago(p.UpdatedAt))
				}
			})
		},
	}
	lf.register(cmd)
	return cmd
}

func newProductsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a product with its variants and gallery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := service.NewProducts(deps()).Detail(cmd.Context(), id)
			if err != nil {
				return callErr("show product", err)
			}
			if flagOutput == "json" {
				return printJSON(cmd.OutOrStdout(), p)
			}

			w := cmd.OutOrStdout()
			pricing := service.ComputePricing(p.Additionals)
			fmt.Fprintf(w, "ID:          %s\n", p.ID)
			fmt.Fprintf(w, "Name:        %s\n", p.Name)
			fmt.Fprintf(w, "Slug:        %s\n", p.Slug)
			if p.Category != nil {
				fmt.Fprintf(w, "Category:    %s\n", p.Category.Name)
			}
			fmt.Fprintf(w, "Price:       %.2f\n", pricing.Price)
			if pricing.OriginalPrice != nil {
				fmt.Fprintf(w, "Was:         %.2f\n", *pricing.OriginalPrice)
			}
			fmt.Fprintf(w, "Highlight:   %s\n", yesNo(p.IsHighlight))
			fmt.Fprintf(w, "Updated:     %s\n", ago(p.UpdatedAt))

			if len(p.Additionals) > 0 {
				fmt.Fprintf(w, "\n%-6s  %-20s  %10s  %6s  %s\n", "ID", "VARIANT", "PRICE", "STOCK", "DISCOUNT")
				for _, a := range p.Additionals {
					discount := "-"
					if a.Discount > 0 {
						discount = fmt.Sprintf("%g %s", a.Discount, strings.ToLower(a.DiscountType))
					}
					fmt.Fprintf(w, "%-6s  %-20s  %10.2f  %6d  %s\n", a.ID, a.Name, a.Price, a.Stock, discount)
				}
			}
			if len(p.Galleries) > 0 {
				fmt.Fprintln(w, "\nGallery:")
				for _, g := range p.Galleries {
					fmt.Fprintf(w, "  %d. %s\n", g.Orders, g.Image)
				}
			}
			return nil
		},
	}
}

// productForm collects the product flags shared by create and update.
type productForm struct {
	in       model.ProductInput
	active   bool
	variants []string
	images   []string
}

func (f *productForm) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.in.Name, "name", "", "Product name")
	fl.StringVar(&f.in.Description, "description", "", "Description")
	fl.StringVar(&f.in.Image, "image", "", "Main image URL")
	fl.IntVar(&f.in.ProductCategoryID, "category-id", 0, "Category id")
	fl.BoolVar(&f.in.IsHighlight, "highlight", false, "Show as highlight")
	fl.BoolVar(&f.in.IsRecommended, "recommended", false, "Show as recommended")
	fl.BoolVar(&f.in.IsUpsell, "upsell", false, "Show as upsell")
	fl.BoolVar(&f.active, "active", true, "Publish the product")
	fl.StringArrayVar(&f.variants, "variant", nil, "Variant as NAME=PRICE[:STOCK] (repeatable)")
	fl.StringArrayVar(&f.images, "gallery", nil, "Gallery image URL (repeatable, in order)")
}

func (f *productForm) input() (model.ProductInput, error) {
	in := f.in
	if in.Name == "" {
		return in, fmt.Errorf("--name is required")
	}
	for _, v := range f.variants {
		a, err := parseVariant(v)
		if err != nil {
			return in, err
		}
		in.Additionals = append(in.Additionals, a)
	}
	for i, img := range f.images {
		in.Galleries = append(in.Galleries, model.ProductGallery{Image: img, Orders: i + 1})
	}
	active := f.active
	in.IsActive = &active
	return in, nil
}

func newProductsCreateCmd() *cobra.Command {
	var form productForm
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product with variants and gallery images",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := form.input()
			if err != nil {
				return err
			}
			p, err := service.NewProducts(deps()).Create(cmd.Context(), in)
			if err != nil {
				return callErr("create product", err)
			}
			return result(cmd, p, "Created product %s (%s)", p.ID, p.Name)
		},
	}
	form.register(cmd)
	return cmd
}

func newProductsUpdateCmd() *cobra.Command {
	var form productForm
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product; --variant replaces the whole variant set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in, err := form.input()
			if err != nil {
				return err
			}
			p, err := service.NewProducts(deps()).Update(cmd.Context(), id, in)
			if err != nil && p.ID == "" {
				return callErr("update product", err)
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", cmsapi.Message(err))
			}
			return result(cmd, p, "Updated product %s", p.ID)
		},
	}
	form.register(cmd)
	return cmd
}

func newProductsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := service.NewProducts(deps()).Delete(cmd.Context(), args[0]); err != nil {
				return callErr("delete product", err)
			}
			return result(cmd, map[string]any{"deleted": args[0]}, "Deleted product %s", args[0])
		},
	}
}

func newProductsVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants <product-id>",
		Short: "List the variants of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			adds, err := service.NewAdditionals(deps()).List(cmd.Context(), id)
			if err != nil {
				return callErr("list variants", err)
			}
			if flagOutput == "json" {
				return printJSON(cmd.OutOrStdout(), adds)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-6s  %-20s  %10s  %6s  %s\n", "ID", "NAME", "PRICE", "STOCK", "ATTRIBUTES")
			for _, a := range adds {
				pairs := service.ParseAttributes(a.Attributes)
				attrs := make([]string, len(pairs))
				for i, p := range pairs {
					attrs[i] = p.Key + "=" + p.Value
				}
				fmt.Fprintf(w, "%-6s  %-20s  %10.2f  %6d  %s\n", a.ID, a.Name, a.Price, a.Stock, strings.Join(attrs, ", "))
			}
			return nil
		},
	}
}

func newProductsGalleryCmd() *cobra.Command {
	var add, remove []string
	cmd := &cobra.Command{
		Use:   "gallery <product-id>",
		Short: "Add uploaded images to a product gallery or remove gallery entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(add) == 0 && len(remove) == 0 {
				return fmt.Errorf("nothing to do: pass --add or --remove")
			}
			if err := service.NewProducts(deps()).UpdateGalleries(cmd.Context(), args[0], add, remove); err != nil {
				return callErr("update gallery", err)
			}
			return result(cmd, map[string]any{"added": add, "removed": remove},
				"Gallery of product %s: %d added, %d removed", args[0], len(add), len(remove))
		},
	}
	cmd.Flags().StringSliceVar(&add, "add", nil, "Image URL to add (repeatable)")
	cmd.Flags().StringSliceVar(&remove, "remove", nil, "Gallery id to remove (repeatable)")
	return cmd
}

// parseVariant reads NAME=PRICE[:STOCK].
func parseVariant(s string) (model.ProductAdditional, error) {
	name, rest, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return model.ProductAdditional{}, fmt.Errorf("invalid variant %q: want NAME=PRICE[:STOCK]", s)
	}
	priceStr, stockStr, hasStock := strings.Cut(rest, ":")
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return model.ProductAdditional{}, fmt.Errorf("invalid variant price %q", priceStr)
	}
	a := model.ProductAdditional{Name: strings.TrimSpace(name), Price: price}
	if hasStock {
		if a.Stock, err = strconv.Atoi(stockStr); err != nil {
			return model.ProductAdditional{}, fmt.Errorf("invalid variant stock %q", stockStr)
		}
	}
	return a, nil
}
