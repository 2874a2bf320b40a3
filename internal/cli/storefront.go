package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/storecms/internal/service"
)

func newStorefrontCmd() *cobra.Command {
	cmd := needsAPI(&cobra.Command{
		Use:   "storefront",
		Short: "Preview the public storefront views",
	})

	product := &cobra.Command{
		Use:   "product <slug>",
		Short: "Show a product as the storefront renders it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := service.NewStorefront(deps()).WatchProduct(args[0])
			return show(cmd, ctrl, func(w io.Writer, d service.ProductDetail) {
				fmt.Fprintf(w, "%s (%s)\n", d.Name, d.Slug)
				if d.Category != "" {
					fmt.Fprintf(w, "Category:  %s\n", d.Category)
				}
				fmt.Fprintf(w, "Price:     %s\n", formatPricing(d.Pricing))
				fmt.Fprintf(w, "In stock:  %s\n", yesNo(d.InStock))
				if len(d.Colors) > 0 {
					fmt.Fprintf(w, "Colors:    %s\n", strings.Join(d.Colors, ", "))
				}
				if len(d.Sizes) > 0 {
					fmt.Fprintf(w, "Sizes:     %s\n", strings.Join(d.Sizes, ", "))
				}
				for _, p := range d.Details {
					fmt.Fprintf(w, "  %s: %s\n", p.Key, p.Value)
				}
				for i, img := range d.Images {
					fmt.Fprintf(w, "  [%d] %s\n", i+1, img)
				}
			})
		},
	}

	featured := &cobra.Command{
		Use:   "featured",
		Short: "List the featured product cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := service.NewStorefront(deps()).Featured(cmd.Context())
			if err != nil {
				return callErr("load featured products", err)
			}
			if flagOutput == "json" {
				return printJSON(cmd.OutOrStdout(), cards)
			}
			w := cmd.OutOrStdout()
			if len(cards) == 0 {
				fmt.Fprintln(w, "No featured products.")
				return nil
			}
			fmt.Fprintf(w, "%-32s  %-20s  %-18s  %s\n", "NAME", "CATEGORY", "PRICE", "BADGES")
			for _, c := range cards {
				fmt.Fprintf(w, "%-32s  %-20s  %-18s  %s\n", c.Name, c.Category, formatPricing(c.Pricing), badges(c))
			}
			return nil
		},
	}

	categories := &cobra.Command{
		Use:   "categories",
		Short: "List the categories shown on the landing page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := service.NewStorefront(deps()).LandingCategories(cmd.Context())
			if err != nil {
				return callErr("load landing categories", err)
			}
			if flagOutput == "json" {
				return printJSON(cmd.OutOrStdout(), cats)
			}
			w := cmd.OutOrStdout()
			for _, c := range cats {
				fmt.Fprintf(w, "%-24s  %-24s  %s\n", c.Name, c.Slug, c.Image)
			}
			return nil
		},
	}

	cmd.AddCommand(product, featured, categories)
	return cmd
}

func formatPricing(p service.Pricing) string {
	if p.OriginalPrice != nil {
		return fmt.Sprintf("%.2f (was %.2f)", p.Price, *p.OriginalPrice)
	}
	return fmt.Sprintf("%.2f", p.Price)
}

func badges(c service.FeaturedProduct) string {
	var b []string
	if c.IsHighlight {
		b = append(b, "highlight")
	}
	if c.IsRecommended {
		b = append(b, "recommended")
	}
	if c.IsUpsell {
		b = append(b, "upsell")
	}
	if len(b) == 0 {
		return "-"
	}
	return strings.Join(b, ",")
}
