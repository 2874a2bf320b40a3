package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/me/storecms/pkg/model"
)

func newOptionsCmd() *cobra.Command {
	cmd := needsAPI(&cobra.Command{
		Use:   "options",
		Short: "Show the select options used by the edit forms",
	})

	categories := &cobra.Command{
		Use:   "categories",
		Short: "List category options",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := newOptionService().ProductCategories(cmd.Context())
			if err != nil {
				return callErr("load category options", err)
			}
			return printOptions(cmd, opts)
		},
	}

	var category string
	attributes := &cobra.Command{
		Use:   "attributes",
		Short: "List attribute options",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := newOptionService().ProductAttributes(cmd.Context())
			if err != nil {
				return callErr("load attribute options", err)
			}
			if flagOutput == "json" {
				return printJSON(cmd.OutOrStdout(), opts)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-8s  %-24s  %s\n", "ID", "LABEL", "CATEGORY")
			for _, o := range opts {
				if category != "" && o.Category != category {
					continue
				}
				fmt.Fprintf(w, "%-8s  %-24s  %s\n", o.ID, o.Label, o.Category)
			}
			return nil
		},
	}
	attributes.Flags().StringVar(&category, "category", "", "Only options of this category")

	discounts := &cobra.Command{
		Use:   "discounts",
		Short: "List discount types",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printOptions(cmd, newOptionService().DiscountTypes())
		},
	}

	cmd.AddCommand(categories, attributes, discounts)
	return cmd
}

func printOptions(cmd *cobra.Command, opts []model.Option) error {
	if flagOutput == "json" {
		return printJSON(cmd.OutOrStdout(), opts)
	}
	writeOptions(cmd.OutOrStdout(), opts)
	return nil
}

func writeOptions(w io.Writer, opts []model.Option) {
	fmt.Fprintf(w, "%-12s  %s\n", "ID", "LABEL")
	for _, o := range opts {
		fmt.Fprintf(w, "%-12s  %s\n", o.ID, o.Label)
	}
}
