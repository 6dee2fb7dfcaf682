package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentfashion/storefront/internal/catalog"
	"github.com/agentfashion/storefront/pkg/enums"
)

var (
	catalogQuery    string
	catalogBrand    string
	catalogCategory string

	brandsPage       int
	brandsPageSize   int
	brandsSearch     string
	brandsSortBy     string
	brandsSortOrder  string
	brandDescription string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse products",
	RunE:  runCatalogList,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show [product-id]",
	Short: "Show a product with its variants",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogShow,
}

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "List and manage brands",
	RunE:  runBrandsList,
}

var brandsCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a brand (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := storefront.Catalog.CreateBrand(cmd.Context(), args[0], brandDescription)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created brand %s\n", created.BrandID)
		return nil
	},
}

var brandsDeleteCmd = &cobra.Command{
	Use:   "delete [brand-id]",
	Short: "Delete a brand (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := storefront.Catalog.DeleteBrand(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), status.Message)
		return nil
	},
}

func init() {
	catalogCmd.Flags().StringVarP(&catalogQuery, "query", "q", "", "match product, brand or category name")
	catalogCmd.Flags().StringVar(&catalogBrand, "brand", "", "brand id")
	catalogCmd.Flags().StringVar(&catalogCategory, "category", "", "category id")
	catalogCmd.AddCommand(catalogShowCmd)

	brandsCmd.Flags().IntVar(&brandsPage, "page", 1, "page number")
	brandsCmd.Flags().IntVar(&brandsPageSize, "page-size", 20, "brands per page")
	brandsCmd.Flags().StringVar(&brandsSearch, "search", "", "filter by name")
	brandsCmd.Flags().StringVar(&brandsSortBy, "sort-by", "name", "sort field")
	brandsCmd.Flags().StringVar(&brandsSortOrder, "order", "asc", "asc or desc")
	brandsCreateCmd.Flags().StringVar(&brandDescription, "description", "", "brand description")
	brandsCmd.AddCommand(brandsCreateCmd, brandsDeleteCmd)
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	awaitStartup(cmd)
	products := storefront.Catalog.Search(catalog.Filter{
		Query:      catalogQuery,
		BrandID:    catalogBrand,
		CategoryID: catalogCategory,
	})
	if len(products) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No products found.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tCATEGORY\tPRICE\tSAVED")
	for _, p := range products {
		saved := ""
		if storefront.Wishlist.Contains(p.ProductID) {
			saved = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ProductID, p.Name, p.BrandName, p.CategoryName, p.Price.StringFixed(0), saved)
	}
	return tw.Flush()
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	product, err := storefront.Catalog.GetProduct(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n%s\n%s / %s\n\n", product.Name, product.ProductID, product.Description, product.BrandName, product.CategoryName)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIANT\tCOLOR\tSIZE\tPRICE\tSTOCK")
	for _, v := range product.Variants {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", v.VariantID, v.Color, v.Size, v.Price.StringFixed(0), v.Stock)
	}
	return tw.Flush()
}

func runBrandsList(cmd *cobra.Command, args []string) error {
	order, err := enums.ParseSortOrder(brandsSortOrder)
	if err != nil {
		return err
	}
	page, err := storefront.Catalog.ListBrands(cmd.Context(), catalog.BrandQuery{
		Page:       brandsPage,
		PageSize:   brandsPageSize,
		NameSearch: brandsSearch,
		SortBy:     brandsSortBy,
		SortOrder:  order,
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, b := range page.Brands {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", b.BrandID, b.Name, b.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d brands)\n", page.CurrentPage, page.TotalPages, page.TotalCount)
	return nil
}
