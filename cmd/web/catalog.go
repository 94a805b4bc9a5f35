package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"lunara/internal/apiclient"
	"lunara/internal/config"
	"lunara/internal/models"
	"lunara/internal/services"
	"lunara/internal/view"

	"github.com/spf13/cobra"
)

// CatalogOptions select which products to list.
type CatalogOptions struct {
	APIBaseURL string
	Category   string
	Search     string
}

func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List products as the storefront shows them",
		Long: `Load the catalog from the backend (or the bundled fallback catalog when
the backend is unreachable) and print product cards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL := opts.APIBaseURL
			if baseURL == "" {
				baseURL = config.LoadConfig().APIBaseURL
			}
			catalog := services.NewCatalog(apiclient.New(baseURL))
			catalog.Load(cmd.Context())

			var products []models.Product
			if opts.Search != "" {
				products = catalog.Search(opts.Search)
			} else {
				products = catalog.ByCategory(models.Category(opts.Category))
			}
			return printCards(cmd.OutOrStdout(), rootOpts.Format, view.ProductCards(products), catalog.UsingFallback())
		},
	}

	cmd.Flags().StringVar(&opts.APIBaseURL, "api", "", "backend base URL (overrides API_BASE_URL)")
	cmd.Flags().StringVarP(&opts.Category, "category", "c", string(models.CategoryAll), "category filter (all|Rings|Necklaces|Bracelets|Earrings)")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "case-insensitive name search")

	return cmd
}

func printCards(w io.Writer, format string, cards []view.ProductCard, fallback bool) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Fallback bool               `json:"fallback"`
			Products []view.ProductCard `json:"products"`
		}{fallback, cards})
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tRATING\tSTATUS")
	for _, c := range cards {
		price := c.Price
		if c.Badge != "" {
			price += " (was " + c.OriginalPrice + ")"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Category, price, c.Stars, c.ButtonLabel)
	}
	if fallback {
		fmt.Fprintln(tw, "(backend unreachable, showing local catalog)")
	}
	return tw.Flush()
}
