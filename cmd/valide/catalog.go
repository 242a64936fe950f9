package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/hongminglow/valide/internal/catalog"
	"github.com/hongminglow/valide/internal/models"
)

func runArrivals(ctx context.Context, a *app, args []string) error {
	fs := a.commandFlags("arrivals", "[--category name] [--search text] [--sort order]")
	category := fs.String("category", catalog.AllCategories, "only show this category")
	search := fs.String("search", "", "match product names and descriptions")
	order := fs.String("sort", catalog.SortNewest, "newest, price-asc or price-desc")
	if err := fs.Parse(args); err != nil {
		return err
	}

	products, err := a.catalog.NewArrivals(ctx, *category)
	if err != nil {
		return fmt.Errorf("fetch new arrivals: %w", err)
	}
	a.printProducts(catalog.Sort(catalog.Search(products, *search), *order))
	return nil
}

func runBrand(ctx context.Context, a *app, args []string) error {
	fs := a.commandFlags("brand", "<name> [--search text] [--sort order]")
	search := fs.String("search", "", "match product names and descriptions")
	order := fs.String("sort", catalog.SortNewest, "newest, price-asc or price-desc")
	if err := fs.Parse(args); err != nil {
		return err
	}
	brand, err := oneArg(fs, "brand name")
	if err != nil {
		return err
	}

	products, err := a.catalog.BrandProducts(ctx, brand)
	if err != nil {
		return fmt.Errorf("fetch %s products: %w", brand, err)
	}
	a.printProducts(catalog.Sort(catalog.Search(products, *search), *order))
	return nil
}

func runDesigners(_ context.Context, a *app, args []string) error {
	fs := a.commandFlags("designers", "[--search text] [--category name]")
	search := fs.String("search", "", "match designer names")
	category := fs.String("category", catalog.AllDesignerCategories, "one of All, Luxury, Jewelry, Fashion, Accessories")
	if err := fs.Parse(args); err != nil {
		return err
	}

	designers := catalog.FilterDesigners(*search, *category)
	if len(designers) == 0 {
		a.printf("No designers found\n")
		return nil
	}
	tw := tabwriter.NewWriter(a.term.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY")
	for _, d := range designers {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, d.Name, d.Category)
	}
	return tw.Flush()
}

func runCart(ctx context.Context, a *app, args []string) error {
	fs := a.commandFlags("cart", "<product-id>")
	if err := fs.Parse(args); err != nil {
		return err
	}
	productID, err := oneArg(fs, "product id")
	if err != nil {
		return err
	}
	token := a.provider.Token()
	if token == "" {
		a.warnf("Please log in to add items to your cart\n")
		return &exitError{code: 1}
	}
	if err := a.catalog.AddToCart(ctx, token, productID); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	a.printf("Added %s to your cart\n", productID)
	return nil
}

func (a *app) printProducts(products []models.Product) {
	if len(products) == 0 {
		a.printf("No products found\n")
		return
	}
	tw := tabwriter.NewWriter(a.term.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBRAND\tPRODUCT\tCATEGORY\tPRICE\tIMAGE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t$%.2f\t%s\n",
			p.ID, p.BrandName, p.ProductName, p.Category, p.Price, catalog.CoverImage(p))
	}
	_ = tw.Flush()
}
