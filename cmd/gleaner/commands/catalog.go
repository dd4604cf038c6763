package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/gleaner/pkg/extract/catalog"
	"github.com/jmylchreest/gleaner/pkg/gleaner"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog <input>...",
	Short: "Extract product records from listing pages",
	Long: `Clean marketplace listing pages and extract one record per product.

Inputs are files, glob patterns or URLs. Glob matches are processed in
natural order (catalog_2 before catalog_10) and a product seen in an
earlier input, or an earlier run when --store is set, is dropped.

Shapes:
  list     every <li> is a product (image alt is the name)
  product  every div.product-item card is a product

Examples:
  gleaner catalog 'catalog_*.txt' --category kettle
  gleaner catalog cards.html --shape product -o cards.xlsx
  gleaner catalog https://www.coupang.com/np/search?q=pan --fetch-mode dynamic`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	flags := catalogCmd.Flags()
	flags.StringP("shape", "s", string(catalog.ShapeList), "item layout: list, product")
	flags.StringP("category", "c", "", "category stored on every record")
	flags.String("origin", "", "origin for relative product links (default "+catalog.DefaultOrigin+")")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shapeFlag, _ := cmd.Flags().GetString("shape")
	shape, err := catalog.ParseShape(shapeFlag)
	if err != nil {
		return err
	}
	category, _ := cmd.Flags().GetString("category")
	origin, _ := cmd.Flags().GetString("origin")

	g, cleanup, err := openPipeline(pipelineOptions{Origin: origin, Category: category})
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := g.Catalog(ctx, args, shape)
	if err != nil {
		return err
	}
	if err := summarize(gleaner.KindCatalog, report); err != nil {
		return err
	}

	path, format := outputFlags(cmd)
	return writeOutput(path, format, gleaner.KindCatalog, report.Records)
}
