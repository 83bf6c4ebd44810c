package cmd

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/buildmat/internal/domain/models"
	"github.com/mamadbah2/buildmat/internal/service/reporting"
	"github.com/mamadbah2/buildmat/pkg/logger"
)

var (
	searchTerm   string
	listCategory string
)

// catalogCmd groups catalog inspection commands
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the material catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List materials, optionally filtered",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogDigestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Summarise the catalog per category",
	Args:  cobra.NoArgs,
	RunE:  runCatalogDigest,
}

func init() {
	catalogListCmd.Flags().StringVarP(&searchTerm, "search", "s", "", "case-insensitive name or category substring")
	catalogListCmd.Flags().StringVar(&listCategory, "category", "", "exact category")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogDigestCmd)
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	store, err := loadCatalog(cmd.Context())
	if err != nil {
		return err
	}

	q := models.MaterialQuery{Search: searchTerm}
	if listCategory != "" {
		category, ok := models.ParseCategory(listCategory)
		if !ok {
			return fmt.Errorf("unknown category %q", listCategory)
		}
		q.Category = category
	}
	materials := slices.Collect(store.Find(q))

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		if materials == nil {
			materials = []models.Material{}
		}
		return writeJSON(out, materials)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tNAME\tUNIT COST\tUNIT\tSUPPLIER")
	for _, m := range materials {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.Category, m.Name, m.UnitCost, m.Unit, m.Supplier)
	}
	return tw.Flush()
}

func runCatalogDigest(cmd *cobra.Command, args []string) error {
	store, err := loadCatalog(cmd.Context())
	if err != nil {
		return err
	}
	svc := reporting.NewService(store, nil, logger.Named(log, "svc.reporting"))

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return writeJSON(out, svc.Digest())
	}
	_, err = fmt.Fprintln(out, svc.Summary())
	return err
}
