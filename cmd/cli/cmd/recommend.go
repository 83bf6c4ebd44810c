package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/buildmat/internal/domain/models"
	"github.com/mamadbah2/buildmat/internal/service/recommendation"
	"github.com/mamadbah2/buildmat/internal/service/scoring"
	"github.com/mamadbah2/buildmat/pkg/logger"
)

var (
	requirements      models.ProjectRequirements
	recommendCategory string
	limit             int
	workers           int
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank catalog materials for a project",
	Args:  cobra.NoArgs,
	RunE:  runRecommend,
}

func init() {
	f := recommendCmd.Flags()
	f.StringVar((*string)(&requirements.ProjectType), "project-type", "", "residential, commercial, infrastructure or industrial")
	f.StringVar((*string)(&requirements.BudgetBand), "budget", "", "low, medium, high or premium")
	f.StringVar((*string)(&requirements.DurabilityTarget), "durability", "", "standard, enhanced or premium")
	f.StringVar((*string)(&requirements.Environment), "environment", "", "urban, coastal, industrial or rural")
	f.StringVar(&recommendCategory, "category", "", "restrict to one category")
	f.IntVarP(&limit, "limit", "n", recommendation.DefaultLimit, "maximum number of results")
	f.IntVar(&workers, "workers", 0, "scoring workers (0 uses GOMAXPROCS)")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	store, err := loadCatalog(cmd.Context())
	if err != nil {
		return err
	}

	svc := recommendation.NewService(store, scoring.NewEngine(scoring.DefaultPolicy()), workers, logger.Named(log, "svc.recommendation"))
	results, err := svc.Recommend(requirements, models.Category(recommendCategory), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return writeJSON(out, results)
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "No matching materials.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tCATEGORY\tNAME\tDUR\tSUS\tCOST\tPERF")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\n",
			r.Rank, r.AggregateScore, r.Category, r.Name,
			r.Criteria.Durability, r.Criteria.Sustainability, r.Criteria.CostFit, r.Criteria.Performance)
	}
	return tw.Flush()
}
