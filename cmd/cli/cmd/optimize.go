package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mamadbah2/buildmat/internal/domain/models"
	"github.com/mamadbah2/buildmat/internal/server/handlers"
	"github.com/mamadbah2/buildmat/internal/service/optimizer"
	"github.com/mamadbah2/buildmat/internal/service/scoring"
	"github.com/mamadbah2/buildmat/pkg/logger"
)

var (
	budgetFile  string
	policyFile  string
	minRetained string
	precision   int32
)

// optimizeCmd represents the optimize command
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Propose cheaper substitutes for a budget breakdown",
	Long: `Reads a budget ({"categories":[{"category":"Steel","amount":"350000"}]})
and an optional policy ({"lines":{"Steel":{"reference_unit_cost":"2450"}}})
and prints the reconciled optimized budget.`,
	Args: cobra.NoArgs,
	RunE: runOptimize,
}

func init() {
	f := optimizeCmd.Flags()
	f.StringVarP(&budgetFile, "budget", "b", "", "budget JSON file")
	f.StringVarP(&policyFile, "policy", "p", "", "substitution policy JSON file")
	f.StringVar(&minRetained, "min-retained", "0.5", "default minimum retained fraction per line")
	f.Int32Var(&precision, "precision", 2, "default decimal places for optimized amounts")
	_ = optimizeCmd.MarkFlagRequired("budget")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	var budget models.ProjectBudget
	if err := readJSON(budgetFile, &budget); err != nil {
		return err
	}

	defaults := optimizer.DefaultPolicy()
	fraction, err := decimal.NewFromString(minRetained)
	if err != nil {
		return fmt.Errorf("--min-retained: %w", err)
	}
	defaults.MinRetainedFraction = fraction
	defaults.Precision = precision

	var req handlers.PolicyRequest
	if policyFile != "" {
		if err := readJSON(policyFile, &req); err != nil {
			return err
		}
	}

	store, err := loadCatalog(cmd.Context())
	if err != nil {
		return err
	}
	svc := optimizer.NewService(store, scoring.NewEngine(scoring.DefaultPolicy()), logger.Named(log, "svc.optimizer"))
	result, err := svc.Optimize(budget, req.Resolve(defaults))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return writeJSON(out, result)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tORIGINAL\tOPTIMIZED\tSAVINGS\tSUBSTITUTE")
	for _, row := range result.Categories {
		substitute := "-"
		if row.Substitute != nil {
			substitute = fmt.Sprintf("%s (%s)", row.Substitute.Name, row.Substitute.UnitCost)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.Category, row.Original, row.Optimized, row.Savings, substitute)
	}
	fmt.Fprintf(tw, "TOTAL\t%s\t%s\t%s\t%s%%\n",
		result.OriginalTotal, result.OptimizedTotal, result.Savings, result.SavingsFraction.Shift(2))
	return tw.Flush()
}
