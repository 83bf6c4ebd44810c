// Package cmd provides the CLI commands for buildmat.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/buildmat/internal/domain/models"
	"github.com/mamadbah2/buildmat/internal/service/catalog"
	"github.com/mamadbah2/buildmat/pkg/logger"
)

var (
	catalogFile  string
	outputFormat string
	verbose      bool

	log = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "buildmat",
	Short: "Recommend construction materials and optimize budgets offline",
	Long: `buildmat scores a material catalog against project requirements and
proposes cheaper substitutes for a budget breakdown.

Without --catalog the built-in sample catalog is used.

Examples:
  buildmat recommend --durability premium --category steel
  buildmat optimize --budget budget.json --policy policy.json
  buildmat catalog digest --catalog materials.json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		l, err := logger.New(level)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&catalogFile, "catalog", "c", "", "JSON file holding an array of materials")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(catalogCmd)
}

// loadCatalog builds an in-memory store from catalogFile, or from the sample
// catalog when no file is given. Records with ids are loaded as-is; records
// without are inserted and get fresh ids.
func loadCatalog(ctx context.Context) (*catalog.Store, error) {
	store := catalog.NewStore(nil, logger.Named(log, "svc.catalog"))
	if catalogFile == "" {
		if _, err := catalog.SeedIfEmpty(ctx, store); err != nil {
			return nil, err
		}
		return store, nil
	}

	var records []models.Material
	if err := readJSON(catalogFile, &records); err != nil {
		return nil, err
	}

	withIDs := 0
	for _, r := range records {
		if r.ID != "" {
			withIDs++
		}
	}
	if withIDs == len(records) {
		if err := store.Load(records); err != nil {
			return nil, fmt.Errorf("load %s: %w", catalogFile, err)
		}
		return store, nil
	}
	for _, r := range records {
		r.ID = ""
		if _, err := store.Insert(ctx, models.RoleAdmin, r); err != nil {
			return nil, fmt.Errorf("load %s: %w", catalogFile, err)
		}
	}
	return store, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
