package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/radarinvest/backend/internal/contracts"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Rescore the cohort and print the top recommendations",
	Long: `Recomputes derived metrics and scores for every stock, persists
the results and prints the ranked list for one archetype.

Example:
  go run ./cmd/radar score
  go run ./cmd/radar score --archetype income_builder --limit 20`,
	RunE: runScore,
}

var (
	scoreArchetype string
	scoreLimit     int
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreArchetype, "archetype", string(contracts.ArchetypePatientPartner), "investor archetype (income_builder|value_hunter|patient_partner)")
	scoreCmd.Flags().IntVar(&scoreLimit, "limit", 10, "number of recommendations to print")
}

func runScore(cmd *cobra.Command, args []string) error {
	archetype := contracts.Archetype(scoreArchetype)
	if !archetype.Valid() {
		return fmt.Errorf("unknown archetype %q", scoreArchetype)
	}

	c, err := buildCore()
	if err != nil {
		return err
	}
	defer c.close()

	ctx := context.Background()

	if err := c.processor.RescoreAll(ctx); err != nil {
		return fmt.Errorf("rescore: %w", err)
	}

	cohort, err := c.stockRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load cohort: %w", err)
	}

	top := c.engine.Recommend(ctx, cohort, archetype, scoreLimit)

	fmt.Printf("Top %d for %s:\n", len(top), archetype)
	for i, snap := range top {
		fmt.Printf("%3d. %-8s %-30s %.2f\n", i+1, snap.Ticker, snap.Name, *snap.FinalScore)
	}

	return nil
}
