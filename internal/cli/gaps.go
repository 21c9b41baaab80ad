package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
	"github.com/RichterLProgram/CuraWay-sub000/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	gapsCoverage float64
	gapsRadius   float64
	gapsTopK     int
)

// gapsCmd represents the gaps command
var gapsCmd = &cobra.Command{
	Use:   "gaps <claims.json> <demands.json>",
	Short: "Match demand points against assessed facilities and score gaps",
	Long: `Gaps assesses the claim batch, then scores each demand point:
- Rank facilities by capability coverage, distance and verdict weight
- Keep viable candidates (coverage above threshold, within radius)
- Score the residual desert, weighted by urgency
- Recommend route, strengthen or invest

Demand input is a JSON array of records:
  [{"demand_id": "d1", "location": {"lat": 9.03, "lon": 38.74},
    "required_capabilities": ["EMERGENCY_CARE"], "urgency": 7}]

Example:
  curaway gaps claims.json demands.json
  curaway gaps claims.json demands.json --radius 300 --top-k 10`,
	Args: cobra.ExactArgs(2),
	RunE: runGaps,
}

func init() {
	rootCmd.AddCommand(gapsCmd)

	gapsCmd.Flags().Float64Var(&gapsCoverage, "coverage-threshold", 0, "minimum viable coverage (0 = default)")
	gapsCmd.Flags().Float64Var(&gapsRadius, "radius", 0, "candidate search radius in km (0 = default)")
	gapsCmd.Flags().IntVar(&gapsTopK, "top-k", 0, "candidates kept per demand (0 = default)")

	gapsCmd.Flags().StringVar(&outJSON, "json", "gaps.json", "output JSON path")
	gapsCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall timeout")
	gapsCmd.Flags().IntVar(&concurrency, "concurrency", 0, "facility assessment workers (0 = default)")
	gapsCmd.Flags().StringVar(&constraints, "constraints", "", "constraint rules YAML (merged over built-ins)")
	gapsCmd.Flags().StringVar(&ontologyFile, "ontology", "", "capability ontology YAML (replaces built-ins)")
	gapsCmd.Flags().StringVar(&prereqFile, "prerequisites", "", "prerequisite graph YAML (replaces built-ins)")
	gapsCmd.Flags().BoolVar(&geocode, "geocode", false, "resolve missing facility coordinates via Nominatim")
	gapsCmd.Flags().StringVar(&geocoderURL, "geocoder-url", "", "geocoder base URL (overrides default)")
}

// loadDemands reads demand records from a JSON file
func loadDemands(path string) ([]model.DemandRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read demands: %w", err)
	}
	var demands []model.DemandRecord
	if err := json.Unmarshal(data, &demands); err != nil {
		return nil, fmt.Errorf("parse demands: %w", err)
	}
	if len(demands) == 0 {
		return nil, fmt.Errorf("demand file %s contains no records", path)
	}
	return demands, nil
}

func runGaps(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if gapsCoverage > 0 {
		cfg.Scoring.CoverageThreshold = gapsCoverage
	}
	if gapsRadius > 0 {
		cfg.Scoring.RadiusKm = gapsRadius
	}
	if gapsTopK > 0 {
		cfg.Scoring.TopK = gapsTopK
	}

	batch, err := loadBatch(args[0])
	if err != nil {
		return err
	}
	demands, err := loadDemands(args[1])
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	report, decisions, err := p.AssessFacilities(ctx, batch)
	if err != nil {
		return fmt.Errorf("assess failed: %w", err)
	}

	gaps := p.DetectGaps(demands, decisions, report)

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Assessed %d facilities\n", len(report.Facilities))
		fmt.Fprintf(os.Stderr, "✓ Scored %d demand points\n", len(gaps))
		fmt.Fprintln(os.Stderr)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if err := renderer.RenderJSON(gaps, outJSON); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	for _, g := range gaps {
		fmt.Fprintf(os.Stderr, "  %-16s desert %.2f  %s: %s\n",
			g.DemandID, g.DesertScore, g.Recommendation.Type, g.Recommendation.Rationale)
	}
	return nil
}
