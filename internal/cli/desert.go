package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
	"github.com/RichterLProgram/CuraWay-sub000/internal/ontology"
	"github.com/RichterLProgram/CuraWay-sub000/internal/pipeline"
	"github.com/RichterLProgram/CuraWay-sub000/internal/score"
	"github.com/spf13/cobra"
)

var (
	desertTarget string
	desertBBox   []float64
	desertCenter []float64
	desertRadius float64
)

// desertCmd represents the desert command
var desertCmd = &cobra.Command{
	Use:   "desert <claims.json>",
	Short: "Score target-capability deserts across assessed facilities",
	Long: `Desert assesses the claim batch, then scores every facility against one
target capability:
- Distance to the nearest facility confirmed to hold the target
- Missing prerequisites the facility would need to provide it
- Data incompleteness from the advisory confidence

Scores are bounded 0-100 and reproducible from the inputs. An unknowable
distance saturates the distance component rather than hiding the gap.

Example:
  curaway desert claims.json --target IMAGING_CT
  curaway desert claims.json --target ONC_CHEMOTHERAPY --center 9.03,38.74 --radius 300
  curaway desert claims.json --target SURGERY_GENERAL --bbox 3.5,33.0,15.0,48.0`,
	Args: cobra.ExactArgs(1),
	RunE: runDesert,
}

func init() {
	rootCmd.AddCommand(desertCmd)

	desertCmd.Flags().StringVar(&desertTarget, "target", "", "target capability code or name (required)")
	_ = desertCmd.MarkFlagRequired("target")

	// Region filter flags
	desertCmd.Flags().Float64SliceVar(&desertBBox, "bbox", nil, "bounding box: minLat,minLon,maxLat,maxLon")
	desertCmd.Flags().Float64SliceVar(&desertCenter, "center", nil, "filter center: lat,lon")
	desertCmd.Flags().Float64Var(&desertRadius, "radius", 0, "filter radius in km (with --center)")

	desertCmd.Flags().StringVar(&outJSON, "json", "desert.json", "output JSON path")
	desertCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall timeout")
	desertCmd.Flags().IntVar(&concurrency, "concurrency", 0, "facility assessment workers (0 = default)")
	desertCmd.Flags().StringVar(&constraints, "constraints", "", "constraint rules YAML (merged over built-ins)")
	desertCmd.Flags().StringVar(&ontologyFile, "ontology", "", "capability ontology YAML (replaces built-ins)")
	desertCmd.Flags().StringVar(&prereqFile, "prerequisites", "", "prerequisite graph YAML (replaces built-ins)")
	desertCmd.Flags().BoolVar(&geocode, "geocode", false, "resolve missing facility coordinates via Nominatim")
	desertCmd.Flags().StringVar(&geocoderURL, "geocoder-url", "", "geocoder base URL (overrides default)")

	// LLM flags
	desertCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM explanation generation")
	desertCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	desertCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

// regionFilterFromFlags builds the optional region filter
func regionFilterFromFlags() (*score.RegionFilter, error) {
	filter := &score.RegionFilter{}
	used := false

	if len(desertBBox) > 0 {
		if len(desertBBox) != 4 {
			return nil, fmt.Errorf("--bbox expects minLat,minLon,maxLat,maxLon")
		}
		filter.BoundingBox = &model.BoundingBox{
			MinLat: desertBBox[0], MinLon: desertBBox[1],
			MaxLat: desertBBox[2], MaxLon: desertBBox[3],
		}
		used = true
	}
	if len(desertCenter) > 0 {
		if len(desertCenter) != 2 {
			return nil, fmt.Errorf("--center expects lat,lon")
		}
		if desertRadius <= 0 {
			return nil, fmt.Errorf("--center requires a positive --radius")
		}
		filter.Center = &model.GeoPoint{Lat: desertCenter[0], Lon: desertCenter[1]}
		filter.RadiusKm = desertRadius
		used = true
	}
	if !used {
		return nil, nil
	}
	return filter, nil
}

func runDesert(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	filter, err := regionFilterFromFlags()
	if err != nil {
		return err
	}

	batch, err := loadBatch(args[0])
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	// Resolve the target: accept a code or a free-text name
	target := p.Registry().NormalizeName(desertTarget)
	if target.MatchType == ontology.MatchNone {
		return fmt.Errorf("unknown target capability: %q", desertTarget)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Resolved %q -> %s (%s, %.2f)\n",
			desertTarget, target.Code, target.MatchType, target.Confidence)
	}

	report, decisions, err := p.AssessFacilities(ctx, batch)
	if err != nil {
		return fmt.Errorf("assess failed: %w", err)
	}

	scores := p.DesertScores(ctx, target.Code, decisions, report, filter)

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Scored %d facilities against %s\n", len(scores), target.Code)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if err := renderer.RenderJSON(scores, outJSON); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	for _, s := range scores {
		fmt.Fprintf(os.Stderr, "  %-20s gap %3.0f/100  confidence %.2f\n",
			s.FacilityID, s.CoverageGapScore, s.Confidence)
	}
	return nil
}
