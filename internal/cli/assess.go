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
	outJSON       string
	outMD         string
	timeout       time.Duration
	concurrency   int
	constraints   string
	ontologyFile  string
	prereqFile    string
	geocode       bool
	geocoderURL   string
	noFooter      bool
	llmEnabled    bool
	llmProvider   string
	llmModel      string
)

// assessCmd represents the assess command
var assessCmd = &cobra.Command{
	Use:   "assess <claims.json>",
	Short: "Assess facility capability claims and generate a coverage report",
	Long: `Assess runs the full decision pipeline over a claim batch:
- Normalize capability names against the ontology
- Decide each claim conservatively from its attached evidence
- Validate supply records against physical and staffing constraints
- Aggregate essential-capability coverage per region

Example:
  curaway assess claims.json
  curaway assess claims.json --json report.json --md report.md
  curaway assess claims.json --concurrency 16 --constraints rules.yaml
  curaway assess claims.json --llm openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAssess,
}

func init() {
	rootCmd.AddCommand(assessCmd)

	// Output flags
	assessCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	assessCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	assessCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Pipeline flags
	assessCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall assessment timeout")
	assessCmd.Flags().IntVar(&concurrency, "concurrency", 0, "facility assessment workers (0 = default)")
	assessCmd.Flags().StringVar(&constraints, "constraints", "", "constraint rules YAML (merged over built-ins)")
	assessCmd.Flags().StringVar(&ontologyFile, "ontology", "", "capability ontology YAML (replaces built-ins)")
	assessCmd.Flags().StringVar(&prereqFile, "prerequisites", "", "prerequisite graph YAML (replaces built-ins)")

	// Geocoder flags
	assessCmd.Flags().BoolVar(&geocode, "geocode", false, "resolve missing facility coordinates via Nominatim")
	assessCmd.Flags().StringVar(&geocoderURL, "geocoder-url", "", "geocoder base URL (overrides default)")

	// LLM flags
	assessCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM explanation generation")
	assessCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	assessCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

// buildConfig assembles runtime configuration from defaults and flags
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Validation.ConstraintsFile = constraints
	cfg.Ontology.File = ontologyFile
	cfg.Ontology.PrerequisitesFile = prereqFile
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	if concurrency > 0 {
		cfg.Concurrency.AssessWorkers = concurrency
	}

	if geocode {
		cfg.Geocoder.Enabled = true
		if geocoderURL != "" {
			cfg.Geocoder.BaseURL = geocoderURL
		}
	}

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel

		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			baseURL := os.Getenv("OLLAMA_BASE_URL")
			if baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	return cfg, nil
}

// loadBatch reads a claim batch from a JSON file
func loadBatch(path string) (model.ClaimBatch, error) {
	var batch model.ClaimBatch
	data, err := os.ReadFile(path)
	if err != nil {
		return batch, fmt.Errorf("read claims: %w", err)
	}
	if err := json.Unmarshal(data, &batch); err != nil {
		return batch, fmt.Errorf("parse claims: %w", err)
	}
	return batch, nil
}

func runAssess(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Assessing: %s\n", args[0])
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintln(os.Stderr)
	}

	cfg, err := buildConfig()
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

	report, _, err := p.AssessFacilities(ctx, batch)
	if err != nil {
		return fmt.Errorf("assess failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Assessed %d facilities\n", len(report.Facilities))
		fmt.Fprintf(os.Stderr, "✓ Aggregated %d regions\n", len(report.Regions))
		if len(report.Errors) > 0 {
			fmt.Fprintf(os.Stderr, "✗ %d facilities failed\n", len(report.Errors))
		}
		fmt.Fprintln(os.Stderr)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if err := renderer.RenderJSON(report, outJSON); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}

	renderer.RenderSummary(os.Stderr, report)
	return nil
}
