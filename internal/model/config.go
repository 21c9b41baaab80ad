package model

import "time"

// Config is the complete runtime configuration, layered by the CLI as
// flags > environment (CURAWAY_*) > config file > defaults.
type Config struct {
	Decision    DecisionConfig    `yaml:"decision" json:"decision"`
	Validation  ValidationConfig  `yaml:"validation" json:"validation"`
	Scoring     ScoringConfig     `yaml:"scoring" json:"scoring"`
	Ontology    OntologyConfig    `yaml:"ontology" json:"ontology"`
	Geocoder    GeocoderConfig    `yaml:"geocoder" json:"geocoder"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// DecisionConfig tunes the capability decision engine
type DecisionConfig struct {
	// StrongThreshold is the minimum confidence for a positive decision.
	StrongThreshold float64 `yaml:"strong_threshold" json:"strong_threshold"`
	// SuspiciousOverrideThreshold: suspicious phrases only override below it.
	SuspiciousOverrideThreshold float64 `yaml:"suspicious_override_threshold" json:"suspicious_override_threshold"`
	// WeakCeiling caps confidence when evidence exists but is insufficient.
	WeakCeiling float64 `yaml:"weak_ceiling" json:"weak_ceiling"`
	// NoEvidenceEpsilon is the fixed confidence with no evidence at all.
	NoEvidenceEpsilon float64 `yaml:"no_evidence_epsilon" json:"no_evidence_epsilon"`
	// NegationWindow is the token window scanned around a term mention.
	NegationWindow int `yaml:"negation_window" json:"negation_window"`
}

// ValidationConfig tunes the constraint/validation engine
type ValidationConfig struct {
	LowConfidenceThreshold float64 `yaml:"low_confidence_threshold" json:"low_confidence_threshold"`
	MaxEvidenceCitations   int     `yaml:"max_evidence_citations" json:"max_evidence_citations"`
	ConstraintsFile        string  `yaml:"constraints_file,omitempty" json:"constraints_file,omitempty"`
}

// ScoringConfig tunes desert and gap scoring
type ScoringConfig struct {
	MaxDistanceKm           float64 `yaml:"max_distance_km" json:"max_distance_km"`
	MissingPrereqSaturation int     `yaml:"missing_prereq_saturation" json:"missing_prereq_saturation"`
	CoverageThreshold       float64 `yaml:"coverage_threshold" json:"coverage_threshold"`
	RadiusKm                float64 `yaml:"radius_km" json:"radius_km"`
	TopK                    int     `yaml:"top_k" json:"top_k"`
}

// OntologyConfig points at optional ontology/prerequisite override files
type OntologyConfig struct {
	File              string `yaml:"file,omitempty" json:"file,omitempty"`
	PrerequisitesFile string `yaml:"prerequisites_file,omitempty" json:"prerequisites_file,omitempty"`
}

// GeocoderConfig configures the optional coordinate enrichment client
type GeocoderConfig struct {
	Enabled           bool          `yaml:"enabled" json:"enabled"`
	BaseURL           string        `yaml:"base_url" json:"base_url"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"`
	CacheTTL          time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
}

// LLMConfig configures the advisory explanation generator. The LLM never
// alters a numeric score; it only produces explanation text and the opaque
// confidence consumed by desert scoring.
type LLMConfig struct {
	Provider  string        `yaml:"provider,omitempty" json:"provider,omitempty"` // openai, ollama, ""
	Model     string        `yaml:"model,omitempty" json:"model,omitempty"`
	APIKey    string        `yaml:"-" json:"-"`
	BaseURL   string        `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	MaxTokens int           `yaml:"max_tokens" json:"max_tokens"`
}

// ConcurrencyConfig bounds parallelism across independent facilities
type ConcurrencyConfig struct {
	AssessWorkers int `yaml:"assess_workers" json:"assess_workers"`
}

// OutputConfig controls CLI output behavior
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" json:"verbose"`
	IncludeFooter bool `yaml:"include_footer" json:"include_footer"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Decision: DecisionConfig{
			StrongThreshold:             0.6,
			SuspiciousOverrideThreshold: 0.8,
			WeakCeiling:                 0.4,
			NoEvidenceEpsilon:           0.05,
			NegationWindow:              5,
		},
		Validation: ValidationConfig{
			LowConfidenceThreshold: 0.4,
			MaxEvidenceCitations:   30,
		},
		Scoring: ScoringConfig{
			MaxDistanceKm:           200,
			MissingPrereqSaturation: 5,
			CoverageThreshold:       0.5,
			RadiusKm:                150,
			TopK:                    5,
		},
		Geocoder: GeocoderConfig{
			Enabled:           false,
			BaseURL:           "https://nominatim.openstreetmap.org",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 1,
			CacheTTL:          24 * time.Hour,
		},
		LLM: LLMConfig{
			Timeout:   60 * time.Second,
			MaxTokens: 1024,
		},
		Concurrency: ConcurrencyConfig{
			AssessWorkers: 8,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
