// Package pipeline orchestrates the assessment stages: claim decisions,
// record validation, regional aggregation and desert/gap scoring.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/RichterLProgram/CuraWay-sub000/internal/decide"
	"github.com/RichterLProgram/CuraWay-sub000/internal/evidence"
	"github.com/RichterLProgram/CuraWay-sub000/internal/geo"
	"github.com/RichterLProgram/CuraWay-sub000/internal/llm"
	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
	"github.com/RichterLProgram/CuraWay-sub000/internal/ontology"
	"github.com/RichterLProgram/CuraWay-sub000/internal/region"
	"github.com/RichterLProgram/CuraWay-sub000/internal/score"
	"github.com/RichterLProgram/CuraWay-sub000/internal/validate"
	"github.com/RichterLProgram/CuraWay-sub000/internal/worker"
)

// Pipeline wires the engines together for one configuration
type Pipeline struct {
	registry  *ontology.Registry
	prereqs   *ontology.PrerequisiteGraph
	engine    *decide.Engine
	validator *validate.Validator
	scorer    *score.Scorer
	explainer *llm.Explainer
	geocoder  *geo.Geocoder
	config    *model.Config
}

// NewPipeline builds a pipeline from configuration. Ontology, prerequisite
// and constraints files are loaded here, once.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	registry := ontology.Default()
	if cfg.Ontology.File != "" {
		loaded, err := ontology.LoadRegistry(cfg.Ontology.File)
		if err != nil {
			return nil, fmt.Errorf("load ontology: %w", err)
		}
		registry = loaded
	}

	prereqs := ontology.DefaultPrerequisites()
	if cfg.Ontology.PrerequisitesFile != "" {
		loaded, err := ontology.LoadPrerequisites(cfg.Ontology.PrerequisitesFile)
		if err != nil {
			return nil, fmt.Errorf("load prerequisites: %w", err)
		}
		prereqs = loaded
	}

	var constraints *validate.Constraints
	if cfg.Validation.ConstraintsFile != "" {
		loaded, err := validate.LoadConstraints(cfg.Validation.ConstraintsFile)
		if err != nil {
			return nil, fmt.Errorf("load constraints: %w", err)
		}
		constraints = loaded
	}

	explainer, err := llm.NewExplainer(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("init explainer: %w", err)
	}

	return &Pipeline{
		registry:  registry,
		prereqs:   prereqs,
		engine:    decide.NewEngine(registry, cfg.Decision),
		validator: validate.NewValidator(registry, cfg.Validation, nil, constraints),
		scorer:    score.NewScorer(prereqs, cfg.Scoring),
		explainer: explainer,
		geocoder:  geo.NewGeocoder(cfg.Geocoder),
		config:    cfg,
	}, nil
}

// Registry exposes the pipeline's ontology registry.
func (p *Pipeline) Registry() *ontology.Registry {
	return p.registry
}

// assessor binds one batch's suspicious claims and citation index to the
// per-facility assessment so it satisfies worker.FacilityAssessor.
type assessor struct {
	pipeline   *Pipeline
	suspicious []string
	index      *evidence.Index
}

// AssessOne decides and validates one facility. A failure here fails this
// facility only.
func (a *assessor) AssessOne(ctx context.Context, claims model.FacilityClaims) (model.FacilityDecisions, *model.ValidationResult, error) {
	if a.pipeline.geocoder != nil {
		name := claims.FacilityID
		if claims.Supply != nil && claims.Supply.Name != "" {
			name = claims.Supply.Name
		}
		// Geocoding failures leave the location unset; scoring reports
		// the distance as unknown.
		_ = a.pipeline.geocoder.Enrich(ctx, &claims.Location, name)
	}

	decisions, err := a.pipeline.engine.DecideFacility(claims, a.suspicious)
	if err != nil {
		return model.FacilityDecisions{}, nil, err
	}

	var validation *model.ValidationResult
	if claims.Supply != nil {
		result := a.pipeline.validator.Validate(*claims.Supply, a.index)
		validation = &result
	}
	return decisions, validation, nil
}

// AssessFacilities runs the full assessment over one claim batch.
// Facilities are independent and processed in parallel; one facility's
// failure is recorded and the batch continues.
func (p *Pipeline) AssessFacilities(ctx context.Context, batch model.ClaimBatch) (*model.AssessmentReport, []model.FacilityDecisions, error) {
	idx := evidence.BuildIndex(batch.Chunks, batch.Citations)
	a := &assessor{pipeline: p, suspicious: batch.SuspiciousClaims, index: idx}

	workers := p.config.Concurrency.AssessWorkers
	if workers <= 0 {
		workers = 1
	}
	pool := worker.NewPool(workers)
	pool.Start()
	for _, claims := range batch.Facilities {
		pool.Submit(&worker.AssessJob{Claims: claims, Assessor: a})
	}
	results := pool.Wait()

	report := &model.AssessmentReport{GeneratedAt: time.Now().UTC()}
	var allDecisions []model.FacilityDecisions

	for _, r := range results {
		res, ok := r.(*worker.AssessResult)
		if !ok {
			continue
		}
		if res.Err != nil {
			report.Errors = append(report.Errors, model.FacilityError{
				FacilityID: res.FacilityID,
				Stage:      "decide",
				Message:    res.Err.Error(),
			})
			continue
		}
		report.Facilities = append(report.Facilities, model.FacilityAssessment{
			FacilityID: res.Decisions.FacilityID,
			Region:     res.Decisions.Region,
			Decisions:  res.Decisions.Decisions,
			Validation: res.Validation,
		})
		allDecisions = append(allDecisions, res.Decisions)
	}

	// Pool completion order is nondeterministic; sort for reproducible
	// reports.
	sort.Slice(report.Facilities, func(i, j int) bool {
		return report.Facilities[i].FacilityID < report.Facilities[j].FacilityID
	})
	sort.Slice(allDecisions, func(i, j int) bool {
		return allDecisions[i].FacilityID < allDecisions[j].FacilityID
	})
	sort.Slice(report.Errors, func(i, j int) bool {
		return report.Errors[i].FacilityID < report.Errors[j].FacilityID
	})

	report.Regions = region.Assess(allDecisions)
	return report, allDecisions, nil
}

// ScoringFacilities converts assessed facilities into the scoring view.
// Facilities that were never validated carry a suspicious verdict: unknown
// trust is discounted the same way suspicious trust is.
func ScoringFacilities(decisions []model.FacilityDecisions, report *model.AssessmentReport) []score.Facility {
	verdicts := make(map[string]model.Verdict)
	if report != nil {
		for _, fa := range report.Facilities {
			if fa.Validation != nil {
				verdicts[fa.FacilityID] = fa.Validation.Verdict
			}
		}
	}
	out := make([]score.Facility, 0, len(decisions))
	for _, fd := range decisions {
		verdict, validated := verdicts[fd.FacilityID]
		if !validated {
			verdict = model.VerdictSuspicious
		}
		out = append(out, score.FacilityFromDecisions(fd, verdict))
	}
	return out
}

// DesertScores computes target-capability desert scores for assessed
// facilities. Confidence and evidence quotes come from the advisory
// explainer; LLM failures degrade to the deterministic critic.
func (p *Pipeline) DesertScores(ctx context.Context, target string, decisions []model.FacilityDecisions, report *model.AssessmentReport, filter *score.RegionFilter) []model.DesertScore {
	facilities := ScoringFacilities(decisions, report)

	quotes := make(map[string][]string)
	for _, fd := range decisions {
		if d, ok := fd.Decisions[target]; ok {
			for _, snippet := range d.Evidence {
				quotes[fd.FacilityID] = append(quotes[fd.FacilityID], snippet.Text)
			}
		}
	}

	return p.scorer.ComputeDesertScores(target, facilities, filter, func(seed score.MetricSeed) (float64, []string) {
		resp, _ := p.explainer.Explain(ctx, llm.ExplainRequest{
			FacilityID:           seed.Facility.FacilityID,
			Target:               seed.Target,
			MissingPrerequisites: seed.Missing,
			DistanceKm:           seed.DistanceKm,
			EvidenceQuotes:       quotes[seed.Facility.FacilityID],
		})
		return resp.Confidence, seed.Facility.CitationIDs
	})
}

// DetectGaps scores demand records against assessed facilities.
func (p *Pipeline) DetectGaps(demands []model.DemandRecord, decisions []model.FacilityDecisions, report *model.AssessmentReport) []model.GapReport {
	facilities := ScoringFacilities(decisions, report)
	reports := make([]model.GapReport, 0, len(demands))
	for _, demand := range demands {
		reports = append(reports, p.scorer.DetectGaps(demand, facilities))
	}
	return reports
}
