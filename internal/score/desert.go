// Package score implements the geographic/prerequisite desert and gap
// scoring engines. All scoring is deterministic over its inputs: the
// advisory explanation text produced elsewhere never alters a number here.
package score

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
	"github.com/RichterLProgram/CuraWay-sub000/internal/ontology"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Component weights for the target-capability desert score.
const (
	distanceWeight   = 50.0
	missingWeight    = 30.0
	confidenceWeight = 20.0
)

// Haversine returns the great-circle distance in kilometers between two
// points.
func Haversine(a, b model.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Facility is the scoring view of one facility: its confirmed capability
// codes, trust verdict and location.
type Facility struct {
	FacilityID  string          `json:"facility_id"`
	Location    model.Location  `json:"location"`
	Codes       map[string]bool `json:"codes"`
	Verdict     model.Verdict   `json:"verdict"`
	CitationIDs []string        `json:"citation_ids,omitempty"`
}

// FacilityFromDecisions builds the scoring view from decided capabilities.
// Only positive direct_evidence decisions contribute codes. Citation ids are
// the chunk ids of the evidence behind those decisions, sorted and deduped.
func FacilityFromDecisions(fd model.FacilityDecisions, verdict model.Verdict) Facility {
	codes := make(map[string]bool)
	chunks := make(map[string]bool)
	for code, d := range fd.Decisions {
		if !d.Value || d.Reason != model.ReasonDirectEvidence {
			continue
		}
		codes[code] = true
		for _, snippet := range d.Evidence {
			if snippet.ChunkID != "" {
				chunks[snippet.ChunkID] = true
			}
		}
	}
	var citations []string
	for id := range chunks {
		citations = append(citations, id)
	}
	sort.Strings(citations)
	return Facility{
		FacilityID:  fd.FacilityID,
		Location:    fd.Location,
		Codes:       codes,
		Verdict:     verdict,
		CitationIDs: citations,
	}
}

// RegionFilter restricts scoring to facilities inside a bounding box or
// within RadiusKm of Center. Nil fields disable that filter.
type RegionFilter struct {
	BoundingBox *model.BoundingBox
	Center      *model.GeoPoint
	RadiusKm    float64
}

func (f *RegionFilter) keep(fac Facility) bool {
	if f == nil {
		return true
	}
	point, ok := fac.Location.Point()
	if !ok {
		// Unlocatable facilities cannot be placed inside any region.
		return f.BoundingBox == nil && f.Center == nil
	}
	if f.BoundingBox != nil && !f.BoundingBox.Contains(point) {
		return false
	}
	if f.Center != nil && f.RadiusKm > 0 && Haversine(*f.Center, point) > f.RadiusKm {
		return false
	}
	return true
}

// Scorer computes desert and gap scores
type Scorer struct {
	prereqs *ontology.PrerequisiteGraph
	cfg     model.ScoringConfig
}

// NewScorer creates a scorer. A nil prerequisite graph selects the built-in
// defaults.
func NewScorer(prereqs *ontology.PrerequisiteGraph, cfg model.ScoringConfig) *Scorer {
	if prereqs == nil {
		prereqs = ontology.DefaultPrerequisites()
	}
	if cfg.MaxDistanceKm <= 0 {
		cfg.MaxDistanceKm = 200
	}
	if cfg.MissingPrereqSaturation <= 0 {
		cfg.MissingPrereqSaturation = 5
	}
	return &Scorer{prereqs: prereqs, cfg: cfg}
}

// MetricSeed is the deterministic geometry/prerequisite groundwork for one
// facility, computed before the opaque confidence arrives.
type MetricSeed struct {
	Facility   Facility
	Target     string
	Missing    []string
	DistanceKm *float64 // nil: no capable facility reachable or coordinates missing
}

// BuildDesertMetricSeeds resolves prerequisites and nearest-capable
// distances for every facility passing the region filter. Output is sorted
// by facility id.
func (s *Scorer) BuildDesertMetricSeeds(target string, facilities []Facility, filter *RegionFilter) []MetricSeed {
	target = strings.ToUpper(strings.TrimSpace(target))

	kept := make([]Facility, 0, len(facilities))
	for _, fac := range facilities {
		if filter.keep(fac) {
			kept = append(kept, fac)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].FacilityID < kept[j].FacilityID })

	seeds := make([]MetricSeed, 0, len(kept))
	for _, fac := range kept {
		seeds = append(seeds, MetricSeed{
			Facility:   fac,
			Target:     target,
			Missing:    s.prereqs.Missing(target, fac.Codes),
			DistanceKm: s.nearestCapable(target, fac, kept),
		})
	}
	return seeds
}

// nearestCapable returns 0 when the facility itself holds the target, the
// minimum haversine distance to another holder otherwise, or nil when no
// holder exists or coordinates are missing. A nil distance means "cannot
// compute", never zero.
func (s *Scorer) nearestCapable(target string, fac Facility, all []Facility) *float64 {
	if fac.Codes[target] {
		zero := 0.0
		return &zero
	}
	from, ok := fac.Location.Point()
	if !ok {
		return nil
	}

	best := math.Inf(1)
	for _, other := range all {
		if other.FacilityID == fac.FacilityID || !other.Codes[target] {
			continue
		}
		to, ok := other.Location.Point()
		if !ok {
			continue
		}
		if d := Haversine(from, to); d < best {
			best = d
		}
	}
	if math.IsInf(best, 1) {
		return nil
	}
	return &best
}

// ComputeComponents turns a seed plus the opaque confidence into a bounded
// DesertScore. Evidence citation ids feed the explanation but not the
// numbers.
func (s *Scorer) ComputeComponents(seed MetricSeed, confidence float64, citationIDs []string) model.DesertScore {
	confidence = clamp01(confidence)

	// An unknowable distance saturates the distance component: the desert
	// cannot be assumed small just because it cannot be measured.
	distanceRatio := 1.0
	if seed.DistanceKm != nil {
		distanceRatio = math.Min(1, *seed.DistanceKm/s.cfg.MaxDistanceKm)
	}
	distanceComponent := distanceRatio * distanceWeight

	missingRatio := math.Min(1, float64(len(seed.Missing))/float64(s.cfg.MissingPrereqSaturation))
	missingComponent := missingRatio * missingWeight

	incompletenessComponent := (1 - confidence) * confidenceWeight

	total := math.Round(distanceComponent + missingComponent + incompletenessComponent)

	missing := seed.Missing
	if missing == nil {
		missing = []string{}
	}

	return model.DesertScore{
		FacilityID:                 seed.Facility.FacilityID,
		CapabilityTarget:           seed.Target,
		DistanceKmToNearestCapable: seed.DistanceKm,
		MissingPrerequisites:       missing,
		CoverageGapScore:           total,
		Confidence:                 confidence,
		Subscores: model.DesertSubscores{
			DistanceComponent:           distanceComponent,
			MissingPrereqsComponent:     missingComponent,
			DataIncompletenessComponent: incompletenessComponent,
			TotalScore:                  total,
		},
		Evidence:    citationIDs,
		Explanation: explainDesert(seed, confidence, total, citationIDs),
	}
}

// ConfidenceFunc supplies the opaque per-facility confidence from the
// explanation step.
type ConfidenceFunc func(seed MetricSeed) (confidence float64, citationIDs []string)

// ComputeDesertScores is the one-call form: seeds then components.
func (s *Scorer) ComputeDesertScores(target string, facilities []Facility, filter *RegionFilter, conf ConfidenceFunc) []model.DesertScore {
	seeds := s.BuildDesertMetricSeeds(target, facilities, filter)
	scores := make([]model.DesertScore, 0, len(seeds))
	for _, seed := range seeds {
		confidence, citations := 1.0, []string(nil)
		if conf != nil {
			confidence, citations = conf(seed)
		}
		scores = append(scores, s.ComputeComponents(seed, confidence, citations))
	}
	return scores
}

// explainDesert builds the deterministic, evidence-cited explanation.
func explainDesert(seed MetricSeed, confidence, total float64, citationIDs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Facility %s, target %s: gap score %.0f/100.", seed.Facility.FacilityID, seed.Target, total)

	switch {
	case seed.DistanceKm == nil:
		b.WriteString(" Distance to nearest capable facility could not be computed (no capable facility or missing coordinates).")
	case *seed.DistanceKm == 0:
		b.WriteString(" Facility holds the target capability itself.")
	default:
		fmt.Fprintf(&b, " Nearest capable facility is %.1f km away.", *seed.DistanceKm)
	}

	if len(seed.Missing) > 0 {
		fmt.Fprintf(&b, " Missing prerequisites: %s.", strings.Join(seed.Missing, ", "))
	} else {
		b.WriteString(" All prerequisites present.")
	}

	fmt.Fprintf(&b, " Data confidence %.2f.", confidence)
	if len(citationIDs) > 0 {
		fmt.Fprintf(&b, " Evidence: [%s].", strings.Join(citationIDs, ", "))
	}
	return b.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
