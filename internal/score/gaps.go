package score

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
)

// Validation weights applied to coverage by trust verdict.
const (
	weightPlausible  = 1.0
	weightSuspicious = 0.7
	weightImpossible = 0.0
)

// validationWeight discounts coverage by how trustworthy the facility's
// record is. Unknown verdicts are treated like suspicious ones.
func validationWeight(v model.Verdict) float64 {
	switch v {
	case model.VerdictPlausible:
		return weightPlausible
	case model.VerdictImpossible:
		return weightImpossible
	default:
		return weightSuspicious
	}
}

// rankedFacility is a facility scored against one demand record
type rankedFacility struct {
	facility   Facility
	coverage   float64
	distanceKm float64 // +Inf when coordinates are missing
}

// DetectGaps scores a demand point against the facility list and produces
// the ranked candidates, the aggregate desert score and a recommendation.
// Deterministic for identical inputs.
func (s *Scorer) DetectGaps(demand model.DemandRecord, facilities []Facility) model.GapReport {
	required := normalizeCodes(demand.RequiredCapabilities)
	urgencyFactor := clamp01(float64(demand.Urgency) / 10)

	ranked := make([]rankedFacility, 0, len(facilities))
	for _, fac := range facilities {
		ranked = append(ranked, rankedFacility{
			facility:   fac,
			coverage:   coverage(required, fac),
			distanceKm: distanceTo(demand.Location, fac),
		})
	}
	// Rank by (-coverage, distance), facility id as the final tiebreak so
	// the order is total.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].coverage != ranked[j].coverage {
			return ranked[i].coverage > ranked[j].coverage
		}
		if ranked[i].distanceKm != ranked[j].distanceKm {
			return ranked[i].distanceKm < ranked[j].distanceKm
		}
		return ranked[i].facility.FacilityID < ranked[j].facility.FacilityID
	})

	candidates := []model.GapCandidate{}
	for _, r := range ranked {
		if r.coverage > s.cfg.CoverageThreshold && r.distanceKm <= s.cfg.RadiusKm {
			candidates = append(candidates, model.GapCandidate{
				FacilityID: r.facility.FacilityID,
				Coverage:   r.coverage,
				DistanceKm: r.distanceKm,
				Verdict:    r.facility.Verdict,
			})
			if s.cfg.TopK > 0 && len(candidates) >= s.cfg.TopK {
				break
			}
		}
	}

	bestCoverage := 0.0
	if len(ranked) > 0 {
		bestCoverage = ranked[0].coverage
	}
	hasNonImpossible := false
	for _, r := range ranked {
		if r.facility.Verdict != model.VerdictImpossible {
			hasNonImpossible = true
			break
		}
	}

	var desertScore float64
	var rec model.Recommendation
	switch {
	case len(candidates) > 0:
		desertScore = (1 - candidates[0].Coverage) * 0.5 * urgencyFactor
		rec = model.Recommendation{
			Type: model.RecommendRoute,
			Rationale: fmt.Sprintf("%d candidate facilities within %.0f km; best coverage %.2f.",
				len(candidates), s.cfg.RadiusKm, candidates[0].Coverage),
		}
	case hasNonImpossible:
		desertScore = math.Min(1, 0.4+(1-bestCoverage)*0.4+0.2*urgencyFactor)
		rec = model.Recommendation{
			Type: model.RecommendStrengthen,
			Rationale: fmt.Sprintf("No facility meets the coverage threshold; best partial coverage %.2f. Strengthening nearby facilities is the fastest path to coverage.",
				bestCoverage),
		}
	default:
		desertScore = math.Min(1, 0.6+0.4*urgencyFactor)
		rec = model.Recommendation{
			Type:      model.RecommendInvest,
			Rationale: "No non-impossible facility supplies any required capability; new capacity is needed.",
		}
	}

	return model.GapReport{
		DemandID:       demand.DemandID,
		DesertScore:    clamp01(desertScore),
		Candidates:     candidates,
		Recommendation: rec,
		Explanation:    explainGap(demand, required, candidates, desertScore, urgencyFactor),
	}
}

// coverage is the fraction of required capabilities the facility holds,
// discounted by its validation weight.
func coverage(required []string, fac Facility) float64 {
	if len(required) == 0 {
		return 0
	}
	held := 0
	for _, code := range required {
		if fac.Codes[code] {
			held++
		}
	}
	return float64(held) / float64(len(required)) * validationWeight(fac.Verdict)
}

// distanceTo returns the demand-to-facility distance, +Inf when the
// facility has no coordinates so it can never qualify as a candidate.
func distanceTo(from model.GeoPoint, fac Facility) float64 {
	point, ok := fac.Location.Point()
	if !ok {
		return math.Inf(1)
	}
	return Haversine(from, point)
}

func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			out = append(out, code)
		}
	}
	return out
}

func explainGap(demand model.DemandRecord, required []string, candidates []model.GapCandidate, desertScore, urgencyFactor float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Demand %s requires [%s] with urgency factor %.1f: desert score %.2f.",
		demand.DemandID, strings.Join(required, ", "), urgencyFactor, desertScore)
	if len(candidates) == 0 {
		b.WriteString(" No qualifying candidate facilities.")
		return b.String()
	}
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, fmt.Sprintf("%s (coverage %.2f, %.1f km, %s)", c.FacilityID, c.Coverage, c.DistanceKm, c.Verdict))
	}
	fmt.Fprintf(&b, " Candidates: %s.", strings.Join(ids, "; "))
	return b.String()
}
