// Package region aggregates per-facility capability decisions into regional
// coverage assessments.
package region

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
	"github.com/RichterLProgram/CuraWay-sub000/internal/ontology"
)

// UnknownRegion buckets facilities that carry no region.
const UnknownRegion = "unknown"

// Risk thresholds over the confirmed essential count.
const (
	highRiskBelow   = 2
	mediumRiskBelow = 4
)

// Assess groups facilities by region and scores coverage of the six
// essential capabilities. A capability counts as confirmed for the region
// when any facility there holds a positive direct_evidence decision for it.
//
// Output is sorted by region and every explanation string is reproducible
// byte-for-byte from the same inputs.
func Assess(facilities []model.FacilityDecisions) []model.RegionalAssessment {
	byRegion := make(map[string][]model.FacilityDecisions)
	for _, f := range facilities {
		region := f.Region
		if region == "" {
			region = UnknownRegion
		}
		byRegion[region] = append(byRegion[region], f)
	}

	regions := make([]string, 0, len(byRegion))
	for region := range byRegion {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	assessments := make([]model.RegionalAssessment, 0, len(regions))
	for _, region := range regions {
		assessments = append(assessments, assessOne(region, byRegion[region]))
	}
	return assessments
}

func assessOne(region string, facilities []model.FacilityDecisions) model.RegionalAssessment {
	essentials := ontology.EssentialCapabilities

	confirmed := make(map[string]bool)
	for _, f := range facilities {
		for _, code := range essentials {
			if d, ok := f.Decisions[code]; ok && d.Value && d.Reason == model.ReasonDirectEvidence {
				confirmed[code] = true
			}
		}
	}

	missing := []string{}
	for _, code := range essentials {
		if !confirmed[code] {
			missing = append(missing, code)
		}
	}
	sort.Strings(missing)

	facilityIDs := make([]string, 0, len(facilities))
	for _, f := range facilities {
		facilityIDs = append(facilityIDs, f.FacilityID)
	}
	sort.Strings(facilityIDs)

	confirmedCount := len(confirmed)
	coverage := round3(float64(confirmedCount) / float64(len(essentials)))

	return model.RegionalAssessment{
		Region:              region,
		CoverageScore:       coverage,
		RiskLevel:           riskLevel(confirmedCount),
		Explanation:         explain(region, confirmedCount, len(essentials), facilityIDs, missing),
		FacilityIDs:         facilityIDs,
		MissingCapabilities: missing,
	}
}

func riskLevel(confirmed int) model.RiskLevel {
	switch {
	case confirmed < highRiskBelow:
		return model.RiskHigh
	case confirmed < mediumRiskBelow:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// explain builds the audit-trail explanation. Inputs are pre-sorted so the
// string is identical across runs.
func explain(region string, confirmed, total int, facilityIDs, missing []string) string {
	missingPart := "none"
	if len(missing) > 0 {
		missingPart = strings.Join(missing, ", ")
	}
	facilityPart := "no facilities"
	if len(facilityIDs) > 0 {
		facilityPart = strings.Join(facilityIDs, ", ")
	}
	return fmt.Sprintf(
		"Region %s: %d/%d essential capabilities confirmed by direct evidence across facilities [%s]; missing: %s.",
		region, confirmed, total, facilityPart, missingPart,
	)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
