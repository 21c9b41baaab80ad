package model

import (
	"encoding/json"
	"fmt"
)

// Verdict is the facility-level trust classification. Ordered: a verdict
// only ever escalates (plausible < suspicious < impossible).
type Verdict int

const (
	VerdictPlausible Verdict = iota
	VerdictSuspicious
	VerdictImpossible
)

func (v Verdict) String() string {
	switch v {
	case VerdictSuspicious:
		return "suspicious"
	case VerdictImpossible:
		return "impossible"
	default:
		return "plausible"
	}
}

// Max returns the higher of the two verdicts.
func (v Verdict) Max(other Verdict) Verdict {
	if other > v {
		return other
	}
	return v
}

// MarshalJSON encodes the verdict as its string form.
func (v Verdict) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON decodes the string form.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseVerdict(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseVerdict converts a string form back to a Verdict.
func ParseVerdict(s string) (Verdict, error) {
	switch s {
	case "plausible":
		return VerdictPlausible, nil
	case "suspicious":
		return VerdictSuspicious, nil
	case "impossible":
		return VerdictImpossible, nil
	default:
		return VerdictPlausible, fmt.Errorf("unknown verdict: %q", s)
	}
}

// IssueSeverity indicates the weight of a validation issue
type IssueSeverity string

const (
	SeverityInfo    IssueSeverity = "info"
	SeverityWarning IssueSeverity = "warning"
	SeverityError   IssueSeverity = "error"
)

// Verdict maps a severity onto the verdict it implies when an issue fires.
func (s IssueSeverity) Verdict() Verdict {
	switch s {
	case SeverityError:
		return VerdictImpossible
	case SeverityWarning:
		return VerdictSuspicious
	default:
		return VerdictPlausible
	}
}

// IssueEvidence carries citation ids resolved for an issue
type IssueEvidence struct {
	CitationIDs []string `json:"citation_ids,omitempty"`
}

// Issue is a single validation finding
type Issue struct {
	Severity IssueSeverity  `json:"severity"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Path     string         `json:"path,omitempty"`
	Evidence *IssueEvidence `json:"evidence,omitempty"`
}

// ValidationResult is the outcome of running all check families over one
// supply record. Score is an auxiliary signal computed from issue counts;
// it does not drive the verdict.
type ValidationResult struct {
	FacilityID           string                `json:"facility_id,omitempty"`
	Verdict              Verdict               `json:"verdict"`
	Score                float64               `json:"score"`
	Issues               []Issue               `json:"issues"`
	IssueCountBySeverity map[IssueSeverity]int `json:"issue_count_by_severity"`
}
