// Package validate implements the constraint/validation engine: ordered
// check families that escalate a facility's trust verdict and never lower
// it.
package validate

import (
	"fmt"
	"sort"

	"github.com/RichterLProgram/CuraWay-sub000/internal/evidence"
	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
	"github.com/RichterLProgram/CuraWay-sub000/internal/ontology"
)

// Score weights per issue severity. The score is an auxiliary signal
// computed independently of the verdict.
const (
	errorWeight   = 0.2
	warningWeight = 0.1
	infoWeight    = 0.02
)

// Validator evaluates supply records against a schema and constraint rules
type Validator struct {
	registry    *ontology.Registry
	cfg         model.ValidationConfig
	schema      *Schema
	constraints Constraints
}

// NewValidator creates a validator. Nil schema/constraints select the
// built-in defaults; a provided constraints document merges over them.
func NewValidator(registry *ontology.Registry, cfg model.ValidationConfig, schema *Schema, constraints *Constraints) *Validator {
	if registry == nil {
		registry = ontology.Default()
	}
	if schema == nil {
		schema = DefaultSchema()
	}
	merged := DefaultConstraints().Merge(constraints)
	if cfg.LowConfidenceThreshold <= 0 {
		cfg.LowConfidenceThreshold = merged.LowConfidenceThreshold
	}
	if cfg.MaxEvidenceCitations <= 0 {
		cfg.MaxEvidenceCitations = 30
	}
	return &Validator{
		registry:    registry,
		cfg:         cfg,
		schema:      schema,
		constraints: merged,
	}
}

type addFunc func(issue model.Issue, implied model.Verdict)

// Validate runs the check families in order: schema, ranges, contradiction
// and constraint rules, confidence. Issues only ever escalate the verdict.
func (v *Validator) Validate(record model.SupplyRecord, idx *evidence.Index) model.ValidationResult {
	issues := []model.Issue{}
	verdict := model.VerdictPlausible

	add := func(issue model.Issue, implied model.Verdict) {
		issues = append(issues, issue)
		verdict = verdict.Max(implied)
	}

	v.checkSchema(record, add)
	v.checkRanges(record, add)

	positive, negated := v.normalizeCapabilitySets(record)
	v.checkContradictions(positive, negated, idx, add)
	v.checkRules(record, positive, idx, add)
	v.checkConfidence(record, add)

	counts := map[model.IssueSeverity]int{}
	for _, issue := range issues {
		counts[issue.Severity]++
	}

	score := 1.0 -
		errorWeight*float64(counts[model.SeverityError]) -
		warningWeight*float64(counts[model.SeverityWarning]) -
		infoWeight*float64(counts[model.SeverityInfo])

	return model.ValidationResult{
		FacilityID:           record.FacilityID,
		Verdict:              verdict,
		Score:                clamp01(score),
		Issues:               issues,
		IssueCountBySeverity: counts,
	}
}

// checkSchema verifies required-field presence and attribute types.
func (v *Validator) checkSchema(record model.SupplyRecord, add addFunc) {
	fields := make([]string, 0, len(v.schema.Fields))
	for name := range v.schema.Fields {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	for _, name := range fields {
		spec := v.schema.Fields[name]
		value, present := fieldValue(record, name)

		if !present {
			if spec.Required {
				severity := spec.Severity
				if severity == "" {
					severity = model.SeverityWarning
				}
				add(model.Issue{
					Severity: severity,
					Code:     "MISSING_REQUIRED_FIELD",
					Message:  fmt.Sprintf("required field %q is missing", name),
					Path:     name,
				}, severity.Verdict())
			}
			continue
		}

		if spec.Type != "" && !typeMatches(spec.Type, value) {
			add(model.Issue{
				Severity: model.SeverityError,
				Code:     "WRONG_FIELD_TYPE",
				Message:  fmt.Sprintf("field %q has type %T, expected %s", name, value, spec.Type),
				Path:     name,
			}, model.VerdictImpossible)
		}
	}
}

// checkRanges verifies that named numeric fields are non-negative numbers.
func (v *Validator) checkRanges(record model.SupplyRecord, add addFunc) {
	for _, name := range v.constraints.RangeFields {
		value, present := fieldValue(record, name)
		if !present {
			continue
		}
		num, ok := asNumber(value)
		if !ok {
			add(model.Issue{
				Severity: model.SeverityError,
				Code:     "NOT_A_NUMBER",
				Message:  fmt.Sprintf("field %q must be numeric, got %T", name, value),
				Path:     name,
			}, model.VerdictImpossible)
			continue
		}
		if num < 0 {
			add(model.Issue{
				Severity: model.SeverityError,
				Code:     "NEGATIVE_VALUE",
				Message:  fmt.Sprintf("field %q must be non-negative, got %v", name, num),
				Path:     name,
			}, model.VerdictImpossible)
		}
	}
}

// normalizeCapabilitySets resolves every supply entry to a canonical code
// and splits them into positive and negated sets. Negation comes from the
// entry's own flag or from negation markers around the capability mention
// in its evidence snippet.
func (v *Validator) normalizeCapabilitySets(record model.SupplyRecord) (positive, negated map[string]bool) {
	positive = make(map[string]bool)
	negated = make(map[string]bool)

	for _, entry := range record.Entries() {
		code := entry.CapabilityCode
		if code == "" {
			norm := v.registry.NormalizeName(entry.Name)
			if norm.MatchType == ontology.MatchNone {
				continue
			}
			code = norm.Code
		}

		isNegated := entry.Negated
		if !isNegated && entry.Evidence != nil && entry.Evidence.Snippet != "" {
			isNegated = v.registry.IsNegatedForCode(entry.Evidence.Snippet, code, ontology.DefaultNegationWindow)
		}

		if isNegated {
			negated[code] = true
		} else {
			positive[code] = true
		}
	}
	return positive, negated
}

// checkContradictions flags codes present in both the positive and negated
// sets. A facility cannot simultaneously claim and disclaim a capability.
func (v *Validator) checkContradictions(positive, negated map[string]bool, idx *evidence.Index, add addFunc) {
	var codes []string
	for code := range positive {
		if negated[code] {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)

	for _, code := range codes {
		add(model.Issue{
			Severity: model.SeverityError,
			Code:     "CONTRADICTORY_CLAIM",
			Message:  fmt.Sprintf("capability %s is both claimed and negated", code),
			Path:     "capabilities." + code,
			Evidence: v.issueEvidence(code, idx),
		}, model.VerdictImpossible)
	}
}

// checkRules evaluates the declarative constraint rules over the key set:
// positive capability codes plus attribute keys with truthy values.
func (v *Validator) checkRules(record model.SupplyRecord, positive map[string]bool, idx *evidence.Index, add addFunc) {
	keys := make(map[string]bool, len(positive)+len(record.Attributes))
	for code := range positive {
		keys[code] = true
	}
	for name, value := range record.Attributes {
		if truthy(value) {
			keys[name] = true
		}
	}

	for _, rule := range v.constraints.Rules {
		if !rule.triggered(keys) || !rule.violated(keys) {
			continue
		}
		message := rule.Message
		if message == "" {
			message = fmt.Sprintf("constraint %s violated", rule.Name)
		}
		var ev *model.IssueEvidence
		for _, key := range rule.WhenAny {
			if keys[key] {
				ev = v.issueEvidence(key, idx)
				break
			}
		}
		add(model.Issue{
			Severity: rule.Severity,
			Code:     rule.Name,
			Message:  message,
			Path:     "capabilities",
			Evidence: ev,
		}, rule.impliedVerdict())
	}
}

// checkConfidence flags fields extracted below the confidence threshold.
func (v *Validator) checkConfidence(record model.SupplyRecord, add addFunc) {
	names := make([]string, 0, len(record.FieldConfidence))
	for name := range record.FieldConfidence {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		conf := record.FieldConfidence[name]
		if conf < v.cfg.LowConfidenceThreshold {
			add(model.Issue{
				Severity: model.SeverityWarning,
				Code:     "LOW_CONFIDENCE",
				Message:  fmt.Sprintf("field %q extracted with confidence %.2f (threshold %.2f)", name, conf, v.cfg.LowConfidenceThreshold),
				Path:     name,
			}, model.VerdictSuspicious)
		}
	}
}

// issueEvidence resolves citation ids for a capability code via the chunk
// index.
func (v *Validator) issueEvidence(code string, idx *evidence.Index) *model.IssueEvidence {
	if idx == nil {
		return nil
	}
	ids := evidence.FindEvidenceForCode(v.registry, code, idx)
	if len(ids) > v.cfg.MaxEvidenceCitations {
		ids = ids[:v.cfg.MaxEvidenceCitations]
	}
	if len(ids) == 0 {
		return nil
	}
	return &model.IssueEvidence{CitationIDs: ids}
}

// fieldValue resolves a schema field from the record's structured fields
// first, then its attribute map.
func fieldValue(record model.SupplyRecord, name string) (any, bool) {
	switch name {
	case "facility_id":
		if record.FacilityID == "" {
			return nil, false
		}
		return record.FacilityID, true
	case "name":
		if record.Name == "" {
			return nil, false
		}
		return record.Name, true
	case "region":
		if record.Location.Region == "" {
			return nil, false
		}
		return record.Location.Region, true
	}
	value, ok := record.Attributes[name]
	return value, ok
}

func typeMatches(t FieldType, value any) bool {
	switch t {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		_, ok := asNumber(value)
		return ok
	case TypeInteger:
		num, ok := asNumber(value)
		return ok && num == float64(int64(num))
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeList:
		switch value.(type) {
		case []any, []string:
			return true
		}
		return false
	default:
		return true
	}
}

func asNumber(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// truthy reports whether an attribute value counts as present for rule
// evaluation. Zero, empty string and false count as absent: a facility with
// radiology_staff_count=0 does not satisfy a radiology requirement.
func truthy(value any) bool {
	switch n := value.(type) {
	case bool:
		return n
	case string:
		return n != ""
	case nil:
		return false
	default:
		if num, ok := asNumber(value); ok {
			return num > 0
		}
		return true
	}
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
