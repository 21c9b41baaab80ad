package validate

import (
	"fmt"
	"os"

	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
	"gopkg.in/yaml.v3"
)

// FieldType enumerates the types a schema field may require
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeList    FieldType = "list"
)

// FieldSpec describes one schema field. Severity applies to the
// missing-required issue; type violations are always errors.
type FieldSpec struct {
	Type     FieldType           `yaml:"type,omitempty" json:"type,omitempty"`
	Required bool                `yaml:"required,omitempty" json:"required,omitempty"`
	Severity model.IssueSeverity `yaml:"severity,omitempty" json:"severity,omitempty"`
}

// Schema is a minimal facility schema: field name -> spec
type Schema struct {
	Fields map[string]FieldSpec `yaml:"fields" json:"fields"`
}

// Rule is one declarative cross-capability constraint. The When predicate
// decides whether the rule triggers over the facility's key set; a triggered
// rule violates when its Requires/Forbid predicate fails.
//
// Predicates are enumerated struct fields rather than free-form maps so the
// evaluator's semantics are compiler-checked.
type Rule struct {
	Name            string              `yaml:"name" json:"name"`
	WhenAny         []string            `yaml:"when_any,omitempty" json:"when_any,omitempty"`
	WhenAll         []string            `yaml:"when_all,omitempty" json:"when_all,omitempty"`
	RequiresAny     []string            `yaml:"requires_any,omitempty" json:"requires_any,omitempty"`
	RequiresAll     []string            `yaml:"requires_all,omitempty" json:"requires_all,omitempty"`
	ForbidAny       []string            `yaml:"forbid_any,omitempty" json:"forbid_any,omitempty"`
	ForbidAll       []string            `yaml:"forbid_all,omitempty" json:"forbid_all,omitempty"`
	Severity        model.IssueSeverity `yaml:"severity" json:"severity"`
	VerdictOverride *string             `yaml:"verdict_override,omitempty" json:"verdict_override,omitempty"`
	Message         string              `yaml:"message,omitempty" json:"message,omitempty"`
}

// triggered reports whether the rule's When predicate holds over the key
// set. A rule with no When predicate always triggers.
func (r Rule) triggered(keys map[string]bool) bool {
	if len(r.WhenAll) > 0 {
		for _, k := range r.WhenAll {
			if !keys[k] {
				return false
			}
		}
	}
	if len(r.WhenAny) > 0 {
		hit := false
		for _, k := range r.WhenAny {
			if keys[k] {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// violated reports whether a triggered rule's Requires/Forbid predicate
// fails over the key set.
func (r Rule) violated(keys map[string]bool) bool {
	if len(r.RequiresAll) > 0 {
		for _, k := range r.RequiresAll {
			if !keys[k] {
				return true
			}
		}
	}
	if len(r.RequiresAny) > 0 {
		hit := false
		for _, k := range r.RequiresAny {
			if keys[k] {
				hit = true
				break
			}
		}
		if !hit {
			return true
		}
	}
	if len(r.ForbidAny) > 0 {
		for _, k := range r.ForbidAny {
			if keys[k] {
				return true
			}
		}
	}
	if len(r.ForbidAll) > 0 {
		all := true
		for _, k := range r.ForbidAll {
			if !keys[k] {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// impliedVerdict resolves the verdict a violated rule forces: the explicit
// override when present, else the severity mapping.
func (r Rule) impliedVerdict() model.Verdict {
	if r.VerdictOverride != nil {
		if v, err := model.ParseVerdict(*r.VerdictOverride); err == nil {
			return v
		}
	}
	return r.Severity.Verdict()
}

// Constraints is the loadable constraints document. Overrides merge
// field-by-field over the defaults: a present field replaces the default
// value whole (rule lists are not deep-merged).
type Constraints struct {
	Rules                  []Rule   `yaml:"rules,omitempty" json:"rules,omitempty"`
	RangeFields            []string `yaml:"range_fields,omitempty" json:"range_fields,omitempty"`
	LowConfidenceThreshold float64  `yaml:"low_confidence_threshold,omitempty" json:"low_confidence_threshold,omitempty"`
}

// LoadConstraints reads a YAML constraints document.
func LoadConstraints(path string) (*Constraints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read constraints: %w", err)
	}
	var c Constraints
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse constraints: %w", err)
	}
	return &c, nil
}

// Merge overlays non-empty override fields onto the receiver.
func (c Constraints) Merge(override *Constraints) Constraints {
	if override == nil {
		return c
	}
	out := c
	if len(override.Rules) > 0 {
		out.Rules = override.Rules
	}
	if len(override.RangeFields) > 0 {
		out.RangeFields = override.RangeFields
	}
	if override.LowConfidenceThreshold > 0 {
		out.LowConfidenceThreshold = override.LowConfidenceThreshold
	}
	return out
}

// DefaultSchema returns the built-in facility schema.
func DefaultSchema() *Schema {
	return &Schema{Fields: map[string]FieldSpec{
		"facility_id": {Type: TypeString, Required: true, Severity: model.SeverityError},
		"name":        {Type: TypeString, Required: true, Severity: model.SeverityWarning},
		"region":      {Type: TypeString},
		"bed_count":   {Type: TypeNumber},
		"staff_count": {Type: TypeNumber},
	}}
}

// DefaultConstraints returns the built-in rule set.
func DefaultConstraints() Constraints {
	impossible := model.VerdictImpossible.String()
	return Constraints{
		RangeFields: []string{
			"bed_count", "staff_count", "icu_beds",
			"radiology_staff_count", "doctor_count", "nurse_count",
		},
		LowConfidenceThreshold: 0.4,
		Rules: []Rule{
			{
				Name:        "CT_MRI_REQUIRES_RADIOLOGY",
				WhenAny:     []string{"IMAGING_CT", "IMAGING_MRI"},
				RequiresAny: []string{"SPECIALIST_RADIOLOGY", "radiology_staff_count"},
				Severity:    model.SeverityWarning,
				Message:     "advanced imaging claimed without radiology staff",
			},
			{
				Name:        "CHEMO_REQUIRES_PHARMACY",
				WhenAny:     []string{"ONC_CHEMOTHERAPY"},
				RequiresAll: []string{"PHARMACY"},
				Severity:    model.SeverityWarning,
				Message:     "chemotherapy claimed without pharmacy services",
			},
			{
				Name:        "SURGERY_REQUIRES_BEDS",
				WhenAny:     []string{"SURGERY_GENERAL"},
				RequiresAny: []string{"bed_count"},
				Severity:    model.SeverityWarning,
				Message:     "surgical services claimed without inpatient beds",
			},
			{
				Name:            "ICU_REQUIRES_STAFF",
				WhenAny:         []string{"ICU"},
				RequiresAny:     []string{"staff_count", "doctor_count", "nurse_count"},
				Severity:        model.SeverityError,
				VerdictOverride: &impossible,
				Message:         "intensive care claimed with no reported staff",
			},
			{
				Name:        "RADIOTHERAPY_REQUIRES_ONCOLOGY",
				WhenAny:     []string{"ONC_RADIOTHERAPY"},
				RequiresAny: []string{"ONC_GENERAL", "SPECIALIST_ONCOLOGY"},
				Severity:    model.SeverityWarning,
				Message:     "radiotherapy claimed without oncology capability",
			},
		},
	}
}
