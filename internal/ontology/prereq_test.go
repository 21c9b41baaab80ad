package ontology

import (
	"reflect"
	"testing"
)

func TestPrerequisites_DefaultGraph(t *testing.T) {
	g := DefaultPrerequisites()

	prereqs := g.Prerequisites("IMAGING_CT")
	want := []string{"IMAGING_XRAY", "SPECIALIST_RADIOLOGY"}
	if !reflect.DeepEqual(prereqs, want) {
		t.Errorf("Expected %v, got %v", want, prereqs)
	}

	// Code lookup is case-insensitive
	if !reflect.DeepEqual(g.Prerequisites("imaging_ct"), want) {
		t.Error("Expected lowercase code to resolve")
	}

	if len(g.Prerequisites("EMERGENCY_CARE")) != 0 {
		t.Error("Expected no prerequisites for EMERGENCY_CARE")
	}
}

func TestPrerequisites_ReturnsCopy(t *testing.T) {
	g := DefaultPrerequisites()

	prereqs := g.Prerequisites("IMAGING_CT")
	prereqs[0] = "MUTATED"
	if g.Prerequisites("IMAGING_CT")[0] == "MUTATED" {
		t.Error("Prerequisites must return a copy")
	}
}

func TestMissing(t *testing.T) {
	g := DefaultPrerequisites()

	tests := []struct {
		name string
		code string
		held map[string]bool
		want []string
	}{
		{
			name: "nothing held",
			code: "IMAGING_CT",
			held: nil,
			want: []string{"IMAGING_XRAY", "SPECIALIST_RADIOLOGY"},
		},
		{
			name: "partially held",
			code: "IMAGING_CT",
			held: map[string]bool{"IMAGING_XRAY": true},
			want: []string{"SPECIALIST_RADIOLOGY"},
		},
		{
			name: "all held",
			code: "IMAGING_CT",
			held: map[string]bool{"IMAGING_XRAY": true, "SPECIALIST_RADIOLOGY": true},
			want: []string{},
		},
		{
			name: "unknown code",
			code: "NOT_A_CODE",
			held: nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		got := g.Missing(tt.code, tt.held)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: Missing(%s) = %v, want %v", tt.name, tt.code, got, tt.want)
		}
	}
}

func TestNewPrerequisiteGraph_NormalizesAndSorts(t *testing.T) {
	g := NewPrerequisiteGraph(map[string][]string{
		"dialysis": {"pharmacy", " lab_basic ", ""},
	})

	want := []string{"LAB_BASIC", "PHARMACY"}
	if got := g.Prerequisites("DIALYSIS"); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
