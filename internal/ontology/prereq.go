package ontology

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// PrerequisiteGraph maps capability codes to the codes a facility should
// already hold before credibly offering them. Read-only after construction.
type PrerequisiteGraph struct {
	edges map[string][]string
}

// NewPrerequisiteGraph builds a graph from an explicit edge map. Codes are
// upper-cased; prerequisite lists are sorted for reproducible output.
func NewPrerequisiteGraph(edges map[string][]string) *PrerequisiteGraph {
	g := &PrerequisiteGraph{edges: make(map[string][]string, len(edges))}
	for code, prereqs := range edges {
		normalized := make([]string, 0, len(prereqs))
		for _, p := range prereqs {
			p = strings.ToUpper(strings.TrimSpace(p))
			if p != "" {
				normalized = append(normalized, p)
			}
		}
		sort.Strings(normalized)
		g.edges[strings.ToUpper(strings.TrimSpace(code))] = normalized
	}
	return g
}

// DefaultPrerequisites returns the built-in prerequisite graph.
func DefaultPrerequisites() *PrerequisiteGraph {
	return NewPrerequisiteGraph(builtinPrerequisites)
}

// LoadPrerequisites reads a YAML file mapping code -> prerequisite codes.
func LoadPrerequisites(path string) (*PrerequisiteGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prerequisites: %w", err)
	}
	var edges map[string][]string
	if err := yaml.Unmarshal(data, &edges); err != nil {
		return nil, fmt.Errorf("parse prerequisites: %w", err)
	}
	return NewPrerequisiteGraph(edges), nil
}

// Prerequisites returns a copy of the prerequisite codes for a capability.
// Unknown codes have no prerequisites.
func (g *PrerequisiteGraph) Prerequisites(code string) []string {
	prereqs := g.edges[strings.ToUpper(strings.TrimSpace(code))]
	out := make([]string, len(prereqs))
	copy(out, prereqs)
	return out
}

// Missing returns the prerequisites of code absent from the held set, sorted.
func (g *PrerequisiteGraph) Missing(code string, held map[string]bool) []string {
	missing := []string{}
	for _, prereq := range g.Prerequisites(code) {
		if !held[prereq] {
			missing = append(missing, prereq)
		}
	}
	return missing
}
