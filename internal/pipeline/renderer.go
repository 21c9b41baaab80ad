package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
)

// Renderer writes assessment output as JSON and Markdown
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes any report value as indented JSON.
func (r *Renderer) RenderJSON(report any, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable assessment summary.
func (r *Renderer) RenderMarkdown(report *model.AssessmentReport, path string) error {
	var b strings.Builder

	b.WriteString("# Facility Capability Assessment\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))

	b.WriteString("## Regions\n\n")
	b.WriteString("| Region | Coverage | Risk | Missing |\n")
	b.WriteString("|--------|----------|------|---------|\n")
	for _, reg := range report.Regions {
		missing := "none"
		if len(reg.MissingCapabilities) > 0 {
			missing = strings.Join(reg.MissingCapabilities, ", ")
		}
		fmt.Fprintf(&b, "| %s | %.3f | %s | %s |\n", reg.Region, reg.CoverageScore, reg.RiskLevel, missing)
	}
	b.WriteString("\n")

	b.WriteString("## Facilities\n\n")
	for _, fac := range report.Facilities {
		fmt.Fprintf(&b, "### %s\n\n", fac.FacilityID)
		if fac.Validation != nil {
			fmt.Fprintf(&b, "Verdict: **%s** (score %.2f, %d issues)\n\n",
				fac.Validation.Verdict, fac.Validation.Score, len(fac.Validation.Issues))
		}
		codes := make([]string, 0, len(fac.Decisions))
		for code := range fac.Decisions {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			d := fac.Decisions[code]
			mark := "✗"
			if d.Value {
				mark = "✓"
			}
			fmt.Fprintf(&b, "- %s %s: %s (confidence %.2f, %d evidence)\n",
				mark, code, d.Reason, d.Confidence, len(d.Evidence))
		}
		b.WriteString("\n")
	}

	if len(report.Errors) > 0 {
		b.WriteString("## Errors\n\n")
		for _, e := range report.Errors {
			fmt.Fprintf(&b, "- %s (%s): %s\n", e.FacilityID, e.Stage, e.Message)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\nGenerated by CuraWay. Decisions are conservative: absence of a capability claim means \"not confirmed\", not \"absent\".\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderSummary prints a short assessment summary.
func (r *Renderer) RenderSummary(w io.Writer, report *model.AssessmentReport) {
	fmt.Fprintf(w, "Assessed %d facilities across %d regions (%d failed)\n",
		len(report.Facilities), len(report.Regions), len(report.Errors))
	for _, reg := range report.Regions {
		fmt.Fprintf(w, "  %-20s coverage %.3f  risk %s\n", reg.Region, reg.CoverageScore, reg.RiskLevel)
	}
}
