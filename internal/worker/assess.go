package worker

import (
	"context"

	"github.com/RichterLProgram/CuraWay-sub000/internal/model"
)

// FacilityAssessor decides and validates a single facility
type FacilityAssessor interface {
	AssessOne(ctx context.Context, claims model.FacilityClaims) (model.FacilityDecisions, *model.ValidationResult, error)
}

// AssessJob assesses one facility's claims
type AssessJob struct {
	Claims   model.FacilityClaims
	Assessor FacilityAssessor
}

// Execute runs the assessment
func (j *AssessJob) Execute(ctx context.Context) Result {
	decisions, validation, err := j.Assessor.AssessOne(ctx, j.Claims)
	return &AssessResult{
		FacilityID: j.Claims.FacilityID,
		Decisions:  decisions,
		Validation: validation,
		Err:        err,
	}
}

// AssessResult is the outcome of one facility assessment
type AssessResult struct {
	FacilityID string
	Decisions  model.FacilityDecisions
	Validation *model.ValidationResult
	Err        error
}

// GetError returns the assessment error, if any
func (r *AssessResult) GetError() error {
	return r.Err
}
