// internal/workers/intake/validate-lead-submission/models.go
package validateleadsubmission

import (
	"nexsupply-workers/internal/common/validation"
	"nexsupply-workers/internal/models"
)

type Input struct {
	Submission models.SubmissionPayload `json:"submission"`
}

type Output struct {
	IsValid          bool                         `json:"isValid"`
	ValidationErrors []validation.ValidationError `json:"validationErrors"`
	Submission       models.SubmissionPayload     `json:"submission"`
}
