package validation

import (
	"fmt"
	"strings"

	"nexsupply-workers/internal/models"
)

const submissionSchemaJSON = `{
  "type": "object",
  "required": ["name", "workEmail", "company", "useCase"],
  "properties": {
    "name":       {"type": "string", "minLength": 1},
    "workEmail":  {"type": "string", "pattern": "^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\\.[a-zA-Z]{2,}$"},
    "company":    {"type": "string", "minLength": 1},
    "useCase":    {"type": "string", "minLength": 10},
    "leadSource": {"type": "string"}
  }
}`

// No numeric ranges: out-of-range scores are clamped by the guardrails
// rather than failing the analysis.
const leadAnalysisSchemaJSON = `{
  "type": "object",
  "required": ["lead_profile", "firmographics", "qualification_engine", "content_generation"],
  "properties": {
    "lead_profile": {
      "type": "object",
      "required": ["inferred_role", "buyer_persona_tag", "technical_sophistication_score"],
      "properties": {
        "inferred_role": {"enum": ["Founder", "Owner", "Operations Manager", "Supply Chain Manager", "Procurement Manager", "Solo Seller", "Unknown"]},
        "buyer_persona_tag": {"enum": ["Anxious Scaler", "Established Enterprise", "Tire Kicker", "Brand Builder", "Arbitrage Seller"]},
        "technical_sophistication_score": {"type": "number"},
        "email_type": {"enum": ["business", "prosumer", "free", "disposable_or_risky"]},
        "email_local_part_type": {"enum": ["role_based", "person_name", "suspicious"]}
      }
    },
    "firmographics": {
      "type": "object",
      "required": ["industry_vertical", "supply_chain_complexity", "estimated_annual_volume"],
      "properties": {
        "industry_vertical": {"type": "string"},
        "supply_chain_complexity": {"enum": ["Low", "Medium", "High", "Enterprise"]},
        "estimated_annual_volume": {"type": "string"}
      }
    },
    "qualification_engine": {
      "type": "object",
      "required": ["_reasoning_trace", "opportunity_score", "urgency_signal", "routing_destination"],
      "properties": {
        "_reasoning_trace": {"type": "string"},
        "opportunity_score": {"type": "number"},
        "urgency_signal": {"enum": ["Low", "Medium", "High"]},
        "routing_destination": {"enum": ["Ignore_or_nurture", "Standard_queue", "Priority_queue", "Executive_hand_off"]},
        "data_completeness": {"enum": ["insufficient", "partial", "sufficient"]},
        "intent_score_0_to_100": {"type": "number"},
        "fit_score_0_to_100": {"type": "number"},
        "authority_score_0_to_100": {"type": "number"},
        "engagement_score_0_to_100": {"type": "number"},
        "intent_signals": {
          "type": "object",
          "properties": {
            "high_intent_tags": {"type": "array", "items": {"type": "string"}},
            "low_intent_tags": {"type": "array", "items": {"type": "string"}},
            "summary": {"type": "string"}
          }
        }
      }
    },
    "content_generation": {
      "type": "object",
      "required": ["admin_battlecard_html", "user_email_subject", "user_email_opening_hook", "preview_dashboard_headline", "preview_key_insight"],
      "properties": {
        "admin_battlecard_html": {"type": "string"},
        "user_email_subject": {"type": "string"},
        "user_email_opening_hook": {"type": "string"},
        "preview_dashboard_headline": {"type": "string"},
        "preview_key_insight": {"type": "string"}
      }
    }
  }
}`

const leadResponseSchemaJSON = `{
  "type": "object",
  "required": ["ok", "analysisPreview", "tier", "slaHours"],
  "properties": {
    "ok":              {"type": "boolean"},
    "analysisPreview": {"type": "string", "minLength": 1},
    "tier":            {"enum": ["A", "B", "C", "D"]},
    "slaHours":        {"type": "number", "minimum": 0}
  }
}`

var (
	submissionSchema   = MustCompile("submission", submissionSchemaJSON)
	leadAnalysisSchema = MustCompile("lead analysis", leadAnalysisSchemaJSON)
	leadResponseSchema = MustCompile("lead response", leadResponseSchemaJSON)
)

// Messages shown to the visitor, keyed by field.
var submissionMessages = map[string]string{
	"name":      "Name is required.",
	"workEmail": "A valid email is required.",
	"company":   "Company is required.",
	"useCase":   "Please provide at least a few words about your use case.",
}

// NormalizeSubmission trims every field of the form.
func NormalizeSubmission(p models.SubmissionPayload) models.SubmissionPayload {
	return models.SubmissionPayload{
		Name:       strings.TrimSpace(p.Name),
		WorkEmail:  strings.TrimSpace(p.WorkEmail),
		Company:    strings.TrimSpace(p.Company),
		UseCase:    strings.TrimSpace(p.UseCase),
		LeadSource: strings.TrimSpace(p.LeadSource),
	}
}

// ValidateSubmission normalizes the form and checks it. The returned
// payload is the normalized one regardless of the outcome.
func ValidateSubmission(p models.SubmissionPayload) (models.SubmissionPayload, *ValidationResult, error) {
	normalized := NormalizeSubmission(p)
	res, err := submissionSchema.Validate(normalized)
	if err != nil {
		return normalized, nil, err
	}
	for i := range res.Errors {
		if msg, ok := submissionMessages[res.Errors[i].Field]; ok {
			res.Errors[i].Message = msg
		}
	}
	return normalized, res, nil
}

// ParseLeadAnalysis checks raw model output against the analysis shape and
// decodes it. A nil analysis with a non-nil result means the document was
// well-formed JSON that failed the schema.
func ParseLeadAnalysis(raw []byte) (*models.LeadAnalysis, *ValidationResult, error) {
	res, err := leadAnalysisSchema.ValidateBytes(raw)
	if err != nil {
		return nil, nil, err
	}
	if !res.Valid {
		return nil, res, nil
	}

	var analysis models.LeadAnalysis
	if err := decodeStrict(raw, &analysis); err != nil {
		return nil, res, err
	}
	return &analysis, res, nil
}

// ValidateLeadResponse checks the public sample-request answer before it
// leaves the service.
func ValidateLeadResponse(resp interface{}) error {
	res, err := leadResponseSchema.Validate(resp)
	if err != nil {
		return err
	}
	if !res.Valid {
		return fmt.Errorf("lead response: %s", res.Summary())
	}
	return nil
}
