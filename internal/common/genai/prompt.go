package genai

import (
	"fmt"
	"strings"

	"nexsupply-workers/internal/models"
)

// BuildPrompt assembles the lead-qualification prompt for one submission,
// including the computed email intel.
func BuildPrompt(payload models.SubmissionPayload, intel models.EmailIntel) string {
	var parts []string

	parts = append(parts, "You qualify inbound leads for NexSupply, a global sourcing platform for importers, Amazon FBA sellers and DTC brands.")
	parts = append(parts, "Judge commercial viability, sourcing maturity and immediate needs from the submission below.")

	parts = append(parts, "\nSubmission:")
	parts = append(parts, fmt.Sprintf("- Name: %s", payload.Name))
	parts = append(parts, fmt.Sprintf("- Work email: %s", payload.WorkEmail))
	parts = append(parts, fmt.Sprintf("- Company: %s", payload.Company))
	parts = append(parts, fmt.Sprintf("- Use case: %s", payload.UseCase))
	if payload.LeadSource != "" {
		parts = append(parts, fmt.Sprintf("- Lead source: %s", payload.LeadSource))
	}

	parts = append(parts, "\nEmail classification (computed, treat as fact):")
	parts = append(parts, fmt.Sprintf("- Domain: %s", intel.Domain))
	parts = append(parts, fmt.Sprintf("- Email type: %s", intel.EmailType))
	parts = append(parts, fmt.Sprintf("- Local part: %s", intel.LocalPartType))

	parts = append(parts, "\nScoring:")
	parts = append(parts, "- intent_score_0_to_100 (weight 0.35): landed cost, HTS codes, FCL, 3PL, ASIN, private label, OEM, concrete volumes and deadlines score high. Side hustles, dropshipping, arbitrage and vague idea-stage requests score low.")
	parts = append(parts, "- fit_score_0_to_100 (weight 0.30): match with high-volume importers, FBA sellers and DTC brands.")
	parts = append(parts, "- authority_score_0_to_100 (weight 0.20): business domain with a person name is strongest, role mailboxes next, free webmail only with strong intent, disposable domains near zero.")
	parts = append(parts, "- engagement_score_0_to_100 (weight 0.15): length, detail and context of the use case.")
	parts = append(parts, "- opportunity_score = round(0.35*intent + 0.30*fit + 0.20*authority + 0.15*engagement)")

	parts = append(parts, "\nTiers, for your reasoning only:")
	parts = append(parts, "- A: corporate email, high intent, clear volume or pain. Reply within 15 minutes.")
	parts = append(parts, "- B: good fit and a clear need. Reply within 2 hours.")
	parts = append(parts, "- C: legitimate but exploratory. Reply within 24 hours.")
	parts = append(parts, "- D: students, vague or disposable. Nurture only.")

	parts = append(parts, "\nRules:")
	parts = append(parts, "- Return raw JSON only, no markdown fences.")
	parts = append(parts, "- Write _reasoning_trace before computing any score.")
	parts = append(parts, "- When unsure, score lower. Use \"Unknown\" for missing data.")

	parts = append(parts, "\nReturn exactly this structure:")
	parts = append(parts, analysisShape)

	return strings.Join(parts, "\n")
}

const analysisShape = `{
  "lead_profile": {
    "inferred_role": "Founder" | "Owner" | "Operations Manager" | "Supply Chain Manager" | "Procurement Manager" | "Solo Seller" | "Unknown",
    "buyer_persona_tag": "Anxious Scaler" | "Established Enterprise" | "Tire Kicker" | "Brand Builder" | "Arbitrage Seller",
    "technical_sophistication_score": number 1-10,
    "email_type": "business" | "prosumer" | "free" | "disposable_or_risky",
    "email_local_part_type": "role_based" | "person_name" | "suspicious"
  },
  "firmographics": {
    "industry_vertical": string,
    "supply_chain_complexity": "Low" | "Medium" | "High" | "Enterprise",
    "estimated_annual_volume": string
  },
  "qualification_engine": {
    "_reasoning_trace": string,
    "opportunity_score": number 0-100,
    "urgency_signal": "Low" | "Medium" | "High",
    "routing_destination": "Ignore_or_nurture" | "Standard_queue" | "Priority_queue" | "Executive_hand_off",
    "data_completeness": "insufficient" | "partial" | "sufficient",
    "intent_score_0_to_100": number,
    "fit_score_0_to_100": number,
    "authority_score_0_to_100": number,
    "engagement_score_0_to_100": number,
    "intent_signals": {"high_intent_tags": [string], "low_intent_tags": [string], "summary": string}
  },
  "content_generation": {
    "admin_battlecard_html": string,
    "user_email_subject": string,
    "user_email_opening_hook": string,
    "preview_dashboard_headline": string,
    "preview_key_insight": string
  }
}`
