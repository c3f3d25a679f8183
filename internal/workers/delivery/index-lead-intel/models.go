// internal/workers/delivery/index-lead-intel/models.go
package indexleadintel

import "nexsupply-workers/internal/models"

type Input struct {
	LeadID          string                     `json:"leadId"`
	Submission      models.SubmissionPayload   `json:"submission"`
	GuardedAnalysis *models.LeadAnalysis       `json:"guardedAnalysis"`
	Routing         models.LeadRoutingDecision `json:"routing"`
	CreatedAt       string                     `json:"createdAt,omitempty"`
}

type Output struct {
	Indexed   bool   `json:"indexed"`
	IndexName string `json:"indexName"`
	DocID     string `json:"docId"`
}

// LeadDocument is the flattened lead stored in the search index.
type LeadDocument struct {
	LeadID           string  `json:"leadId"`
	Company          string  `json:"company"`
	Domain           string  `json:"domain"`
	Tier             string  `json:"tier"`
	Queue            string  `json:"queue"`
	SLAHours         float64 `json:"slaHours"`
	OpportunityScore float64 `json:"opportunityScore"`
	TechScore        float64 `json:"technicalSophisticationScore"`
	Industry         string  `json:"industry"`
	EmailType        string  `json:"emailType"`
	Persona          string  `json:"persona"`
	Urgency          string  `json:"urgency"`
	LeadSource       string  `json:"leadSource,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	IndexedAt        string  `json:"indexedAt"`
}

// IndexMapping is applied when the lead index is first created.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "leadId":                       {"type": "keyword"},
      "company":                      {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "domain":                       {"type": "keyword"},
      "tier":                         {"type": "keyword"},
      "queue":                        {"type": "keyword"},
      "slaHours":                     {"type": "float"},
      "opportunityScore":             {"type": "float"},
      "technicalSophisticationScore": {"type": "float"},
      "industry":                     {"type": "keyword"},
      "emailType":                    {"type": "keyword"},
      "persona":                      {"type": "keyword"},
      "urgency":                      {"type": "keyword"},
      "leadSource":                   {"type": "keyword"},
      "createdAt":                    {"type": "date"},
      "indexedAt":                    {"type": "date"}
    }
  }
}`
