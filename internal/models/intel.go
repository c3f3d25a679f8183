package models

// EmailType is the domain category of a work email.
type EmailType string

const (
	EmailBusiness   EmailType = "business"
	EmailProsumer   EmailType = "prosumer"
	EmailFree       EmailType = "free"
	EmailDisposable EmailType = "disposable_or_risky"
)

// LocalPartType is the category of the part before the "@".
type LocalPartType string

const (
	LocalRoleBased  LocalPartType = "role_based"
	LocalPersonName LocalPartType = "person_name"
	LocalSuspicious LocalPartType = "suspicious"
)

type EmailIntel struct {
	Domain        string        `json:"domain"`
	EmailType     EmailType     `json:"emailType"`
	LocalPartType LocalPartType `json:"localPartType"`
}

type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

type Queue string

const (
	QueuePriority Queue = "priority"
	QueueStandard Queue = "standard"
	QueueNurture  Queue = "nurture"
)

type LeadRoutingDecision struct {
	Tier          Tier    `json:"tier"`
	Label         string  `json:"label"`
	SLAHours      float64 `json:"slaHours"`
	Queue         Queue   `json:"queue"`
	ReasonSummary string  `json:"reasonSummary"`
}
