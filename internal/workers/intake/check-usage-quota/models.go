// internal/workers/intake/check-usage-quota/models.go
package checkusagequota

type Input struct {
	Identifier    string `json:"identifier"`
	Authenticated bool   `json:"authenticated"`
}

type Output struct {
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason,omitempty"`
	Count     int64  `json:"usageCount"`
	Limit     int64  `json:"usageLimit"`
	Remaining int64  `json:"usageRemaining"`
}
