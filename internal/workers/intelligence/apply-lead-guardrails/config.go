// internal/workers/intelligence/apply-lead-guardrails/config.go
package applyleadguardrails

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
