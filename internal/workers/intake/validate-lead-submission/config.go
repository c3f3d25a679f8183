// internal/workers/intake/validate-lead-submission/config.go
package validateleadsubmission

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
