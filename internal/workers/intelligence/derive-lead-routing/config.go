// internal/workers/intelligence/derive-lead-routing/config.go
package deriveleadrouting

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
