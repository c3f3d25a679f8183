// internal/workers/intelligence/analyze-lead/config.go
package analyzelead

import "time"

type Config struct {
	// Timeout bounds the whole job; the model call has its own, shorter one.
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 90 * time.Second,
	}
}
