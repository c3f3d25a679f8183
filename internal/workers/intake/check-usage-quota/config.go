// internal/workers/intake/check-usage-quota/config.go
package checkusagequota

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
