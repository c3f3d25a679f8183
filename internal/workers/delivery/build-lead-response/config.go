// internal/workers/delivery/build-lead-response/config.go
package buildleadresponse

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
