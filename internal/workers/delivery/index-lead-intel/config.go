// internal/workers/delivery/index-lead-intel/config.go
package indexleadintel

import "time"

type Config struct {
	IndexName string
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		IndexName: "lead-intel",
		Timeout:   10 * time.Second,
	}
}
