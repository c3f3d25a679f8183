// internal/workers/delivery/send-lead-notifications/config.go
package sendleadnotifications

import (
	"time"

	"nexsupply-workers/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	FromEmail    string
	AdminEmail   string
	AlertTopic   string
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		EmailEnabled: true,
		FromEmail:    config.DefaultFromEmail,
		Timeout:      30 * time.Second,
	}
}

// FromSettings applies the notifications section of the service config.
func (c *Config) FromSettings(n config.NotificationConfig) *Config {
	c.EmailEnabled = n.SESEnabled
	if n.FromEmail != "" {
		c.FromEmail = n.FromEmail
	}
	c.AdminEmail = n.AdminEmail
	c.AlertTopic = n.SNSTopicARN
	return c
}
