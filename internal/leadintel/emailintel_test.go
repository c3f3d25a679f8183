package leadintel

import (
	"testing"

	"nexsupply-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Domain Classification
// ==========================

func TestAnalyzeEmail_DisposableDomains(t *testing.T) {
	locals := []string{"spam", "info", "john.smith", "a", "user12345"}

	for domain := range disposableDomains {
		for _, local := range locals {
			intel := AnalyzeEmail(local + "@" + domain)
			assert.Equal(t, models.EmailDisposable, intel.EmailType, "%s@%s", local, domain)
			assert.Equal(t, domain, intel.Domain)
		}
	}
}

func TestAnalyzeEmail_FreeWebmailRoleAddress(t *testing.T) {
	for domain := range freeWebmailDomains {
		intel := AnalyzeEmail("info@" + domain)
		assert.Equal(t, models.EmailFree, intel.EmailType, domain)
		assert.Equal(t, models.LocalRoleBased, intel.LocalPartType, domain)
	}
}

func TestAnalyzeEmail(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		wantDomain    string
		wantType      models.EmailType
		wantLocalPart models.LocalPartType
	}{
		{
			name:          "corporate person",
			email:         "ceo@acmecorp.com",
			wantDomain:    "acmecorp.com",
			wantType:      models.EmailBusiness,
			wantLocalPart: models.LocalPersonName,
		},
		{
			name:          "mixed case and padding",
			email:         "  Emma.Lee@AcmeCoffee.COM ",
			wantDomain:    "acmecoffee.com",
			wantType:      models.EmailBusiness,
			wantLocalPart: models.LocalPersonName,
		},
		{
			name:          "role with plus suffix",
			email:         "sales+inbound@midwestgrocers.com",
			wantDomain:    "midwestgrocers.com",
			wantType:      models.EmailBusiness,
			wantLocalPart: models.LocalRoleBased,
		},
		{
			name:          "role word as prefix only",
			email:         "information@acme.com",
			wantDomain:    "acme.com",
			wantType:      models.EmailBusiness,
			wantLocalPart: models.LocalPersonName,
		},
		{
			name:          "digit run on free webmail",
			email:         "kingofamazon7777@gmail.com",
			wantDomain:    "gmail.com",
			wantType:      models.EmailFree,
			wantLocalPart: models.LocalSuspicious,
		},
		{
			name:          "three digits are fine",
			email:         "kingofamazon777@gmail.com",
			wantDomain:    "gmail.com",
			wantType:      models.EmailFree,
			wantLocalPart: models.LocalPersonName,
		},
		{
			name:          "short prosumer domain",
			email:         "me@io.io",
			wantDomain:    "io.io",
			wantType:      models.EmailProsumer,
			wantLocalPart: models.LocalSuspicious,
		},
		{
			name:          "branded short domain",
			email:         "founder@a.co",
			wantDomain:    "a.co",
			wantType:      models.EmailProsumer,
			wantLocalPart: models.LocalPersonName,
		},
		{
			name:          "five character domain is business",
			email:         "jo@x.com",
			wantDomain:    "x.com",
			wantType:      models.EmailBusiness,
			wantLocalPart: models.LocalSuspicious,
		},
		{
			name:          "no at sign",
			email:         "not-an-email",
			wantDomain:    "",
			wantType:      models.EmailProsumer,
			wantLocalPart: models.LocalPersonName,
		},
		{
			name:          "empty string",
			email:         "",
			wantDomain:    "",
			wantType:      models.EmailProsumer,
			wantLocalPart: models.LocalSuspicious,
		},
		{
			name:          "extra at sign truncates domain",
			email:         "a@b.io@c.com",
			wantDomain:    "b.io",
			wantType:      models.EmailProsumer,
			wantLocalPart: models.LocalSuspicious,
		},
		{
			name:          "empty local part",
			email:         "@acmecorp.com",
			wantDomain:    "acmecorp.com",
			wantType:      models.EmailBusiness,
			wantLocalPart: models.LocalSuspicious,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intel := AnalyzeEmail(tt.email)
			assert.Equal(t, tt.wantDomain, intel.Domain)
			assert.Equal(t, tt.wantType, intel.EmailType)
			assert.Equal(t, tt.wantLocalPart, intel.LocalPartType)
		})
	}
}

func TestDomainLookups(t *testing.T) {
	assert.True(t, IsFreeWebmail("Gmail.com"))
	assert.False(t, IsFreeWebmail("acmecorp.com"))
	assert.True(t, IsDisposable("grr.la"))
	assert.False(t, IsDisposable("gmail.com"))
}
