// internal/leadintel/emailintel.go
package leadintel

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"nexsupply-workers/internal/models"
)

var freeWebmailDomains = map[string]struct{}{
	"gmail.com": {}, "yahoo.com": {}, "hotmail.com": {}, "outlook.com": {},
	"aol.com": {}, "live.com": {}, "msn.com": {}, "icloud.com": {},
	"me.com": {}, "mac.com": {}, "protonmail.com": {}, "proton.me": {},
	"mail.com": {}, "gmx.com": {}, "gmx.de": {}, "yandex.com": {},
	"yandex.ru": {}, "mail.ru": {}, "qq.com": {}, "163.com": {},
	"126.com": {}, "sina.com": {}, "zoho.com": {}, "fastmail.com": {},
	"naver.com": {}, "web.de": {}, "libero.it": {}, "orange.fr": {},
	"wanadoo.fr": {},
}

var disposableDomains = map[string]struct{}{
	"mailinator.com":    {},
	"guerrillamail.com": {},
	"temp-mail.org":     {},
	"10minutemail.com":  {},
	"sharklasers.com":   {},
	"grr.la":            {},
}

var rolePrefixes = []string{"info", "sales", "support", "admin", "contact", "help", "hr"}

var digitRun = regexp.MustCompile(`[0-9]{4,}`)

// maxProsumerDomainLen is the longest domain still treated as a short personal brand.
const maxProsumerDomainLen = 4

const maxSuspiciousLocalLen = 2

type domainRule struct {
	emailType models.EmailType
	matches   func(domain string) bool
}

type localPartRule struct {
	localType models.LocalPartType
	matches   func(local string) bool
}

// Evaluated top to bottom; the first match wins. An address with no rule
// match is a business address.
var domainRules = []domainRule{
	{models.EmailDisposable, inSet(disposableDomains)},
	{models.EmailFree, inSet(freeWebmailDomains)},
	{models.EmailProsumer, func(d string) bool { return utf8.RuneCountInString(d) <= maxProsumerDomainLen }},
}

var localPartRules = []localPartRule{
	{models.LocalRoleBased, isRoleLocalPart},
	{models.LocalSuspicious, digitRun.MatchString},
	{models.LocalSuspicious, func(l string) bool { return utf8.RuneCountInString(l) <= maxSuspiciousLocalLen }},
}

// AnalyzeEmail classifies an address by its domain and local part. It is
// total: malformed input yields empty parts, never an error.
func AnalyzeEmail(email string) models.EmailIntel {
	local, rest, _ := strings.Cut(strings.ToLower(email), "@")
	// Only the segment between the first and second "@" is the domain.
	domain, _, _ := strings.Cut(rest, "@")
	local = strings.TrimSpace(local)
	domain = strings.TrimSpace(domain)

	intel := models.EmailIntel{
		Domain:        domain,
		EmailType:     models.EmailBusiness,
		LocalPartType: models.LocalPersonName,
	}
	for _, r := range domainRules {
		if r.matches(domain) {
			intel.EmailType = r.emailType
			break
		}
	}
	for _, r := range localPartRules {
		if r.matches(local) {
			intel.LocalPartType = r.localType
			break
		}
	}
	return intel
}

// IsFreeWebmail reports whether domain belongs to a consumer webmail provider.
func IsFreeWebmail(domain string) bool {
	_, ok := freeWebmailDomains[strings.ToLower(domain)]
	return ok
}

// IsDisposable reports whether domain hands out throwaway addresses.
func IsDisposable(domain string) bool {
	_, ok := disposableDomains[strings.ToLower(domain)]
	return ok
}

func isRoleLocalPart(local string) bool {
	for _, p := range rolePrefixes {
		if local == p || strings.HasPrefix(local, p+"+") {
			return true
		}
	}
	return false
}

func inSet(set map[string]struct{}) func(string) bool {
	return func(s string) bool {
		_, ok := set[s]
		return ok
	}
}
