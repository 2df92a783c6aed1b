// Package validate classifies recipient email addresses. Malformed entries are
// classified, never rejected: every input lands in exactly one of the valid,
// invalid, or suspicious buckets.
package validate

import (
	"regexp"
	"strings"

	"github.com/pydevup/research-email-multi-agent-system/internal/sanitize"
)

const maxDomainLength = 253

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var suspiciousDomainPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\.\.`),
	regexp.MustCompile(`--`),
	regexp.MustCompile(`^-`),
	regexp.MustCompile(`-$`),
	regexp.MustCompile(`\.$`),
	regexp.MustCompile(`^\.`),
}

// Result partitions the input addresses by classification. List order mirrors
// input order.
type Result struct {
	ValidEmails      []string `json:"valid_emails"`
	InvalidEmails    []string `json:"invalid_emails"`
	SuspiciousEmails []string `json:"suspicious_emails"`
	TotalValid       int      `json:"total_valid"`
	TotalInvalid     int      `json:"total_invalid"`
	TotalSuspicious  int      `json:"total_suspicious"`
}

// Emails validates a list of addresses. Suspicious addresses are format-valid
// but their domain carries patterns (consecutive dots or dashes, leading or
// trailing dot or dash) that warrant review before sending.
func Emails(emails []string) Result {
	result := Result{
		ValidEmails:      []string{},
		InvalidEmails:    []string{},
		SuspiciousEmails: []string{},
	}

	for _, email := range emails {
		email = sanitize.Sanitize(email, sanitize.EmailMaxLength)

		if !emailRegex.MatchString(email) || len(email) > sanitize.EmailMaxLength {
			result.InvalidEmails = append(result.InvalidEmails, email)
			continue
		}

		domain := email[strings.LastIndex(email, "@")+1:]
		if len(domain) > maxDomainLength {
			result.InvalidEmails = append(result.InvalidEmails, email)
			continue
		}

		if domainSuspicious(domain) {
			result.SuspiciousEmails = append(result.SuspiciousEmails, email)
		} else {
			result.ValidEmails = append(result.ValidEmails, email)
		}
	}

	result.TotalValid = len(result.ValidEmails)
	result.TotalInvalid = len(result.InvalidEmails)
	result.TotalSuspicious = len(result.SuspiciousEmails)

	return result
}

func domainSuspicious(domain string) bool {
	for _, p := range suspiciousDomainPatterns {
		if p.MatchString(domain) {
			return true
		}
	}
	return false
}
