// Package pii provides the structured PII entity patterns used by the
// text analyzer for detection and span-based redaction.
package pii

import "regexp"

// Entity is a type of personally identifiable information.
type Entity string

const (
	Email      Entity = "email"
	Phone      Entity = "phone"
	SSN        Entity = "ssn"
	CreditCard Entity = "credit_card"
	IPAddress  Entity = "ip_address"
	Address    Entity = "address"
)

var entityPatterns = map[Entity]*regexp.Regexp{
	Email:      regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	Phone:      regexp.MustCompile(`\b(\+?1[-.\s]?)?(\(?[0-9]{3}\)?[-.\s]?)[0-9]{3}[-.\s]?[0-9]{4}\b`),
	SSN:        regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	CreditCard: regexp.MustCompile(`\b(\d{4}[-\s]?){3}\d{4}\b`),
	IPAddress:  regexp.MustCompile(`\b(\d{1,3}\.){3}\d{1,3}\b`),
	Address:    regexp.MustCompile(`\b\d+\s+[A-Za-z0-9\s,]+(Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr)\b`),
}

// entityOrder fixes detection and redaction order so longer digit runs
// are claimed before shorter patterns can split them.
var entityOrder = []Entity{
	Email,
	CreditCard,
	SSN,
	IPAddress,
	Phone,
	Address,
}

var entityPlaceholders = map[Entity]string{
	Email:      "[EMAIL_REDACTED]",
	Phone:      "[PHONE_REDACTED]",
	SSN:        "[SSN_REDACTED]",
	CreditCard: "[CARD_REDACTED]",
	IPAddress:  "[IP_REDACTED]",
	Address:    "[ADDRESS_REDACTED]",
}

// Entities returns every supported entity type label.
func Entities() []string {
	labels := make([]string, 0, len(entityOrder))
	for _, entity := range entityOrder {
		labels = append(labels, string(entity))
	}
	return labels
}

// Placeholder returns the redaction placeholder for an entity.
func Placeholder(entity Entity) string {
	if p, ok := entityPlaceholders[entity]; ok {
		return p
	}
	return "[PII_REDACTED]"
}

// Detect returns the ordered set of entity type labels present in text.
func Detect(text string) []string {
	var found []string
	for _, entity := range entityOrder {
		if entityPatterns[entity].MatchString(text) {
			found = append(found, string(entity))
		}
	}
	return found
}

// Redact replaces every detected PII span with its typed placeholder.
// Text outside detected spans is untouched, and placeholders never
// re-match, so redaction is idempotent.
func Redact(text string) string {
	redacted := text
	for _, entity := range entityOrder {
		redacted = entityPatterns[entity].ReplaceAllString(redacted, entityPlaceholders[entity])
	}
	return redacted
}
