package dedup

import "regexp"

// idRule extracts a candidate ticket identifier from a subject line.
// Rules are evaluated in declaration order; the first hit wins, so the
// system's own ID format always takes priority over generic references.
type idRule struct {
	name    string
	pattern *regexp.Regexp
	// group is the capture group holding the ID; 0 means the full match.
	group int
}

var idRules = []idRule{
	// Our generated IDs: TKT- followed by a millisecond timestamp.
	{name: "internal-id", pattern: regexp.MustCompile(`TKT-\d{13}`), group: 0},
	// Human-written references: [Ticket #123], (INC000123), #12345, TKT-99.
	{name: "generic-reference", pattern: regexp.MustCompile(`(?i)\[?(?:Ticket|TKT|INC)?\s?#?-?(\w+-\d+|\d+)\]?`), group: 1},
}

// extractTicketID returns the first identifier found in the subject, or ""
// when no rule matches.
func extractTicketID(subject string) string {
	for _, rule := range idRules {
		match := rule.pattern.FindStringSubmatch(subject)
		if match == nil {
			continue
		}
		if id := match[rule.group]; id != "" {
			return id
		}
	}
	return ""
}
