package dedup

import (
	"regexp"
	"strings"
)

var (
	replyPrefixPattern = regexp.MustCompile(`(?i)^(Re|Fwd|Fw):\s*`)
	bracketTagPattern  = regexp.MustCompile(`\[.*?\]`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// normalizeSubject strips reply/forward markers and bracketed tags such as
// [External], collapses whitespace, and lowercases, so that "Re: Billing
// Help" and "billing help" compare equal.
func normalizeSubject(subject string) string {
	s := replyPrefixPattern.ReplaceAllString(subject, "")
	s = bracketTagPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}
