package assistant

import "strings"

// Match is the reply chosen by the local strategy.
type Match struct {
	Rule string
	Text string
}

// Reply picks the first response rule matching message. When none match, the
// default reply is returned with the original, case-preserved message in it.
func (rs *Ruleset) Reply(message string) Match {
	normalized := normalize(message)
	for _, r := range rs.responses {
		if r.Match(normalized) {
			return Match{Rule: r.Name, Text: r.Reply}
		}
	}
	return Match{
		Rule: rs.fallback.Name,
		Text: strings.ReplaceAll(rs.fallback.Reply, messagePlaceholder, message),
	}
}
