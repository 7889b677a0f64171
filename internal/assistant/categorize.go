package assistant

// Categorize tags message with the category of the first matching category
// rule. It does not look at which response rule was chosen; the two may
// disagree, e.g. "why was my access denied" is a success.
func (rs *Ruleset) Categorize(message string) Category {
	normalized := normalize(message)
	for _, c := range rs.categories {
		if c.Match(normalized) {
			return c.Category
		}
	}
	return rs.defaultCategory
}
