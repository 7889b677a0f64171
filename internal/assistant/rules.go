// Package assistant decides how the IAM assistant answers a chat message:
// which reply text to send and which category tag to attach to it.
package assistant

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

type Category string

const (
	CategoryInfo    Category = "info"
	CategorySuccess Category = "success"
	CategoryWarning Category = "warning"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryInfo, CategorySuccess, CategoryWarning:
		return true
	}
	return false
}

// messagePlaceholder is replaced by the caller's original message in the default reply.
const messagePlaceholder = "{message}"

type rulesDocument struct {
	Responses []struct {
		Name     string   `yaml:"name"`
		Prefixes []string `yaml:"prefixes"`
		Keywords []string `yaml:"keywords"`
		Reply    string   `yaml:"reply"`
	} `yaml:"responses"`
	Default struct {
		Name  string `yaml:"name"`
		Reply string `yaml:"reply"`
	} `yaml:"default"`
	Categories []struct {
		Name     string   `yaml:"name"`
		Keywords []string `yaml:"keywords"`
		Category Category `yaml:"category"`
	} `yaml:"categories"`
	DefaultCategory Category `yaml:"default_category"`
}

// Predicate reports whether a normalized (trimmed, lower-cased) message matches.
type Predicate func(normalized string) bool

type ResponseRule struct {
	Name  string
	Match Predicate
	Reply string
}

type CategoryRule struct {
	Name     string
	Match    Predicate
	Category Category
}

// Ruleset holds the ordered response and category rules. It is never
// modified after parsing and is safe for concurrent use.
type Ruleset struct {
	responses       []ResponseRule
	fallback        ResponseRule
	categories      []CategoryRule
	defaultCategory Category
}

// DefaultRuleset parses the rule tables compiled into the binary.
func DefaultRuleset() (*Ruleset, error) {
	return ParseRules(defaultRules)
}

// LoadRules reads rules from path, or the built-in rules when path is empty.
func LoadRules(path string) (*Ruleset, error) {
	if path == "" {
		return DefaultRuleset()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rs, err := ParseRules(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

func ParseRules(b []byte) (*Ruleset, error) {
	var doc rulesDocument
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	rs := &Ruleset{defaultCategory: doc.DefaultCategory}
	for i, r := range doc.Responses {
		if r.Name == "" {
			return nil, fmt.Errorf("response rule %d: name is required", i)
		}
		if strings.TrimSpace(r.Reply) == "" {
			return nil, fmt.Errorf("response rule %q: reply is required", r.Name)
		}
		prefixes, err := normalizeTerms(r.Prefixes)
		if err != nil {
			return nil, fmt.Errorf("response rule %q: %w", r.Name, err)
		}
		keywords, err := normalizeTerms(r.Keywords)
		if err != nil {
			return nil, fmt.Errorf("response rule %q: %w", r.Name, err)
		}
		if len(prefixes) == 0 && len(keywords) == 0 {
			return nil, fmt.Errorf("response rule %q: needs at least one prefix or keyword", r.Name)
		}
		rs.responses = append(rs.responses, ResponseRule{
			Name:  r.Name,
			Match: anyOf(startsWithAny(prefixes), containsAny(keywords)),
			Reply: r.Reply,
		})
	}

	if !strings.Contains(doc.Default.Reply, messagePlaceholder) {
		return nil, fmt.Errorf("default reply must contain %s", messagePlaceholder)
	}
	rs.fallback = ResponseRule{Name: doc.Default.Name, Reply: doc.Default.Reply}
	if rs.fallback.Name == "" {
		rs.fallback.Name = "default"
	}

	for i, c := range doc.Categories {
		if c.Name == "" {
			return nil, fmt.Errorf("category rule %d: name is required", i)
		}
		if !c.Category.Valid() {
			return nil, fmt.Errorf("category rule %q: unknown category %q", c.Name, c.Category)
		}
		keywords, err := normalizeTerms(c.Keywords)
		if err != nil {
			return nil, fmt.Errorf("category rule %q: %w", c.Name, err)
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("category rule %q: needs at least one keyword", c.Name)
		}
		rs.categories = append(rs.categories, CategoryRule{
			Name:     c.Name,
			Match:    containsAny(keywords),
			Category: c.Category,
		})
	}
	if !rs.defaultCategory.Valid() {
		return nil, fmt.Errorf("default_category %q is not a known category", rs.defaultCategory)
	}
	return rs, nil
}

// ResponseRules returns the response rules in evaluation order.
func (rs *Ruleset) ResponseRules() []ResponseRule {
	return append([]ResponseRule(nil), rs.responses...)
}

func normalize(message string) string {
	return strings.ToLower(strings.TrimSpace(message))
}

func normalizeTerms(terms []string) ([]string, error) {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		n := normalize(t)
		if n == "" {
			return nil, fmt.Errorf("empty keyword")
		}
		out = append(out, n)
	}
	return out, nil
}

func startsWithAny(prefixes []string) Predicate {
	return func(s string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(s, p) {
				return true
			}
		}
		return false
	}
}

func containsAny(needles []string) Predicate {
	return func(s string) bool {
		for _, n := range needles {
			if strings.Contains(s, n) {
				return true
			}
		}
		return false
	}
}

func anyOf(preds ...Predicate) Predicate {
	return func(s string) bool {
		for _, p := range preds {
			if p(s) {
				return true
			}
		}
		return false
	}
}
