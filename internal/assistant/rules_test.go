package assistant

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRuleset_Order(t *testing.T) {
	rs, err := DefaultRuleset()
	require.NoError(t, err)

	var names []string
	for _, r := range rs.ResponseRules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"greeting",
		"password_reset",
		"vpn_access",
		"permissions",
		"access_denied",
		"capabilities",
		"security",
		"information",
	}, names)
}

func TestParseRules_Validation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "not yaml",
			doc:  "responses: [",
			want: "parse rules",
		},
		{
			name: "rule without name",
			doc: `
responses:
  - keywords: [vpn]
    reply: VPN
default: {reply: "{message}"}
default_category: info`,
			want: "name is required",
		},
		{
			name: "rule without predicate",
			doc: `
responses:
  - name: empty
    reply: nothing
default: {reply: "{message}"}
default_category: info`,
			want: "at least one prefix or keyword",
		},
		{
			name: "blank keyword",
			doc: `
responses:
  - name: blank
    keywords: ["  "]
    reply: nothing
default: {reply: "{message}"}
default_category: info`,
			want: "empty keyword",
		},
		{
			name: "rule without reply",
			doc: `
responses:
  - name: vpn
    keywords: [vpn]
default: {reply: "{message}"}
default_category: info`,
			want: "reply is required",
		},
		{
			name: "default does not echo message",
			doc: `
default: {reply: "Sorry, no idea."}
default_category: info`,
			want: "must contain {message}",
		},
		{
			name: "unknown category",
			doc: `
default: {reply: "{message}"}
categories:
  - name: odd
    keywords: [odd]
    category: danger
default_category: info`,
			want: "unknown category",
		},
		{
			name: "missing default category",
			doc: `
default: {reply: "{message}"}`,
			want: "default_category",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRules([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRules_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
responses:
  - name: sso
    keywords: [SSO, "Single Sign-On"]
    reply: Use the company portal to sign in.
default:
  name: unknown
  reply: 'No rule for "{message}".'
categories:
  - name: outage
    keywords: [down]
    category: warning
default_category: info
`), 0o600))

	rs, err := LoadRules(path)
	require.NoError(t, err)

	assert.Equal(t, Match{Rule: "sso", Text: "Use the company portal to sign in."}, rs.Reply("How does single sign-on work?"))
	assert.Equal(t, Match{Rule: "unknown", Text: `No rule for "Printer Jam".`}, rs.Reply("Printer Jam"))
	assert.Equal(t, CategoryWarning, rs.Categorize("SSO is DOWN"))
	assert.Equal(t, CategoryInfo, rs.Categorize("sso"))
}

func TestLoadRules_EmptyPathUsesBuiltIn(t *testing.T) {
	rs, err := LoadRules("")
	require.NoError(t, err)
	assert.Len(t, rs.ResponseRules(), 8)
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
