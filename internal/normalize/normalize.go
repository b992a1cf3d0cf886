// Package normalize coalesces free-text help topics into canonical labels.
// Extraction produces near-duplicate phrasings ("VS Code setup", "vscode
// issue"); without coalescing no topic ever reaches a usable frequency.
package normalize

import (
	"sort"
	"strings"
)

// GeneralHelp is the catch-all label for topics with no usable subject.
const GeneralHelp = "general help"

// rule rewrites any cleaned phrase containing pattern to canonical.
type rule struct {
	pattern   string
	canonical string
}

// Rules are applied longest-pattern-first; among equal lengths, declaration
// order wins. Every canonical value must be a fixed point of Normalize.
var rules = []rule{
	{"no main topic", GeneralHelp},
	{"unknown issue", GeneralHelp},
	{"vs code", "vs code issue"},
	{"vscode", "vs code issue"},
	{"ssh", "ssh issue"},
	{"docker", "docker issue"},
	{"terminal", "terminal issue"},
	{"installation", "installation help"},
	{"install", "installation help"},
	{"account", "account help"},
}

func init() {
	sort.SliceStable(rules, func(i, j int) bool {
		return len(rules[i].pattern) > len(rules[j].pattern)
	})
}

// Normalize canonicalizes a raw help topic: structural cleanup first, then
// the first matching rewrite rule. Unmatched phrases are returned cleaned.
func Normalize(raw string) string {
	s := clean(raw)
	if s == "" {
		return GeneralHelp
	}
	for _, r := range rules {
		if strings.Contains(s, r.pattern) {
			return r.canonical
		}
	}
	return s
}

var pluralSuffixes = []string{"issues", "problems", "errors", "questions"}

func clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "\"'`")
	s = strings.TrimRight(s, ".")
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	for _, suf := range pluralSuffixes {
		if strings.HasSuffix(s, suf) {
			s = s[:len(s)-1] // issues -> issue
			break
		}
	}
	return strings.TrimSpace(s)
}
