// Package naming turns user-facing project settings into the identifiers the
// generated program uses: the function namespace, entity tags, entity types and
// scoreboard objectives.
package naming

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Placeholders understood by the naming templates.
const (
	ProjectNameKey = "projectName"
	BoneNameKey    = "boneName"
)

// Format replaces every %key in template with bindings[key]. Longer keys are
// substituted first so that a key that prefixes another cannot clip it.
// Placeholders without a binding are left as they are.
func Format(template string, bindings map[string]string) string {
	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "%"+k, bindings[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// SafeFunctionName produces a bare identifier usable as a function namespace
// and inside entity tags: accents are folded, letters lowercased, and every run
// of other characters becomes a single underscore.
func SafeFunctionName(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	var sb strings.Builder
	underscore := false
	for _, r := range strings.ToLower(folded) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r == '.' {
			sb.WriteRune(r)
			underscore = r == '_'
			continue
		}
		if !underscore {
			sb.WriteByte('_')
			underscore = true
		}
	}
	out := strings.Trim(sb.String(), "_")
	if out == "" {
		return "unnamed"
	}
	return out
}
