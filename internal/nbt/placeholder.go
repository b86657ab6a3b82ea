package nbt

import "strings"

// Placeholder is the reserved string value standing in for the appearance
// identifier of a bone until the command text is generated.
const Placeholder = "%customModelData"

// SubstituteFirst replaces the first occurrence of marker rendered as a quoted
// string literal with expr, unquoted. All other bytes are left as they were.
// It reports whether a replacement happened.
func SubstituteFirst(text, marker, expr string) (string, bool) {
	lit := quote(marker)
	i := strings.Index(text, lit)
	if i < 0 {
		return text, false
	}
	return text[:i] + expr + text[i+len(lit):], true
}
