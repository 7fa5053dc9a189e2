package schema

import (
	"log/slog"
	"strings"
)

// Lookup maps normalized section-name variants to canonical section names.
// It is a pure function of a [CanonicalSection] list: rebuild it whenever the
// schema changes. A Lookup holds no other state and is safe for concurrent
// reads.
type Lookup map[string]string

// BuildLookup derives a variant table from sections. For each canonical name
// the table records the normalized key itself plus naive singular/plural forms
// ("cylinders" → "cylinder", "chimneys" ↔ "chimney", "-ies" ↔ "-y") and, for
// names containing " and ", the form with the joiner removed.
//
// Collisions are resolved first-writer-wins: the earliest-declared canonical
// name keeps the variant key and later claims are logged and ignored.
func BuildLookup(sections []CanonicalSection) Lookup {
	table := make(Lookup, len(sections)*3)

	for _, sec := range sections {
		for _, variant := range variants(sec.Name) {
			if prev, taken := table[variant]; taken {
				if prev != sec.Name {
					slog.Debug("section name variant collision",
						"variant", variant, "kept", prev, "ignored", sec.Name)
				}
				continue
			}
			table[variant] = sec.Name
		}
	}
	return table
}

// Resolve maps a raw free-form label to its canonical section name.
// The second return value is false when the label matches no canonical
// section; callers decide whether to drop the entry or bucket it elsewhere —
// the pipeline drops it and logs the name, never fabricating a canonical name.
func (l Lookup) Resolve(raw string) (string, bool) {
	name, ok := l[Normalize(raw)]
	return name, ok
}

// Normalize lowercases s, replaces "&" with "and", collapses every
// non-alphanumeric run to a single space and trims the result.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "&", " and ")

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}

// variants generates all normalized lookup keys for one canonical name.
func variants(name string) []string {
	key := Normalize(name)
	if key == "" {
		return nil
	}

	out := []string{key}
	add := func(v string) {
		if v == "" || v == key {
			return
		}
		for _, existing := range out {
			if existing == v {
				return
			}
		}
		out = append(out, v)
	}

	switch {
	case strings.HasSuffix(key, "ies"):
		add(strings.TrimSuffix(key, "ies") + "y")
	case strings.HasSuffix(key, "y"):
		add(strings.TrimSuffix(key, "y") + "ies")
	}
	if strings.HasSuffix(key, "s") {
		add(strings.TrimSuffix(key, "s"))
	}
	if strings.Contains(key, " and ") {
		add(collapseSpaces(strings.ReplaceAll(key, " and ", " ")))
	}

	return out
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
