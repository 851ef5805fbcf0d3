package audit

import (
	"sort"
	"strings"
)

const partyNameTrimSet = " \t\n\r,.;:-()[]{}\"'"

// NormalizePartyName collapses whitespace, trims surrounding punctuation and
// case-folds a raw party name. Empty output means the name is unusable.
func NormalizePartyName(name string) string {
	s := whitespaceRx.ReplaceAllString(name, " ")
	s = strings.Trim(s, partyNameTrimSet)
	return strings.ToUpper(s)
}

// PartyKey derives the order-stable identity key for a counterparty
// relationship from the extracted party names: the first two usable names,
// normalized and sorted, joined with " | ". Swapping the input order of the
// names yields the same key. Empty string means no usable name exists and the
// document is excluded from all per-party aggregates.
func PartyKey(parties []string) string {
	var names []string
	for _, p := range parties {
		if n := NormalizePartyName(p); n != "" {
			names = append(names, n)
		}
		if len(names) == 2 {
			break
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return strings.Join(names, " | ")
}
