package match

import "strings"

// AbbreviationDictionary maps an abbreviation to its known expansions,
// e.g. "btn" → ["button"]. It is injected into the heuristic matcher at
// construction; there is no process-wide table. The default dictionary is
// empty and extended through configuration.
type AbbreviationDictionary map[string][]string

// Expansions returns the known expansions for a term, case-insensitively.
func (d AbbreviationDictionary) Expansions(term string) []string {
	if d == nil {
		return nil
	}
	return d[strings.ToLower(term)]
}
