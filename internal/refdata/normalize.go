package refdata

import "strings"

// normalize canonicalizes traveler input and display values for
// comparison: trimmed, upper-cased, underscores treated as spaces, runs
// of whitespace collapsed.
func normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// simplify strips everything but letters and digits, upper-cased. Used
// as the last-resort match key so "Guest House" meets "GUEST_HOUSE" and
// "guesthouse" in one place.
func simplify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// searchTerm derives the short lookup-scoping term from traveler input:
// the first three characters of the normalized form. Sliced by rune, not
// byte, so accented place names don't send broken UTF-8 to the server.
func searchTerm(s string) string {
	runes := []rune(normalize(s))
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return string(runes)
}
