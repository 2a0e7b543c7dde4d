package blacklist

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

// professionalPhraseRe catches phrases that only appear in the names of
// registered-agent and filing services, never in individual owners.
var professionalPhraseRe = regexp.MustCompile(`(?i)\b(registered\s+agents?|statutory\s+agents?|corporate\s+services?|legal\s+services?|law\s+(firm|office|group)|attorneys?\s+at\s+law)\b`)

// professionalStems are stemmed keywords typical of professional-service
// names. Stemming folds plural and derived forms ("agents", "filings",
// "incorporators") onto one stem each.
var professionalStems = buildStemSet(
	"agent", "agents", "agency",
	"attorney", "attorneys", "paralegal",
	"incorporate", "incorporators", "incorporating",
	"filing", "filings",
	"compliance", "registration", "registrations",
	"lawyer", "lawyers", "cpa", "accounting",
)

func buildStemSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[stemToken(w)] = struct{}{}
	}
	return set
}

func stemToken(token string) string {
	stemmed, err := snowball.Stem(token, "english", true)
	if err != nil {
		return strings.ToLower(token)
	}
	return stemmed
}

// classifyProfessionalAgent decides whether a frequently-seen agent name
// looks like a professional service. Returns the matched signal so review
// screens can show why a name was suggested.
func classifyProfessionalAgent(name string) (reason string, ok bool) {
	if m := professionalPhraseRe.FindString(name); m != "" {
		return "phrase: " + strings.ToLower(strings.Join(strings.Fields(m), " ")), true
	}

	for _, token := range strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r < 'a' || r > 'z'
	}) {
		if _, hit := professionalStems[stemToken(token)]; hit {
			return "keyword: " + token, true
		}
	}

	// Entity-suffixed agent names need a service keyword too; a bare
	// "SOMETHING LLC" as a statutory agent is usually a sibling company,
	// not a professional service.
	return "", false
}
