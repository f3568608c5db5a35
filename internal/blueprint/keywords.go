package blueprint

import "strings"

const maxKeywords = 18

var stopWords = map[string]bool{
	"about": true, "after": true, "again": true, "also": true, "been": true,
	"before": true, "being": true, "between": true, "both": true, "could": true,
	"does": true, "doing": true, "down": true, "during": true, "each": true,
	"every": true, "from": true, "have": true, "having": true, "here": true,
	"into": true, "just": true, "learner": true, "learners": true, "more": true,
	"most": true, "must": true, "only": true, "other": true, "over": true,
	"page": true, "pages": true, "same": true, "scene": true, "should": true,
	"slide": true, "some": true, "such": true, "than": true, "that": true,
	"their": true, "them": true, "then": true, "there": true, "these": true,
	"they": true, "this": true, "those": true, "through": true, "under": true,
	"very": true, "well": true, "went": true, "were": true, "what": true,
	"when": true, "where": true, "which": true, "while": true, "will": true,
	"with": true, "within": true, "would": true, "your": true,
}

// ExtractKeywords tokenizes free text into lower-cased alphanumeric tokens,
// drops stop words and tokens of 3 characters or fewer, dedupes preserving
// first-seen order and caps the result at limit.
func ExtractKeywords(text string, limit int) []string {
	if limit <= 0 {
		limit = maxKeywords
	}
	seen := map[string]bool{}
	out := []string{}
	for _, tok := range Tokenize(text) {
		if len(tok) <= 3 || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// Tokenize lower-cases text and splits it on any non-alphanumeric rune.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}
