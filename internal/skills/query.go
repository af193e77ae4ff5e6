package skills

import "strings"

// searchLanguages lists GitHub language qualifiers in match priority order.
var searchLanguages = []struct {
	keyword  string
	language string
}{
	{"python", "python"},
	{"javascript", "javascript"},
	{"java", "java"},
	{"typescript", "typescript"},
	{"go", "go"},
	{"rust", "rust"},
	{"ruby", "ruby"},
	{"php", "php"},
	{"c++", "cpp"},
	{"c#", "csharp"},
	{"react", "javascript"},
	{"vue", "javascript"},
	{"angular", "javascript"},
	{"django", "python"},
	{"flask", "python"},
	{"node", "javascript"},
}

// FallbackQueryLanguages returns GitHub "language:" qualifiers for the first
// limit tokens. Each token contributes at most one qualifier; duplicates are
// dropped while order is kept.
func FallbackQueryLanguages(tokens []string, limit int) []string {
	if limit > 0 && len(tokens) > limit {
		tokens = tokens[:limit]
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		t := strings.ToLower(strings.TrimSpace(token))
		if t == "" {
			continue
		}
		words := splitWords(t)
		for _, entry := range searchLanguages {
			if len(entry.keyword) < minSubstringAlias {
				if _, ok := words[entry.keyword]; !ok {
					continue
				}
			} else if !strings.Contains(t, entry.keyword) {
				continue
			}
			if _, ok := seen[entry.language]; !ok {
				seen[entry.language] = struct{}{}
				out = append(out, entry.language)
			}
			break
		}
	}
	return out
}

// FallbackQuery builds the flat REST user-search query for the given tokens.
func FallbackQuery(tokens []string, limit int) string {
	langs := FallbackQueryLanguages(tokens, limit)
	if len(langs) == 0 {
		return "repos:>=5 followers:>=10"
	}

	parts := make([]string, 0, len(langs)+2)
	for _, l := range langs {
		parts = append(parts, "language:"+l)
	}
	parts = append(parts, "followers:>=10", "repos:>=5")
	return strings.Join(parts, " ")
}
