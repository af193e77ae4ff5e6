package skills

import (
	"sort"
	"strings"
	"unicode"
)

// alias maps a lower-cased keyword to the canonical language tokens it implies.
// Every canonical value maps to itself.
var alias = map[string][]string{
	"python":     {"python"},
	"django":     {"python"},
	"flask":      {"python"},
	"fastapi":    {"python"},
	"pandas":     {"python"},
	"numpy":      {"python"},
	"javascript": {"javascript"},
	"js":         {"javascript"},
	"node":       {"javascript"},
	"nodejs":     {"javascript"},
	"react":      {"javascript"},
	"vue":        {"javascript"},
	"angular":    {"javascript"},
	"express":    {"javascript"},
	"next.js":    {"javascript"},
	"nextjs":     {"javascript"},
	"nuxt":       {"javascript"},
	"svelte":     {"javascript"},
	"typescript": {"typescript"},
	"java":       {"java"},
	"spring":     {"java"},
	"kotlin":     {"kotlin"},
	"go":         {"go"},
	"golang":     {"go"},
	"rust":       {"rust"},
	"c++":        {"c++"},
	"cpp":        {"c++"},
	"c#":         {"c#"},
	"csharp":     {"c#"},
	".net":       {"c#"},
	"dotnet":     {"c#"},
	"ruby":       {"ruby"},
	"rails":      {"ruby"},
	"php":        {"php"},
	"laravel":    {"php"},
	"symfony":    {"php"},
	"swift":      {"swift"},
	"scala":      {"scala"},
}

// canonical is the set of tokens Normalize can produce.
var canonical = func() map[string]struct{} {
	out := make(map[string]struct{})
	for _, values := range alias {
		for _, v := range values {
			out[v] = struct{}{}
		}
	}
	return out
}()

// fallbackKeywords are consulted only when no alias matched at all.
var fallbackKeywords = []struct {
	keywords  []string
	languages []string
}{
	{keywords: []string{"django", "fastapi", "flask", "python"}, languages: []string{"python"}},
	{keywords: []string{"react", "node", "angular", "vue", "typescript", "javascript"}, languages: []string{"javascript"}},
	{keywords: []string{"spring", "java"}, languages: []string{"java"}},
}

// minSubstringAlias is the shortest alias that may match inside a longer word.
// Shorter aliases ("go", "js") must match a whole word so that "django" or
// "mongodb" do not imply go.
const minSubstringAlias = 3

// Normalize maps free-form skill tokens to the canonical language set.
// The result is sorted and Normalize(Normalize(x)) equals Normalize(x).
func Normalize(tokens []string) []string {
	if len(tokens) == 0 {
		return []string{}
	}

	found := make(map[string]struct{})
	for _, token := range tokens {
		for _, lang := range match(token) {
			found[lang] = struct{}{}
		}
	}

	if len(found) == 0 {
		text := strings.ToLower(strings.Join(tokens, " "))
		for _, fb := range fallbackKeywords {
			for _, kw := range fb.keywords {
				if strings.Contains(text, kw) {
					for _, l := range fb.languages {
						found[l] = struct{}{}
					}
					break
				}
			}
		}
		if _, ok := found["javascript"]; ok && strings.Contains(text, "typescript") {
			found["typescript"] = struct{}{}
		}
	}

	return sortedKeys(found)
}

// Canonical returns the first canonical language implied by a single token and
// whether one was found.
func Canonical(token string) (string, bool) {
	matches := match(token)
	if len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[0], true
}

func match(token string) []string {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return nil
	}

	// A canonical token is a fixed point: "javascript" must not also yield java.
	if _, ok := canonical[t]; ok {
		return []string{t}
	}

	var keys []string
	words := splitWords(t)
	for key := range alias {
		if len(key) < minSubstringAlias {
			if _, ok := words[key]; !ok {
				continue
			}
		} else if !strings.Contains(t, key) {
			continue
		}
		keys = append(keys, key)
	}

	var out []string
	for _, key := range keys {
		if shadowed(t, key, keys) {
			continue
		}
		out = append(out, alias[key]...)
	}
	return out
}

// shadowed reports whether every occurrence of key in t lies inside a longer
// matched key, as "java" inside "javascript (es6+)".
func shadowed(t, key string, matched []string) bool {
	masked := t
	for _, other := range matched {
		if len(other) > len(key) && strings.Contains(other, key) {
			masked = strings.ReplaceAll(masked, other, " ")
		}
	}
	return !strings.Contains(masked, key)
}

func splitWords(s string) map[string]struct{} {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.')
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[strings.Trim(f, ".")] = struct{}{}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
