package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps words unsuitable for an all-ages game to tame
// alternatives. Matching is case-insensitive on word boundaries.
var replacements = map[string]string{
	"fuck":     "fudge",
	"shit":     "shoot",
	"damn":     "dang",
	"hell":     "heck",
	"ass":      "butt",
	"bitch":    "jerk",
	"bastard":  "scoundrel",
	"crap":     "crud",
	"piss":     "ticked",
	"asshole":  "jerk",
	"goddamn":  "gosh-dang",
	"bullshit": "nonsense",
	"prick":    "jerk",
	"whore":    "[censored]",
	"slut":     "[censored]",
}

// Filter sanitizes narrative text before it reaches the player. It
// replaces profanity and strips characters outside the Latin script,
// which the narrative models occasionally emit in invented names.
type Filter struct {
	regexes map[string]*regexp.Regexp
	titler  cases.Caser
}

// New creates a Filter with patterns compiled for every known word.
func New() *Filter {
	f := &Filter{
		regexes: make(map[string]*regexp.Regexp, len(replacements)),
		titler:  cases.Title(language.English),
	}
	for word := range replacements {
		f.regexes[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return f
}

// Clean applies both profanity replacement and foreign script removal.
func (f *Filter) Clean(text string) string {
	return f.StripForeign(f.ReplaceProfanity(text))
}

// ReplaceProfanity swaps each matched word for its tame alternative,
// preserving the case of the original.
func (f *Filter) ReplaceProfanity(text string) string {
	result := text
	for word, replacement := range replacements {
		result = f.regexes[word].ReplaceAllStringFunc(result, func(match string) string {
			return f.preserveCase(match, replacement)
		})
	}
	return result
}

// ContainsProfanity reports whether any known word appears in the text.
func (f *Filter) ContainsProfanity(text string) bool {
	for _, re := range f.regexes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// StripForeign removes runes outside the Latin script, keeping digits,
// punctuation and whitespace. Runs of removed characters collapse to a
// single space.
func (f *Filter) StripForeign(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	dropped := false
	var last rune
	for _, r := range text {
		keep := r < unicode.MaxASCII ||
			unicode.Is(unicode.Latin, r) ||
			unicode.IsSpace(r) ||
			unicode.IsDigit(r) ||
			unicode.IsPunct(r)
		if !keep {
			dropped = true
			continue
		}
		if dropped {
			// A removed run and its surrounding spaces collapse to one.
			if unicode.IsSpace(r) && unicode.IsSpace(last) {
				continue
			}
			if !unicode.IsSpace(r) && b.Len() > 0 && !unicode.IsSpace(last) {
				b.WriteByte(' ')
			}
			dropped = false
		}
		b.WriteRune(r)
		last = r
	}
	return strings.TrimSpace(b.String())
}

func (f *Filter) preserveCase(original, replacement string) string {
	if original == "" {
		return replacement
	}
	switch {
	case strings.ToUpper(original) == original:
		return strings.ToUpper(replacement)
	case strings.ToLower(original) == original:
		return strings.ToLower(replacement)
	case f.titler.String(strings.ToLower(original)) == original:
		return f.titler.String(replacement)
	}
	return replacement
}
