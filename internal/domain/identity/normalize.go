package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var honorifics = map[string]struct{}{
	"mr": {}, "mr.": {},
	"mrs": {}, "mrs.": {},
	"ms": {}, "ms.": {},
	"dr": {}, "dr.": {},
	"sir": {}, "sir.": {},
}

// nicknames maps a first-name diminutive to the form used by player databases.
var nicknames = map[string]string{
	"danny":   "daniel",
	"dan":     "daniel",
	"mikey":   "michael",
	"mike":    "michael",
	"micky":   "michael",
	"mickey":  "michael",
	"tom":     "thomas",
	"tommy":   "thomas",
	"jim":     "james",
	"jimmy":   "james",
	"bill":    "william",
	"billy":   "william",
	"will":    "william",
	"rob":     "robert",
	"bob":     "robert",
	"bobby":   "robert",
	"harry":   "harold",
	"joe":     "joseph",
	"joey":    "joseph",
	"chris":   "christopher",
	"alex":    "alexander",
	"matt":    "matthew",
	"ben":     "benjamin",
	"sam":     "samuel",
	"tony":    "anthony",
	"nick":    "nicholas",
	"andy":    "andrew",
	"steve":   "steven",
	"freddie": "frederick",
	"fred":    "frederick",
}

// Letters without a canonical decomposition.
var foldReplacer = strings.NewReplacer(
	"ø", "o",
	"æ", "ae",
	"œ", "oe",
	"ß", "ss",
	"ł", "l",
	"đ", "d",
	"ı", "i",
)

// Normalize canonicalizes a free-text player name for identity comparison.
func Normalize(name string) string {
	value := strings.TrimSpace(strings.ToLower(name))
	if value == "" {
		return ""
	}
	value = foldAccents(value)

	tokens := strings.Fields(value)
	for len(tokens) > 1 {
		if _, ok := honorifics[tokens[0]]; !ok {
			break
		}
		tokens = tokens[1:]
	}
	if canonical, ok := nicknames[tokens[0]]; ok {
		tokens[0] = canonical
	}
	return strings.Join(tokens, " ")
}

func foldAccents(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		folded = value
	}
	return foldReplacer.Replace(folded)
}

// foldName lowercases and folds accents without touching nicknames or
// prefixes, for surnames.
func foldName(name string) string {
	value := strings.TrimSpace(strings.ToLower(name))
	if value == "" {
		return ""
	}
	return strings.Join(strings.Fields(foldAccents(value)), " ")
}
