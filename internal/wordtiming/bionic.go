package wordtiming

import (
	"strings"
	"unicode/utf8"
)

// BionicWord splits a word into an emphasised lead and the remainder.
type BionicWord struct {
	Lead string `json:"lead"`
	Rest string `json:"rest"`
}

// BionicWords splits text on whitespace and emphasises the first letter of
// each word.
func BionicWords(text string) []BionicWord {
	fields := strings.Fields(text)
	out := make([]BionicWord, 0, len(fields))
	for _, f := range fields {
		_, size := utf8.DecodeRuneInString(f)
		out = append(out, BionicWord{Lead: f[:size], Rest: f[size:]})
	}
	return out
}
