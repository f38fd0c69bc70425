// Package email has pure helpers for working with mail addresses:
// deriving display names for greeting lines and masking an address
// before disclosing it to a third party. Transport lives elsewhere.
package email

import (
	"strings"
	"unicode"
)

// nameSeparators are the runes that split a local part into name-like
// words, as in "jane.doe" or "jane_van-doe".
const nameSeparators = "._-+"

// DeriveNameFromEmail guesses a first and last name from the local part
// of an address, for greetings only. "jane.doe@example.com" yields
// ("Jane", "Doe"); anything unguessable falls back to "User".
func DeriveNameFromEmail(email string) (first, last string) {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}

	words := strings.FieldsFunc(local, func(r rune) bool {
		return strings.ContainsRune(nameSeparators, r)
	})
	if len(words) == 0 {
		return "User", "User"
	}

	first = upperFirst(words[0])
	last = "User"
	if len(words) > 1 {
		last = upperFirst(words[len(words)-1])
	}
	return first, last
}

func upperFirst(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// MaskAddress hides most of an address for display to third parties:
// "holder@example.com" becomes "h***@example.com". Addresses too short
// to mask meaningfully come back fully starred.
func MaskAddress(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at+1:]
	if len(local) <= 1 {
		return "***@" + domain
	}
	return local[:1] + "***@" + domain
}
