// Package codes scans message bodies for verification codes and
// confirmation links, ranked by how likely each candidate is the one
// the sender meant.
package codes

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Candidate is one possible code or link found in a message body.
type Candidate struct {
	Value string
	Kind  string // "code" or "link"
	Score int
}

const (
	KindCode = "code"
	KindLink = "link"
)

// words that mark a nearby token as verification-related
var signalWords = []string{
	"verification",
	"verify",
	"code",
	"otp",
	"one-time",
	"pin",
	"confirm",
	"activate",
	"authenticate",
	"2fa",
}

var (
	// 4, 6 or 8 digit runs; longest alternative first so the regexp
	// engine prefers it
	digitRunRe = regexp.MustCompile(`\b(?:\d{8}|\d{6}|\d{4})\b`)

	// 6-8 chars mixing letters and digits, e.g. A1B2C3
	tokenRe = regexp.MustCompile(`\b[A-Za-z0-9]{6,8}\b`)

	urlRe   = regexp.MustCompile(`https?://[^\s<>"')\]]+`)
	emailRe = regexp.MustCompile(`[^\s@]+@[^\s@]+\.[^\s@]+`)
	yearRe  = regexp.MustCompile(`^(19|20)\d{2}$`)
)

// words in a URL path that suggest it is the confirmation link
var linkWords = []string{"confirm", "verify", "activate", "validate", "reset", "token"}

// Scan returns every code and link candidate in body, best first.
// Links are collected before URLs are stripped for code scanning, so a
// digit inside a URL never surfaces as a code.
func Scan(body string) []Candidate {
	if body == "" {
		return nil
	}

	var out []Candidate
	out = append(out, links(body)...)

	// strip URLs and addresses so their digits don't look like codes
	cleaned := urlRe.ReplaceAllString(body, " ")
	cleaned = emailRe.ReplaceAllString(cleaned, " ")
	out = append(out, numericCodes(cleaned)...)
	out = append(out, tokenCodes(cleaned)...)

	if len(out) == 0 {
		return nil
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Best returns the highest-ranked candidate of the given kind, or
// false when the body has none.
func Best(body, kind string) (Candidate, bool) {
	for _, c := range Scan(body) {
		if c.Kind == kind {
			return c, true
		}
	}
	return Candidate{}, false
}

func numericCodes(text string) []Candidate {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)

	var out []Candidate
	for _, loc := range digitRunRe.FindAllStringIndex(text, -1) {
		val := text[loc[0]:loc[1]]
		if seen[val] || rejectDigits(text, lower, val, loc[0], loc[1]) {
			continue
		}
		seen[val] = true
		out = append(out, Candidate{
			Value: val,
			Kind:  KindCode,
			Score: scoreCode(lower, val, loc[0], loc[1]),
		})
	}
	return out
}

func tokenCodes(text string) []Candidate {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)

	var out []Candidate
	for _, loc := range tokenRe.FindAllStringIndex(text, -1) {
		val := text[loc[0]:loc[1]]
		if seen[val] || !mixedAlphaDigit(val) {
			continue
		}
		// mixed tokens without any nearby signal word are usually
		// order numbers or tracking ids
		if !nearSignal(lower, loc[0], loc[1]) {
			continue
		}
		seen[val] = true
		out = append(out, Candidate{
			Value: val,
			Kind:  KindCode,
			Score: scoreCode(lower, val, loc[0], loc[1]),
		})
	}
	return out
}

func links(text string) []Candidate {
	seen := make(map[string]bool)

	var out []Candidate
	for _, raw := range urlRe.FindAllString(text, -1) {
		u := strings.TrimRight(raw, ".,;!?")
		if seen[u] {
			continue
		}
		seen[u] = true

		score := 10
		low := strings.ToLower(u)
		for _, w := range linkWords {
			if strings.Contains(low, w) {
				score += 25
				break
			}
		}
		out = append(out, Candidate{Value: u, Kind: KindLink, Score: score})
	}
	return out
}

// rejectDigits filters digit runs that are almost never codes: years,
// clock times, prices, and fragments of longer numbers.
func rejectDigits(text, lower, val string, start, end int) bool {
	// fragment of a longer digit run (phone numbers, card numbers)
	if start > 0 && isDigit(text[start-1]) {
		return true
	}
	if end < len(text) && isDigit(text[end]) {
		return true
	}

	// decimal fraction or price: 123.45, $1234
	if end+1 < len(text) && text[end] == '.' && isDigit(text[end+1]) {
		return true
	}
	if start >= 2 && text[start-1] == '.' && isDigit(text[start-2]) {
		return true
	}
	if idx := strings.LastIndexByte(text[maxInt(0, start-2):start], '$'); idx >= 0 {
		return true
	}

	// clock time: 10:30
	if (start > 0 && text[start-1] == ':' && len(val) == 2) ||
		(end < len(text) && text[end] == ':') {
		return true
	}

	// a plausible year with no signal word around it is a date
	if yearRe.MatchString(val) && !nearSignal(lower, start, end) {
		return true
	}

	return false
}

func scoreCode(lower, val string, start, end int) int {
	s := 0
	switch len(val) {
	case 6:
		s += 30
	case 8:
		s += 20
	case 4:
		s += 15
	default:
		s += 10
	}
	if !allDigits(val) {
		s -= 10
	}
	if nearSignal(lower, start, end) {
		s += 50
	}

	// lead-in punctuation: "code: 123456", "code is 123456"
	lead := strings.TrimRight(window(lower, start-8, start), " ")
	if strings.HasSuffix(lead, ":") || strings.HasSuffix(lead, "is") || strings.HasSuffix(lead, "-") {
		s += 20
	}
	return s
}

func nearSignal(lower string, start, end int) bool {
	ctx := window(lower, start-60, end+60)
	for _, w := range signalWords {
		if strings.Contains(ctx, w) {
			return true
		}
	}
	return false
}

func window(s string, lo, hi int) string {
	if lo < 0 {
		lo = 0
	}
	if hi > len(s) {
		hi = len(s)
	}
	if lo > hi {
		return ""
	}
	return s[lo:hi]
}

func mixedAlphaDigit(s string) bool {
	var letter, digit bool
	for _, r := range s {
		letter = letter || unicode.IsLetter(r)
		digit = digit || unicode.IsDigit(r)
	}
	return letter && digit
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
