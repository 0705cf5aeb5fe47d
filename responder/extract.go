package responder

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxInterestLen is the exclusive limit, in characters, for a captured interest phrase.
const MaxInterestLen = 50

var (
	// Name tokens are Unicode word runs; Go's \w is ASCII-only.
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`my name is ([\p{L}\p{N}_]+)`),
		regexp.MustCompile(`i am ([\p{L}\p{N}_]+)`),
		regexp.MustCompile(`i'm ([\p{L}\p{N}_]+)`),
		regexp.MustCompile(`call me ([\p{L}\p{N}_]+)`),
	}

	// Any digit run counts, with or without "years old".
	agePattern = regexp.MustCompile(`(\d+)\s*(years old|year old)?`)

	interestPatterns = []*regexp.Regexp{
		regexp.MustCompile(`i like (.+)`),
		regexp.MustCompile(`i love (.+)`),
		regexp.MustCompile(`i enjoy (.+)`),
	}
)

// Extract scans text for name, age and interest disclosures and merges them into p.
// It reports whether any field was written.
func Extract(text string, p *UserProfile) bool {
	if p == nil {
		return false
	}
	lower := strings.ToLower(text)
	changed := false

	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			p.Name = capitalize(m[1])
			changed = true
			break
		}
	}

	if m := agePattern.FindStringSubmatch(lower); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil {
			p.Age = &age
			changed = true
		}
	}

	for _, re := range interestPatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		interest := strings.TrimSpace(m[1])
		if interest != "" && utf8.RuneCountInString(interest) < MaxInterestLen {
			p.Interests = append(p.Interests, interest)
			changed = true
		}
	}
	return changed
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
