package translate

import (
	"context"
	"regexp"
	"strings"
)

// Service is the detection and translation capability consumed by the
// conversation coordinator.
type Service interface {
	// Detect returns the language code of text. Indeterminate input is an
	// error, never a default.
	Detect(ctx context.Context, text string) (string, error)
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Undetermined is the BCP 47 code for an unidentified language.
const Undetermined = "und"

var (
	codePattern   = regexp.MustCompile(`^[a-z]{2,3}$`)
	subtagPattern = regexp.MustCompile(`^[A-Za-z0-9]{2,8}$`)
)

// NormalizeCode lower-cases a language tag and strips region, script and
// variant subtags: "EN-us" and "en_US" both become "en".
func NormalizeCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	return code
}

// ValidCode reports whether code is a 2-3 letter tag optionally followed
// by subtags.
func ValidCode(code string) bool {
	parts := strings.Split(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"), "-")
	if !codePattern.MatchString(strings.ToLower(parts[0])) {
		return false
	}
	for _, p := range parts[1:] {
		if !subtagPattern.MatchString(p) {
			return false
		}
	}
	return true
}
