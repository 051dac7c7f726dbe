// Package roomcode holds the rules for classroom room codes: three groups of
// lowercase (or uppercase) alphanumerics joined by dashes, e.g. "abc-defg-hij".
package roomcode

import (
	"errors"
	"regexp"
	"strings"

	"github.com/pion/randutil"
)

const (
	lowerRunes = "abcdefghijklmnopqrstuvwxyz"
	upperRunes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var (
	ErrInvalidRoomCode = errors.New("invalid room code format")
	ErrEmptyRoomCode   = errors.New("room code is required")

	lowerPattern = regexp.MustCompile(`^[a-z0-9]{3}-[a-z0-9]{4}-[a-z0-9]{3}$`)
	upperPattern = regexp.MustCompile(`^[A-Z0-9]{3}-[A-Z0-9]{4}-[A-Z0-9]{3}$`)
)

type Rules struct {
	upper bool
}

// New returns the rules for the given case convention, "lower" or "upper".
// Anything other than "upper" is treated as lower.
func New(codeCase string) *Rules {
	return &Rules{upper: strings.EqualFold(codeCase, "upper")}
}

// Normalize trims and cases the raw code and validates the result.
// The returned code is the only form that may be used as a registry key.
func (r *Rules) Normalize(raw string) (string, error) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return "", ErrEmptyRoomCode
	}
	if r.upper {
		code = strings.ToUpper(code)
	} else {
		code = strings.ToLower(code)
	}
	if !r.pattern().MatchString(code) {
		return "", ErrInvalidRoomCode
	}
	return code, nil
}

// Valid reports whether code already is in normalized form.
func (r *Rules) Valid(code string) bool {
	return r.pattern().MatchString(code)
}

// Generate creates a new random code with letters only, the same shape the
// web client produces.
func (r *Rules) Generate() (string, error) {
	runes := lowerRunes
	if r.upper {
		runes = upperRunes
	}

	parts := make([]string, 0, 3)
	for _, n := range []int{3, 4, 3} {
		p, err := randutil.GenerateCryptoRandomString(n, runes)
		if err != nil {
			return "", err
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, "-"), nil
}

func (r *Rules) pattern() *regexp.Regexp {
	if r.upper {
		return upperPattern
	}
	return lowerPattern
}
