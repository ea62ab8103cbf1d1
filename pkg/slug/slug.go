// Package slug derives URL-safe identifiers from display titles. A short
// random base36 suffix keeps slugs unique across records that share a title.
package slug

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"
)

const suffixLen = 4

var base36 = []rune("0123456789abcdefghijklmnopqrstuvwxyz")

// Make lowercases the title, collapses every run of non-alphanumeric
// characters into a single hyphen, and appends a random suffix.
func Make(title string) string {
	return Normalize(title) + "-" + randomSuffix()
}

// Normalize returns the deterministic part of a slug, without the suffix.
func Normalize(title string) string {
	var b strings.Builder
	lastHyphen := true

	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteRune('-')
			lastHyphen = true
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

func randomSuffix() string {
	out := make([]rune, suffixLen)
	max := big.NewInt(int64(len(base36)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken;
			// a fixed rune is still a valid slug.
			out[i] = '0'
			continue
		}
		out[i] = base36[n.Int64()]
	}
	return string(out)
}
