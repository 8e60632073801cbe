// Package slug genera identificadores aptos para URL a partir de nombres de categoría.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	spaces          = regexp.MustCompile(`\s+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate convierte un nombre en slug quitando tildes y signos.
// Ejemplo: "Electrónica & Cómputo" → "electronica-computo".
func Generate(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}
	result := strings.ToLower(strings.TrimSpace(plain))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = spaces.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// WithSuffix agrega un sufijo corto para desambiguar slugs repetidos.
func WithSuffix(s, id string) string {
	suffix := strings.ReplaceAll(id, "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	if s == "" {
		return suffix
	}
	return s + "-" + suffix
}
