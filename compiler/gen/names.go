package gen

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// acronyms that keep their casing when column names become Go
// identifiers (user_id -> UserID, api_key -> APIKey).
var acronyms = map[string]string{
	"id":   "ID",
	"ids":  "IDs",
	"uuid": "UUID",
	"url":  "URL",
	"uri":  "URI",
	"api":  "API",
	"json": "JSON",
	"http": "HTTP",
	"sql":  "SQL",
}

// Pascal converts a snake_case schema name to an exported Go identifier.
func Pascal(s string) string {
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if a, ok := acronyms[strings.ToLower(p)]; ok {
			parts[i] = a
			continue
		}
		if strings.ToLower(p) == p {
			parts[i] = titleCaser.String(p)
			continue
		}
		// Segments that already carry interior capitals keep them, so a
		// CamelCase entity name maps onto the same identifier everywhere.
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		parts[i] = string(r)
	}
	return strings.Join(parts, "")
}

// Snake converts an entity name to its snake_case form.
func Snake(s string) string {
	return inflect.Underscore(s)
}

// Plural returns the plural form of a snake_case name.
func Plural(s string) string {
	return inflect.Pluralize(s)
}

// tableOf derives the default table identifier from an entity name.
func tableOf(name string) string {
	return Plural(Snake(name))
}

// receiver returns an unexported identifier for the entity, as used in
// generated method receivers and locals.
func receiver(name string) string {
	s := Pascal(name)
	if s == "" {
		return s
	}
	// Lowercase the leading uppercase run and drop the rest, so User
	// becomes u and ID becomes id.
	r := []rune(s)
	i := 0
	for ; i < len(r); i++ {
		r[i] = unicode.ToLower(r[i])
		if i+1 < len(r) && !unicode.IsUpper(r[i+1]) {
			break
		}
	}
	if i == len(r) {
		i = len(r) - 1
	}
	return string(r[:i+1])
}
