package sanitizer

import (
	"fmt"
	"regexp"
)

// PatternSpec configures one entry in the sanitizer's pattern catalog: a
// named regex and the marker literal that replaces its matches.
type PatternSpec struct {
	Name   string `json:"name"`
	Regex  string `json:"regex"`
	Marker string `json:"marker"`
}

// HeaderDenylistEntry forces the entire value of a header to a marker,
// regardless of content, because the header name alone identifies it as
// sensitive (e.g. "authorization").
type HeaderDenylistEntry struct {
	Header string `json:"header"`
	Marker string `json:"marker"`
}

// compiledPattern is a PatternSpec with its regex compiled.
type compiledPattern struct {
	name   string
	re     *regexp.Regexp
	marker string
}

// DefaultCatalog returns the built-in pattern list described in spec §4.1:
// JWT-shaped tokens, bearer/basic auth values, API-key header shapes, email
// addresses, credit-card-shaped digit runs (Luhn intentionally not checked —
// "err on the side of redaction"), national-ID patterns, and international
// phone numbers. Order matters: a substring matched by an earlier pattern is
// replaced before later patterns run, so field-specific patterns are listed
// before broad numeric ones.
func DefaultCatalog() []PatternSpec {
	return []PatternSpec{
		{
			Name:   "jwt",
			Regex:  `\bey[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\b`,
			Marker: "SANITIZED_JWT",
		},
		{
			Name:   "bearer_token",
			Regex:  `(?i)\bBearer\s+[A-Za-z0-9._~+/-]{8,}=*`,
			Marker: "SANITIZED_BEARER",
		},
		{
			Name:   "basic_auth",
			Regex:  `(?i)\bBasic\s+[A-Za-z0-9+/]{8,}=*`,
			Marker: "SANITIZED_BASIC",
		},
		{
			Name:   "api_key_assignment",
			Regex:  `(?i)(?:api[_-]?key|x-api-key)[\s"':=]+[A-Za-z0-9_-]{12,}`,
			Marker: "SANITIZED_API_KEY",
		},
		{
			Name:   "email",
			Regex:  `\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`,
			Marker: "SANITIZED_EMAIL",
		},
		{
			Name:   "credit_card",
			Regex:  `\b(?:\d[ -]?){12,18}\d\b`,
			Marker: "SANITIZED_CARD",
		},
		{
			Name:   "cpf",
			Regex:  `\b\d{3}\.\d{3}\.\d{3}-\d{2}\b`,
			Marker: "SANITIZED_CPF",
		},
		{
			Name:   "cnpj",
			Regex:  `\b\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}\b`,
			Marker: "SANITIZED_CNPJ",
		},
		{
			Name:   "us_ssn",
			Regex:  `\b\d{3}-\d{2}-\d{4}\b`,
			Marker: "SANITIZED_SSN",
		},
		{
			Name:   "phone",
			Regex:  `\+?\d{1,3}[-.\s]?\(?\d{2,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{3,4}\b`,
			Marker: "SANITIZED_PHONE",
		},
	}
}

// DefaultHeaderDenylist returns the header names whose values are replaced
// wholesale regardless of content.
func DefaultHeaderDenylist() []HeaderDenylistEntry {
	return []HeaderDenylistEntry{
		{Header: "authorization", Marker: "SANITIZED_AUTHORIZATION"},
		{Header: "cookie", Marker: "SANITIZED_COOKIE"},
		{Header: "set-cookie", Marker: "SANITIZED_COOKIE"},
		{Header: "x-api-key", Marker: "SANITIZED_API_KEY"},
		{Header: "proxy-authorization", Marker: "SANITIZED_AUTHORIZATION"},
	}
}

// DefaultFieldNameDenylist returns the JSON object field names (matched
// case-insensitively) whose value is replaced regardless of its shape.
func DefaultFieldNameDenylist() []string {
	return []string{
		"password", "passwd", "pwd", "secret", "token",
		"api_key", "apikey", "access_token", "refresh_token",
		"private_key", "client_secret",
	}
}

// compileCatalog compiles every spec, skipping (and reporting) any pattern
// that fails to compile so a single bad regex in config doesn't take down
// startup — mirrors the teacher's compilePatterns tolerance for bad entries.
func compileCatalog(specs []PatternSpec) ([]compiledPattern, []error) {
	var compiled []compiledPattern
	var errs []error
	for _, s := range specs {
		re, err := regexp.Compile(s.Regex)
		if err != nil {
			errs = append(errs, fmt.Errorf("sanitizer: pattern %q: %w", s.Name, err))
			continue
		}
		compiled = append(compiled, compiledPattern{name: s.Name, re: re, marker: s.Marker})
	}
	return compiled, errs
}
