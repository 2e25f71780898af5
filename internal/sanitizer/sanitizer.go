// Package sanitizer implements the pure, deterministic redaction engine at
// the heart of the Collector: CaptureRecord in, SanitizedCapture out, no I/O.
//
// Algorithm (spec §4.1):
//  1. Walk headers, replacing pattern matches with markers; header names in
//     a deny-list have their value replaced wholesale.
//  2. Walk query values identically.
//  3. Walk the body: structurally if it parses as JSON, otherwise as a
//     single string.
//  4. Record per-pattern match counts.
//  5. Re-scan the sanitized record with the same pattern list. Any
//     remaining match fails the call closed: the capture is dropped rather
//     than shipped with a leak.
package sanitizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meshcap/sanitizer-pipeline/internal/metrics"
	"github.com/meshcap/sanitizer-pipeline/internal/model"
)

// Config configures a Sanitizer's pattern catalog and deny-lists.
type Config struct {
	Patterns          []PatternSpec
	HeaderDenylist    []HeaderDenylistEntry
	FieldNameDenylist []string
}

// DefaultConfig returns the built-in catalog described in spec §4.1.
func DefaultConfig() Config {
	return Config{
		Patterns:          DefaultCatalog(),
		HeaderDenylist:    DefaultHeaderDenylist(),
		FieldNameDenylist: DefaultFieldNameDenylist(),
	}
}

// Sanitizer holds the compiled pattern catalog. It is pure and safe for
// concurrent use — all state is read-only after construction.
type Sanitizer struct {
	patterns       []compiledPattern
	headerDenylist map[string]string // lowercased header name -> marker
	fieldDenylist  map[string]struct{}
	m              *metrics.Collector // nil = no metrics
}

// New compiles cfg's catalog and validates the configuration
// well-formedness invariant from spec §4.1: no marker literal may itself
// match any pattern, or a future sanitize call would re-tokenize its own
// output and the fail-closed re-scan would never settle. m may be nil.
func New(cfg Config, m *metrics.Collector) (*Sanitizer, error) {
	compiled, compileErrs := compileCatalog(cfg.Patterns)
	if len(compileErrs) == len(cfg.Patterns) && len(cfg.Patterns) > 0 {
		return nil, fmt.Errorf("%w: no patterns compiled successfully", model.ErrFatalConfig)
	}

	headerDenylist := make(map[string]string, len(cfg.HeaderDenylist))
	for _, e := range cfg.HeaderDenylist {
		headerDenylist[strings.ToLower(e.Header)] = e.Marker
	}

	fieldDenylist := make(map[string]struct{}, len(cfg.FieldNameDenylist))
	for _, f := range cfg.FieldNameDenylist {
		fieldDenylist[strings.ToLower(f)] = struct{}{}
	}

	s := &Sanitizer{
		patterns:       compiled,
		headerDenylist: headerDenylist,
		fieldDenylist:  fieldDenylist,
		m:              m,
	}

	for _, p := range compiled {
		if p.re.MatchString(p.marker) {
			return nil, fmt.Errorf("%w: marker %q for pattern %q matches its own pattern",
				model.ErrFatalConfig, p.marker, p.name)
		}
	}
	for _, marker := range headerDenylist {
		for _, p := range compiled {
			if p.re.MatchString(marker) {
				return nil, fmt.Errorf("%w: header marker %q matches pattern %q",
					model.ErrFatalConfig, marker, p.name)
			}
		}
	}
	for _, p := range compiled {
		if p.re.MatchString(fieldNameMarker) {
			return nil, fmt.Errorf("%w: field marker %q matches pattern %q",
				model.ErrFatalConfig, fieldNameMarker, p.name)
		}
	}

	return s, nil
}

// Sanitize redacts record and returns the result. It never fails on
// malformed input — unrecognized structures degrade to string scanning —
// but it fails closed (returns model.ErrLeak) if the post-substitution
// re-scan still finds a match, per spec §4.1 step 5.
func (s *Sanitizer) Sanitize(record model.CaptureRecord) (model.SanitizedCapture, error) {
	report := make(model.SanitizationReport)

	sanitizedReq := model.RequestData{
		Method:    strings.ToUpper(record.Request.Method),
		Path:      record.Request.Path,
		Query:     s.sanitizeHeaderMap(record.Request.Query, report, false),
		Headers:   s.sanitizeHeaderMap(record.Request.Headers, report, true),
		Body:      s.sanitizeBody(record.Request.Body, report),
		Truncated: record.Request.Truncated,
	}
	sanitizedResp := model.ResponseData{
		Status:  record.Response.Status,
		Headers: s.sanitizeHeaderMap(record.Response.Headers, report, true),
		Body:    s.sanitizeBody(record.Response.Body, report),
	}

	out := model.SanitizedCapture{
		Direction:          record.Direction,
		Request:            sanitizedReq,
		Response:           sanitizedResp,
		ObservedAt:         record.ObservedAt,
		SourceLabels:       record.SourceLabels,
		SanitizationReport: report,
	}

	if leaked, pattern := s.rescan(out); leaked {
		s.m.RecordLeak()
		return model.SanitizedCapture{}, fmt.Errorf("%w: pattern %q still matched after sanitization",
			model.ErrLeak, pattern)
	}

	for name, count := range report {
		s.m.RecordSanitization(name, count)
	}

	return out, nil
}

// sanitizeHeaderMap walks a header/query multi-value map. When
// applyHeaderDenylist is true, a key present in the header deny-list has
// every value replaced wholesale with its marker; otherwise (query values)
// only pattern substitution applies.
func (s *Sanitizer) sanitizeHeaderMap(in model.HeaderMap, report model.SanitizationReport, applyHeaderDenylist bool) model.HeaderMap {
	if in == nil {
		return nil
	}
	out := make(model.HeaderMap, len(in))
	for key, values := range in {
		if applyHeaderDenylist {
			if marker, denied := s.headerDenylist[strings.ToLower(key)]; denied {
				replaced := make([]string, len(values))
				for i := range values {
					replaced[i] = marker
					if values[i] != marker {
						report["header:"+strings.ToLower(key)]++
					}
				}
				out[key] = replaced
				continue
			}
		}
		replaced := make([]string, len(values))
		for i, v := range values {
			replaced[i] = s.applyPatterns(v, report)
		}
		out[key] = replaced
	}
	return out
}

// sanitizeBody walks the body. If it parses as JSON it is walked
// structurally (string leaves pattern-matched, denylisted field values
// replaced wholesale); otherwise it is treated as one opaque string.
func (s *Sanitizer) sanitizeBody(body []byte, report model.SanitizationReport) []byte {
	if len(body) == 0 {
		return body
	}
	if looksLikeJSON(body) {
		if out, ok := s.walkJSON(body, func(v string) string { return s.applyPatterns(v, report) }); ok {
			return out
		}
	}
	return []byte(s.applyPatterns(string(body), report))
}

// looksLikeJSON performs the trial parse spec §4.1 calls for ("the body
// parses as JSON on a trial parse").
func looksLikeJSON(body []byte) bool {
	return json.Valid(body)
}

// applyPatterns runs every compiled pattern over text in order, replacing
// matches with markers and counting occurrences. A marker produced by an
// earlier pattern is never matched by a later one (guaranteed at
// construction time by New's well-formedness check), so ordering only
// matters for overlapping matches of the original text.
func (s *Sanitizer) applyPatterns(text string, report model.SanitizationReport) string {
	if text == "" {
		return text
	}
	result := text
	for _, p := range s.patterns {
		result = p.re.ReplaceAllStringFunc(result, func(match string) string {
			report[p.name]++
			return p.marker
		})
	}
	return result
}

// rescan re-applies every pattern to the fully sanitized output and reports
// whether any still match — the fail-closed check from spec §4.1 step 5.
func (s *Sanitizer) rescan(out model.SanitizedCapture) (leaked bool, pattern string) {
	check := func(text string) (bool, string) {
		for _, p := range s.patterns {
			if p.re.MatchString(text) {
				return true, p.name
			}
		}
		return false, ""
	}
	checkMap := func(m model.HeaderMap) (bool, string) {
		for _, values := range m {
			for _, v := range values {
				if bad, name := check(v); bad {
					return true, name
				}
			}
		}
		return false, ""
	}

	if bad, name := checkMap(out.Request.Headers); bad {
		return true, name
	}
	if bad, name := checkMap(out.Request.Query); bad {
		return true, name
	}
	if bad, name := check(string(out.Request.Body)); bad {
		return true, name
	}
	if bad, name := checkMap(out.Response.Headers); bad {
		return true, name
	}
	if bad, name := check(string(out.Response.Body)); bad {
		return true, name
	}
	return false, ""
}
